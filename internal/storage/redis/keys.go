package redis

import (
	"fmt"

	"github.com/mcoot/seabattle/internal/model"
)

// Key prefix for all game-related data
const keyPrefix = "seabattle"

// playerKey returns the Redis key for a Player
func playerKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:player:%d", keyPrefix, id)
}

// nameIndexKey returns the Redis key for the name -> player_id index
func nameIndexKey(name string) string {
	return fmt.Sprintf("%s:idx:name:%s", keyPrefix, name)
}

// playerSequenceKey returns the Redis key of the player id counter
func playerSequenceKey() string {
	return fmt.Sprintf("%s:seq:player", keyPrefix)
}

// winnersKey returns the Redis key for the ZSET of player id -> wins
func winnersKey() string {
	return fmt.Sprintf("%s:winners", keyPrefix)
}
