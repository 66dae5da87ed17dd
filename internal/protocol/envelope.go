// Package protocol defines the WebSocket message envelope and payloads.
//
// Every frame is a JSON object {type, data, id}. The id is reserved and
// always zero. Outbound data is a JSON document encoded into a string;
// inbound data may be either that or the document inlined.
package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Command tags
const (
	TypeReg           = "reg"
	TypeCreateRoom    = "create_room"
	TypeAddUserToRoom = "add_user_to_room"
	TypeAddShips      = "add_ships"
	TypeAttack        = "attack"
	TypeRandomAttack  = "randomAttack"
	TypeSinglePlay    = "single_play"

	TypeUpdateRoom    = "update_room"
	TypeUpdateWinners = "update_winners"
	TypeCreateGame    = "create_game"
	TypeStartGame     = "start_game"
	TypeTurn          = "turn"
	TypeFinish        = "finish"
)

// ErrMissingType is returned for frames without a command tag
var ErrMissingType = errors.New("envelope has no type")

// Envelope is a single framed message
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
	ID   int             `json:"id"`
}

// Decode parses a raw frame into an Envelope
func Decode(frame []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	if env.Type == "" {
		return nil, ErrMissingType
	}
	return &env, nil
}

// DecodeData unmarshals the envelope payload into v. Missing, null and
// empty-string payloads leave v untouched.
func (e *Envelope) DecodeData(v any) error {
	data := bytes.TrimSpace(e.Data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	if data[0] == '"' {
		var inner string
		if err := json.Unmarshal(data, &inner); err != nil {
			return fmt.Errorf("decode %s payload: %w", e.Type, err)
		}
		if len(bytes.TrimSpace([]byte(inner))) == 0 {
			return nil
		}
		data = []byte(inner)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s payload: %w", e.Type, err)
	}
	return nil
}

// Encode builds an outbound frame whose data is the payload encoded as a JSON string
func Encode(msgType string, payload any) ([]byte, error) {
	inner, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", msgType, err)
	}
	data, err := json.Marshal(string(inner))
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", msgType, err)
	}
	return json.Marshal(Envelope{Type: msgType, Data: data, ID: 0})
}
