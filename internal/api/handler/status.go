package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/mcoot/seabattle/internal/api/apierr"
	"github.com/mcoot/seabattle/internal/api/response"
	"github.com/mcoot/seabattle/internal/model"
)

// Loop runs a closure on the dispatch loop
type Loop interface {
	Do(ctx context.Context, fn func()) error
	ClientCount() int
}

// PlayerDirectory reads players and the leaderboard
type PlayerDirectory interface {
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error)
	ListWinners(ctx context.Context) ([]model.Winner, error)
}

// RoomLister lists rooms open for joining
type RoomLister interface {
	WaitingRooms() []*model.Room
	GetRoom(roomID model.RoomID) (*model.Room, error)
}

// SessionCounter reports how many players are connected
type SessionCounter interface {
	Online() int
}

// GameCounter reports how many games are in progress
type GameCounter interface {
	ActiveGames() int
}

// StatusHandler serves read-only server state
type StatusHandler struct {
	loop     Loop
	players  PlayerDirectory
	rooms    RoomLister
	games    GameCounter
	sessions SessionCounter
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(loop Loop, players PlayerDirectory, rooms RoomLister, games GameCounter, sessions SessionCounter) *StatusHandler {
	return &StatusHandler{
		loop:     loop,
		players:  players,
		rooms:    rooms,
		games:    games,
		sessions: sessions,
	}
}

// Health handles GET /health
func (h *StatusHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := response.HealthResponse{Status: "ok", Clients: h.loop.ClientCount()}

	// Room and game state is owned by the loop
	err := h.loop.Do(r.Context(), func() {
		resp.PlayersOnline = h.sessions.Online()
		resp.WaitingRooms = len(h.rooms.WaitingRooms())
		resp.ActiveGames = h.games.ActiveGames()
	})
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, resp)
}

// Winners handles GET /winners
func (h *StatusHandler) Winners(w http.ResponseWriter, r *http.Request) {
	winners, err := h.players.ListWinners(r.Context())
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.WinnersFromModel(winners))
}

// Rooms handles GET /rooms
func (h *StatusHandler) Rooms(w http.ResponseWriter, r *http.Request) {
	var resp response.RoomsResponse
	err := h.loop.Do(r.Context(), func() {
		resp = response.RoomsFromModel(h.rooms.WaitingRooms())
	})
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, resp)
}

// Room handles GET /rooms/{id}. Rooms stay visible while their game runs.
func (h *StatusHandler) Room(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	var (
		room    *model.Room
		roomErr error
	)
	err = h.loop.Do(r.Context(), func() {
		room, roomErr = h.rooms.GetRoom(model.RoomID(id))
		if roomErr == nil {
			// Copy members while still on the loop
			room = &model.Room{ID: room.ID, Members: append([]model.RoomMember(nil), room.Members...)}
		}
	})
	if err == nil {
		err = roomErr
	}
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RoomFromModel(room))
}

// Player handles GET /players/{id}
func (h *StatusHandler) Player(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	player, err := h.players.GetPlayer(r.Context(), model.PlayerID(id))
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PlayerFromModel(player))
}

func pathID(r *http.Request, name string) (int, error) {
	id, err := strconv.Atoi(mux.Vars(r)[name])
	if err != nil || id < 1 {
		return 0, apierr.NewInvalidRequestError(name + " must be a positive integer")
	}
	return id, nil
}
