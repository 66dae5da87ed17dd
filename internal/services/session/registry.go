package session

import (
	"log/slog"
	"sort"

	"github.com/mcoot/seabattle/internal/model"
)

// ConnID identifies a live transport connection
type ConnID string

// Connection is the transport-facing handle a session sends through
type Connection interface {
	ID() ConnID
	// Send queues a frame without blocking; an error means it was dropped
	Send(frame []byte) error
	Close()
}

// Session is the server-side state attached to one connection
type Session struct {
	Conn     Connection
	PlayerID model.PlayerID // zero until reg succeeds
	Name     string

	RoomID model.RoomID // zero when not in a room
	GameID model.GameID // zero when not in a game
}

// Authenticated returns true once the session is bound to a player
func (s *Session) Authenticated() bool {
	return s.PlayerID != 0
}

// Registry tracks every live connection and the player bound to it.
// It is not safe for concurrent use; callers serialize access.
type Registry struct {
	logger *slog.Logger

	sessions map[ConnID]*Session
	byPlayer map[model.PlayerID]ConnID
}

// NewRegistry creates an empty Registry
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		logger:   logger.With(slog.String("component", "session")),
		sessions: make(map[ConnID]*Session),
		byPlayer: make(map[model.PlayerID]ConnID),
	}
}

// Connect creates an unauthenticated session for a new connection
func (r *Registry) Connect(conn Connection) *Session {
	sess := &Session{Conn: conn}
	r.sessions[conn.ID()] = sess
	return sess
}

// Resolve returns the session for a connection
func (r *Registry) Resolve(connID ConnID) (*Session, bool) {
	sess, ok := r.sessions[connID]
	return sess, ok
}

// ByPlayer returns the live session bound to a player
func (r *Registry) ByPlayer(playerID model.PlayerID) (*Session, bool) {
	connID, ok := r.byPlayer[playerID]
	if !ok {
		return nil, false
	}
	return r.Resolve(connID)
}

// All returns every session, authenticated or not, ordered by connection id
func (r *Registry) All() []*Session {
	result := make([]*Session, 0, len(r.sessions))
	for _, sess := range r.sessions {
		result = append(result, sess)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Conn.ID() < result[j].Conn.ID()
	})
	return result
}

// Online returns the number of connections bound to a player
func (r *Registry) Online() int {
	return len(r.byPlayer)
}

// Bind attaches a player to a connection. A connection already bound to the
// same player is evicted: its room and game references move to the new
// session, it is dropped from the registry and closed. The evicted
// connection is returned, or nil.
func (r *Registry) Bind(connID ConnID, player *model.Player) (Connection, error) {
	sess, ok := r.sessions[connID]
	if !ok {
		return nil, model.ErrSessionNotFound
	}

	// Re-registering on the same connection under another name releases the old binding
	if sess.PlayerID != 0 && sess.PlayerID != player.ID {
		if r.byPlayer[sess.PlayerID] == connID {
			delete(r.byPlayer, sess.PlayerID)
		}
		sess.RoomID, sess.GameID = 0, 0
	}

	sess.PlayerID = player.ID
	sess.Name = player.Name

	var evicted Connection
	if oldID, bound := r.byPlayer[player.ID]; bound && oldID != connID {
		if old, ok := r.sessions[oldID]; ok {
			if sess.RoomID == 0 {
				sess.RoomID = old.RoomID
			}
			if sess.GameID == 0 {
				sess.GameID = old.GameID
			}
			delete(r.sessions, oldID)
			evicted = old.Conn
		}
	}
	r.byPlayer[player.ID] = connID

	if evicted != nil {
		r.logger.Info("evicting previous connection",
			slog.Int("player_id", int(player.ID)),
			slog.String("old_conn", string(evicted.ID())),
			slog.String("new_conn", string(connID)),
		)
		evicted.Close()
	}
	return evicted, nil
}

// Unbind removes a connection's session and returns it
func (r *Registry) Unbind(connID ConnID) (*Session, bool) {
	sess, ok := r.sessions[connID]
	if !ok {
		return nil, false
	}
	delete(r.sessions, connID)
	if sess.PlayerID != 0 && r.byPlayer[sess.PlayerID] == connID {
		delete(r.byPlayer, sess.PlayerID)
	}
	return sess, true
}
