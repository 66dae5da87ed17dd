package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(format string, w io.Writer) *Output {
	if w == nil {
		w = os.Stdout
	}
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Fprintln(o.w, string(data))
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	if _, ok := data.(Event); !ok {
		enc.SetIndent("", "  ")
	}
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case HealthResult:
		o.printHealthResult(v)
	case WinnersResult:
		o.printWinners(v)
	case RoomsResult:
		o.printRooms(v)
	case Event:
		o.printEvent(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// HealthResult response type
type HealthResult struct {
	Status       string `json:"status"`
	Clients      int    `json:"clients"`
	WaitingRooms int    `json:"waiting_rooms"`
	ActiveGames  int    `json:"active_games"`
}

// Winner response type
type Winner struct {
	Name string `json:"name"`
	Wins int    `json:"wins"`
}

// WinnersResult response type
type WinnersResult struct {
	Winners []Winner `json:"winners"`
}

// RoomMember response type
type RoomMember struct {
	PlayerID int    `json:"player_id"`
	Name     string `json:"name"`
}

// Room response type
type Room struct {
	ID      int          `json:"id"`
	Members []RoomMember `json:"members"`
}

// RoomsResult response type
type RoomsResult struct {
	Rooms []Room `json:"rooms"`
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Fprintf(o.w, "Status: %s\n", h.Status)
	fmt.Fprintf(o.w, "Clients: %d\n", h.Clients)
	fmt.Fprintf(o.w, "Waiting Rooms: %d\n", h.WaitingRooms)
	fmt.Fprintf(o.w, "Active Games: %d\n", h.ActiveGames)
}

func (o *Output) printWinners(r WinnersResult) {
	if len(r.Winners) == 0 {
		fmt.Fprintln(o.w, "No winners yet")
		return
	}

	// Leaderboard arrives ascending; show the leader first
	fmt.Fprintf(o.w, "Winners (%d):\n", len(r.Winners))
	for i := len(r.Winners) - 1; i >= 0; i-- {
		w := r.Winners[i]
		fmt.Fprintf(o.w, "  %-20s %d\n", w.Name, w.Wins)
	}
}

func (o *Output) printRooms(r RoomsResult) {
	if len(r.Rooms) == 0 {
		fmt.Fprintln(o.w, "No open rooms")
		return
	}

	fmt.Fprintf(o.w, "Rooms (%d):\n", len(r.Rooms))
	for _, room := range r.Rooms {
		names := make([]string, len(room.Members))
		for i, m := range room.Members {
			names[i] = fmt.Sprintf("%s (%d)", m.Name, m.PlayerID)
		}
		fmt.Fprintf(o.w, "  - Room %d: %s\n", room.ID, strings.Join(names, ", "))
	}
}

func (o *Output) printEvent(e Event) {
	timestamp := e.Time.Format("2006-01-02 15:04:05")
	displayData := string(e.Data)
	// Truncate data if it's too long for display
	if len(displayData) > 100 {
		displayData = displayData[:100] + "..."
	}
	fmt.Fprintf(o.w, "[%s] %s: %s\n", timestamp, e.Type, displayData)
}
