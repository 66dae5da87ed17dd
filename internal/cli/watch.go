package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/mcoot/seabattle/internal/protocol"
)

// WatchOptions controls a watch session
type WatchOptions struct {
	Name       string
	Password   string
	CreateRoom bool
	JoinRoom   int
	// Count stops the session after this many events; zero streams until interrupted
	Count int
}

// Event is one decoded server frame
type Event struct {
	Time time.Time       `json:"time"`
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

func newWatchCmd() *cobra.Command {
	var opts WatchOptions

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream game protocol events over WebSocket",
		Long: `Connect to the game endpoint and print every event the server sends.

With --name and --password the connection registers first, so lobby and
leaderboard broadcasts are received. --create-room and --join then enter
matchmaking as that player.

Press Ctrl+C to disconnect.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if (opts.CreateRoom || opts.JoinRoom > 0) && opts.Name == "" {
				return errors.New("--name is required to create or join a room")
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			return Watch(ctx, cfg, opts, NewOutput(cfg.Output, cmd.OutOrStdout()))
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "Player name to register as")
	cmd.Flags().StringVar(&opts.Password, "password", "", "Player password")
	cmd.Flags().BoolVar(&opts.CreateRoom, "create-room", false, "Open a room after registering")
	cmd.Flags().IntVar(&opts.JoinRoom, "join", 0, "Join the room with this id after registering")
	cmd.Flags().IntVar(&opts.Count, "count", 0, "Exit after this many events")

	return cmd
}

// Watch connects to the server and prints events until ctx ends, the
// connection drops or opts.Count events have been printed
func Watch(ctx context.Context, conf *Config, opts WatchOptions, out *Output) error {
	url, err := conf.WebSocketURL()
	if err != nil {
		return fmt.Errorf("invalid server url: %w", err)
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	defer func() { _ = conn.Close() }()

	// Unblock the read loop on cancellation
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	if opts.Name != "" {
		if err := sendFrame(conn, protocol.TypeReg, protocol.RegRequest{Name: opts.Name, Password: opts.Password}); err != nil {
			return err
		}
	}

	if conf.Verbose {
		out.PrintMessage("Connected to " + url)
	}

	printed := 0
	registered := opts.Name == ""
	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("stream error: %w", err)
		}

		env, err := protocol.Decode(frame)
		if err != nil {
			continue
		}

		var data json.RawMessage
		if err := env.DecodeData(&data); err != nil {
			continue
		}

		out.Print(Event{Time: time.Now(), Type: env.Type, Data: data})
		printed++

		if !registered && env.Type == protocol.TypeReg {
			var resp protocol.RegResponse
			if err := json.Unmarshal(data, &resp); err != nil {
				return fmt.Errorf("bad reg response: %w", err)
			}
			if resp.Error {
				return fmt.Errorf("registration failed: %s", resp.ErrorText)
			}
			registered = true
			if err := enterMatchmaking(conn, opts); err != nil {
				return err
			}
		}

		if opts.Count > 0 && printed >= opts.Count {
			return nil
		}
	}
}

func enterMatchmaking(conn *websocket.Conn, opts WatchOptions) error {
	if opts.CreateRoom {
		if err := sendFrame(conn, protocol.TypeCreateRoom, ""); err != nil {
			return err
		}
	}
	if opts.JoinRoom > 0 {
		return sendFrame(conn, protocol.TypeAddUserToRoom, protocol.AddUserToRoomRequest{IndexRoom: opts.JoinRoom})
	}
	return nil
}

func sendFrame(conn *websocket.Conn, msgType string, payload any) error {
	frame, err := protocol.Encode(msgType, payload)
	if err != nil {
		return err
	}
	if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		return fmt.Errorf("send %s: %w", msgType, err)
	}
	return nil
}
