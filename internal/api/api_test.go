package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/seabattle/internal/api"
	"github.com/mcoot/seabattle/internal/api/apierr"
	"github.com/mcoot/seabattle/internal/api/response"
	"github.com/mcoot/seabattle/internal/factory"
	"github.com/mcoot/seabattle/internal/model"
	"github.com/mcoot/seabattle/internal/testutil"
)

// testServer runs the router against a live dispatch loop
type testServer struct {
	handler http.Handler
	app     *factory.TestApp
	cancel  context.CancelFunc
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	app := factory.NewTestApp()

	ctx, cancel := context.WithCancel(context.Background())
	go app.Hub.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-app.Hub.Stopped()
	})

	router := api.NewRouter(api.RouterConfig{
		Logger:     testutil.NopLogger(),
		Hub:        app.Hub,
		Directory:  app.Directory,
		Matchmaker: app.Matchmaker,
		Engine:     app.Engine,
		Sessions:   app.Sessions,
	})

	return &testServer{handler: router, app: app, cancel: cancel}
}

func (ts *testServer) request(method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func (ts *testServer) register(t *testing.T, name string) *model.Player {
	t.Helper()
	player, err := ts.app.Directory.Register(context.Background(), name, "secret")
	require.NoError(t, err)
	return player
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/health")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
	assert.Equal(t, "no-store", rr.Header().Get("Cache-Control"))

	var resp response.HealthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 0, resp.Clients)
	assert.Equal(t, 0, resp.WaitingRooms)
	assert.Equal(t, 0, resp.ActiveGames)
}

func TestWinnersEmpty(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/winners")
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp response.WinnersResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Empty(t, resp.Winners)
	assert.NotNil(t, resp.Winners)
}

func TestWinnersOrderedByWins(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	alice := ts.register(t, "alice")
	bob := ts.register(t, "bob")
	ts.register(t, "carol")

	_, err := ts.app.Directory.RecordWin(ctx, alice.ID)
	require.NoError(t, err)
	_, err = ts.app.Directory.RecordWin(ctx, alice.ID)
	require.NoError(t, err)
	_, err = ts.app.Directory.RecordWin(ctx, bob.ID)
	require.NoError(t, err)

	rr := ts.request(http.MethodGet, "/api/v1/winners")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp response.WinnersResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, []response.WinnerResponse{
		{Name: "bob", Wins: 1},
		{Name: "alice", Wins: 2},
	}, resp.Winners)
}

func TestWaitingRooms(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.register(t, "alice")

	// Rooms belong to the dispatch loop
	var createErr error
	err := ts.app.Hub.Do(context.Background(), func() {
		_, createErr = ts.app.Matchmaker.CreateRoom(context.Background(), alice)
	})
	require.NoError(t, err)
	require.NoError(t, createErr)

	rr := ts.request(http.MethodGet, "/api/v1/rooms")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp response.RoomsResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Rooms, 1)
	assert.Equal(t, 1, resp.Rooms[0].ID)
	assert.Equal(t, []response.RoomMemberResponse{{PlayerID: int(alice.ID), Name: "alice"}}, resp.Rooms[0].Members)

	rr = ts.request(http.MethodGet, "/api/v1/health")
	var health response.HealthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &health))
	assert.Equal(t, 1, health.WaitingRooms)
}

func TestStoppedHubReturnsUnavailable(t *testing.T) {
	ts := newTestServer(t)
	ts.cancel()
	<-ts.app.Hub.Stopped()

	rr := ts.request(http.MethodGet, "/api/v1/rooms")
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)

	var resp apierr.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, apierr.CodeUnavailable, resp.Error.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/v1/winners")
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestUnknownRoute(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/lobbies")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestWebSocketUpgradeThroughMiddleware(t *testing.T) {
	ts := newTestServer(t)
	server := httptest.NewServer(ts.handler)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
}

func TestRoomByID(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.register(t, "alice")
	bob := ts.register(t, "bob")

	// Fill the room so it is no longer waiting
	var joinErr error
	err := ts.app.Hub.Do(context.Background(), func() {
		if _, joinErr = ts.app.Matchmaker.CreateRoom(context.Background(), alice); joinErr != nil {
			return
		}
		_, joinErr = ts.app.Matchmaker.JoinRoom(context.Background(), bob, 1)
	})
	require.NoError(t, err)
	require.NoError(t, joinErr)

	rr := ts.request(http.MethodGet, "/api/v1/rooms/1")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp response.RoomResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.ID)
	assert.Equal(t, []response.RoomMemberResponse{
		{PlayerID: int(alice.ID), Name: "alice"},
		{PlayerID: int(bob.ID), Name: "bob"},
	}, resp.Members)
}

func TestRoomByIDNotFound(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/rooms/9")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	var resp apierr.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, apierr.CodeRoomNotFound, resp.Error.Code)
}

func TestPlayerByID(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.register(t, "alice")
	_, err := ts.app.Directory.RecordWin(context.Background(), alice.ID)
	require.NoError(t, err)

	rr := ts.request(http.MethodGet, fmt.Sprintf("/api/v1/players/%d", alice.ID))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, rr.Body.String(), "password")

	var resp response.PlayerResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, response.PlayerResponse{ID: int(alice.ID), Name: "alice", Wins: 1}, resp)
}

func TestPlayerByIDErrors(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name   string
		path   string
		status int
		code   string
	}{
		{"unknown player", "/api/v1/players/5", http.StatusNotFound, apierr.CodePlayerNotFound},
		{"non-numeric id", "/api/v1/players/abc", http.StatusBadRequest, apierr.CodeInvalidRequest},
		{"zero id", "/api/v1/players/0", http.StatusBadRequest, apierr.CodeInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := ts.request(http.MethodGet, tt.path)
			assert.Equal(t, tt.status, rr.Code)

			var resp apierr.ErrorResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestHealthCountsPlayersOnline(t *testing.T) {
	ts := newTestServer(t)
	server := httptest.NewServer(ts.handler)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(map[string]any{
		"type": "reg",
		"data": `{"name":"alice","password":"secret"}`,
		"id":   0,
	}))

	assert.Eventually(t, func() bool {
		rr := ts.request(http.MethodGet, "/api/v1/health")
		var health response.HealthResponse
		if err := json.Unmarshal(rr.Body.Bytes(), &health); err != nil {
			return false
		}
		return health.Clients == 1 && health.PlayersOnline == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestServerServesUntilCancelled(t *testing.T) {
	app := factory.NewTestApp()
	cfg := api.DefaultServerConfig()
	cfg.Host = "127.0.0.1"
	cfg.Port = 0
	cfg.ShutdownTimeout = time.Second

	server := api.NewServer(app.Router(), app.Hub, cfg, testutil.NopLogger())
	require.NoError(t, server.Listen())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.Serve(ctx) }()

	resp, err := http.Get("http://" + server.Addr() + "/api/v1/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}

	// The dispatch loop is stopped along with the listener
	select {
	case <-app.Hub.Stopped():
	default:
		t.Fatal("dispatch loop still running")
	}
}
