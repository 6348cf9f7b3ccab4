package server

import (
	"bytes"
	"context"
	"ctchen222/line-em-up/internal/api/controller"
	"ctchen222/line-em-up/internal/api/models"
	"ctchen222/line-em-up/internal/api/response"
	"ctchen222/line-em-up/internal/api/service"
	"ctchen222/line-em-up/internal/bot"
	"ctchen222/line-em-up/internal/game"
	"ctchen222/line-em-up/internal/hub"
	"ctchen222/line-em-up/pkg/proto"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	h := hub.NewHub(bot.NewEngine(), hub.NewSeatIssuer("server-test-secret-123", time.Hour))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(done)
	}()

	mc := controller.NewMatchController(service.NewMatchService(h, nil))
	ts := httptest.NewServer(NewServer(h, mc).Engine())
	t.Cleanup(func() {
		ts.Close()
		cancel()
		<-done
	})
	return ts
}

func createMatch(t *testing.T, ts *httptest.Server, req models.CreateMatchRequest) models.CreateMatchResponse {
	t.Helper()
	body, err := json.Marshal(req)
	require.NoError(t, err)
	resp, err := http.Post(ts.URL+"/api/matches", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var out struct {
		response.Response
		Extras models.CreateMatchResponse `json:"extras"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out.Extras
}

func wsURL(ts *httptest.Server, path string) string {
	return "ws" + strings.TrimPrefix(ts.URL, "http") + path
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSeatTokenJoinsMatch(t *testing.T) {
	ts := newTestServer(t)
	created := createMatch(t, ts, models.CreateMatchRequest{
		Size: 3, WinLength: 3,
		X: models.SideRequest{Kind: "human"},
		O: models.SideRequest{Kind: "ai", DepthLimit: 2},
	})
	require.Contains(t, created.Seats, "X")

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts, "/ws/matches/"+created.MatchID+"?token="+created.Seats["X"]), nil)
	require.NoError(t, err)
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var assignment proto.PlayerAssignmentMessage
	require.NoError(t, conn.ReadJSON(&assignment))
	assert.Equal(t, proto.TypeAssignment, assignment.Type)
	assert.Equal(t, created.MatchID, assignment.MatchID)
	assert.Equal(t, game.PlayerX, assignment.Mark)

	for {
		var msg proto.ServerToClientMessage
		require.NoError(t, conn.ReadJSON(&msg))
		if msg.Type == proto.TypeYourTurn {
			assert.Equal(t, game.PlayerX, msg.Next)
			require.NoError(t, conn.WriteJSON(proto.ClientToServerMessage{Type: proto.TypeMove, Position: []int{1, 1}}))
			break
		}
	}

	resp, err := http.Get(ts.URL + "/api/matches/" + created.MatchID)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSpectatorWithoutToken(t *testing.T) {
	ts := newTestServer(t)
	created := createMatch(t, ts, models.CreateMatchRequest{
		Size: 3, WinLength: 3,
		X: models.SideRequest{Kind: "human"},
		O: models.SideRequest{Kind: "human"},
	})

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts, "/ws/matches/"+created.MatchID), nil)
	require.NoError(t, err)
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var assignment proto.PlayerAssignmentMessage
	require.NoError(t, conn.ReadJSON(&assignment))
	assert.Equal(t, game.None, assignment.Mark)

	var update proto.ServerToClientMessage
	require.NoError(t, conn.ReadJSON(&update))
	assert.Equal(t, proto.TypeUpdate, update.Type)
	assert.Equal(t, game.PlayerX, update.Next)

	require.NoError(t, conn.WriteJSON(proto.ClientToServerMessage{Type: proto.TypeMove, Position: []int{0, 0}}))
	var rejected proto.ServerToClientMessage
	for rejected.Type == "" || rejected.Type == proto.TypeUpdate {
		require.NoError(t, conn.ReadJSON(&rejected))
	}
	assert.Equal(t, proto.TypeError, rejected.Type)
}

func TestBadSeatTokens(t *testing.T) {
	ts := newTestServer(t)
	first := createMatch(t, ts, models.CreateMatchRequest{
		Size: 3, WinLength: 3, X: models.SideRequest{Kind: "human"}, O: models.SideRequest{Kind: "human"},
	})
	second := createMatch(t, ts, models.CreateMatchRequest{
		Size: 3, WinLength: 3, X: models.SideRequest{Kind: "human"}, O: models.SideRequest{Kind: "human"},
	})

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(ts, "/ws/matches/"+first.MatchID+"?token=garbage"), nil)
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, resp, err = websocket.DefaultDialer.Dial(wsURL(ts, "/ws/matches/"+first.MatchID+"?token="+second.Seats["O"]), nil)
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestUnknownMatchIs404(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/api/matches/nope")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
