package hub

import (
	"context"
	"ctchen222/line-em-up/internal/events"
	"ctchen222/line-em-up/internal/game"
	"ctchen222/line-em-up/internal/hub/types"
	"ctchen222/line-em-up/internal/match"
	"ctchen222/line-em-up/internal/player"
	"ctchen222/line-em-up/internal/repository"
	"ctchen222/line-em-up/pkg/proto"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func newRedis(t *testing.T) *redis.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("redis container tests are skipped in short mode")
	}
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { testcontainers.TerminateContainer(container) })

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)
	opts, err := redis.ParseURL(uri)
	require.NoError(t, err)

	rdb := redis.NewClient(opts)
	t.Cleanup(func() { rdb.Close() })
	require.NoError(t, rdb.Ping(ctx).Err())
	return rdb
}

func readMsg(t *testing.T, c *fakeConn) proto.ServerToClientMessage {
	t.Helper()
	select {
	case data := <-c.out:
		var msg proto.ServerToClientMessage
		require.NoError(t, json.Unmarshal(data, &msg))
		return msg
	case <-time.After(5 * time.Second):
		t.Fatal("no message")
	}
	return proto.ServerToClientMessage{}
}

func TestSpectatorFollowsMatchHostedElsewhere(t *testing.T) {
	rdb := newRedis(t)
	ctx := context.Background()
	games := repository.NewGameRepository(rdb)
	seats := repository.NewSeatRepository(rdb)

	host := startHub(t, WithGameRepository(games), WithSeatRepository(seats))
	relay := startHub(t, WithGameRepository(games), WithSeatRepository(seats))

	id, tokens, err := host.CreateMatch(ctx, testConfig(match.Human, match.Human))
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		_, err := games.FindByID(ctx, id)
		return err == nil
	}, 5*time.Second, 20*time.Millisecond)

	seat, ok, err := seats.Find(ctx, id, game.PlayerX)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, player.StatusDisconnected, seat.Status)

	spectator := newFakeConn()
	require.NoError(t, relay.Join(ctx, &types.RegistrationRequest{Player: player.NewPlayer("watcher", id, game.None, spectator), Ctx: ctx}))
	<-spectator.out // assignment
	initial := readMsg(t, spectator)
	assert.Equal(t, proto.TypeUpdate, initial.Type)
	assert.Equal(t, game.PlayerX, initial.Next)
	require.Eventually(t, func() bool {
		n, err := rdb.PubSubNumSub(ctx, events.MatchChannel(id)).Result()
		return err == nil && n[events.MatchChannel(id)] > 0
	}, 5*time.Second, 20*time.Millisecond)

	claims, err := host.Issuer().Verify(tokens[game.PlayerX])
	require.NoError(t, err)

	// a seat must connect to the hosting server
	misplaced := newFakeConn()
	require.NoError(t, relay.Join(ctx, &types.RegistrationRequest{Player: player.NewPlayer(claims.Subject, id, game.PlayerX, misplaced), Ctx: ctx}))
	assert.Equal(t, proto.TypeError, readMsg(t, misplaced).Type)

	// a different player id cannot take the seat
	intruder := newFakeConn()
	require.NoError(t, host.Join(ctx, &types.RegistrationRequest{Player: player.NewPlayer("intruder", id, game.PlayerX, intruder), Ctx: ctx}))
	rejected := readMsg(t, intruder)
	assert.Equal(t, proto.TypeError, rejected.Type)
	assert.Equal(t, "seat belongs to another player", rejected.Reason)

	x := newFakeConn()
	require.NoError(t, host.Join(ctx, &types.RegistrationRequest{Player: player.NewPlayer(claims.Subject, id, game.PlayerX, x), Ctx: ctx}))
	for msg := readMsg(t, x); msg.Type != proto.TypeYourTurn; msg = readMsg(t, x) {
	}
	x.in <- firstEmpty(t, initial.Board)

	var seen []string
	for {
		msg := readMsg(t, spectator)
		seen = append(seen, msg.Type)
		if msg.Type == proto.TypeUpdate && msg.MoveCount == 1 {
			assert.Equal(t, game.PlayerX, msg.Board[0][0])
			assert.Equal(t, game.PlayerO, msg.Next)
			break
		}
	}
	assert.Contains(t, seen, proto.TypeOpponentReconnect)

	seat, _, err = seats.Find(ctx, id, game.PlayerX)
	require.NoError(t, err)
	assert.Equal(t, player.StatusConnected, seat.Status)
}
