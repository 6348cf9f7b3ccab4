package room

import (
	"context"
	"ctchen222/line-em-up/internal/game"
	"ctchen222/line-em-up/internal/match"
	"ctchen222/line-em-up/internal/player"
	"ctchen222/line-em-up/pkg/proto"
	"errors"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("room")

var (
	ErrClosed      = errors.New("room closed")
	ErrMoveTimeout = errors.New("no move received in time")
)

// PlayerMove is a parsed move from a seated player.
type PlayerMove struct {
	Player *player.Player
	Coord  game.Coord
}

// Room holds the websocket clients of one match: at most one per mark, plus any number of spectators.
// It is the move source for the human sides of the match.
type Room struct {
	ID string

	moveTimeout time.Duration
	onLeave     func(*player.Player)

	mu         sync.Mutex
	seats      map[game.PlayerMark]*player.Player
	spectators map[string]*player.Player
	seen       map[game.PlayerMark]bool
	pending    *match.HumanTurn
	moveTaken  bool

	incomingMoves chan *PlayerMove
	done          chan struct{}
	closeOnce     sync.Once
}

type Option func(*Room)

// WithMoveTimeout bounds how long NextMove waits. Zero waits until the room closes.
func WithMoveTimeout(d time.Duration) Option {
	return func(r *Room) { r.moveTimeout = d }
}

// WithLeaveHandler is called after a player's connection ends and the player has left the room.
func WithLeaveHandler(fn func(*player.Player)) Option {
	return func(r *Room) { r.onLeave = fn }
}

// NewRoom creates a new game room.
func NewRoom(id string, opts ...Option) *Room {
	r := &Room{
		ID:            id,
		seats:         make(map[game.PlayerMark]*player.Player, 2),
		spectators:    make(map[string]*player.Player),
		seen:          make(map[game.PlayerMark]bool, 2),
		incomingMoves: make(chan *PlayerMove, 1),
		done:          make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// AddPlayer seats the player on its mark, replacing an earlier connection, or adds it as a spectator. A
// seated player whose turn is pending is prompted right away. The others are told when a seat comes back.
func (r *Room) AddPlayer(ctx context.Context, p *player.Player) {
	r.mu.Lock()
	var prompt *match.HumanTurn
	var rejoined bool
	if p.IsSpectator() {
		r.spectators[p.ID] = p
	} else {
		if old, ok := r.seats[p.Mark]; ok && old != p {
			old.Conn.Close()
		}
		r.seats[p.Mark] = p
		rejoined = r.seen[p.Mark]
		r.seen[p.Mark] = true
		if r.pending != nil && r.pending.Mark == p.Mark {
			turn := *r.pending
			prompt = &turn
		}
	}
	r.mu.Unlock()

	if rejoined {
		r.broadcastExcept(ctx, p, &proto.ServerToClientMessage{Type: proto.TypeOpponentReconnect, Mark: p.Mark})
	}
	if prompt != nil {
		r.sendTo(ctx, p, proto.YourTurn(*prompt))
	}
}

// RemovePlayer removes p if it is still the player registered under its seat or id.
func (r *Room) RemovePlayer(p *player.Player) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p.IsSpectator() {
		if r.spectators[p.ID] != p {
			return false
		}
		delete(r.spectators, p.ID)
		return true
	}
	if r.seats[p.Mark] != p {
		return false
	}
	delete(r.seats, p.Mark)
	return true
}

// Seat returns the player connected on mark.
func (r *Room) Seat(mark game.PlayerMark) (*player.Player, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.seats[mark]
	return p, ok
}

// Len is the number of connected players and spectators.
func (r *Room) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.seats) + len(r.spectators)
}

func (r *Room) players() []*player.Player {
	r.mu.Lock()
	defer r.mu.Unlock()
	ps := make([]*player.Player, 0, len(r.seats)+len(r.spectators))
	for _, mark := range []game.PlayerMark{game.PlayerX, game.PlayerO} {
		if p, ok := r.seats[mark]; ok {
			ps = append(ps, p)
		}
	}
	for _, p := range r.spectators {
		ps = append(ps, p)
	}
	return ps
}

// Done is closed when the room closes.
func (r *Room) Done() <-chan struct{} {
	return r.done
}

// Close sends a last message, if any, and closes every connection. It is safe to call more than once.
func (r *Room) Close(ctx context.Context, last *proto.ServerToClientMessage) {
	r.closeOnce.Do(func() {
		close(r.done)
		if last != nil {
			r.Broadcast(ctx, last)
		}
		for _, p := range r.players() {
			if err := p.Conn.Close(); err != nil {
				slog.DebugContext(ctx, "Error closing connection", "player.id", p.ID, "room.id", r.ID, "error", err)
			}
		}
	})
}
