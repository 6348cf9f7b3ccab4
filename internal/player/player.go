package player

import (
	"ctchen222/line-em-up/internal/game"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
)

// Status is the connection state of a seated player.
type Status string

const (
	StatusConnected    Status = "connected"
	StatusDisconnected Status = "disconnected"
)

// Connection is an interface that abstracts the websocket connection.
type Connection interface {
	WriteMessage(messageType int, data []byte) error
	ReadMessage() (int, []byte, error)
	Close() error
}

// Player is a websocket client attached to a match, either seated with a mark or watching.
type Player struct {
	ID      string
	MatchID string
	Mark    game.PlayerMark
	Conn    Connection

	writeMu sync.Mutex
}

// NewPlayer creates a player. A None mark makes it a spectator.
func NewPlayer(id, matchID string, mark game.PlayerMark, conn Connection) *Player {
	return &Player{ID: id, MatchID: matchID, Mark: mark, Conn: conn}
}

// IsSpectator reports whether the player only watches.
func (p *Player) IsSpectator() bool {
	return p.Mark == game.None
}

// Send marshals v to JSON and writes it as a text frame. Writes are serialized per player.
func (p *Player) Send(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal message for %s: %w", p.ID, err)
	}
	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	return p.Conn.WriteMessage(websocket.TextMessage, data)
}
