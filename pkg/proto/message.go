package proto

import (
	"ctchen222/line-em-up/internal/game"
	"ctchen222/line-em-up/internal/match"
)

// Message types.
const (
	TypeMove               = "move"
	TypeUpdate             = "update"
	TypeAssignment         = "assignment"
	TypeYourTurn           = "your_turn"
	TypeError              = "error"
	TypeOpponentDisconnect = "opponent_disconnected"
	TypeOpponentReconnect  = "opponent_reconnected"
)

// ClientToServerMessage represents a message from the client to the server.
type ClientToServerMessage struct {
	Type     string `json:"type" validate:"required,oneof=move"`
	Position []int  `json:"position,omitempty" validate:"len=2,dive,min=0"`
}

// Coord returns the position as a board coordinate.
func (m *ClientToServerMessage) Coord() game.Coord {
	return game.Coord{Row: m.Position[0], Col: m.Position[1]}
}

// ServerToClientMessage represents a message from the server to the client.
type ServerToClientMessage struct {
	Type           string              `json:"type" validate:"required"`
	Reason         string              `json:"reason,omitempty"`
	Mark           game.PlayerMark     `json:"mark,omitempty"`
	Board          [][]game.PlayerMark `json:"board,omitempty"`
	Next           game.PlayerMark     `json:"next,omitempty"`
	Status         game.Status         `json:"status,omitempty"`
	Winner         game.PlayerMark     `json:"winner,omitempty"`
	MoveCount      int                 `json:"move_count,omitempty"`
	LastMove       *game.Coord         `json:"last_move,omitempty"`
	Recommendation *game.Coord         `json:"recommendation,omitempty"`
}

// PlayerAssignmentMessage informs a player of their assigned mark. Spectators get an empty mark.
type PlayerAssignmentMessage struct {
	Type     string          `json:"type"`
	MatchID  string          `json:"matchId"`
	PlayerID string          `json:"playerId,omitempty"`
	Mark     game.PlayerMark `json:"mark"`
}

// UpdateFromSnapshot builds the "update" message for a match snapshot.
func UpdateFromSnapshot(s match.Snapshot) *ServerToClientMessage {
	msg := &ServerToClientMessage{
		Type:      TypeUpdate,
		Board:     s.Board,
		Next:      s.Next,
		Status:    s.Status,
		Winner:    s.Winner,
		MoveCount: s.MoveCount,
	}
	if s.LastMove != nil {
		last := s.LastMove.Move
		msg.LastMove = &last
	}
	return msg
}

// YourTurn prompts a seated player for a move.
func YourTurn(turn match.HumanTurn) *ServerToClientMessage {
	msg := &ServerToClientMessage{
		Type:           TypeYourTurn,
		Board:          turn.Board.Rows(),
		Next:           turn.Mark,
		Status:         game.InProgress,
		Recommendation: turn.Recommendation,
	}
	if turn.Rejected != nil {
		msg.Reason = turn.Rejected.Error()
	}
	return msg
}

// Error reports a problem with the client's last message.
func Error(reason string) *ServerToClientMessage {
	return &ServerToClientMessage{Type: TypeError, Reason: reason}
}
