package models

import "ctchen222/line-em-up/internal/game"

// SideRequest configures one side of a new match.
type SideRequest struct {
	Kind       string `json:"kind" binding:"required,oneof=human ai"`
	Algorithm  string `json:"algorithm" binding:"omitempty,oneof=minimax alphabeta"`
	Heuristic  string `json:"heuristic" binding:"omitempty,oneof=material line_potential"`
	DepthLimit int    `json:"depth_limit" binding:"omitempty,min=1,max=12"`
	// MoveTimeMs is the search budget per move in milliseconds. Zero disables the clock.
	MoveTimeMs int `json:"move_time_ms" binding:"min=0"`
}

// CreateMatchRequest defines the structure for a match creation request.
type CreateMatchRequest struct {
	Size       int          `json:"size" binding:"required,min=3,max=10"`
	WinLength  int          `json:"win_length" binding:"required,min=1,ltefield=Size"`
	BlockCount int          `json:"block_count" binding:"min=0"`
	Blocks     []game.Coord `json:"blocks"`
	X          SideRequest  `json:"x" binding:"required"`
	O          SideRequest  `json:"o" binding:"required"`
	Recommend  bool         `json:"recommend"`
}

// CreateMatchResponse carries the match id and one seat token per human side.
type CreateMatchResponse struct {
	MatchID string            `json:"match_id"`
	Seats   map[string]string `json:"seats,omitempty"`
}

// ListQuery filters the result listings. A zero limit uses the repository default.
type ListQuery struct {
	BatchID string `form:"batch"`
	Limit   int    `form:"limit" binding:"min=0,max=500"`
}
