package types

import (
	"context"
	"ctchen222/line-em-up/internal/player"
)

// RegistrationRequest asks the hub to attach a websocket client to the match named by Player.MatchID.
type RegistrationRequest struct {
	Player *player.Player
	Ctx    context.Context
}
