package hub

import (
	"ctchen222/line-em-up/internal/game"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidSeatToken = errors.New("invalid seat token")

// SeatClaims binds a token to one mark of one match. The subject is the seated player's id.
type SeatClaims struct {
	MatchID string          `json:"mid"`
	Mark    game.PlayerMark `json:"mark"`
	jwt.RegisteredClaims
}

// SeatIssuer signs and verifies HS256 seat tokens.
type SeatIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSeatIssuer(secret string, ttl time.Duration) *SeatIssuer {
	return &SeatIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue creates a player id for the seat and a token carrying it.
func (s *SeatIssuer) Issue(matchID string, mark game.PlayerMark) (token, playerID string, err error) {
	playerID = uuid.NewString()
	now := s.now()
	claims := SeatClaims{
		MatchID: matchID,
		Mark:    mark,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   playerID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", "", fmt.Errorf("failed to sign seat token: %w", err)
	}
	return token, playerID, nil
}

// Verify checks the signature and expiry of a seat token.
func (s *SeatIssuer) Verify(token string) (*SeatClaims, error) {
	claims := &SeatClaims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSeatToken, err)
	}
	if claims.Mark != game.PlayerX && claims.Mark != game.PlayerO {
		return nil, fmt.Errorf("%w: mark %q", ErrInvalidSeatToken, claims.Mark)
	}
	return claims, nil
}
