package events

import (
	"encoding/json"
	"fmt"
)

// Pub/Sub channel constants
const (
	matchChannelPrefix  = "channel:match:"
	MatchChannelPattern = matchChannelPrefix + "*"
)

// Event types published on a match channel.
const (
	TypeMatchUpdated     = "match_updated"
	TypeMatchConcluded   = "match_concluded"
	TypeSeatConnected    = "seat_connected"
	TypeSeatDisconnected = "seat_disconnected"
)

// MatchChannel returns the Pub/Sub channel carrying the events of one match.
func MatchChannel(matchID string) string {
	return matchChannelPrefix + matchID
}

// MatchIDFromChannel is the inverse of MatchChannel.
func MatchIDFromChannel(channel string) (string, bool) {
	if len(channel) <= len(matchChannelPrefix) || channel[:len(matchChannelPrefix)] != matchChannelPrefix {
		return "", false
	}
	return channel[len(matchChannelPrefix):], true
}

// Event represents a message published via Pub/Sub.
type Event struct {
	Type    string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// Encode wraps payload into an Event of the given type and marshals it.
func Encode(eventType string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}
	data, err := json.Marshal(Event{Type: eventType, Payload: raw})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s event: %w", eventType, err)
	}
	return data, nil
}

// Decode parses an Event.
func Decode(data []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return Event{}, fmt.Errorf("failed to unmarshal event: %w", err)
	}
	return e, nil
}

// MatchUpdatedPayload is the payload for the "match_updated" event.
type MatchUpdatedPayload struct {
	MatchID   string `json:"match_id"`
	MoveCount int    `json:"move_count"`
	Status    string `json:"status"`
	Next      string `json:"next,omitempty"`
}

// MatchConcludedPayload is the payload for the "match_concluded" event.
type MatchConcludedPayload struct {
	MatchID   string `json:"match_id"`
	MoveCount int    `json:"move_count"`
	Status    string `json:"status"`
	Winner    string `json:"winner,omitempty"`
}

// SeatPayload is the payload for the seat connection events.
type SeatPayload struct {
	MatchID  string `json:"match_id"`
	Mark     string `json:"mark"`
	PlayerID string `json:"player_id"`
}
