package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchChannel(t *testing.T) {
	ch := MatchChannel("abc")
	assert.Equal(t, "channel:match:abc", ch)

	id, ok := MatchIDFromChannel(ch)
	assert.True(t, ok)
	assert.Equal(t, "abc", id)

	_, ok = MatchIDFromChannel("channel:room:abc")
	assert.False(t, ok)
	_, ok = MatchIDFromChannel("channel:match:")
	assert.False(t, ok)
}

func TestEncodeDecode(t *testing.T) {
	data, err := Encode(TypeMatchConcluded, MatchConcludedPayload{MatchID: "m", MoveCount: 9, Status: "tie"})
	require.NoError(t, err)

	e, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, TypeMatchConcluded, e.Type)

	var p MatchConcludedPayload
	require.NoError(t, json.Unmarshal(e.Payload, &p))
	assert.Equal(t, MatchConcludedPayload{MatchID: "m", MoveCount: 9, Status: "tie"}, p)

	_, err = Decode([]byte("{"))
	assert.Error(t, err)
}
