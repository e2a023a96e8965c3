package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDCursorRoundTrip(t *testing.T) {
	id, err := DecodeID(EncodeID(42))
	require.NoError(t, err)
	assert.EqualValues(t, 42, id)
}

func TestIDCursorEmpty(t *testing.T) {
	id, err := DecodeID("")
	require.NoError(t, err)
	assert.Zero(t, id)
}

func TestIDCursorGarbage(t *testing.T) {
	_, err := DecodeID("!!definitely not base64!!")
	assert.ErrorIs(t, err, ErrBadCursor)

	_, err = DecodeID("bm90anNvbg")
	assert.ErrorIs(t, err, ErrBadCursor)
}

func TestScoreCursorRoundTrip(t *testing.T) {
	score, id, ok, err := DecodeScore(EncodeScore(-120.5, 7))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.InDelta(t, -120.5, score, 0.0001)
	assert.EqualValues(t, 7, id)
}

func TestScoreCursorEmpty(t *testing.T) {
	_, _, ok, err := DecodeScore("")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestScoreCursorGarbage(t *testing.T) {
	_, _, _, err := DecodeScore("%%%")
	assert.ErrorIs(t, err, ErrBadCursor)
}
