package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldsRoundTrip(t *testing.T) {
	t.Parallel()

	createdAt := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	sess := &Session{
		State:          StateSelected,
		Endpoints:      []string{"flappy-bird", "weather"},
		ActiveEndpoint: "flappy-bird",
		CreatedAt:      createdAt,
	}

	fields, err := sess.Fields()
	require.NoError(t, err)
	assert.Equal(t, "selected", fields["state"])
	assert.JSONEq(t, `["flappy-bird","weather"]`, fields["endpoints"])
	assert.Equal(t, "flappy-bird", fields["active_endpoint"])

	got, err := FromFields(fields)
	require.NoError(t, err)
	assert.Equal(t, sess, got)
}

func TestFieldsOmitsAbsent(t *testing.T) {
	t.Parallel()

	sess := &Session{State: StateStart}
	fields, err := sess.Fields()
	require.NoError(t, err)

	assert.Equal(t, "start", fields["state"])
	assert.NotContains(t, fields, "endpoints")
	assert.NotContains(t, fields, "active_endpoint")
	assert.NotContains(t, fields, "created_at")
}

func TestFromFieldsInvalidState(t *testing.T) {
	t.Parallel()

	_, err := FromFields(map[string]string{"state": "bogus"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid session state")
}

func TestFromFieldsBadEndpoints(t *testing.T) {
	t.Parallel()

	_, err := FromFields(map[string]string{
		"state":     "select",
		"endpoints": "not json",
	})
	require.Error(t, err)
}

func TestStateValid(t *testing.T) {
	t.Parallel()

	for _, s := range []State{StateStart, StateSelect, StateSelected, StateBadInput} {
		assert.True(t, s.Valid(), "state %q should be valid", s)
	}
	assert.False(t, State("").Valid())
	assert.False(t, State("closed").Valid())
}
