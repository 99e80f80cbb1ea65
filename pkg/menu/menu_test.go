package menu

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	t.Parallel()

	text := Render("Please select a choice.", []string{"Flappy Bird"})
	assert.Equal(t, "Please select a choice.\n1) Flappy Bird", text)
}

func TestRenderMultipleEntries(t *testing.T) {
	t.Parallel()

	text := Render("Pick one", []string{"Weather", "News", "Sports"})
	assert.Equal(t, "Pick one\n1) Weather\n2) News\n3) Sports", text)
}

func TestRenderNoEntries(t *testing.T) {
	t.Parallel()

	// Degenerate menu: title only. Config validation refuses empty
	// entries upstream, but Render itself stays total.
	assert.Equal(t, "Pick one", Render("Pick one", nil))
}

func TestParseChoice(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		lo, hi  int
		want    int
		ok      bool
	}{
		{name: "in range", content: "2", lo: 1, hi: 3, want: 2, ok: true},
		{name: "lower bound", content: "1", lo: 1, hi: 3, want: 1, ok: true},
		{name: "upper bound", content: "3", lo: 1, hi: 3, want: 3, ok: true},
		{name: "below range", content: "0", lo: 1, hi: 3, ok: false},
		{name: "above range", content: "4", lo: 1, hi: 3, ok: false},
		{name: "surrounding whitespace", content: "  2 \n", lo: 1, hi: 3, want: 2, ok: true},
		{name: "not a number", content: "foo", lo: 1, hi: 3, ok: false},
		{name: "empty", content: "", lo: 1, hi: 3, ok: false},
		{name: "decimal", content: "1.5", lo: 1, hi: 3, ok: false},
		{name: "negative", content: "-1", lo: 1, hi: 3, ok: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, ok := ParseChoice(tc.content, tc.lo, tc.hi)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, tc.want, got)
			}
		})
	}
}

func TestParseChoiceRoundTrip(t *testing.T) {
	t.Parallel()

	// parse(format(n)) == n exactly when n is within bounds.
	for n := -2; n <= 12; n++ {
		got, ok := ParseChoice(fmt.Sprintf("%d", n), 1, 10)
		if n >= 1 && n <= 10 {
			require.True(t, ok, "expected %d to parse", n)
			assert.Equal(t, n, got)
		} else {
			assert.False(t, ok, "expected %d to be rejected", n)
		}
	}
}

func TestChooseEndpoint(t *testing.T) {
	t.Parallel()

	endpoints := []string{"flappy-bird", "weather"}

	endpoint, ok := ChooseEndpoint("1", endpoints)
	require.True(t, ok)
	assert.Equal(t, "flappy-bird", endpoint)

	endpoint, ok = ChooseEndpoint("2", endpoints)
	require.True(t, ok)
	assert.Equal(t, "weather", endpoint)

	_, ok = ChooseEndpoint("3", endpoints)
	assert.False(t, ok)

	_, ok = ChooseEndpoint("bogus", endpoints)
	assert.False(t, ok)

	_, ok = ChooseEndpoint("1", nil)
	assert.False(t, ok)
}
