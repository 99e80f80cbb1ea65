package logger

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnstructuredLogs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value string
		want  bool
	}{
		{"true", true},
		{"false", false},
		{"1", true},
		{"0", false},
		{"", true},
		{"nonsense", true},
	}
	for _, tt := range tests {
		getenv := func(string) string { return tt.value }
		assert.Equal(t, tt.want, unstructuredLogs(getenv), "UNSTRUCTURED_LOGS=%q", tt.value)
	}
}

func TestSingletonHelpers(t *testing.T) {
	var buf bytes.Buffer
	old := Get()
	defer Set(old)

	Set(slog.New(slog.NewTextHandler(&buf, nil)))

	Infow("routing message", "connector", "transport")
	assert.Contains(t, buf.String(), "routing message")
	assert.Contains(t, buf.String(), "connector=transport")

	buf.Reset()
	Warnf("dropped %d messages", 3)
	assert.Contains(t, buf.String(), "dropped 3 messages")
}
