package routing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestResolve(t *testing.T) {
	t.Parallel()

	table := Table{
		"transport": {
			"flappy-bird": {Connector: "app1", Endpoint: "default"},
			"default":     {Connector: "transport", Endpoint: "default"},
		},
	}

	target, ok := table.Resolve("transport", "flappy-bird")
	require.True(t, ok)
	assert.Equal(t, Target{Connector: "app1", Endpoint: "default"}, target)

	_, ok = table.Resolve("transport", "missing-endpoint")
	assert.False(t, ok, "unknown endpoint should miss")

	_, ok = table.Resolve("missing-connector", "flappy-bird")
	assert.False(t, ok, "unknown connector should miss")
}

func TestUnmarshalYAML(t *testing.T) {
	t.Parallel()

	var table Table
	err := yaml.Unmarshal([]byte(`
transport:
  flappy-bird: [app1, default]
app1:
  default: [transport, default]
`), &table)
	require.NoError(t, err)

	target, ok := table.Resolve("transport", "flappy-bird")
	require.True(t, ok)
	assert.Equal(t, "app1", target.Connector)
	assert.Equal(t, "default", target.Endpoint)

	target, ok = table.Resolve("app1", "default")
	require.True(t, ok)
	assert.Equal(t, "transport", target.Connector)
}

func TestUnmarshalYAMLBadTarget(t *testing.T) {
	t.Parallel()

	var table Table
	err := yaml.Unmarshal([]byte(`
transport:
  flappy-bird: [app1]
`), &table)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exactly 2 elements")
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		table   Table
		wantErr string
	}{
		{
			name: "valid",
			table: Table{
				"transport": {"flappy-bird": {Connector: "app1", Endpoint: "default"}},
			},
		},
		{
			name:    "empty table",
			table:   Table{},
			wantErr: "cannot be empty",
		},
		{
			name:    "connector without endpoints",
			table:   Table{"transport": {}},
			wantErr: "no endpoints",
		},
		{
			name: "incomplete target",
			table: Table{
				"transport": {"flappy-bird": {Connector: "app1"}},
			},
			wantErr: "incomplete",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := tc.table.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
			}
		})
	}
}
