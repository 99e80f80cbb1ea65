// Package routing implements the immutable routing table mapping a
// (connector, endpoint) pair to the peer it forwards to. The table is
// rebuilt whenever the dynamic configuration reloads; at runtime it is
// lookup-only.
package routing

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Target is the destination side of a route.
type Target struct {
	Connector string
	Endpoint  string
}

// UnmarshalYAML decodes a target from the wire form, a two-element list
// [connector, endpoint].
func (t *Target) UnmarshalYAML(value *yaml.Node) error {
	var pair []string
	if err := value.Decode(&pair); err != nil {
		return fmt.Errorf("routing target must be a [connector, endpoint] list: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("routing target must have exactly 2 elements, got %d", len(pair))
	}
	t.Connector = pair[0]
	t.Endpoint = pair[1]
	return nil
}

// MarshalYAML encodes a target back to its [connector, endpoint] form.
func (t Target) MarshalYAML() (any, error) {
	return []string{t.Connector, t.Endpoint}, nil
}

// Table maps connector -> endpoint -> target. A missing key at either
// level is a soft failure: the caller drops the message and logs.
type Table map[string]map[string]Target

// Resolve looks up the target for a (connector, endpoint) pair.
func (t Table) Resolve(connector, endpoint string) (Target, bool) {
	endpoints, ok := t[connector]
	if !ok {
		return Target{}, false
	}
	target, ok := endpoints[endpoint]
	return target, ok
}

// Validate checks that the table is non-empty and every target names
// both a connector and an endpoint.
func (t Table) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("routing table cannot be empty")
	}
	for connector, endpoints := range t {
		if connector == "" {
			return fmt.Errorf("routing table connector name cannot be empty")
		}
		if len(endpoints) == 0 {
			return fmt.Errorf("routing table for connector %q has no endpoints", connector)
		}
		for endpoint, target := range endpoints {
			if endpoint == "" {
				return fmt.Errorf("routing table for connector %q has an empty endpoint name", connector)
			}
			if target.Connector == "" || target.Endpoint == "" {
				return fmt.Errorf("routing target for %s/%s is incomplete", connector, endpoint)
			}
		}
	}
	return nil
}
