// Package session provides the per-user dialog session model and its
// Redis-backed store. A session exists exactly while the user has an
// open dialog; absence means the next inbound starts fresh.
package session

import (
	"encoding/json"
	"fmt"
	"time"
)

// State is the position of a user's dialog in the menu flow.
type State string

// The four dialog states.
const (
	// StateStart is the synthetic state of a fresh session; the user has
	// not been shown the menu yet.
	StateStart State = "start"

	// StateSelect means the menu has been presented and the router is
	// waiting for a numeric choice.
	StateSelect State = "select"

	// StateSelected means the user chose an application and traffic is
	// being forwarded to it.
	StateSelected State = "selected"

	// StateBadInput means the last choice was invalid and the user was
	// offered a single retry option.
	StateBadInput State = "bad_input"
)

// Valid reports whether s is one of the four dialog states.
func (s State) Valid() bool {
	switch s {
	case StateStart, StateSelect, StateSelected, StateBadInput:
		return true
	}
	return false
}

// Session is a user's dialog state. Endpoints is the snapshot of the
// menu as it was presented; menu index resolution always runs against
// this snapshot, never against the live config.
type Session struct {
	State          State
	Endpoints      []string
	ActiveEndpoint string
	CreatedAt      time.Time
}

// Serialized field names, shared with every other consumer of the store.
const (
	fieldState          = "state"
	fieldEndpoints      = "endpoints"
	fieldActiveEndpoint = "active_endpoint"
	fieldCreatedAt      = "created_at"
)

// Fields serializes the session to the store's string-to-string map.
// Endpoints travel as a JSON array of strings for interop with the
// existing store contents.
func (s *Session) Fields() (map[string]string, error) {
	fields := map[string]string{
		fieldState: string(s.State),
	}
	if s.Endpoints != nil {
		data, err := json.Marshal(s.Endpoints)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal endpoints: %w", err)
		}
		fields[fieldEndpoints] = string(data)
	}
	if s.ActiveEndpoint != "" {
		fields[fieldActiveEndpoint] = s.ActiveEndpoint
	}
	if !s.CreatedAt.IsZero() {
		fields[fieldCreatedAt] = s.CreatedAt.UTC().Format(time.RFC3339)
	}
	return fields, nil
}

// FromFields deserializes a session from the store's string map.
func FromFields(fields map[string]string) (*Session, error) {
	s := &Session{}

	state := State(fields[fieldState])
	if !state.Valid() {
		return nil, fmt.Errorf("invalid session state %q", fields[fieldState])
	}
	s.State = state

	if raw, ok := fields[fieldEndpoints]; ok {
		if err := json.Unmarshal([]byte(raw), &s.Endpoints); err != nil {
			return nil, fmt.Errorf("failed to unmarshal endpoints: %w", err)
		}
	}

	s.ActiveEndpoint = fields[fieldActiveEndpoint]

	if raw, ok := fields[fieldCreatedAt]; ok {
		createdAt, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		s.CreatedAt = createdAt
	}

	return s, nil
}
