// Package message defines the wire model for user messages and delivery
// events moving through the router. Field names follow the bus wire
// format, so a message can be decoded from and re-encoded to a connector
// without translation.
package message

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// SessionEvent marks the dialog lifecycle phase a message belongs to.
type SessionEvent string

// Session events understood by the router.
const (
	SessionNew    SessionEvent = "new"
	SessionResume SessionEvent = "resume"
	SessionClose  SessionEvent = "close"
)

// EventType distinguishes the delivery events a transport can emit.
type EventType string

// Delivery event types.
const (
	EventAck            EventType = "ack"
	EventNack           EventType = "nack"
	EventDeliveryReport EventType = "delivery_report"
)

// Message is a user message travelling inbound (user to application) or
// outbound (application to user). Content is a pointer because the wire
// format distinguishes empty text from no text; a session-initiating
// USSD dial carries no content at all.
type Message struct {
	MessageID       string         `json:"message_id"`
	FromAddr        string         `json:"from_addr"`
	ToAddr          string         `json:"to_addr"`
	Content         *string        `json:"content"`
	SessionEvent    SessionEvent   `json:"session_event,omitempty"`
	RoutingEndpoint string         `json:"routing_endpoint,omitempty"`
	InReplyTo       string         `json:"in_reply_to,omitempty"`
	TransportName   string         `json:"transport_name,omitempty"`
	HelperMetadata  map[string]any `json:"helper_metadata,omitempty"`
}

// Event is an asynchronous delivery notification (ack/nack/report) for a
// previously sent outbound message.
type Event struct {
	EventID         string    `json:"event_id"`
	EventType       EventType `json:"event_type"`
	UserMessageID   string    `json:"user_message_id"`
	RoutingEndpoint string    `json:"routing_endpoint,omitempty"`
}

// DefaultEndpoint is the endpoint a message travels on when none is set.
const DefaultEndpoint = "default"

// New creates an inbound message with a fresh message id.
func New(fromAddr, toAddr string, content *string, event SessionEvent) *Message {
	return &Message{
		MessageID:    uuid.NewString(),
		FromAddr:     fromAddr,
		ToAddr:       toAddr,
		Content:      content,
		SessionEvent: event,
	}
}

// Text is a convenience for building Content values.
func Text(s string) *string {
	return &s
}

// ContentText returns the message content, or "" when there is none.
func (m *Message) ContentText() string {
	if m.Content == nil {
		return ""
	}
	return *m.Content
}

// RouteEndpoint returns the endpoint the message travels on, falling
// back to the default endpoint when none is set.
func (m *Message) RouteEndpoint() string {
	if m.RoutingEndpoint == "" {
		return DefaultEndpoint
	}
	return m.RoutingEndpoint
}

// Reply constructs the reply to this message: addresses swapped, a fresh
// message id, and in_reply_to pointing back at this message. When
// continueSession is false the reply closes the dialog.
func (m *Message) Reply(content string, continueSession bool) *Message {
	event := SessionResume
	if !continueSession {
		event = SessionClose
	}
	return &Message{
		MessageID:     uuid.NewString(),
		FromAddr:      m.ToAddr,
		ToAddr:        m.FromAddr,
		Content:       &content,
		SessionEvent:  event,
		InReplyTo:     m.MessageID,
		TransportName: m.TransportName,
	}
}

// Copy returns a deep copy of the message. Forwarded messages are
// mutated by the state machine (content cleared, session event rewritten)
// and must not alias the original.
func (m *Message) Copy() *Message {
	clone := *m
	if m.Content != nil {
		content := *m.Content
		clone.Content = &content
	}
	if m.HelperMetadata != nil {
		clone.HelperMetadata = make(map[string]any, len(m.HelperMetadata))
		for k, v := range m.HelperMetadata {
			clone.HelperMetadata[k] = v
		}
	}
	return &clone
}

// SetHelperMetadata attaches channel-specific decoration under the given
// namespace, allocating the metadata map on first use.
func (m *Message) SetHelperMetadata(namespace string, payload any) {
	if m.HelperMetadata == nil {
		m.HelperMetadata = make(map[string]any, 1)
	}
	m.HelperMetadata[namespace] = payload
}

// Marshal encodes the message for the bus.
func (m *Message) Marshal() ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}
	return data, nil
}

// UnmarshalMessage decodes a message from its bus representation.
func UnmarshalMessage(data []byte) (*Message, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal message: %w", err)
	}
	return &m, nil
}

// Marshal encodes the event for the bus.
func (e *Event) Marshal() ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}
	return data, nil
}

// UnmarshalEvent decodes an event from its bus representation.
func UnmarshalEvent(data []byte) (*Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event: %w", err)
	}
	return &e, nil
}
