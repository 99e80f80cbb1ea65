// Package bus binds the lifecycle engine to the message bus. It carries
// two implementations of the publish surface: an in-memory bus for tests
// and local development, and an AMQP connector for deployment.
package bus

import (
	"context"
	"sync"

	"github.com/vxgo/approuter/pkg/message"
)

// PublishedMessage records one published message with its resolved target.
type PublishedMessage struct {
	Msg       *message.Message
	Connector string
	Endpoint  string
}

// PublishedEvent records one published event with its resolved target.
type PublishedEvent struct {
	Event     *message.Event
	Connector string
	Endpoint  string
}

// MemoryBus collects published traffic in memory. Safe for concurrent use.
type MemoryBus struct {
	mu       sync.Mutex
	inbound  []PublishedMessage
	outbound []PublishedMessage
	events   []PublishedEvent
}

// NewMemoryBus creates an empty in-memory bus.
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{}
}

// PublishInbound records an inbound forward.
func (b *MemoryBus) PublishInbound(_ context.Context, msg *message.Message, connector, endpoint string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.inbound = append(b.inbound, PublishedMessage{Msg: msg, Connector: connector, Endpoint: endpoint})
	return nil
}

// PublishOutbound records an outbound forward.
func (b *MemoryBus) PublishOutbound(_ context.Context, msg *message.Message, connector, endpoint string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.outbound = append(b.outbound, PublishedMessage{Msg: msg, Connector: connector, Endpoint: endpoint})
	return nil
}

// PublishEvent records a routed event.
func (b *MemoryBus) PublishEvent(_ context.Context, ev *message.Event, connector, endpoint string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, PublishedEvent{Event: ev, Connector: connector, Endpoint: endpoint})
	return nil
}

// Inbound returns a snapshot of the inbound forwards published so far.
func (b *MemoryBus) Inbound() []PublishedMessage {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]PublishedMessage(nil), b.inbound...)
}

// Outbound returns a snapshot of the outbound forwards published so far.
func (b *MemoryBus) Outbound() []PublishedMessage {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]PublishedMessage(nil), b.outbound...)
}

// Events returns a snapshot of the events published so far.
func (b *MemoryBus) Events() []PublishedEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]PublishedEvent(nil), b.events...)
}

// Reset discards everything recorded so far.
func (b *MemoryBus) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.inbound = nil
	b.outbound = nil
	b.events = nil
}
