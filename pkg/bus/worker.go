package bus

import (
	"context"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"
	"golang.org/x/sync/errgroup"

	"github.com/vxgo/approuter/pkg/config"
	"github.com/vxgo/approuter/pkg/engine"
	"github.com/vxgo/approuter/pkg/message"
)

// Worker is the dispatcher shell: it consumes the connector streams the
// static config names and feeds them to the engine with a fresh dynamic
// config snapshot per message.
//
// Inbound connectors (the transport side) contribute their inbound and
// event streams; outbound connectors (the application side) contribute
// their outbound stream. Events are consumed from the transport side
// because that is where acks and delivery reports originate.
type Worker struct {
	bus      *AMQPBus
	engine   *engine.Engine
	provider config.Provider
	static   *config.Static
	log      *slog.Logger
}

// NewWorker wires the dispatcher shell.
func NewWorker(b *AMQPBus, e *engine.Engine, provider config.Provider, static *config.Static, log *slog.Logger) *Worker {
	return &Worker{bus: b, engine: e, provider: provider, static: static, log: log}
}

// Run consumes all configured streams until ctx is done or a consumer
// fails.
func (w *Worker) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	for _, connector := range w.static.InboundConnectors {
		inbound, err := w.bus.Consume(connector, streamInbound)
		if err != nil {
			return err
		}
		events, err := w.bus.Consume(connector, streamEvent)
		if err != nil {
			return err
		}

		g.Go(func() error { return w.consumeInbound(ctx, connector, inbound) })
		g.Go(func() error { return w.consumeEvents(ctx, connector, events) })
	}

	for _, connector := range w.static.OutboundConnectors {
		outbound, err := w.bus.Consume(connector, streamOutbound)
		if err != nil {
			return err
		}
		g.Go(func() error { return w.consumeOutbound(ctx, connector, outbound) })
	}

	return g.Wait()
}

func (w *Worker) consumeInbound(ctx context.Context, connector string, deliveries <-chan amqp.Delivery) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return nil
			}
			msg, err := message.UnmarshalMessage(d.Body)
			if err != nil {
				w.log.Warn("discarding undecodable inbound",
					"connector", connector, "error", err)
				_ = d.Ack(false)
				continue
			}
			if err := w.engine.ProcessInbound(ctx, w.provider.Snapshot(), msg, connector); err != nil {
				// Already recovered inside the engine; nothing to retry.
				w.log.Error("inbound abandoned",
					"connector", connector, "message_id", msg.MessageID, "error", err)
			}
			_ = d.Ack(false)
		}
	}
}

func (w *Worker) consumeOutbound(ctx context.Context, connector string, deliveries <-chan amqp.Delivery) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return nil
			}
			msg, err := message.UnmarshalMessage(d.Body)
			if err != nil {
				w.log.Warn("discarding undecodable outbound",
					"connector", connector, "error", err)
				_ = d.Ack(false)
				continue
			}
			if err := w.engine.ProcessOutbound(ctx, w.provider.Snapshot(), msg, connector); err != nil {
				w.log.Error("outbound failed",
					"connector", connector, "message_id", msg.MessageID, "error", err)
			}
			_ = d.Ack(false)
		}
	}
}

func (w *Worker) consumeEvents(ctx context.Context, connector string, deliveries <-chan amqp.Delivery) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return nil
			}
			ev, err := message.UnmarshalEvent(d.Body)
			if err != nil {
				w.log.Warn("discarding undecodable event",
					"connector", connector, "error", err)
				_ = d.Ack(false)
				continue
			}
			if err := w.engine.ProcessEvent(ctx, w.provider.Snapshot(), ev, connector); err != nil {
				w.log.Error("event failed",
					"connector", connector, "event_id", ev.EventID, "error", err)
			}
			_ = d.Ack(false)
		}
	}
}
