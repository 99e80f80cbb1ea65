package bus

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/vxgo/approuter/pkg/message"
)

// Stream suffixes on the bus routing keys: "<connector>.<stream>".
const (
	streamInbound  = "inbound"
	streamOutbound = "outbound"
	streamEvent    = "event"
)

// AMQPBus publishes and consumes router traffic over a direct AMQP
// exchange. One routing key per connector stream, JSON message bodies.
type AMQPBus struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

// DialAMQP connects to the broker and declares the exchange.
func DialAMQP(url, exchange string) (*AMQPBus, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to amqp broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open amqp channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchange, "direct", true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}

	return &AMQPBus{conn: conn, ch: ch, exchange: exchange}, nil
}

// Close shuts down the channel and connection.
func (b *AMQPBus) Close() error {
	if err := b.ch.Close(); err != nil {
		_ = b.conn.Close()
		return err
	}
	return b.conn.Close()
}

func routingKey(connector, stream string) string {
	return fmt.Sprintf("%s.%s", connector, stream)
}

func (b *AMQPBus) publish(ctx context.Context, key string, body []byte) error {
	return b.ch.PublishWithContext(ctx, b.exchange, key, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
}

// PublishInbound sends a message down a connector's inbound stream.
func (b *AMQPBus) PublishInbound(ctx context.Context, msg *message.Message, connector, _ string) error {
	body, err := msg.Marshal()
	if err != nil {
		return err
	}
	return b.publish(ctx, routingKey(connector, streamInbound), body)
}

// PublishOutbound sends a message down a connector's outbound stream.
func (b *AMQPBus) PublishOutbound(ctx context.Context, msg *message.Message, connector, _ string) error {
	body, err := msg.Marshal()
	if err != nil {
		return err
	}
	return b.publish(ctx, routingKey(connector, streamOutbound), body)
}

// PublishEvent sends an event down a connector's event stream.
func (b *AMQPBus) PublishEvent(ctx context.Context, ev *message.Event, connector, _ string) error {
	body, err := ev.Marshal()
	if err != nil {
		return err
	}
	return b.publish(ctx, routingKey(connector, streamEvent), body)
}

// Consume declares and binds the queue for one connector stream and
// starts delivering from it. Deliveries must be acked by the caller.
func (b *AMQPBus) Consume(connector, stream string) (<-chan amqp.Delivery, error) {
	key := routingKey(connector, stream)

	queue, err := b.ch.QueueDeclare(key, true, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to declare queue %s: %w", key, err)
	}
	if err := b.ch.QueueBind(queue.Name, key, b.exchange, false, nil); err != nil {
		return nil, fmt.Errorf("failed to bind queue %s: %w", key, err)
	}

	deliveries, err := b.ch.Consume(queue.Name, "", false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to consume from %s: %w", key, err)
	}
	return deliveries, nil
}
