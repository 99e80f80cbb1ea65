// Package engine implements the session lifecycle around the state
// machine: loading and persisting sessions, routing the machine's
// forwards, correlating outbounds for late events, and recovering from
// handler and store failures.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vxgo/approuter/pkg/config"
	"github.com/vxgo/approuter/pkg/correlation"
	"github.com/vxgo/approuter/pkg/fsm"
	"github.com/vxgo/approuter/pkg/message"
	"github.com/vxgo/approuter/pkg/metrics"
	"github.com/vxgo/approuter/pkg/session"
)

// Publisher is the bus surface the engine publishes resolved messages
// to. Implementations set the message's routing endpoint to the target
// endpoint before handing it to the wire.
type Publisher interface {
	PublishInbound(ctx context.Context, msg *message.Message, connector, endpoint string) error
	PublishOutbound(ctx context.Context, msg *message.Message, connector, endpoint string) error
	PublishEvent(ctx context.Context, ev *message.Event, connector, endpoint string) error
}

// Engine drives the per-user state machine and owns all I/O around it.
type Engine struct {
	store   session.Store
	cache   correlation.Cache
	machine *fsm.Machine
	pub     Publisher
	metrics *metrics.Metrics
	log     *slog.Logger
	locks   *userLocks
}

// New assembles a lifecycle engine.
func New(store session.Store, cache correlation.Cache, machine *fsm.Machine,
	pub Publisher, m *metrics.Metrics, log *slog.Logger) *Engine {
	return &Engine{
		store:   store,
		cache:   cache,
		machine: machine,
		pub:     pub,
		metrics: m,
		log:     log,
		locks:   newUserLocks(),
	}
}

// ProcessInbound handles one user message arriving from the transport
// side. The whole load/handle/save/forward cycle runs under the user's
// lock, so a user's messages are handled strictly one after another.
//
// A failure anywhere in the cycle is recovered here: the session is
// cleared and the user gets the configured error message. The returned
// error reports the original failure for logging; the caller has nothing
// left to do about it.
func (e *Engine) ProcessInbound(ctx context.Context, cfg *config.Dynamic, msg *message.Message, sourceConnector string) error {
	user := msg.FromAddr
	release := e.locks.acquire(user)
	defer release()

	if err := e.handleInbound(ctx, cfg, msg, sourceConnector); err != nil {
		e.metrics.HandlerErrors.Inc()
		e.log.Error("inbound handling failed, recovering",
			"user", user, "message_id", msg.MessageID, "error", err)
		e.recoverInbound(ctx, cfg, msg, sourceConnector)
		return err
	}
	return nil
}

func (e *Engine) handleInbound(ctx context.Context, cfg *config.Dynamic, msg *message.Message, sourceConnector string) error {
	user := msg.FromAddr

	sess, err := e.store.Load(ctx, user)
	if err != nil {
		return err
	}

	switch {
	case sess == nil || msg.SessionEvent == message.SessionNew:
		// First contact, or the transport explicitly opened a new
		// dialog: any leftover state is discarded.
		sess = &session.Session{State: session.StateStart}
		if err := e.store.Create(ctx, user, sess); err != nil {
			return err
		}
		e.metrics.SessionsCreated.Inc()
	case msg.SessionEvent == message.SessionClose:
		return e.closeSession(ctx, cfg, sess, msg, sourceConnector)
	}

	resp, err := e.machine.Handle(ctx, cfg, sess, msg)
	if err != nil {
		return err
	}

	if resp.Terminal() {
		if err := e.store.Clear(ctx, user); err != nil {
			return err
		}
		e.metrics.SessionsCleared.Inc()
	} else {
		if resp.Update.Endpoints != nil {
			sess.Endpoints = resp.Update.Endpoints
		}
		if resp.Update.ActiveEndpoint != "" {
			sess.ActiveEndpoint = resp.Update.ActiveEndpoint
		}
		sess.State = resp.NextState
		if err := e.store.Save(ctx, user, sess); err != nil {
			return err
		}
	}

	// Forwards are emitted in response order, inbounds before outbounds.
	for _, fwd := range resp.Inbound {
		if err := e.forwardInbound(ctx, cfg, fwd.Msg, sourceConnector, fwd.Endpoint); err != nil {
			return err
		}
	}
	for _, out := range resp.Outbound {
		// Outbounds go through ProcessOutbound so replies share the
		// routing and correlation path with application traffic. The
		// outbound path never calls handlers, so this cannot recurse.
		if err := e.ProcessOutbound(ctx, cfg, out, sourceConnector); err != nil {
			return err
		}
	}
	return nil
}

// closeSession handles an inbound close. If the user was attached to an
// application that is still configured, the application is told about
// the close; the session is cleared either way.
func (e *Engine) closeSession(ctx context.Context, cfg *config.Dynamic, sess *session.Session, msg *message.Message, sourceConnector string) error {
	if sess.State == session.StateSelected {
		if _, live := cfg.TargetEndpoints()[sess.ActiveEndpoint]; live {
			if err := e.forwardInbound(ctx, cfg, msg, sourceConnector, sess.ActiveEndpoint); err != nil {
				return err
			}
		}
	}

	if err := e.store.Clear(ctx, msg.FromAddr); err != nil {
		return err
	}
	e.metrics.SessionsCleared.Inc()
	return nil
}

// forwardInbound routes a message toward an application. The target
// endpoint chosen by the state machine overrides whatever routing
// endpoint the message itself carries. A routing miss drops the message
// with a warning and is not an error.
func (e *Engine) forwardInbound(ctx context.Context, cfg *config.Dynamic, msg *message.Message, sourceConnector, endpoint string) error {
	target, ok := cfg.RoutingTable.Resolve(sourceConnector, endpoint)
	if !ok {
		e.log.Warn("no route for inbound, dropping",
			"connector", sourceConnector, "endpoint", endpoint,
			"message_id", msg.MessageID)
		e.metrics.Dropped.WithLabelValues(metrics.ReasonNoRoute).Inc()
		return nil
	}

	msg.RoutingEndpoint = target.Endpoint
	if err := e.pub.PublishInbound(ctx, msg, target.Connector, target.Endpoint); err != nil {
		return fmt.Errorf("failed to publish inbound to %s/%s: %w", target.Connector, target.Endpoint, err)
	}
	e.metrics.Routed.WithLabelValues(metrics.DirectionInbound).Inc()
	return nil
}

// ProcessOutbound handles a message travelling toward the user, whether
// authored by an application or by the router itself. The message id is
// correlated to the user before publishing so a delivery event can find
// its way back even days later.
func (e *Engine) ProcessOutbound(ctx context.Context, cfg *config.Dynamic, msg *message.Message, sourceConnector string) error {
	user := msg.ToAddr

	sess, err := e.store.Load(ctx, user)
	if err != nil {
		return err
	}
	if sess != nil && msg.SessionEvent == message.SessionClose {
		if err := e.store.Clear(ctx, user); err != nil {
			return err
		}
		e.metrics.SessionsCleared.Inc()
	}

	if err := e.cache.Put(ctx, msg.MessageID, user); err != nil {
		return err
	}

	target, ok := cfg.RoutingTable.Resolve(sourceConnector, msg.RouteEndpoint())
	if !ok {
		e.log.Warn("no route for outbound, dropping",
			"connector", sourceConnector, "endpoint", msg.RouteEndpoint(),
			"message_id", msg.MessageID)
		e.metrics.Dropped.WithLabelValues(metrics.ReasonNoRoute).Inc()
		return nil
	}

	msg.RoutingEndpoint = target.Endpoint
	if err := e.pub.PublishOutbound(ctx, msg, target.Connector, target.Endpoint); err != nil {
		return fmt.Errorf("failed to publish outbound to %s/%s: %w", target.Connector, target.Endpoint, err)
	}
	e.metrics.Routed.WithLabelValues(metrics.DirectionOutbound).Inc()
	return nil
}

// ProcessEvent routes a delivery event back to the application the user
// is attached to. Events that can no longer be correlated, or whose user
// has no active endpoint anymore, are dropped with a log line.
func (e *Engine) ProcessEvent(ctx context.Context, cfg *config.Dynamic, ev *message.Event, sourceConnector string) error {
	user, err := e.cache.Get(ctx, ev.UserMessageID)
	if err != nil {
		if errors.Is(err, correlation.ErrNotFound) {
			e.log.Warn("no correlation for event, dropping",
				"event_id", ev.EventID, "user_message_id", ev.UserMessageID)
			e.metrics.Dropped.WithLabelValues(metrics.ReasonNoCorrelation).Inc()
			return nil
		}
		return err
	}

	sess, err := e.store.Load(ctx, user)
	if err != nil {
		return err
	}
	if sess == nil || sess.ActiveEndpoint == "" {
		e.log.Warn("no active endpoint for event, dropping",
			"event_id", ev.EventID, "user", user)
		e.metrics.Dropped.WithLabelValues(metrics.ReasonNoSession).Inc()
		return nil
	}

	target, ok := cfg.RoutingTable.Resolve(sourceConnector, sess.ActiveEndpoint)
	if !ok {
		e.log.Warn("no route for event, dropping",
			"connector", sourceConnector, "endpoint", sess.ActiveEndpoint,
			"event_id", ev.EventID)
		e.metrics.Dropped.WithLabelValues(metrics.ReasonNoRoute).Inc()
		return nil
	}

	ev.RoutingEndpoint = target.Endpoint
	if err := e.pub.PublishEvent(ctx, ev, target.Connector, target.Endpoint); err != nil {
		return fmt.Errorf("failed to publish event to %s/%s: %w", target.Connector, target.Endpoint, err)
	}
	e.metrics.Routed.WithLabelValues(metrics.DirectionEvent).Inc()
	return nil
}

// recoverInbound is the error path for ProcessInbound: clear whatever
// session state is left and tell the user to start over. Failures here
// only log; the inbound is abandoned regardless.
func (e *Engine) recoverInbound(ctx context.Context, cfg *config.Dynamic, msg *message.Message, sourceConnector string) {
	if err := e.store.Clear(ctx, msg.FromAddr); err != nil {
		e.log.Error("failed to clear session during recovery",
			"user", msg.FromAddr, "error", err)
	} else {
		e.metrics.SessionsCleared.Inc()
	}

	reply := msg.Reply(cfg.ErrorMessage, false)
	if err := e.ProcessOutbound(ctx, cfg, reply, sourceConnector); err != nil {
		e.log.Error("failed to send error reply during recovery",
			"user", msg.FromAddr, "error", err)
	}
}
