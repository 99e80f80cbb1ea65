// Package fsm implements the per-user menu state machine. Each handler
// is a pure function of the current config, the session, and the inbound
// message; all I/O belongs to the lifecycle engine driving the machine.
package fsm

import (
	"context"
	"fmt"

	"github.com/vxgo/approuter/pkg/channel"
	"github.com/vxgo/approuter/pkg/config"
	"github.com/vxgo/approuter/pkg/errors"
	"github.com/vxgo/approuter/pkg/menu"
	"github.com/vxgo/approuter/pkg/message"
	"github.com/vxgo/approuter/pkg/session"
)

// InboundForward is a message the router forwards to an application,
// addressed by endpoint name. The routing table resolves the endpoint to
// a concrete (connector, endpoint) target later.
type InboundForward struct {
	Msg      *message.Message
	Endpoint string
}

// Update is the partial session patch a handler requests. Nil or empty
// fields leave the session unchanged.
type Update struct {
	Endpoints      []string
	ActiveEndpoint string
}

// Response bundles a handler's outcome: the state to move to, the
// session patch, and the messages to route. An empty NextState
// terminates the session.
type Response struct {
	NextState session.State
	Update    Update
	Inbound   []InboundForward
	Outbound  []*message.Message
}

// Terminal reports whether the response ends the session.
func (r *Response) Terminal() bool {
	return r.NextState == ""
}

// Handler processes one inbound message in a given state. Handlers take
// a context because the engine treats every handler as a suspension
// point; tests hook this to inject pauses and faults.
type Handler func(ctx context.Context, cfg *config.Dynamic, sess *session.Session, msg *message.Message) (*Response, error)

// Machine dispatches inbound messages to the handler for the session's
// current state.
type Machine struct {
	replies  channel.ReplyBuilder
	handlers map[session.State]Handler
}

// NewMachine builds a state machine using the given reply builder for
// the router-authored menu and warning replies.
func NewMachine(replies channel.ReplyBuilder) *Machine {
	m := &Machine{replies: replies}
	m.handlers = map[session.State]Handler{
		session.StateStart:    m.handleStart,
		session.StateSelect:   m.handleSelect,
		session.StateSelected: m.handleSelected,
		session.StateBadInput: m.handleBadInput,
	}
	return m
}

// Handle runs the handler for the session's current state.
func (m *Machine) Handle(ctx context.Context, cfg *config.Dynamic, sess *session.Session, msg *message.Message) (*Response, error) {
	handler, ok := m.handlers[sess.State]
	if !ok {
		return nil, errors.NewInternalError(fmt.Sprintf("no handler for session state %q", sess.State), nil)
	}
	return handler(ctx, cfg, sess, msg)
}

// handleStart presents the menu. The endpoints on offer are snapshotted
// into the session; choice resolution in select runs against that
// snapshot, so a config change between render and reply cannot shift the
// numbering under the user.
func (m *Machine) handleStart(_ context.Context, cfg *config.Dynamic, sess *session.Session, msg *message.Message) (*Response, error) {
	return &Response{
		NextState: session.StateSelect,
		Update:    Update{Endpoints: cfg.MenuEndpoints()},
		Outbound:  []*message.Message{m.replies.FirstReply(cfg, sess, msg)},
	}, nil
}

// handleSelect resolves the user's numeric choice against the session's
// menu snapshot.
func (m *Machine) handleSelect(_ context.Context, cfg *config.Dynamic, sess *session.Session, msg *message.Message) (*Response, error) {
	endpoint, ok := menu.ChooseEndpoint(msg.ContentText(), sess.Endpoints)
	if !ok {
		return &Response{
			NextState: session.StateBadInput,
			Outbound:  []*message.Message{m.replies.InvalidInputReply(cfg, sess, msg)},
		}, nil
	}

	if _, live := cfg.TargetEndpoints()[endpoint]; !live {
		// Config drift: the chosen application was removed between menu
		// presentation and selection. The dialog cannot continue.
		return &Response{
			Outbound: []*message.Message{msg.Reply(cfg.ErrorMessage, false)},
		}, nil
	}

	// The application sees a synthetic session start, not the digit the
	// user typed to pick it.
	forward := msg.Copy()
	forward.Content = nil
	forward.SessionEvent = message.SessionNew

	return &Response{
		NextState: session.StateSelected,
		Update:    Update{ActiveEndpoint: endpoint},
		Inbound:   []InboundForward{{Msg: forward, Endpoint: endpoint}},
	}, nil
}

// handleSelected forwards traffic to the chosen application for as long
// as the current config still offers it.
func (m *Machine) handleSelected(_ context.Context, cfg *config.Dynamic, sess *session.Session, msg *message.Message) (*Response, error) {
	if _, live := cfg.TargetEndpoints()[sess.ActiveEndpoint]; !live {
		return &Response{
			Outbound: []*message.Message{msg.Reply(cfg.ErrorMessage, false)},
		}, nil
	}

	return &Response{
		NextState: session.StateSelected,
		Inbound:   []InboundForward{{Msg: msg, Endpoint: sess.ActiveEndpoint}},
	}, nil
}

// handleBadInput offers a single retry option. Anything but "1" repeats
// the warning; "1" re-presents the menu exactly as start would.
func (m *Machine) handleBadInput(ctx context.Context, cfg *config.Dynamic, sess *session.Session, msg *message.Message) (*Response, error) {
	if _, ok := menu.ParseChoice(msg.ContentText(), 1, 1); !ok {
		return &Response{
			NextState: session.StateBadInput,
			Outbound:  []*message.Message{m.replies.InvalidInputReply(cfg, sess, msg)},
		}, nil
	}
	return m.handleStart(ctx, cfg, sess, msg)
}
