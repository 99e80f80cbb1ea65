// Package channel holds the per-channel reply construction hook. The
// base builder produces plain text; channel variants may decorate the
// reply's helper_metadata with rich payloads, but must preserve the base
// text and return the same message identity.
package channel

import (
	"fmt"

	"github.com/vxgo/approuter/pkg/config"
	"github.com/vxgo/approuter/pkg/menu"
	"github.com/vxgo/approuter/pkg/message"
	"github.com/vxgo/approuter/pkg/session"
)

// ReplyBuilder constructs the two router-authored replies: the menu
// shown on first contact and the warning after invalid input. The
// builder is a strategy selected at worker construction.
type ReplyBuilder interface {
	// FirstReply builds the menu reply to msg.
	FirstReply(cfg *config.Dynamic, sess *session.Session, msg *message.Message) *message.Message

	// InvalidInputReply builds the bad-choice warning reply to msg.
	InvalidInputReply(cfg *config.Dynamic, sess *session.Session, msg *message.Message) *message.Message
}

// Base is the plain-text builder used for USSD and any channel without
// rich rendering.
type Base struct{}

// NewBase returns the plain-text reply builder.
func NewBase() *Base {
	return &Base{}
}

// FirstReply renders the numbered menu as text.
func (*Base) FirstReply(cfg *config.Dynamic, _ *session.Session, msg *message.Message) *message.Message {
	return msg.Reply(menu.Render(cfg.MenuTitle, cfg.MenuLabels()), true)
}

// InvalidInputReply renders the warning with its single retry option.
func (*Base) InvalidInputReply(cfg *config.Dynamic, _ *session.Session, msg *message.Message) *message.Message {
	content := fmt.Sprintf("%s\n\n1. %s", cfg.InvalidInputMessage, cfg.TryAgainMessage)
	return msg.Reply(content, true)
}

// Compile-time interface compliance check
var _ ReplyBuilder = (*Base)(nil)
