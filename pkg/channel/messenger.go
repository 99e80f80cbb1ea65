package channel

import (
	"strconv"

	"github.com/vxgo/approuter/pkg/config"
	"github.com/vxgo/approuter/pkg/message"
	"github.com/vxgo/approuter/pkg/session"
)

// metadataNamespace is the helper_metadata key the messenger transport
// reads rich templates from.
const metadataNamespace = "messenger"

// maxButtons is the most options a messenger button template can carry.
// Menus larger than this fall back to plain text.
const maxButtons = 3

// Messenger decorates the base replies with a button template when the
// menu is small enough to render as buttons. The text body is unchanged,
// so transports without template support still show a usable menu.
type Messenger struct {
	base Base
}

// NewMessenger returns the messenger reply builder.
func NewMessenger() *Messenger {
	return &Messenger{}
}

// buttonTemplate is the template payload understood by the messenger
// transport.
type buttonTemplate struct {
	TemplateType string   `json:"template_type"`
	Text         string   `json:"text"`
	Buttons      []button `json:"buttons"`
}

type button struct {
	Title   string `json:"title"`
	Payload string `json:"payload"`
}

// FirstReply builds the menu reply, attaching a button template when the
// menu fits.
func (m *Messenger) FirstReply(cfg *config.Dynamic, sess *session.Session, msg *message.Message) *message.Message {
	reply := m.base.FirstReply(cfg, sess, msg)
	if len(cfg.Entries) > maxButtons {
		return reply
	}

	buttons := make([]button, len(cfg.Entries))
	for i, entry := range cfg.Entries {
		buttons[i] = button{Title: entry.Label, Payload: strconv.Itoa(i + 1)}
	}
	reply.SetHelperMetadata(metadataNamespace, buttonTemplate{
		TemplateType: "button",
		Text:         cfg.MenuTitle,
		Buttons:      buttons,
	})
	return reply
}

// InvalidInputReply builds the warning reply with a single retry button.
func (m *Messenger) InvalidInputReply(cfg *config.Dynamic, sess *session.Session, msg *message.Message) *message.Message {
	reply := m.base.InvalidInputReply(cfg, sess, msg)
	reply.SetHelperMetadata(metadataNamespace, buttonTemplate{
		TemplateType: "button",
		Text:         cfg.InvalidInputMessage,
		Buttons:      []button{{Title: cfg.TryAgainMessage, Payload: "1"}},
	})
	return reply
}

// Compile-time interface compliance check
var _ ReplyBuilder = (*Messenger)(nil)
