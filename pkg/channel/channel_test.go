package channel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vxgo/approuter/pkg/config"
	"github.com/vxgo/approuter/pkg/message"
	"github.com/vxgo/approuter/pkg/session"
)

func testConfig(entries ...config.Entry) *config.Dynamic {
	cfg := config.NewDynamic()
	cfg.InvalidInputMessage = "Bad choice."
	cfg.Entries = entries
	return cfg
}

func inboundFrom(user string) *message.Message {
	return message.New(user, "*120*1#", nil, message.SessionNew)
}

func TestBaseFirstReply(t *testing.T) {
	t.Parallel()

	cfg := testConfig(config.Entry{Label: "Flappy Bird", Endpoint: "flappy-bird"})
	msg := inboundFrom("+27831234567")

	reply := NewBase().FirstReply(cfg, &session.Session{State: session.StateStart}, msg)

	assert.Equal(t, "Please select a choice.\n1) Flappy Bird", reply.ContentText())
	assert.Equal(t, msg.FromAddr, reply.ToAddr)
	assert.Equal(t, msg.MessageID, reply.InReplyTo)
	assert.Equal(t, message.SessionResume, reply.SessionEvent)
	assert.Nil(t, reply.HelperMetadata)
}

func TestBaseInvalidInputReply(t *testing.T) {
	t.Parallel()

	cfg := testConfig(config.Entry{Label: "Flappy Bird", Endpoint: "flappy-bird"})
	msg := inboundFrom("+27831234567")

	reply := NewBase().InvalidInputReply(cfg, &session.Session{State: session.StateSelect}, msg)
	assert.Equal(t, "Bad choice.\n\n1. Try Again", reply.ContentText())
}

func TestMessengerDecoratesSmallMenu(t *testing.T) {
	t.Parallel()

	cfg := testConfig(
		config.Entry{Label: "Weather", Endpoint: "weather"},
		config.Entry{Label: "News", Endpoint: "news"},
	)
	msg := inboundFrom("user-1")

	reply := NewMessenger().FirstReply(cfg, &session.Session{State: session.StateStart}, msg)

	// The base text must be preserved; decoration is metadata only.
	assert.Equal(t, "Please select a choice.\n1) Weather\n2) News", reply.ContentText())

	payload, ok := reply.HelperMetadata["messenger"].(buttonTemplate)
	require.True(t, ok, "expected a messenger button template")
	assert.Equal(t, "button", payload.TemplateType)
	require.Len(t, payload.Buttons, 2)
	assert.Equal(t, button{Title: "Weather", Payload: "1"}, payload.Buttons[0])
	assert.Equal(t, button{Title: "News", Payload: "2"}, payload.Buttons[1])
}

func TestMessengerSkipsLargeMenu(t *testing.T) {
	t.Parallel()

	cfg := testConfig(
		config.Entry{Label: "A", Endpoint: "a"},
		config.Entry{Label: "B", Endpoint: "b"},
		config.Entry{Label: "C", Endpoint: "c"},
		config.Entry{Label: "D", Endpoint: "d"},
	)
	msg := inboundFrom("user-1")

	reply := NewMessenger().FirstReply(cfg, &session.Session{State: session.StateStart}, msg)
	assert.Nil(t, reply.HelperMetadata, "menus over the button limit stay plain text")
}

func TestMessengerInvalidInputReply(t *testing.T) {
	t.Parallel()

	cfg := testConfig(config.Entry{Label: "A", Endpoint: "a"})
	msg := inboundFrom("user-1")

	reply := NewMessenger().InvalidInputReply(cfg, &session.Session{State: session.StateSelect}, msg)

	assert.Equal(t, "Bad choice.\n\n1. Try Again", reply.ContentText())
	payload, ok := reply.HelperMetadata["messenger"].(buttonTemplate)
	require.True(t, ok)
	require.Len(t, payload.Buttons, 1)
	assert.Equal(t, button{Title: "Try Again", Payload: "1"}, payload.Buttons[0])
}
