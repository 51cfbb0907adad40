package channels

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/violetrhodes/violet/pkg/bus"
)

func TestIsAllowed(t *testing.T) {
	testcases := []struct {
		name      string
		allowList []string
		senderID  string
		want      bool
	}{
		{name: "empty-list-admits-all", allowList: nil, senderID: "anyone", want: true},
		{name: "exact-id", allowList: []string{"12345"}, senderID: "12345", want: true},
		{name: "not-listed", allowList: []string{"12345"}, senderID: "99999", want: false},
		{name: "compound-id-part", allowList: []string{"12345"}, senderID: "12345|violetfan", want: true},
		{name: "compound-user-part", allowList: []string{"violetfan"}, senderID: "12345|violetfan", want: true},
		{name: "at-prefix-stripped", allowList: []string{"@violetfan"}, senderID: "12345|violetfan", want: true},
		{name: "blank-entries-skipped", allowList: []string{"", "  "}, senderID: "12345", want: false},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			c := NewBaseChannel("test", bus.NewMessageBus(), tc.allowList)
			assert.Equal(t, tc.want, c.IsAllowed(tc.senderID))
		})
	}
}

func TestHandleMessagePublishesInbound(t *testing.T) {
	mb := bus.NewMessageBus()
	defer mb.Close()
	c := NewBaseChannel("discord", mb, nil)

	c.HandleMessage("42", "fan", "chan-1", "hey violet")

	msg, ok := mb.ConsumeInbound(context.Background())
	require.True(t, ok)
	assert.Equal(t, "discord", msg.Channel)
	assert.Equal(t, "42", msg.SenderID)
	assert.Equal(t, "fan", msg.SenderName)
	assert.Equal(t, "chan-1", msg.ChatID)
	assert.Equal(t, "hey violet", msg.Content)
}

func TestHandleMessageDropsDisallowed(t *testing.T) {
	mb := bus.NewMessageBus()
	defer mb.Close()
	c := NewBaseChannel("discord", mb, []string{"1"})

	c.HandleMessage("2", "stranger", "chan-1", "let me in")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, ok := mb.ConsumeInbound(ctx)
	assert.False(t, ok)
}

func TestSplitMessage(t *testing.T) {
	assert.Equal(t, []string{"short"}, splitMessage("short", 2000))

	long := ""
	for i := 0; i < 300; i++ {
		long += "word "
	}
	chunks := splitMessage(long, 500)
	assert.Greater(t, len(chunks), 1)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk), 500)
		assert.NotEmpty(t, chunk)
	}
}
