package bus

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInboundRoundTrip(t *testing.T) {
	mb := NewMessageBus()
	defer mb.Close()

	sent := InboundMessage{Channel: "discord", SenderID: "42", ChatID: "c1", Content: "hi"}
	mb.PublishInbound(sent)

	got, ok := mb.ConsumeInbound(context.Background())
	require.True(t, ok)
	assert.Equal(t, sent, got)
}

func TestOutboundRoundTrip(t *testing.T) {
	mb := NewMessageBus()
	defer mb.Close()

	sent := OutboundMessage{Channel: "discord", ChatID: "c1", Content: "hey"}
	mb.PublishOutbound(sent)

	got, ok := mb.SubscribeOutbound(context.Background())
	require.True(t, ok)
	assert.Equal(t, sent, got)
}

func TestConsumeRespectsContext(t *testing.T) {
	mb := NewMessageBus()
	defer mb.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, ok := mb.ConsumeInbound(ctx)
	assert.False(t, ok)
}

func TestPublishAfterCloseIsNoOp(t *testing.T) {
	mb := NewMessageBus()
	mb.Close()

	// Must not panic on a closed bus.
	mb.PublishInbound(InboundMessage{Content: "late"})
	mb.PublishOutbound(OutboundMessage{Content: "late"})
	mb.Close() // double close tolerated

	_, ok := mb.ConsumeInbound(context.Background())
	assert.False(t, ok)
}

func TestPublishDropsWhenFull(t *testing.T) {
	mb := NewMessageBus()
	defer mb.Close()

	for i := 0; i < 101; i++ {
		mb.PublishInbound(InboundMessage{Content: "x"})
	}

	droppedIn, _ := mb.Dropped()
	assert.Equal(t, uint64(1), droppedIn)
}
