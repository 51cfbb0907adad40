// Package gateway runs Violet sessions for remote channels: every sender
// gets their own turn controller and their own backend memory.
package gateway

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/violetrhodes/violet/pkg/bus"
	"github.com/violetrhodes/violet/pkg/chat"
	"github.com/violetrhodes/violet/pkg/turn"
)

// Gateway consumes inbound bus messages and replies through outbound
// ones. Sessions are created lazily on first contact and live for the
// process lifetime.
type Gateway struct {
	bus     *bus.MessageBus
	backend turn.Backend
	store   turn.MemoryStore

	mu       sync.Mutex
	sessions map[string]*session
}

type session struct {
	ctrl *turn.Controller
	view *channelView
}

func New(msgBus *bus.MessageBus, backend turn.Backend, store turn.MemoryStore) *Gateway {
	return &Gateway{
		bus:      msgBus,
		backend:  backend,
		store:    store,
		sessions: make(map[string]*session),
	}
}

// Run pumps inbound messages until ctx is cancelled. Each message is
// handled on its own goroutine; overlapping submissions from the same
// sender are rejected by the controller, not queued.
func (g *Gateway) Run(ctx context.Context) {
	slog.Info("gateway started")

	for {
		msg, ok := g.bus.ConsumeInbound(ctx)
		if !ok {
			slog.Info("gateway stopped")
			return
		}
		go g.handle(ctx, msg)
	}
}

func (g *Gateway) handle(ctx context.Context, msg bus.InboundMessage) {
	sess, fresh := g.session(msg)
	sess.view.setChatID(msg.ChatID)

	if fresh {
		// First contact mirrors the session bootstrap: load memory and
		// greet before the first reply.
		sess.ctrl.Bootstrap(ctx)
	}

	if err := sess.ctrl.Submit(ctx, msg.Content); err != nil {
		switch {
		case errors.Is(err, turn.ErrEmptyInput):
			// Nothing to do.
		case errors.Is(err, turn.ErrTurnInFlight):
			slog.Debug("submission dropped, turn in flight",
				"channel", msg.Channel, "sender_id", msg.SenderID)
		default:
			slog.Error("turn failed", "channel", msg.Channel, "error", err)
		}
	}
}

func (g *Gateway) session(msg bus.InboundMessage) (*session, bool) {
	key := msg.Channel + ":" + msg.SenderID

	g.mu.Lock()
	defer g.mu.Unlock()

	if sess, ok := g.sessions[key]; ok {
		return sess, false
	}

	view := &channelView{bus: g.bus, channel: msg.Channel, chatID: msg.ChatID}
	sess := &session{
		// The sender's channel-scoped id doubles as the backend memory key.
		ctrl: turn.NewController(key, g.backend, g.store, view),
		view: view,
	}
	g.sessions[key] = sess
	return sess, true
}

// Flush waits for outstanding memory saves across all sessions.
func (g *Gateway) Flush() {
	g.mu.Lock()
	sessions := make([]*session, 0, len(g.sessions))
	for _, s := range g.sessions {
		sessions = append(sessions, s)
	}
	g.mu.Unlock()

	for _, s := range sessions {
		s.ctrl.Flush()
	}
}

// channelView renders a session onto a remote channel. There is no
// per-rune reveal over the wire; replies go out whole, and the channel's
// own native typing indicator covers the waiting state.
type channelView struct {
	bus     *bus.MessageBus
	channel string

	mu     sync.Mutex
	chatID string
}

func (v *channelView) setChatID(id string) {
	v.mu.Lock()
	v.chatID = id
	v.mu.Unlock()
}

func (v *channelView) currentChatID() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.chatID
}

// AppendStatic forwards assistant bubbles only: the user's own messages
// are already visible in the channel.
func (v *channelView) AppendStatic(sender, text string) {
	if sender != turn.AssistantName {
		return
	}
	v.publish(text, nil)
}

func (v *channelView) Reveal(sender, fullText string, media *chat.Media) {
	if sender != turn.AssistantName {
		return
	}
	v.publish(fullText, media)
}

// SetTyping is a no-op: the channel adapter drives its native indicator.
func (v *channelView) SetTyping(active bool) {}

func (v *channelView) publish(text string, media *chat.Media) {
	content := text
	if media.Valid() {
		content += "\n" + media.Src
	}
	v.bus.PublishOutbound(bus.OutboundMessage{
		Channel: v.channel,
		ChatID:  v.currentChatID(),
		Content: content,
	})
}
