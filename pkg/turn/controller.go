// Package turn orchestrates one user-turn cycle: submission, backend
// call, reveal, memory update. The controller owns all mutable session
// state; collaborators are injected so nothing here is ambient.
package turn

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/violetrhodes/violet/pkg/chat"
	"github.com/violetrhodes/violet/pkg/memory"
)

// Persona strings. The glitch placeholder stands in for a reply the
// backend failed to produce; the apology bubble covers transport failure.
const (
	GenericGreeting   = "hey babe... i'm right here, what's on your mind? 💜"
	returningGreeting = "hey, you came back... still thinking about: %s ? 😌"
	glitchPlaceholder = "mm... something glitched babe..."
	apologyMessage    = "ugh, my connection glitched... can you try again in a sec?"

	AssistantName = "violet"
	UserName      = "you"
)

var (
	// ErrEmptyInput marks a whitespace-only submission; the turn never starts.
	ErrEmptyInput = errors.New("empty input")
	// ErrTurnInFlight rejects a submission while a chat call is pending.
	// Input is disabled for the duration of a turn, so replies can never
	// arrive out of order.
	ErrTurnInFlight = errors.New("turn already in flight")
)

// State of the per-turn machine.
type State int

const (
	StateIdle State = iota
	StateAwaitingReply
	StateRendering
)

// Backend issues the chat call.
type Backend interface {
	Send(ctx context.Context, userID string, messages []chat.Entry) (*chat.ReplyPayload, error)
}

// MemoryStore loads and persists the per-user record.
type MemoryStore interface {
	Load(ctx context.Context, userID string) memory.LoadResult
	Save(ctx context.Context, userID string, mem memory.UserMemory) error
}

// View is the transcript surface the controller renders into.
type View interface {
	AppendStatic(sender, text string)
	Reveal(sender, fullText string, media *chat.Media)
	SetTyping(active bool)
}

// Controller owns the conversation log and cached memory for one user
// session.
type Controller struct {
	userID  string
	backend Backend
	store   MemoryStore
	view    View
	now     func() time.Time

	mu    sync.Mutex
	state State
	log   []chat.Entry
	mem   memory.UserMemory

	saves sync.WaitGroup
}

// NewController wires a session for userID. Nothing talks to the network
// until Bootstrap or Submit.
func NewController(userID string, backend Backend, store MemoryStore, view View) *Controller {
	return &Controller{
		userID:  userID,
		backend: backend,
		store:   store,
		view:    view,
		now:     time.Now,
		mem:     memory.Default(),
	}
}

// Bootstrap runs once before any turn: loads memory fail-open and renders
// the greeting, memory-aware when a previous lastMessage exists.
func (c *Controller) Bootstrap(ctx context.Context) {
	res := c.store.Load(ctx, c.userID)
	if !res.FromBackend {
		slog.Warn("memory load failed, starting with empty memory", "error", res.Cause)
	}

	c.mu.Lock()
	c.mem = res.Memory
	last := strings.TrimSpace(c.mem.LastMessage)
	c.mu.Unlock()

	greeting := GenericGreeting
	if last != "" {
		greeting = fmt.Sprintf(returningGreeting, last)
	}
	c.view.AppendStatic(AssistantName, greeting)
}

// Submit runs one full turn with the trimmed input. Empty input is a
// no-op. A transport failure abandons the turn (apology bubble, log and
// memory untouched) but is not an error to the caller; the session
// continues.
func (c *Controller) Submit(ctx context.Context, input string) error {
	text := strings.TrimSpace(input)
	if text == "" {
		return ErrEmptyInput
	}

	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		return ErrTurnInFlight
	}
	c.state = StateAwaitingReply
	c.log = append(c.log, chat.Entry{Role: chat.RoleUser, Content: text})
	snapshot := append([]chat.Entry(nil), c.log...)
	c.mu.Unlock()

	c.view.AppendStatic(UserName, text)
	c.view.SetTyping(true)

	payload, err := c.backend.Send(ctx, c.userID, snapshot)
	c.view.SetTyping(false)

	if err != nil {
		slog.Warn("chat call failed, turn abandoned", "error", err)
		c.view.AppendStatic(AssistantName, apologyMessage)
		c.setState(StateIdle)
		return nil
	}

	reply := payload.Reply
	if reply == "" {
		reply = glitchPlaceholder
	}

	c.setState(StateRendering)
	c.view.Reveal(AssistantName, reply, payload.Media)

	c.mu.Lock()
	c.log = append(c.log, chat.Entry{Role: chat.RoleAssistant, Content: reply})
	ts := c.now().UnixMilli()
	c.mem.LastInteraction = &ts
	c.mem.LastMessage = reply
	memSnapshot := c.mem
	c.state = StateIdle
	c.mu.Unlock()

	// Fire-and-forget persistence: at most once, no retry, and the turn
	// does not wait on it.
	c.saves.Add(1)
	go func() {
		defer c.saves.Done()
		if err := c.store.Save(context.Background(), c.userID, memSnapshot); err != nil {
			slog.Warn("memory save failed, will catch up on next save", "error", err)
		}
	}()

	return nil
}

// State reports the current turn state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Log returns a copy of the conversation log.
func (c *Controller) Log() []chat.Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]chat.Entry(nil), c.log...)
}

// Memory returns the cached working memory.
func (c *Controller) Memory() memory.UserMemory {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mem
}

// Flush blocks until outstanding memory saves finish. Shutdown and tests
// use it; turns never do.
func (c *Controller) Flush() {
	c.saves.Wait()
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}
