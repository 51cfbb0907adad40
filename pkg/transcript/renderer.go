// Package transcript renders the conversation as message bubbles on a
// terminal, including the human-like typed-out reveal of replies.
package transcript

import (
	"fmt"
	"io"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/violetrhodes/violet/pkg/chat"
)

const typingLabel = "is typing..."

// Bubble is a handle to an appended message, kept so media can be
// attached after the text settles.
type Bubble struct {
	r      *Renderer
	sender string
}

// Renderer writes message bubbles to a terminal. All writes go through a
// single mutex; the reveal holds it for the whole animation so bubbles
// never interleave.
type Renderer struct {
	mu        sync.Mutex
	out       io.Writer
	clock     Clock
	rng       *rand.Rand
	minDelay  time.Duration
	maxDelay  time.Duration
	assistant string

	narrate  func(text string)
	autoPlay bool
	lastText string

	typing bool
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithClock replaces the real timer, for tests.
func WithClock(c Clock) Option {
	return func(r *Renderer) { r.clock = c }
}

// WithDelayBounds sets the per-rune reveal delay window.
func WithDelayBounds(min, max time.Duration) Option {
	return func(r *Renderer) { r.minDelay, r.maxDelay = min, max }
}

// WithNarration arms the narration affordance for assistant bubbles.
// autoPlay additionally speaks each reply as soon as it is revealed.
func WithNarration(narrate func(text string), autoPlay bool) Option {
	return func(r *Renderer) { r.narrate, r.autoPlay = narrate, autoPlay }
}

func WithRandSource(src rand.Source) Option {
	return func(r *Renderer) { r.rng = rand.New(src) }
}

// NewRenderer creates a Renderer writing to out. assistant is the sender
// name whose messages get the narration affordance.
func NewRenderer(out io.Writer, assistant string, opts ...Option) *Renderer {
	r := &Renderer{
		out:       out,
		clock:     realClock{},
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		minDelay:  15 * time.Millisecond,
		maxDelay:  40 * time.Millisecond,
		assistant: assistant,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// AppendStatic appends a fully-formed bubble and returns its handle.
func (r *Renderer) AppendStatic(sender, text string) *Bubble {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.clearTypingLocked()
	fmt.Fprintf(r.out, "%s: %s\n", sender, text)
	return &Bubble{r: r, sender: sender}
}

// AppendMedia attaches media to a bubble. Malformed or absent media is
// silently skipped.
func (r *Renderer) AppendMedia(b *Bubble, media *chat.Media) {
	if b == nil || !media.Valid() {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.writeMediaLocked(b.sender, media)
}

func (r *Renderer) writeMediaLocked(sender string, media *chat.Media) {
	pad := strings.Repeat(" ", len(sender)+2)
	fmt.Fprintf(r.out, "%s[%s] %s\n", pad, media.Type, media.Src)
}

// Reveal appends a bubble and types fullText into it one rune at a time,
// each step after a randomized delay. Media, when present and well
// formed, attaches after the last rune. Assistant messages arm the
// narration affordance with the full text.
func (r *Renderer) Reveal(sender, fullText string, media *chat.Media) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.clearTypingLocked()

	fromAssistant := sender == r.assistant
	if fromAssistant && r.narrate != nil {
		r.lastText = fullText
	}

	fmt.Fprintf(r.out, "%s: ", sender)
	offset := 0
	for offset < len(fullText) {
		chunk, next := nextStep(fullText, offset)
		fmt.Fprint(r.out, chunk)
		offset = next
		if offset < len(fullText) {
			r.clock.Sleep(stepDelay(r.rng, r.minDelay, r.maxDelay))
		}
	}
	fmt.Fprintln(r.out)

	if media.Valid() {
		r.writeMediaLocked(sender, media)
	}

	if fromAssistant && r.autoPlay && r.narrate != nil {
		r.narrate(fullText)
	}
}

// Replay triggers narration of the most recently revealed assistant
// message, if any. This is the terminal stand-in for the voice button.
func (r *Renderer) Replay() {
	r.mu.Lock()
	text := r.lastText
	narrate := r.narrate
	r.mu.Unlock()

	if narrate != nil && text != "" {
		narrate(text)
	}
}

// SetTyping toggles the two-state typing indicator. Only one indicator
// ever exists; showing it twice is a no-op.
func (r *Renderer) SetTyping(active bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if active == r.typing {
		return
	}
	if active {
		fmt.Fprintf(r.out, "%s %s", r.assistant, typingLabel)
		r.typing = true
		return
	}
	r.clearTypingLocked()
}

func (r *Renderer) clearTypingLocked() {
	if !r.typing {
		return
	}
	// Erase the indicator line in place.
	fmt.Fprint(r.out, "\r\x1b[2K")
	r.typing = false
}
