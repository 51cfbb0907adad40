package voice

import (
	"context"
	"log/slog"
	"sync"
)

// Narrator speaks reply text out loud. At most one utterance is ever
// active: a new narration preempts whatever is still playing. Playback is
// fire-and-forget; nothing downstream consumes a completion signal.
type Narrator struct {
	engine Engine
	rate   float64
	pitch  float64

	mu       sync.Mutex
	cancel   context.CancelFunc
	voice    Voice
	hasVoice bool

	warnOnce sync.Once
}

// NewNarrator wraps engine. A nil engine is a valid capability-absent
// narrator that warns once and then stays silent.
func NewNarrator(engine Engine, rate, pitch float64) *Narrator {
	return &Narrator{engine: engine, rate: rate, pitch: pitch}
}

// Narrate enqueues text for playback, cancelling any in-flight utterance.
func (n *Narrator) Narrate(text string) {
	if n.engine == nil {
		n.warnOnce.Do(func() {
			slog.Warn("speech synthesis not available on this system, narration disabled")
		})
		return
	}
	if text == "" {
		return
	}

	n.mu.Lock()
	if n.cancel != nil {
		n.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	n.cancel = cancel
	v, ok := n.currentVoiceLocked(ctx)
	n.mu.Unlock()

	u := Utterance{Text: text, Rate: n.rate, Pitch: n.pitch}
	if ok {
		u.Voice = v
	}

	go func() {
		defer cancel()
		if err := n.engine.Speak(ctx, u); err != nil && ctx.Err() == nil {
			slog.Debug("narration failed", "engine", n.engine.Name(), "error", err)
		}
	}()
}

// Stop cancels any in-flight utterance.
func (n *Narrator) Stop() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.cancel != nil {
		n.cancel()
		n.cancel = nil
	}
}

// currentVoiceLocked lazily selects a voice. An empty voice list is not
// cached: engines can report voices late, so the next narration re-asks.
func (n *Narrator) currentVoiceLocked(ctx context.Context) (Voice, bool) {
	if n.hasVoice {
		return n.voice, true
	}

	voices, err := n.engine.Voices(ctx)
	if err != nil {
		slog.Debug("voice listing failed", "engine", n.engine.Name(), "error", err)
		return Voice{}, false
	}

	v, ok := Select(voices)
	if !ok {
		return Voice{}, false
	}
	n.voice = v
	n.hasVoice = true
	return v, true
}
