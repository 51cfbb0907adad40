package transcript

import (
	"bytes"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/violetrhodes/violet/pkg/chat"
)

// fakeClock records requested delays without sleeping.
type fakeClock struct {
	slept []time.Duration
}

func (c *fakeClock) Sleep(d time.Duration) { c.slept = append(c.slept, d) }

func newTestRenderer(out *bytes.Buffer, opts ...Option) *Renderer {
	base := []Option{
		WithClock(&fakeClock{}),
		WithRandSource(rand.NewSource(7)),
	}
	return NewRenderer(out, "violet", append(base, opts...)...)
}

func TestAppendStatic(t *testing.T) {
	var out bytes.Buffer
	r := newTestRenderer(&out)

	b := r.AppendStatic("you", "hi there")
	require.NotNil(t, b)
	assert.Equal(t, "you: hi there\n", out.String())
}

func TestAppendMedia(t *testing.T) {
	testcases := []struct {
		name       string
		media      *chat.Media
		wantOutput bool
	}{
		{name: "image", media: &chat.Media{Type: "image", Src: "https://cdn.test/v.png"}, wantOutput: true},
		{name: "video", media: &chat.Media{Type: "video", Src: "https://cdn.test/v.mp4"}, wantOutput: true},
		{name: "missing-src", media: &chat.Media{Type: "image"}, wantOutput: false},
		{name: "missing-type", media: &chat.Media{Src: "x"}, wantOutput: false},
		{name: "nil", media: nil, wantOutput: false},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer
			r := newTestRenderer(&out)
			b := r.AppendStatic("violet", "look")
			out.Reset()

			r.AppendMedia(b, tc.media)

			if tc.wantOutput {
				assert.Contains(t, out.String(), tc.media.Src)
				assert.Contains(t, out.String(), "["+tc.media.Type+"]")
			} else {
				assert.Empty(t, out.String())
			}
		})
	}
}

func TestAppendMediaNilBubble(t *testing.T) {
	var out bytes.Buffer
	r := newTestRenderer(&out)
	r.AppendMedia(nil, &chat.Media{Type: "image", Src: "x"})
	assert.Empty(t, out.String())
}

func TestRevealTypesOutFullText(t *testing.T) {
	var out bytes.Buffer
	clock := &fakeClock{}
	r := newTestRenderer(&out, WithClock(clock), WithDelayBounds(15*time.Millisecond, 40*time.Millisecond))

	r.Reveal("violet", "hi", nil)

	assert.Equal(t, "violet: hi\n", out.String())
	// One delay between the two runes, none after the last.
	require.Len(t, clock.slept, 1)
	assert.GreaterOrEqual(t, clock.slept[0], 15*time.Millisecond)
	assert.LessOrEqual(t, clock.slept[0], 40*time.Millisecond)
}

func TestRevealAttachesMediaAfterLastRune(t *testing.T) {
	var out bytes.Buffer
	r := newTestRenderer(&out)

	r.Reveal("violet", "look at this", &chat.Media{Type: "image", Src: "https://cdn.test/v.png"})

	s := out.String()
	assert.Less(t, strings.Index(s, "look at this"), strings.Index(s, "[image]"))
	assert.Contains(t, s, "https://cdn.test/v.png")
}

func TestRevealSkipsMalformedMedia(t *testing.T) {
	var out bytes.Buffer
	r := newTestRenderer(&out)

	r.Reveal("violet", "no pic today", &chat.Media{Type: "image"})

	assert.NotContains(t, out.String(), "[image]")
}

func TestRevealArmsNarrationForAssistantOnly(t *testing.T) {
	var narrated []string
	var out bytes.Buffer
	r := newTestRenderer(&out, WithNarration(func(s string) { narrated = append(narrated, s) }, false))

	r.Reveal("you", "user text", nil)
	r.Replay()
	assert.Empty(t, narrated, "user messages must not arm narration")

	r.Reveal("violet", "assistant text", nil)
	r.Replay()
	r.Replay()
	assert.Equal(t, []string{"assistant text", "assistant text"}, narrated)
}

func TestRevealAutoPlay(t *testing.T) {
	var narrated []string
	var out bytes.Buffer
	r := newTestRenderer(&out, WithNarration(func(s string) { narrated = append(narrated, s) }, true))

	r.Reveal("violet", "spoken right away", nil)

	assert.Equal(t, []string{"spoken right away"}, narrated)
}

func TestTypingIndicator(t *testing.T) {
	var out bytes.Buffer
	r := newTestRenderer(&out)

	r.SetTyping(true)
	assert.Contains(t, out.String(), "violet is typing...")

	r.SetTyping(true) // idempotent, no second indicator
	assert.Equal(t, 1, strings.Count(out.String(), "is typing"))

	r.SetTyping(false)
	assert.Contains(t, out.String(), "\r\x1b[2K")

	// Hiding again is a no-op.
	mark := out.Len()
	r.SetTyping(false)
	assert.Equal(t, mark, out.Len())
}

// Indicator-hide always lands before the reveal output.
func TestRevealClearsIndicatorFirst(t *testing.T) {
	var out bytes.Buffer
	r := newTestRenderer(&out)

	r.SetTyping(true)
	r.Reveal("violet", "hey", nil)

	s := out.String()
	assert.Less(t, strings.Index(s, "\r\x1b[2K"), strings.Index(s, "hey"))
}
