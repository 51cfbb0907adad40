package transcript

import (
	"math/rand"
	"time"
	"unicode/utf8"
)

// Clock abstracts the reveal timer so the typing effect is testable
// without real sleeps.
type Clock interface {
	Sleep(d time.Duration)
}

type realClock struct{}

func (realClock) Sleep(d time.Duration) { time.Sleep(d) }

// nextStep returns the chunk committed at offset and the following
// offset. Offsets are byte indices advancing one rune per step; an offset
// at or past the end yields an empty chunk.
func nextStep(text string, offset int) (string, int) {
	if offset < 0 || offset >= len(text) {
		return "", len(text)
	}
	_, size := utf8.DecodeRuneInString(text[offset:])
	return text[offset : offset+size], offset + size
}

// stepDelay samples one per-rune delay uniformly from [min, max].
func stepDelay(rng *rand.Rand, min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + time.Duration(rng.Int63n(int64(max-min)+1))
}
