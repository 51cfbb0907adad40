// Package voice narrates replies through whatever speech synthesis the
// host system offers.
package voice

import "regexp"

// Voice is one synthesis voice offered by an engine.
type Voice struct {
	Name string
	Lang string
}

var (
	femalePattern  = regexp.MustCompile(`(?i)female`)
	englishPattern = regexp.MustCompile(`(?i)en`)
)

// Select picks the voice Violet speaks with: a female-named English voice
// when available, else any English voice, else the first one offered.
// Returns false only when the list is empty — engines may report an empty
// list before their voice inventory is ready, so callers re-query later.
func Select(voices []Voice) (Voice, bool) {
	if len(voices) == 0 {
		return Voice{}, false
	}
	for _, v := range voices {
		if femalePattern.MatchString(v.Name) && englishPattern.MatchString(v.Lang) {
			return v, true
		}
	}
	for _, v := range voices {
		if englishPattern.MatchString(v.Lang) {
			return v, true
		}
	}
	return voices[0], true
}
