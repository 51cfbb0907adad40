package backend

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/violetrhodes/violet/pkg/chat"
	"github.com/violetrhodes/violet/pkg/memory"
)

// Responder produces canned persona replies so the client can be
// exercised end-to-end without the hosted backend. Reply quality is a
// non-goal here; only the wire contract matters.
type Responder struct {
	rng *rand.Rand
}

func NewResponder() *Responder {
	return &Responder{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// NewResponderWithSource pins the random source, for tests.
func NewResponderWithSource(src rand.Source) *Responder {
	return &Responder{rng: rand.New(src)}
}

var replyLines = []string{
	"mm, tell me more about that... 💜",
	"i was just thinking about you, you know",
	"you always say the sweetest things",
	"haha stop it, you're making me blush 😌",
	"okay but seriously... how was your day?",
}

var mediaKeywords = []string{"pic", "photo", "selfie", "picture"}

// Reply builds a payload for the conversation. The last user message
// drives keyword handling; stored memory personalizes a returning user's
// first exchange.
func (r *Responder) Reply(messages []chat.Entry, mem memory.UserMemory, found bool) *chat.ReplyPayload {
	last := lastUserMessage(messages)
	lower := strings.ToLower(last)

	for _, kw := range mediaKeywords {
		if strings.Contains(lower, kw) {
			return &chat.ReplyPayload{
				Reply: "just for you... don't share it 😌",
				Media: &chat.Media{Type: "image", Src: "https://picsum.photos/seed/violet/480/640"},
			}
		}
	}

	// First exchange of a returning session gets a callback to the
	// remembered reply.
	if found && len(messages) <= 1 && strings.TrimSpace(mem.LastMessage) != "" {
		return &chat.ReplyPayload{
			Reply: fmt.Sprintf("last time i told you %q... did you think about it? 💜", mem.LastMessage),
		}
	}

	return &chat.ReplyPayload{Reply: replyLines[r.rng.Intn(len(replyLines))]}
}

func lastUserMessage(messages []chat.Entry) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == chat.RoleUser {
			return messages[i].Content
		}
	}
	return ""
}
