package backend

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/violetrhodes/violet/pkg/chat"
	"github.com/violetrhodes/violet/pkg/memory"
)

func TestResponderMediaKeyword(t *testing.T) {
	r := NewResponderWithSource(rand.NewSource(1))

	payload := r.Reply([]chat.Entry{
		{Role: chat.RoleUser, Content: "send me a Selfie?"},
	}, memory.Default(), false)

	require.NotNil(t, payload.Media)
	assert.True(t, payload.Media.Valid())
	assert.Equal(t, "image", payload.Media.Type)
	assert.NotEmpty(t, payload.Reply)
}

func TestResponderReturningUserCallback(t *testing.T) {
	r := NewResponderWithSource(rand.NewSource(1))

	mem := memory.Default()
	mem.LastMessage = "think about us"

	payload := r.Reply([]chat.Entry{
		{Role: chat.RoleUser, Content: "hey"},
	}, mem, true)

	assert.Contains(t, payload.Reply, "think about us")
	assert.Nil(t, payload.Media)
}

func TestResponderNoCallbackMidConversation(t *testing.T) {
	r := NewResponderWithSource(rand.NewSource(1))

	mem := memory.Default()
	mem.LastMessage = "think about us"

	payload := r.Reply([]chat.Entry{
		{Role: chat.RoleUser, Content: "hey"},
		{Role: chat.RoleAssistant, Content: "hey babe"},
		{Role: chat.RoleUser, Content: "how are you"},
	}, mem, true)

	assert.NotContains(t, payload.Reply, "think about us")
}

func TestResponderDefaultLine(t *testing.T) {
	r := NewResponderWithSource(rand.NewSource(42))

	payload := r.Reply([]chat.Entry{
		{Role: chat.RoleUser, Content: "how was your day"},
		{Role: chat.RoleAssistant, Content: "good!"},
		{Role: chat.RoleUser, Content: "tell me something"},
	}, memory.Default(), false)

	assert.Contains(t, replyLines, payload.Reply)
	assert.Nil(t, payload.Media)
}

func TestResponderEmptyConversation(t *testing.T) {
	r := NewResponderWithSource(rand.NewSource(1))

	payload := r.Reply(nil, memory.Default(), false)
	assert.NotEmpty(t, payload.Reply)
}
