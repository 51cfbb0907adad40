package backend

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/violetrhodes/violet/pkg/memory"
)

func newTestStore(t *testing.T) Repository {
	t.Helper()

	store, err := NewSQLite(filepath.Join(t.TempDir(), "backend.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteGetAbsent(t *testing.T) {
	store := newTestStore(t)

	mem, found, err := store.GetMemory(context.Background(), "nobody")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, mem.LastInteraction)
	assert.NotNil(t, mem.UserProfile)
}

func TestSQLitePutGetRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	ts := int64(1700000000000)
	want := memory.UserMemory{
		LastInteraction: &ts,
		LastMessage:     "goodnight 💜",
		UserProfile:     map[string]any{"mood": "happy"},
	}
	require.NoError(t, store.PutMemory(ctx, "u_1", want))

	got, found, err := store.GetMemory(ctx, "u_1")
	require.NoError(t, err)
	assert.True(t, found)
	require.NotNil(t, got.LastInteraction)
	assert.Equal(t, ts, *got.LastInteraction)
	assert.Equal(t, want.LastMessage, got.LastMessage)
	assert.Equal(t, "happy", got.UserProfile["mood"])
}

func TestSQLitePutOverwrites(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.PutMemory(ctx, "u_1", memory.UserMemory{LastMessage: "first", UserProfile: map[string]any{}}))
	require.NoError(t, store.PutMemory(ctx, "u_1", memory.UserMemory{LastMessage: "second", UserProfile: map[string]any{}}))

	got, found, err := store.GetMemory(ctx, "u_1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "second", got.LastMessage)
}

func TestSQLitePing(t *testing.T) {
	store := newTestStore(t)
	assert.NoError(t, store.Ping(context.Background()))
}
