package memory

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSuccess(t *testing.T) {
	ts := int64(1756400000000)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/memory", r.URL.Path)
		assert.Equal(t, "u-1", r.URL.Query().Get("userId"))
		_ = json.NewEncoder(w).Encode(UserMemory{
			LastInteraction: &ts,
			LastMessage:     "see you soon",
			UserProfile:     map[string]any{"name": "sam"},
		})
	}))
	defer srv.Close()

	res := NewClient(srv.URL).Load(context.Background(), "u-1")

	assert.True(t, res.FromBackend)
	assert.NoError(t, res.Cause)
	require.NotNil(t, res.Memory.LastInteraction)
	assert.Equal(t, ts, *res.Memory.LastInteraction)
	assert.Equal(t, "see you soon", res.Memory.LastMessage)
	assert.Equal(t, "sam", res.Memory.UserProfile["name"])
}

// Load is fail-open: every failure mode degrades to the default record.
func TestLoadFailOpen(t *testing.T) {
	testcases := []struct {
		name    string
		handler http.HandlerFunc
		close   bool
	}{
		{
			name: "not-found",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "no such user", http.StatusNotFound)
			},
		},
		{
			name: "server-error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
		},
		{
			name: "malformed-body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("<html>not json</html>"))
			},
		},
		{
			name:    "unreachable",
			handler: func(w http.ResponseWriter, r *http.Request) {},
			close:   true,
		},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(tc.handler)
			if tc.close {
				srv.Close()
			} else {
				defer srv.Close()
			}

			res := NewClient(srv.URL).Load(context.Background(), "u-1")

			assert.False(t, res.FromBackend)
			assert.Error(t, res.Cause)
			assert.Nil(t, res.Memory.LastInteraction)
			assert.Equal(t, "", res.Memory.LastMessage)
			assert.NotNil(t, res.Memory.UserProfile)
			assert.Empty(t, res.Memory.UserProfile)
		})
	}
}

func TestSave(t *testing.T) {
	var got saveRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/memory", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	ts := int64(42)
	mem := UserMemory{LastInteraction: &ts, LastMessage: "later babe", UserProfile: map[string]any{}}

	err := NewClient(srv.URL).Save(context.Background(), "u-1", mem)
	require.NoError(t, err)
	assert.Equal(t, "u-1", got.UserID)
	assert.Equal(t, "later babe", got.Memory.LastMessage)
}

func TestSaveFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	err := NewClient(srv.URL).Save(context.Background(), "u-1", Default())
	assert.Error(t, err)
}

func TestDefaultShape(t *testing.T) {
	mem := Default()
	assert.Nil(t, mem.LastInteraction)
	assert.Equal(t, "", mem.LastMessage)
	assert.NotNil(t, mem.UserProfile)

	// lastInteraction must serialize as JSON null when never set.
	data, err := json.Marshal(mem)
	require.NoError(t, err)
	assert.JSONEq(t, `{"lastInteraction":null,"lastMessage":"","userProfile":{}}`, string(data))
}
