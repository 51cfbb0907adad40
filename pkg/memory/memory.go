// Package memory holds the small per-user record the backend keeps across
// sessions. The backend is the source of truth; the client works on a
// cached copy and pushes best-effort updates after each reply.
package memory

// UserMemory is the persisted per-user record. LastInteraction is epoch
// milliseconds, nil until the first completed turn.
type UserMemory struct {
	LastInteraction *int64         `json:"lastInteraction"`
	LastMessage     string         `json:"lastMessage"`
	UserProfile     map[string]any `json:"userProfile"`
}

// Default is the empty record used whenever the backend copy is absent or
// unreachable. Memory is an enhancement, not a correctness requirement.
func Default() UserMemory {
	return UserMemory{
		LastInteraction: nil,
		LastMessage:     "",
		UserProfile:     map[string]any{},
	}
}

// LoadResult is a tagged load outcome: the caller always gets a usable
// record and decides for itself how to treat a fallback.
type LoadResult struct {
	Memory      UserMemory
	FromBackend bool
	Cause       error // set when FromBackend is false
}
