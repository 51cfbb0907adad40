package chat

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Entry is one turn of the in-memory conversation log. The log is
// append-only in submission/reply order and is never persisted; only the
// derived lastMessage summary survives the session.
type Entry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Media is an optional attachment on a reply.
type Media struct {
	Type string `json:"type"` // "image" or "video"
	Src  string `json:"src"`
}

// Valid reports whether the media is well-formed enough to render.
// Malformed media is skipped silently, it is not an error.
func (m *Media) Valid() bool {
	return m != nil && m.Type != "" && m.Src != ""
}

// ReplyPayload is the backend's answer to one chat call.
type ReplyPayload struct {
	Reply string `json:"reply"`
	Media *Media `json:"media,omitempty"`
}

type chatRequest struct {
	UserID   string  `json:"userId"`
	Messages []Entry `json:"messages"`
}
