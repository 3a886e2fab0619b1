package models

// Session is the serialized state of one ongoing conversation, stored as a
// single JSON blob under a prefixed key with a TTL.
type Session struct {
	SessionID string    `json:"session_id"`
	Messages  []Message `json:"messages"`
	// CreatedAt is a millisecond epoch timestamp kept as the raw stored
	// string; session listings sort on it lexicographically.
	CreatedAt string `json:"created_at"`
}

// SessionInfo is diagnostic metadata about a live session.
type SessionInfo struct {
	SessionID    string   `json:"session_id"`
	MessageCount int      `json:"message_count"`
	CreatedAt    string   `json:"created_at"`
	TTLRemaining int64    `json:"ttl_remaining"`
	LastMessage  *Message `json:"last_message,omitempty"`
}
