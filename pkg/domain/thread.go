package domain

import (
	"fmt"
	"time"
)

// TimestampFormat is the wire format for thread and message timestamps.
const TimestampFormat = time.RFC3339

const DefaultThreadTitle = "New conversation"

type Thread struct {
	ThreadID        string    `json:"thread_id"`
	CreatedAt       string    `json:"created_at"`
	LastUpdatedAt   string    `json:"last_updated_at"`
	Title           string    `json:"title"`
	Conversations   []Message `json:"conversations"`
	LatestImagePath string    `json:"latest_image_path,omitempty"`
}

// Validate checks a thread loaded from disk against the persisted schema.
// Unknown or malformed shapes are rejected at the load boundary instead of
// being trusted downstream.
func (t *Thread) Validate() error {
	if t.ThreadID == "" {
		return fmt.Errorf("thread_id is empty")
	}
	for i, m := range t.Conversations {
		if m.MessageID != i+1 {
			return fmt.Errorf("message %d has id %d, want %d", i, m.MessageID, i+1)
		}
		if !m.Role.Valid() {
			return fmt.Errorf("message %d has unknown role %q", i+1, m.Role)
		}
	}
	return nil
}
