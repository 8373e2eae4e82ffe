package chat

import "time"

// Role identifies the author of a transcript turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one entry of a session transcript.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ImageNote records text extracted from an uploaded image.
type ImageNote struct {
	Filename      string    `json:"filename"`
	ExtractedText string    `json:"extractedText"`
	Timestamp     time.Time `json:"timestamp"`
}
