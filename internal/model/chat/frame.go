package chat

import "time"

// FrameType 标识流式响应中的事件类型。
type FrameType string

const (
	FrameChunk    FrameType = "chunk"
	FrameComplete FrameType = "complete"
	FrameError    FrameType = "error"
)

// Frame is a single event of a streamed reply.
type Frame struct {
	Type         FrameType `json:"type"`
	Content      string    `json:"content,omitempty"`
	FullResponse string    `json:"fullResponse,omitempty"`
	Error        string    `json:"error,omitempty"`
	SessionID    string    `json:"sessionId"`
	Timestamp    time.Time `json:"timestamp"`
}

// NewChunkFrame builds a chunk frame stamped with the current time.
func NewChunkFrame(sessionID, content string) Frame {
	return Frame{Type: FrameChunk, Content: content, SessionID: sessionID, Timestamp: time.Now().UTC()}
}

// NewCompleteFrame builds the terminal frame carrying the full reply.
func NewCompleteFrame(sessionID, full string) Frame {
	return Frame{Type: FrameComplete, FullResponse: full, SessionID: sessionID, Timestamp: time.Now().UTC()}
}

// NewErrorFrame builds the terminal frame for a failed generation.
func NewErrorFrame(sessionID, message string) Frame {
	return Frame{Type: FrameError, Error: message, SessionID: sessionID, Timestamp: time.Now().UTC()}
}
