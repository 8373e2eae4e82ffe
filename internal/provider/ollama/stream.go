package ollama

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"strings"
)

// StreamReader decodes the newline-delimited JSON body of a streaming chat.
type StreamReader struct {
	reader      *bufio.Reader
	accumulator strings.Builder
	done        bool
}

// NewStreamReader wraps a streaming response body.
func NewStreamReader(r io.Reader) *StreamReader {
	return &StreamReader{reader: bufio.NewReader(r)}
}

// Next returns the next chunk. It returns io.EOF after the chunk marked
// done, and an invalid-response error if the body is malformed or ends
// before completion.
func (s *StreamReader) Next() (StreamChunk, error) {
	if s.done {
		return StreamChunk{}, io.EOF
	}
	for {
		line, err := s.reader.ReadBytes('\n')
		if len(bytes.TrimSpace(line)) == 0 {
			if err == io.EOF {
				return StreamChunk{}, &ClientError{Type: ErrTypeInvalidResponse, Message: "stream ended before completion", Cause: io.ErrUnexpectedEOF}
			}
			if err != nil {
				return StreamChunk{}, &ClientError{Type: ErrTypeNotRunning, Message: "stream interrupted", Cause: err}
			}
			continue
		}

		var resp ChatResponse
		if jsonErr := json.Unmarshal(line, &resp); jsonErr != nil {
			return StreamChunk{}, &ClientError{Type: ErrTypeInvalidResponse, Message: "malformed stream line", Cause: jsonErr}
		}
		if resp.Error != "" {
			return StreamChunk{}, &ClientError{Type: ErrTypeInvalidResponse, Message: resp.Error}
		}

		s.accumulator.WriteString(resp.Message.Content)
		s.done = resp.Done
		return StreamChunk{
			Content:    resp.Message.Content,
			Done:       resp.Done,
			DoneReason: resp.DoneReason,
		}, nil
	}
}

// Accumulated returns everything read so far.
func (s *StreamReader) Accumulated() string {
	return s.accumulator.String()
}
