package client

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/zhouzirui/smartchat/internal/model/chat"
)

const ssePrefix = "data: "

// StreamChat posts to /chat-stream and calls onChunk for every chunk frame in
// arrival order. It returns the full reply from the complete frame.
//
// A failure before the first frame returns ErrStreamUnavailable. An error
// frame returns ErrStreamFailed wrapping the server's message.
func (c *Client) StreamChat(ctx context.Context, sessionID, message string, onChunk func(string)) (string, error) {
	payload, err := json.Marshal(messageRequest{SessionID: sessionID, Message: message})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat-stream", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.stream.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("%w: %v", ErrStreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: %v", ErrStreamUnavailable, apiError(resp))
	}

	received := false
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, ssePrefix) {
			continue
		}
		var frame chat.Frame
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, ssePrefix)), &frame); err != nil {
			return "", fmt.Errorf("decode frame: %w", err)
		}
		received = true

		switch frame.Type {
		case chat.FrameChunk:
			if onChunk != nil {
				onChunk(frame.Content)
			}
		case chat.FrameComplete:
			return frame.FullResponse, nil
		case chat.FrameError:
			return "", fmt.Errorf("%w: %s", ErrStreamFailed, frame.Error)
		}
	}
	if err := scanner.Err(); err != nil && ctx.Err() != nil {
		return "", ctx.Err()
	}
	if !received {
		return "", fmt.Errorf("%w: stream closed before any frame", ErrStreamUnavailable)
	}
	return "", fmt.Errorf("%w: stream closed without completion", ErrStreamFailed)
}
