// Package client talks to the chat backend over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/zhouzirui/smartchat/internal/model/chat"
)

// DefaultTimeout bounds buffered requests. Streams are bounded by the caller's context.
const DefaultTimeout = 2 * time.Minute

var (
	// ErrStreamUnavailable means the stream could not be established and no
	// frame was received; the buffered path is safe to try.
	ErrStreamUnavailable = errors.New("client: stream unavailable")
	// ErrStreamFailed means the server ended the stream with an error frame.
	ErrStreamFailed = errors.New("client: stream failed")
)

// APIError is a non-2xx response with the server's error message.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.Status)
	}
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// Client is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	stream  *http.Client
}

// New returns a client for the backend at baseURL.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		stream:  &http.Client{},
	}
}

type messageRequest struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}

type envelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// Chat sends one message over the buffered endpoint.
func (c *Client) Chat(ctx context.Context, sessionID, message string) (string, error) {
	var resp struct {
		envelope
		Response string `json:"response"`
	}
	if err := c.postJSON(ctx, "/chat", messageRequest{SessionID: sessionID, Message: message}, &resp); err != nil {
		return "", err
	}
	return resp.Response, nil
}

// History returns the session transcript.
func (c *Client) History(ctx context.Context, sessionID string) ([]chat.Turn, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/chat-history/"+url.PathEscape(sessionID), nil)
	if err != nil {
		return nil, err
	}
	var resp struct {
		envelope
		Chat []chat.Turn `json:"chat"`
	}
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}
	return resp.Chat, nil
}

// Reset clears one session, or every session when sessionID is empty.
func (c *Client) Reset(ctx context.Context, sessionID string) (string, error) {
	var resp struct {
		envelope
		Message string `json:"message"`
	}
	body := map[string]string{}
	if sessionID != "" {
		body["sessionId"] = sessionID
	}
	if err := c.postJSON(ctx, "/reset", body, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// Extraction is the result of an image upload.
type Extraction struct {
	Filename      string `json:"filename"`
	ExtractedText string `json:"extractedText"`
	AIResponse    string `json:"aiResponse"`
	AIAvailable   *bool  `json:"aiAvailable,omitempty"`
}

// ExtractText uploads an image for text extraction and commentary.
func (c *Client) ExtractText(ctx context.Context, sessionID, filename string, image []byte) (*Extraction, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("sessionId", sessionID); err != nil {
		return nil, err
	}
	part, err := mw.CreateFormFile("image", filename)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(image); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/extract-text", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set(middleware.RequestIDHeader, uuid.NewString())

	var resp struct {
		envelope
		Extraction
	}
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}
	return &resp.Extraction, nil
}

func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apiError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", req.URL.Path, err)
	}
	return nil
}

func apiError(resp *http.Response) error {
	var env envelope
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	_ = json.Unmarshal(body, &env)
	return &APIError{Status: resp.StatusCode, Message: env.Error}
}
