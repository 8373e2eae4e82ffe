package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/smartchat/internal/analysis/intent"
	"github.com/zhouzirui/smartchat/internal/model/chat"
	"github.com/zhouzirui/smartchat/internal/service/ai"
	"github.com/zhouzirui/smartchat/internal/service/assistant"
	chatservice "github.com/zhouzirui/smartchat/internal/service/chat"
)

type stubGenerator struct {
	reply string
	calls int
}

func (s *stubGenerator) Generate(context.Context, ai.Request) (string, error) {
	s.calls++
	return s.reply, nil
}

func (s *stubGenerator) Stream(context.Context, ai.Request) (ai.TokenStream, error) {
	return nil, errors.New("not used")
}

func setupRouter(gen *stubGenerator) (*chi.Mux, *chatservice.Service) {
	chatSvc := chatservice.NewService(chatservice.Options{})
	assistantSvc := assistant.NewService(chatSvc, gen, intent.NewReplier(func(int) int { return 0 }), nil)
	handler := New(assistantSvc, chatSvc, nil)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r, chatSvc
}

func post(r http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestChatReturnsModelReply(t *testing.T) {
	gen := &stubGenerator{reply: "Rust is a systems language."}
	r, chatSvc := setupRouter(gen)

	resp := post(r, "/chat", `{"sessionId":"s1","message":"explain rust to me"}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var body chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Success || body.Response != "Rust is a systems language." || body.SessionID != "s1" {
		t.Fatalf("unexpected body %+v", body)
	}
	if body.Timestamp.IsZero() {
		t.Fatalf("expected timestamp")
	}
	if got := len(chatSvc.Transcript(context.Background(), "s1")); got != 2 {
		t.Fatalf("expected 2 turns, got %d", got)
	}
}

func TestChatMissingFields(t *testing.T) {
	r, _ := setupRouter(&stubGenerator{})

	for _, body := range []string{`{}`, `{"sessionId":"s1"}`, `{"message":"hi"}`, `{"sessionId":"s1","message":"  "}`} {
		resp := post(r, "/chat", body)
		if resp.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", body, resp.Code)
		}
		if !strings.Contains(resp.Body.String(), `"success":false`) {
			t.Fatalf("%s: expected success=false, got %s", body, resp.Body.String())
		}
	}

	if resp := post(r, "/chat", `not json`); resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed body, got %d", resp.Code)
	}
}

func TestChatCannedReplySkipsModel(t *testing.T) {
	gen := &stubGenerator{reply: "unused"}
	r, _ := setupRouter(gen)

	resp := post(r, "/chat", `{"sessionId":"s1","message":"hello"}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if gen.calls != 0 {
		t.Fatalf("canned reply should not call the model")
	}
	if !strings.Contains(resp.Body.String(), intent.Variants(intent.Greeting)[0]) {
		t.Fatalf("unexpected reply %s", resp.Body.String())
	}
}

func TestHistory(t *testing.T) {
	r, chatSvc := setupRouter(&stubGenerator{})

	req := httptest.NewRequest(http.MethodGet, "/chat-history/unknown", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), `"chat":[]`) || !strings.Contains(resp.Body.String(), `"messageCount":0`) {
		t.Fatalf("unexpected empty history %s", resp.Body.String())
	}

	ctx := context.Background()
	ticket, _ := chatSvc.BeginTurn(ctx, "s1", "hi")
	_ = chatSvc.CompleteTurn(ctx, ticket, "hello")

	req = httptest.NewRequest(http.MethodGet, "/chat-history/s1", nil)
	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	var body historyResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.MessageCount != 2 || body.Chat[0].Role != chat.RoleUser || body.Chat[1].Content != "hello" {
		t.Fatalf("unexpected history %+v", body)
	}
}

func TestReset(t *testing.T) {
	r, chatSvc := setupRouter(&stubGenerator{})
	ctx := context.Background()
	_, _ = chatSvc.BeginTurn(ctx, "s1", "a")
	_, _ = chatSvc.BeginTurn(ctx, "s2", "b")

	resp := post(r, "/reset", `{"sessionId":"s1"}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if len(chatSvc.Transcript(ctx, "s1")) != 0 || len(chatSvc.Transcript(ctx, "s2")) != 1 {
		t.Fatalf("expected only s1 to be cleared")
	}

	req := httptest.NewRequest(http.MethodPost, "/reset", bytes.NewReader(nil))
	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for empty body, got %d", resp.Code)
	}
	if len(chatSvc.Transcript(ctx, "s2")) != 0 {
		t.Fatalf("expected all sessions cleared")
	}
	if !strings.Contains(resp.Body.String(), assistant.ResetConfirmation) {
		t.Fatalf("unexpected body %s", resp.Body.String())
	}
}
