package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/zhouzirui/smartchat/internal/handler/health"
	"github.com/zhouzirui/smartchat/internal/service/ai"
	assistantService "github.com/zhouzirui/smartchat/internal/service/assistant"
	chatService "github.com/zhouzirui/smartchat/internal/service/chat"
)

type nopGenerator struct{}

func (nopGenerator) Generate(context.Context, ai.Request) (string, error) { return "ok", nil }

func (nopGenerator) Stream(context.Context, ai.Request) (ai.TokenStream, error) {
	return nil, context.Canceled
}

func TestRouterRoutes(t *testing.T) {
	chatSvc := chatService.NewService(chatService.Options{})
	router := NewRouter(Deps{
		Chat:      chatSvc,
		Assistant: assistantService.NewService(chatSvc, nopGenerator{}, nil, nil),
		Health:    health.Info{Model: health.ModelInfo{Provider: "ollama", Model: "m"}},
	})

	cases := []struct {
		method, path, body string
		want               int
	}{
		{http.MethodGet, "/health", "", http.StatusOK},
		{http.MethodGet, "/chat-history/abc", "", http.StatusOK},
		{http.MethodPost, "/chat", `{"sessionId":"s","message":"explain go"}`, http.StatusOK},
		{http.MethodPost, "/reset", `{}`, http.StatusOK},
		{http.MethodOptions, "/chat", "", http.StatusNoContent},
		{http.MethodPost, "/extract-text", "", http.StatusNotFound},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body))
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != tc.want {
			t.Fatalf("%s %s: expected %d, got %d", tc.method, tc.path, tc.want, resp.Code)
		}
	}
}
