package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/zhouzirui/smartchat/internal/handler/chat"
	"github.com/zhouzirui/smartchat/internal/handler/health"
	"github.com/zhouzirui/smartchat/internal/handler/ocr"
	"github.com/zhouzirui/smartchat/internal/handler/stream"
	middlewarePkg "github.com/zhouzirui/smartchat/internal/middleware"
	assistantService "github.com/zhouzirui/smartchat/internal/service/assistant"
	chatService "github.com/zhouzirui/smartchat/internal/service/chat"
	ocrService "github.com/zhouzirui/smartchat/internal/service/ocr"
)

// Deps are the services the HTTP layer needs.
type Deps struct {
	Chat           *chatService.Service
	Assistant      *assistantService.Service
	OCR            *ocrService.Service
	UploadMaxBytes int64
	Health         health.Info
	Logger         *zap.Logger
}

// NewRouter wires HTTP routes to core services.
func NewRouter(deps Deps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewarePkg.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	chat.New(deps.Assistant, deps.Chat, logger).RegisterRoutes(r)
	stream.New(deps.Assistant, logger).RegisterRoutes(r)
	health.New(deps.Health).RegisterRoutes(r)

	// OCR is optional; without an engine the endpoint is simply absent.
	if deps.OCR != nil {
		ocr.New(deps.OCR, deps.UploadMaxBytes, logger).RegisterRoutes(r)
	}

	return r
}
