package stream

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/zhouzirui/smartchat/internal/model/chat"
	"github.com/zhouzirui/smartchat/internal/service/assistant"
	"github.com/zhouzirui/smartchat/pkg/utils"
)

// Handler manages streaming AI responses via Server-Sent Events
type Handler struct {
	assistant *assistant.Service
	logger    *zap.Logger
}

// New creates a new stream handler
func New(assistantSvc *assistant.Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{assistant: assistantSvc, logger: logger}
}

// RegisterRoutes 注册流式路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat-stream", h.handleStream)
	r.Get("/chat-ws", h.handleWebSocket)
}

// handleStream relays model output as SSE frames. Headers are committed with
// the first frame so that an unreachable model can still be reported as a
// plain 502 and the client can retry on /chat.
func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	var payload struct {
		SessionID string `json:"sessionId"`
		Message   string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sink := &sseSink{w: w, flusher: flusher, sessionID: strings.TrimSpace(payload.SessionID)}
	err := h.assistant.Stream(r.Context(), payload.SessionID, payload.Message, sink)
	switch {
	case err == nil:
	case errors.Is(err, assistant.ErrMessageRequired):
		utils.RespondError(w, http.StatusBadRequest, "Session ID and message are required")
	case errors.Is(err, assistant.ErrStreamUnavailable):
		utils.RespondError(w, http.StatusBadGateway, "AI model is unavailable. Please try again.")
	default:
		h.logger.Error("chat stream failed", zap.String("session_id", sink.sessionID), zap.Error(err))
		if sink.started {
			_ = sink.Error("Streaming failed. Please try again.")
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, "Internal server error. Please try again.")
	}
}

type sseSink struct {
	w         http.ResponseWriter
	flusher   http.Flusher
	sessionID string
	started   bool
}

func (s *sseSink) send(frame chat.Frame) error {
	if !s.started {
		utils.SetupSSEHeaders(s.w)
		s.w.WriteHeader(http.StatusOK)
		s.started = true
	}
	return utils.WriteSSEData(s.w, s.flusher, frame)
}

func (s *sseSink) Chunk(content string) error {
	return s.send(chat.NewChunkFrame(s.sessionID, content))
}

func (s *sseSink) Complete(full string) error {
	return s.send(chat.NewCompleteFrame(s.sessionID, full))
}

func (s *sseSink) Error(message string) error {
	return s.send(chat.NewErrorFrame(s.sessionID, message))
}
