package chat

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/zhouzirui/smartchat/internal/model/chat"
	"github.com/zhouzirui/smartchat/internal/service/assistant"
	chatService "github.com/zhouzirui/smartchat/internal/service/chat"
	"github.com/zhouzirui/smartchat/pkg/utils"
)

// Handler 聊天服务的HTTP处理器
type Handler struct {
	assistant *assistant.Service
	chatSvc   *chatService.Service
	logger    *zap.Logger
}

// New 创建聊天处理器
func New(assistantSvc *assistant.Service, chatSvc *chatService.Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		assistant: assistantSvc,
		chatSvc:   chatSvc,
		logger:    logger,
	}
}

// RegisterRoutes 注册聊天相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleChat)
	r.Get("/chat-history/{sessionId}", h.handleHistory)
	r.Post("/reset", h.handleReset)
}

// MessageRequest is the body of /chat and /chat-stream.
type MessageRequest struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}

type chatResponse struct {
	Success   bool      `json:"success"`
	Response  string    `json:"response"`
	SessionID string    `json:"sessionId"`
	Timestamp time.Time `json:"timestamp"`
}

type historyResponse struct {
	Success      bool        `json:"success"`
	Chat         []chat.Turn `json:"chat"`
	MessageCount int         `json:"messageCount"`
}

type resetResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// handleChat 非流式对话
func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var payload MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	reply, err := h.assistant.Reply(r.Context(), payload.SessionID, payload.Message)
	if errors.Is(err, assistant.ErrMessageRequired) {
		utils.RespondError(w, http.StatusBadRequest, "Session ID and message are required")
		return
	}
	if err != nil {
		h.logger.Error("chat failed", zap.String("session_id", payload.SessionID), zap.Error(err))
		utils.RespondError(w, http.StatusInternalServerError, "Internal server error. Please try again.")
		return
	}

	utils.RespondJSON(w, http.StatusOK, chatResponse{
		Success:   true,
		Response:  reply.Text,
		SessionID: strings.TrimSpace(payload.SessionID),
		Timestamp: time.Now().UTC(),
	})
}

// handleHistory 返回会话记录，未知会话返回空列表
func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionId")
	transcript := h.chatSvc.Transcript(r.Context(), sessionID)
	utils.RespondJSON(w, http.StatusOK, historyResponse{
		Success:      true,
		Chat:         transcript,
		MessageCount: len(transcript),
	})
}

// handleReset 清空单个或全部会话，空请求体视为全部
func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		SessionID string `json:"sessionId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil && !errors.Is(err, io.EOF) {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if sessionID := strings.TrimSpace(payload.SessionID); sessionID != "" {
		h.chatSvc.Reset(r.Context(), sessionID)
		h.logger.Info("session reset", zap.String("session_id", sessionID))
	} else {
		h.chatSvc.ResetAll(r.Context())
		h.logger.Info("all sessions reset")
	}

	utils.RespondJSON(w, http.StatusOK, resetResponse{
		Success: true,
		Message: assistant.ResetConfirmation,
	})
}
