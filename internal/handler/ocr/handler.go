package ocr

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	ocrService "github.com/zhouzirui/smartchat/internal/service/ocr"
	"github.com/zhouzirui/smartchat/pkg/utils"
)

// Handler 图片文字提取的HTTP处理器
type Handler struct {
	svc      *ocrService.Service
	maxBytes int64
	logger   *zap.Logger
}

// New 创建处理器，maxBytes 限制上传大小
func New(svc *ocrService.Service, maxBytes int64, logger *zap.Logger) *Handler {
	if maxBytes <= 0 {
		maxBytes = 10 << 20
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, maxBytes: maxBytes, logger: logger}
}

// RegisterRoutes 注册路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/extract-text", h.handleExtract)
}

type extractResponse struct {
	Success       bool   `json:"success"`
	ExtractedText string `json:"extractedText"`
	AIResponse    string `json:"aiResponse"`
	Filename      string `json:"filename"`
	AIAvailable   *bool  `json:"aiAvailable,omitempty"`
}

func (h *Handler) handleExtract(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.RespondError(w, http.StatusRequestEntityTooLarge, "Image is too large")
			return
		}
		utils.RespondError(w, http.StatusBadRequest, "No image file provided")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("image")
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "No image file provided")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Failed to read image")
		return
	}

	result, err := h.svc.Extract(r.Context(), r.FormValue("sessionId"), header.Filename, data)
	switch {
	case errors.Is(err, ocrService.ErrNoImage):
		utils.RespondError(w, http.StatusBadRequest, "No image file provided")
		return
	case errors.Is(err, ocrService.ErrSessionRequired):
		utils.RespondError(w, http.StatusBadRequest, "Session ID is required")
		return
	case err != nil:
		h.logger.Error("extract failed", zap.String("filename", header.Filename), zap.Error(err))
		utils.RespondError(w, http.StatusInternalServerError, "Failed to process image. Please try again.")
		return
	}

	resp := extractResponse{
		Success:       true,
		ExtractedText: result.ExtractedText,
		AIResponse:    result.AIResponse,
		Filename:      result.Filename,
	}
	if !result.AIAvailable {
		unavailable := false
		resp.AIAvailable = &unavailable
	}
	utils.RespondJSON(w, http.StatusOK, resp)
}
