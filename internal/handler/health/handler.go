package health

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/smartchat/pkg/utils"
)

// ModelInfo describes the configured model backend.
type ModelInfo struct {
	Provider string `json:"provider"`
	URL      string `json:"url,omitempty"`
	Model    string `json:"model"`
}

// Info is the static part of the health report.
type Info struct {
	Model     ModelInfo
	OCREngine string
}

// Handler 健康检查
type Handler struct {
	info Info
	now  func() time.Time
}

func New(info Info) *Handler {
	return &Handler{info: info, now: time.Now}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.handleHealth)
}

type report struct {
	Status    string          `json:"status"`
	Timestamp time.Time       `json:"timestamp"`
	Model     ModelInfo       `json:"model"`
	OCR       map[string]any  `json:"ocr"`
	Features  map[string]bool `json:"features"`
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, report{
		Status:    "OK",
		Timestamp: h.now().UTC(),
		Model:     h.info.Model,
		OCR:       map[string]any{"engine": h.info.OCREngine},
		Features: map[string]bool{
			"chat":            true,
			"chatStream":      true,
			"chatHistory":     true,
			"imageProcessing": h.info.OCREngine != "",
			"ocr":             h.info.OCREngine != "",
		},
	})
}
