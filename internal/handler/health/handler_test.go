package health

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
)

func TestHealthReport(t *testing.T) {
	h := New(Info{
		Model:     ModelInfo{Provider: "ollama", URL: "http://localhost:11434", Model: "llama3.2:1b"},
		OCREngine: "tesseract",
	})
	h.now = func() time.Time { return time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC) }

	r := chi.NewRouter()
	h.RegisterRoutes(r)

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var body report
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "OK" || body.Model.Model != "llama3.2:1b" || body.OCR["engine"] != "tesseract" {
		t.Fatalf("unexpected report %+v", body)
	}
	if !body.Features["chatStream"] || !body.Features["ocr"] {
		t.Fatalf("expected features enabled: %+v", body.Features)
	}
	if !body.Timestamp.Equal(time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected timestamp %v", body.Timestamp)
	}
}
