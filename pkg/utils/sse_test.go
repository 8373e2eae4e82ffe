package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWriteSSEData(t *testing.T) {
	rec := httptest.NewRecorder()
	SetupSSEHeaders(rec)

	if err := WriteSSEData(rec, rec, map[string]string{"type": "chunk"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := rec.Body.String(); got != "data: {\"type\":\"chunk\"}\n\n" {
		t.Fatalf("unexpected frame %q", got)
	}
	if !rec.Flushed {
		t.Fatalf("expected frame to be flushed")
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("unexpected content type %q", ct)
	}
}

func TestRespondError(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondError(rec, http.StatusBadRequest, "bad")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if got := rec.Body.String(); got != "{\"error\":\"bad\",\"success\":false}\n" {
		t.Fatalf("unexpected body %q", got)
	}
}
