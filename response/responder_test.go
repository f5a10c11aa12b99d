package response

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRespondAndLogCustom(t *testing.T) {
	tests := []struct {
		name      string
		debug     bool
		status    int
		wantInMsg string
	}{
		{"client error shows message", false, http.StatusBadRequest, "Bad selection"},
		{"server error hides message", false, http.StatusInternalServerError, "Error ID"},
		{"debug shows server error", true, http.StatusInternalServerError, "Bad selection"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := &Responder{DebugMode: tt.debug}
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/", nil)

			rr.RespondAndLogCustom(w, req.Context(), errors.New("bad selection"), slog.LevelWarn, tt.status)

			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d", w.Code, tt.status)
			}
			var body map[string]string
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("decoding body: %v", err)
			}
			if !strings.Contains(body["error"], tt.wantInMsg) {
				t.Errorf("error = %q, want it to contain %q", body["error"], tt.wantInMsg)
			}
			if body["err_id"] == "" {
				t.Error("missing err_id")
			}
			if w.Header().Get("X-Content-Type-Options") != "nosniff" {
				t.Error("missing nosniff header")
			}
		})
	}
}

func TestSendPDF(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	(&Responder{}).SendPDF(w, req.Context(), "Physik.pdf", []byte("%PDF-1.4"))

	if ct := w.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("content type = %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); cd != `attachment; filename="Physik.pdf"` {
		t.Errorf("content disposition = %q", cd)
	}
	if w.Body.String() != "%PDF-1.4" {
		t.Errorf("body = %q", w.Body.String())
	}
}

func TestSendJsonStatus(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	(&Responder{}).SendJsonStatus(w, req.Context(), http.StatusAccepted, map[string]string{"job_id": "x"})

	if w.Code != http.StatusAccepted || !strings.Contains(w.Body.String(), `"job_id":"x"`) {
		t.Errorf("got %d %s", w.Code, w.Body.String())
	}
}
