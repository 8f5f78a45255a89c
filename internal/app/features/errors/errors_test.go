package errors_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	uierrors "github.com/sahilshivekar/team23-ngo-backend/internal/app/features/errors"
	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/apiresp"
	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/apperr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestWrite_LogLevelFollowsStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		level  zapcore.Level
	}{
		{"validation", apperr.ValidationFailed("email", "Invalid email format"), http.StatusBadRequest, zapcore.DebugLevel},
		{"conflict", apperr.Conflict("name", "taken"), http.StatusConflict, zapcore.DebugLevel},
		{"internal", apperr.Internal("Internal server error", errors.New("boom")), http.StatusInternalServerError, zapcore.ErrorLevel},
		{"inconsistency", apperr.InternalInconsistency("lost", nil), http.StatusInternalServerError, zapcore.ErrorLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)
			el := uierrors.NewErrorLogger(zap.New(core))

			rec := httptest.NewRecorder()
			el.Write(rec, httptest.NewRequest(http.MethodPost, "/api/v1/ngo/register", nil), tt.err)

			if rec.Code != tt.status {
				t.Errorf("status: got %d, want %d", rec.Code, tt.status)
			}
			entries := logs.All()
			if len(entries) != 1 {
				t.Fatalf("expected 1 log entry, got %d", len(entries))
			}
			if entries[0].Level != tt.level {
				t.Errorf("level: got %v, want %v", entries[0].Level, tt.level)
			}
		})
	}
}

func TestNotFoundAndMethodNotAllowed(t *testing.T) {
	el := uierrors.NewErrorLogger(nil)

	rec := httptest.NewRecorder()
	el.NotFound(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("NotFound status: got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	el.MethodNotAllowed(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/ngo/login", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("MethodNotAllowed status: got %d", rec.Code)
	}
	var body apiresp.ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Success {
		t.Error("expected success=false")
	}
}
