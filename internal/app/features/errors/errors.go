// internal/app/features/errors/errors.go
package errors

import (
	"net/http"

	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/apiresp"
	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/apperr"
	"go.uber.org/zap"
)

// ErrorLogger writes error envelopes and logs them at a level matching
// their status: server faults at Error, everything else at Debug.
type ErrorLogger struct {
	Log *zap.Logger
}

// NewErrorLogger constructs an ErrorLogger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ErrorLogger{Log: logger}
}

// Write logs err and sends its envelope.
func (e *ErrorLogger) Write(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.HTTPStatus(err)
	fields := []zap.Field{
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.String("kind", string(apperr.KindOf(err))),
		zap.Error(err),
	}
	if f := apperr.FieldOf(err); f != "" {
		fields = append(fields, zap.String("field", f))
	}
	if status >= http.StatusInternalServerError {
		e.Log.Error("request failed", fields...)
	} else {
		e.Log.Debug("request rejected", fields...)
	}
	apiresp.Error(w, err)
}

// NotFound answers unknown routes.
func (e *ErrorLogger) NotFound(w http.ResponseWriter, r *http.Request) {
	apiresp.Error(w, apperr.NotFound("Route not found"))
}

// MethodNotAllowed answers known routes hit with the wrong method.
func (e *ErrorLogger) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	apiresp.Fail(w, http.StatusMethodNotAllowed, "Method not allowed")
}
