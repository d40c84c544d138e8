// Package httpjson writes JSON responses and error envelopes for the API
// handlers. Every error body has the shape {"error": "..."} so clients can
// rely on one envelope; handler-visible details go to the structured log,
// never to the client.
package httpjson

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// Write encodes v as JSON with the given status code.
func Write(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// OK encodes v as JSON with a 200 status.
func OK(w http.ResponseWriter, v any) {
	Write(w, http.StatusOK, v)
}

// Error writes the standard error envelope.
func Error(w http.ResponseWriter, status int, msg string) {
	Write(w, status, map[string]string{"error": msg})
}

// ErrorLogger pairs error responses with structured logging so handlers can
// report a failure to the client and the log in one call.
type ErrorLogger struct {
	log *zap.Logger
}

// NewErrorLogger creates an ErrorLogger for handlers.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{log: logger}
}

// LogServerError logs an internal failure and answers 500 with userMsg.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg string) {
	e.log.Error(logMsg,
		zap.Error(err),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path))
	Error(w, http.StatusInternalServerError, userMsg)
}

// LogBadRequest logs a malformed request and answers 400 with userMsg.
func (e *ErrorLogger) LogBadRequest(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg string) {
	e.log.Warn(logMsg,
		zap.Error(err),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path))
	Error(w, http.StatusBadRequest, userMsg)
}
