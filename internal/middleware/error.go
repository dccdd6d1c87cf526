package middleware

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// Envelope is the uniform response body for success and failure alike.
type Envelope struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data,omitempty"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

// RespondWithJSON writes a success envelope.
func RespondWithJSON(w http.ResponseWriter, statusCode int, data any, message string) {
	writeEnvelope(w, Envelope{
		StatusCode: statusCode,
		Data:       data,
		Message:    message,
		Success:    statusCode < 400,
	})
}

// RespondWithError writes a failure envelope with no data payload.
func RespondWithError(w http.ResponseWriter, statusCode int, message string) {
	writeEnvelope(w, Envelope{
		StatusCode: statusCode,
		Message:    message,
		Success:    false,
	})
}

// RespondWithValidationErrors writes a 400 envelope carrying per-field
// validation failures in the data payload.
func RespondWithValidationErrors(w http.ResponseWriter, errors []ValidationError) {
	writeEnvelope(w, Envelope{
		StatusCode: http.StatusBadRequest,
		Data:       map[string]any{"validation_errors": errors},
		Message:    "validation failed",
		Success:    false,
	})
}

func writeEnvelope(w http.ResponseWriter, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(env.StatusCode)
	json.NewEncoder(w).Encode(env)
}

// ErrorHandlingMiddleware converts panics into 500 envelopes so no request
// ever dies without a response.
func ErrorHandlingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("Panic recovered",
						zap.Any("error", err),
						zap.String("path", r.URL.Path),
						zap.String("method", r.Method),
					)

					RespondWithError(w, http.StatusInternalServerError, "internal server error")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
