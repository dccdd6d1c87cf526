package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"go.uber.org/zap"
)

func TestProperty_EnvelopeShapeIsUniform(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("every response carries statusCode, message and success", prop.ForAll(
		func(statusCode int, message string) bool {
			rec := httptest.NewRecorder()
			RespondWithJSON(rec, statusCode, map[string]string{"k": "v"}, message)

			var envelope Envelope
			if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
				return false
			}

			return envelope.StatusCode == statusCode &&
				envelope.Message == message &&
				envelope.Success == (statusCode < 400) &&
				rec.Code == statusCode
		},
		gen.OneConstOf(200, 201, 400, 404, 409, 500, 502),
		gen.AlphaString(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestRespondWithError_OmitsData(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondWithError(rec, http.StatusNotFound, "draft not found")

	var raw map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&raw); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if _, ok := raw["data"]; ok {
		t.Error("error envelope should omit the data field")
	}
	if raw["success"] != false {
		t.Error("success should be false")
	}
}

func TestRespondWithValidationErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondWithValidationErrors(rec, []ValidationError{
		{Field: "SupplierID", Message: "This field is required"},
	})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	var envelope Envelope
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	data, ok := envelope.Data.(map[string]any)
	if !ok {
		t.Fatal("missing data payload")
	}
	if _, ok := data["validation_errors"]; !ok {
		t.Fatal("missing validation_errors in data")
	}
}

func TestErrorHandlingMiddleware_RecoversPanics(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})
	handler := ErrorHandlingMiddleware(zap.NewNop())(next)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}

	var envelope Envelope
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("panic response is not an envelope: %v", err)
	}
	if envelope.Success {
		t.Error("success = true on panic response")
	}
}
