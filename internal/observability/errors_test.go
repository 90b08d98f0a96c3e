package observability

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

func TestRecordErrorWritesStandardizedErrorResponse(t *testing.T) {
	ctx := ContextWithRequestID(context.Background(), "req-1")
	span := trace.SpanFromContext(ctx)
	logger := zap.NewNop()

	counter, err := otel.Meter("test").Int64Counter("test.errors.total")
	if err != nil {
		t.Fatalf("creating counter: %v", err)
	}

	w := httptest.NewRecorder()

	RecordError(
		ctx,
		span,
		logger,
		counter,
		"arithmetic",
		"Error in the expression or calculation",
		errors.New("invalid expression"),
		http.StatusBadRequest,
		"2 +",
		w,
	)

	resp := w.Result()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}

	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected Content-Type application/json, got %q", ct)
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decoding response body: %v", err)
	}

	if got := body["error"]; got != "Error in the expression or calculation" {
		t.Fatalf("expected the error label, got %q", got)
	}
	if got := body["message"]; got != "invalid expression" {
		t.Fatalf("expected the cause message, got %q", got)
	}
	if got := body["expression"]; got != "2 +" {
		t.Fatalf("expected the expression to be echoed, got %q", got)
	}
}

func TestRecordErrorOmitsEmptyExpression(t *testing.T) {
	ctx := context.Background()
	span := trace.SpanFromContext(ctx)

	counter, err := otel.Meter("test").Int64Counter("test.errors.omit.total")
	if err != nil {
		t.Fatalf("creating counter: %v", err)
	}

	w := httptest.NewRecorder()
	RecordError(ctx, span, zap.NewNop(), counter, "solve", "Internal server error", errors.New("boom"), http.StatusInternalServerError, "", w)

	var body map[string]string
	if err := json.NewDecoder(w.Result().Body).Decode(&body); err != nil {
		t.Fatalf("decoding response body: %v", err)
	}
	if _, ok := body["expression"]; ok {
		t.Fatal("did not expect expression field for empty expression")
	}
}
