package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"stockval/pkg/core/fundamentals"
	"stockval/pkg/core/ingest"
	"stockval/pkg/core/valuation"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{valuation.ErrInvalidRate, http.StatusBadRequest},
		{fundamentals.ErrDataInsufficient, http.StatusNotFound},
		{valuation.ErrNonPositiveValuation, http.StatusUnprocessableEntity},
		{ingest.ErrRateLimited, http.StatusTooManyRequests},
		{fmt.Errorf("something else"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := StatusFor(tc.err); got != tc.want {
			t.Errorf("StatusFor(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestStatusForWrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("normalize failed: %w", fundamentals.ErrDataInsufficient)
	if got := StatusFor(wrapped); got != http.StatusNotFound {
		t.Errorf("StatusFor(wrapped) = %d, want 404", got)
	}
}

func TestWriteErrorBody(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/valuation", nil)

	WriteEngineError(rec, req, fmt.Errorf("growth out of range: %w", valuation.ErrInvalidRate))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	var body ErrorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if body.Path != "/api/valuation" {
		t.Errorf("path = %q, want /api/valuation", body.Path)
	}
	if body.Message == "" {
		t.Error("message should carry the validation detail")
	}
}

func TestWriteErrorHidesInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/valuation", nil)

	WriteEngineError(rec, req, fmt.Errorf("pq: connection refused on 10.1.2.3"))

	var body ErrorBody
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body.Message != "An unexpected error occurred" {
		t.Errorf("internal detail leaked: %q", body.Message)
	}
}
