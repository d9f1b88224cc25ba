package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vidtube/backend/internal/errs"
)

func TestRespondErrorStoreFailures(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"read", fmt.Errorf("%w: cursor closed", errs.ErrReadFailed), http.StatusInternalServerError, "failed to read from the data store"},
		{"write", fmt.Errorf("%w: duplicate key", errs.ErrWriteFailed), http.StatusInternalServerError, "failed to write to the data store"},
		{"unknown", fmt.Errorf("boom"), http.StatusInternalServerError, "internal error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			respondError(context.Background(), rec, tc.err)

			if rec.Code != tc.status {
				t.Fatalf("status %d, want %d", rec.Code, tc.status)
			}
			var body map[string]string
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body["error"] != tc.message {
				t.Fatalf("message %q, want %q", body["error"], tc.message)
			}
		})
	}
}
