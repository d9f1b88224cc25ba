package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/vidtube/backend/internal/errs"
	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/store"
	"github.com/vidtube/backend/internal/view"
)

func respondJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.FromContext(ctx).Error("encode response body", "status", status, "error", err)
		return
	}

	logger := logging.FromContext(ctx)
	switch {
	case status >= http.StatusInternalServerError:
		logger.Error("request failed", "status", status, "response", payload)
	case status >= http.StatusBadRequest:
		logger.Warn("request returned client error", "status", status, "response", payload)
	}
}

// respondError maps the failure taxonomy to HTTP statuses. Unrecognized
// errors stay opaque to the client.
func respondError(ctx context.Context, w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "internal error"
	switch {
	case errors.Is(err, errs.ErrInvalidInput):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, errs.ErrUnauthorized):
		status, message = http.StatusForbidden, "you do not have access to this resource"
	case errors.Is(err, errs.ErrNotFound):
		status, message = http.StatusNotFound, "resource not found"
	case errors.Is(err, errs.ErrConflict):
		status, message = http.StatusConflict, err.Error()
	case errors.Is(err, errs.ErrUpstreamFailed):
		status, message = http.StatusBadGateway, "upstream service unavailable"
	case errors.Is(err, errs.ErrReadFailed):
		message = "failed to read from the data store"
		logging.FromContext(ctx).Error("store read failed", "error", err)
	case errors.Is(err, errs.ErrWriteFailed):
		message = "failed to write to the data store"
		logging.FromContext(ctx).Error("store write failed", "error", err)
	default:
		logging.FromContext(ctx).Error("unhandled request error", "error", err)
	}
	respondJSON(ctx, w, status, map[string]string{"error": message})
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errs.ErrInvalidInput
	}
	return nil
}

// pathID extracts and validates an identifier path segment.
func pathID(r *http.Request, name string) (store.ID, error) {
	id, ok := store.ParseID(r.PathValue(name))
	if !ok {
		return "", errs.ErrInvalidInput
	}
	return id, nil
}

// pageRequest reads the pagination window from query parameters; absent
// or malformed values fall back to the defaults.
func pageRequest(r *http.Request) view.PageRequest {
	var req view.PageRequest
	if page, err := strconv.ParseInt(r.URL.Query().Get("page"), 10, 64); err == nil {
		req.Page = page
	}
	if limit, err := strconv.ParseInt(r.URL.Query().Get("limit"), 10, 64); err == nil {
		req.Limit = limit
	}
	return req
}
