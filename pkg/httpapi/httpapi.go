// Package httpapi holds the JSON conventions shared by the HTTP handlers.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/Black-And-White-Club/antrian/pkg/errkind"
	"github.com/Black-And-White-Club/antrian/pkg/observability/attr"
	"github.com/go-chi/chi/v5"
)

// MaxBodyBytes bounds JSON request bodies.
const MaxBodyBytes = 1 << 20

// ErrorBody is the error envelope of every failed request.
type ErrorBody struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// Guards are the middleware stacks modules wrap their routes in. Public
// applies CORS and rate limiting; Protected also requires a bearer token.
type Guards struct {
	Public    chi.Middlewares
	Protected chi.Middlewares
}

// StatusFor maps an error to its HTTP status and envelope code.
func StatusFor(err error) (int, string) {
	switch errkind.Of(err) {
	case errkind.Configuration:
		return http.StatusUnprocessableEntity, "configuration"
	case errkind.InvalidRequest:
		return http.StatusBadRequest, "invalid_request"
	case errkind.NotFound:
		return http.StatusNotFound, "not_found"
	case errkind.StateConflict:
		return http.StatusConflict, "state_conflict"
	case errkind.TransientStorage:
		return http.StatusServiceUnavailable, "transient_storage"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes the envelope for err. Server-side failures are logged
// and their message is not exposed.
func WriteError(ctx context.Context, w http.ResponseWriter, logger *slog.Logger, err error) {
	status, code := StatusFor(err)
	body := ErrorBody{Code: code, Message: err.Error()}

	switch {
	case status == http.StatusServiceUnavailable:
		body.Message = "storage temporarily unavailable"
		body.Details = map[string]any{"retryable": true}
	case status >= http.StatusInternalServerError:
		body.Message = "internal error"
	}

	if status >= http.StatusInternalServerError && logger != nil {
		logger.ErrorContext(ctx, "Request failed",
			attr.ExtractCorrelationID(ctx),
			attr.Int("status", status),
			attr.Error(err),
		)
	}
	WriteJSON(w, status, body)
}

// DecodeJSON reads a bounded JSON body into v, rejecting unknown fields.
// Failures wrap errkind.InvalidRequest.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("request body is empty: %w", errkind.InvalidRequest)
		}
		return fmt.Errorf("malformed request body: %w: %w", err, errkind.InvalidRequest)
	}
	return nil
}
