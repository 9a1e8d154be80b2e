package handler

// Every handler in this package answers in JSON through the helpers below, so the
// wire format lives in one file:
//
//	success:  the record, the list, or {"message": "..."} for fixed confirmations
//	failure:  {"error": "not_found", "message": "question not found with id 42"}
//	          plus "field" when a validation error points at one input
//
// Handlers never pick status codes for errors themselves; they pass the error to
// writeError.

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/faq-chatbot/internal/apperror"
)

// maxBodyBytes caps request bodies. Question and answer are at most 500 characters
// each, so 64 KiB leaves plenty of room for JSON overhead.
const maxBodyBytes = 64 << 10

// ErrorResponse is the body of every 4xx/5xx answer. Error is one of the
// errorKinds codes below, or "internal_error".
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// MessageResponse carries the fixed confirmation strings ("Question ajoutée avec succès !").
type MessageResponse struct {
	Message string `json:"message"`
}

// writeJSON sets the content type and status, then encodes data. Headers cannot
// change once the first body byte is out, so an encode failure can only be logged.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
	}
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageResponse{Message: msg})
}

// errorKinds maps the apperror sentinels to a status and a machine-readable code.
// The first entry that errors.Is matches wins.
var errorKinds = []struct {
	sentinel error
	status   int
	code     string
}{
	{apperror.ErrValidation, http.StatusBadRequest, "validation_error"},
	{apperror.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
	{apperror.ErrForbidden, http.StatusForbidden, "forbidden"},
	{apperror.ErrNotFound, http.StatusNotFound, "not_found"},
	{apperror.ErrConflict, http.StatusConflict, "conflict"},
	{apperror.ErrTooLarge, http.StatusRequestEntityTooLarge, "payload_too_large"},
}

// writeError is the only place errors become HTTP statuses.
//
// errors.Is follows Unwrap through every fmt.Errorf("...: %w") layer, so a
// service error like "service/admin: creating bob: admin conflict with bob" still
// matches apperror.ErrConflict. Anything that matches no known sentinel (database
// failures, bugs) is logged and answered with a generic 500; its text may contain
// SQL or file paths and is never sent to the client.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		for _, k := range errorKinds {
			if errors.Is(err, k.sentinel) {
				writeJSON(w, k.status, ErrorResponse{
					Error:   k.code,
					Message: appErr.Message,
					Field:   appErr.Field,
				})
				return
			}
		}
	}

	slog.Error("internal error", slog.String("error", err.Error()))
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred",
	})
}

// decodeJSON reads exactly one JSON value from the body into dst. Unknown fields
// are ignored so clients sending whole records (id, createdAt...) keep working.
// A body over maxBodyBytes is a 413; trailing data after the value is a 400.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)

	if err := dec.Decode(dst); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return apperror.TooLarge(fmt.Sprintf("request body must be %d bytes or less", maxBodyBytes))
		}
		return apperror.ValidationFailed("body", "invalid JSON body")
	}
	if dec.More() {
		return apperror.ValidationFailed("body", "request body must contain a single JSON value")
	}
	return nil
}

// parseID reads the {id} URL parameter. Non-numeric and non-positive values are
// rejected with a validation error (400), never treated as "not found".
func parseID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.ValidationFailed("id", "id must be a positive integer")
	}
	return id, nil
}

// parsePagination reads optional ?limit=&offset= query parameters. Missing or
// malformed values mean "no limit" and "from the start".
func parsePagination(r *http.Request) (limit, offset int) {
	q := r.URL.Query()
	limit, _ = strconv.Atoi(q.Get("limit"))
	offset, _ = strconv.Atoi(q.Get("offset"))
	return limit, offset
}
