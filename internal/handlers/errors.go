package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"tutorledger/internal/httpx"
	"tutorledger/internal/services"
)

// writeServiceError maps service failures onto the single-error-payload
// convention: validation details for 400s, a distinct code for the
// non-fatal "nothing to undo" case, opaque 500 otherwise.
func writeServiceError(w http.ResponseWriter, err error) {
	if fields, ok := services.AsValidation(err); ok {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", fields)
		return
	}
	switch {
	case errors.Is(err, services.ErrNoPayments):
		httpx.JSONError(w, http.StatusNotFound, "no_payments", nil)
	case errors.Is(err, services.ErrNotFound):
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
	default:
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
	}
}

func methodNotAllowed(w http.ResponseWriter, allow string) {
	w.Header().Set("Allow", allow)
	httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
}

func uintQuery(r *http.Request, key string) uint {
	v := r.URL.Query().Get(key)
	if v == "" {
		return 0
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0
	}
	return uint(n)
}

func intQuery(r *http.Request, key string) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

// parseDate reads a date-only value ("2026-03-02").
func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}
