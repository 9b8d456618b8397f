package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/wadjakorntonsri/shippedtoday/pkg/core/domain"
)

type errorResponse struct {
	Error   string              `json:"error"`
	Details []domain.FieldError `json:"details,omitempty"`
}

type errorMapping struct {
	err     error
	status  int
	message string
}

var submitErrors = []errorMapping{
	{domain.ErrCooldown, http.StatusTooManyRequests, "Please wait a moment before submitting. Server is processing other submissions."},
	{domain.ErrSpam, http.StatusBadRequest, "Content flagged as potential spam. Please ensure your submission is legitimate."},
	{domain.ErrDuplicate, http.StatusConflict, "This content appears to be a duplicate of a recent submission. Please submit unique launches only."},
	{domain.ErrUnsafeContent, http.StatusBadRequest, "Invalid content detected"},
	{domain.ErrStoreFull, http.StatusInsufficientStorage, "Maximum number of launches reached"},
	{domain.ErrNotFound, http.StatusNotFound, "Launch not found"},
}

// submitError maps a service error to status and body. ok is false for
// errors with no public meaning; callers answer those with a generic 500.
func (h *HTTPHandler) submitError(err error) (int, errorResponse, bool) {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest, errorResponse{Error: ve.Message, Details: ve.Details}, true
	}
	if errors.Is(err, domain.ErrRateLimited) {
		msg := fmt.Sprintf("Rate limit exceeded. You can submit maximum %d launches per %s. Please try again later.", h.rateLimitMax, windowPhrase(h.rateWindow))
		return http.StatusTooManyRequests, errorResponse{Error: msg}, true
	}
	for _, m := range submitErrors {
		if errors.Is(err, m.err) {
			return m.status, errorResponse{Error: m.message}, true
		}
	}
	return http.StatusInternalServerError, errorResponse{}, false
}

// windowPhrase renders a rate-limit window for messages: "minute", "hour",
// or the duration itself ("30s") for anything else. Zero reads as a minute.
func windowPhrase(d time.Duration) string {
	switch d {
	case 0, time.Minute:
		return "minute"
	case time.Second:
		return "second"
	case time.Hour:
		return "hour"
	}
	return d.String()
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
