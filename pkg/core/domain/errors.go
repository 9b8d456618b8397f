package domain

import (
	"errors"
	"strings"
)

var (
	ErrCooldown      = errors.New("global submission cooldown active")
	ErrRateLimited   = errors.New("client rate limit exceeded")
	ErrSpam          = errors.New("content matched spam pattern")
	ErrDuplicate     = errors.New("duplicate of a recent submission")
	ErrUnsafeContent = errors.New("unsafe content")
	ErrStoreFull     = errors.New("maximum number of launches reached")
	ErrNotFound      = errors.New("launch not found")
)

// FieldError describes one rejected submission field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned when a submission fails schema checks or
// sanitization. Message is safe to show to the submitter.
type ValidationError struct {
	Message string
	Details []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Details) == 0 {
		return e.Message
	}
	parts := make([]string, 0, len(e.Details))
	for _, d := range e.Details {
		parts = append(parts, d.Field+": "+d.Message)
	}
	return e.Message + " (" + strings.Join(parts, "; ") + ")"
}

// IsValidation reports whether err carries a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
