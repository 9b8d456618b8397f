package services

import (
	"net/url"
	"strings"

	"github.com/wadjakorntonsri/shippedtoday/pkg/core/domain"
	"github.com/wadjakorntonsri/shippedtoday/pkg/core/moderation"
)

const (
	msgValidation = "Validation error"
	msgTooShort   = "Content too short - please provide more details"
)

// cleanSubmission is a Submission after schema checks and sanitization.
type cleanSubmission struct {
	Title       string
	URL         string
	Description string
	Tags        []string
	TweetURL    string
}

func validateSubmission(sub domain.Submission) (*cleanSubmission, error) {
	var details []domain.FieldError

	if strings.TrimSpace(sub.Title) == "" {
		details = append(details, domain.FieldError{Field: "title", Message: "Title is required"})
	}
	if !isWebURL(sub.URL) {
		details = append(details, domain.FieldError{Field: "url", Message: "Must be a valid URL"})
	}
	if strings.TrimSpace(sub.Description) == "" {
		details = append(details, domain.FieldError{Field: "description", Message: "Description is required"})
	}
	tweetURL := strings.TrimSpace(sub.TweetURL)
	if tweetURL != "" && !isWebURL(tweetURL) {
		details = append(details, domain.FieldError{Field: "tweetUrl", Message: "Must be a valid tweet URL"})
	}
	if len(details) > 0 {
		return nil, &domain.ValidationError{Message: msgValidation, Details: details}
	}

	clean := &cleanSubmission{
		Title:       moderation.Sanitize(sub.Title),
		URL:         strings.TrimSpace(sub.URL),
		Description: moderation.Sanitize(sub.Description),
		Tags:        moderation.SanitizeTags(sub.Tags),
		TweetURL:    tweetURL,
	}

	for _, f := range []struct{ name, value string }{
		{"title", clean.Title},
		{"description", clean.Description},
	} {
		if len([]rune(f.value)) < moderation.MinTextLength {
			details = append(details, domain.FieldError{Field: f.name, Message: msgTooShort})
		}
	}
	if len(details) > 0 {
		return nil, &domain.ValidationError{Message: msgTooShort, Details: details}
	}
	return clean, nil
}

func isWebURL(raw string) bool {
	u, err := url.ParseRequestURI(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
