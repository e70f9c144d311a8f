package domain

import (
	"errors"
	"strings"
)

var (
	// ErrNoCredentials is returned when the credential pool is built
	// with an empty key list.
	ErrNoCredentials = errors.New("no API credentials configured")

	// ErrEmptyResponse is returned when the API call succeeds at the
	// transport level but carries no generated text.
	ErrEmptyResponse = errors.New("empty response from model")
)

// DefaultQuotaPhrases are the rate-limit message fragments observed
// from the Gemini API. Matching is substring and case-sensitive.
var DefaultQuotaPhrases = []string{
	"429 Quota exceeded for quota metric",
	"429 Resource has been exhausted",
	"429 RESOURCE_EXHAUSTED",
}

// IsQuotaError reports whether err's message contains one of the known
// quota/rate-limit phrases. Quota failures are always retryable, rotate
// the active credential, and never count toward the worker's
// consecutive-failure ceiling.
func IsQuotaError(err error, phrases []string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, phrase := range phrases {
		if strings.Contains(msg, phrase) {
			return true
		}
	}
	return false
}
