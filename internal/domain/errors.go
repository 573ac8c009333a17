package domain

import (
	"errors"
	"fmt"
)

// AdvisorErrorKind separates transport, HTTP status and body-shape failures.
type AdvisorErrorKind string

const (
	AdvisorErrTransport AdvisorErrorKind = "transport"
	AdvisorErrHTTP      AdvisorErrorKind = "http"
	AdvisorErrParse     AdvisorErrorKind = "parse"
)

// AdvisorError carries the raw status and body of a failed LLM call for display.
type AdvisorError struct {
	Kind   AdvisorErrorKind
	Status int
	Body   string
	Err    error
}

func (e *AdvisorError) Error() string {
	switch e.Kind {
	case AdvisorErrHTTP:
		return fmt.Sprintf("advisor: HTTP %d: %s", e.Status, truncate(e.Body, 500))
	case AdvisorErrParse:
		if e.Err != nil {
			return fmt.Sprintf("advisor: malformed response: %v", e.Err)
		}
		return "advisor: malformed response"
	default:
		return fmt.Sprintf("advisor: request failed: %v", e.Err)
	}
}

func (e *AdvisorError) Unwrap() error {
	return e.Err
}

// AsAdvisorError extracts an *AdvisorError from err's chain.
func AsAdvisorError(err error) (*AdvisorError, bool) {
	var target *AdvisorError
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}

func truncate(value string, limit int) string {
	if len(value) <= limit {
		return value
	}
	return value[:limit] + "..."
}
