package llm

import "fmt"

// StatusError is returned by providers when the upstream endpoint answers
// with a non-2xx status. The body is kept so callers can classify the
// failure (credential scope hints, rate-limit details).
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream status %d: %s", e.StatusCode, e.Body)
}
