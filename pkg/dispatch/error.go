package dispatch

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"ai-traininglab-be/pkg/llm"
)

// Kind is the closed failure taxonomy for model dispatches.
type Kind string

const (
	KindAuthentication   Kind = "AUTHENTICATION_FAILURE"
	KindRateLimited      Kind = "RATE_LIMITED"
	KindPermissionDenied Kind = "PERMISSION_DENIED"
	KindNetwork          Kind = "NETWORK_FAILURE"
	KindUnclassified     Kind = "UNCLASSIFIED"
)

// Error is a classified dispatch failure.
type Error struct {
	Kind    Kind
	Status  int // 0 when no HTTP status was available
	ModelId string
	Detail  string
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("dispatch %s: %s (status %d): %s", e.ModelId, e.Kind, e.Status, e.Detail)
	}
	return fmt.Sprintf("dispatch %s: %s: %s", e.ModelId, e.Kind, e.Detail)
}

// UserMessage renders the classification as the human-readable text shown
// in the thread in place of an assistant answer.
func (e *Error) UserMessage() string {
	switch e.Kind {
	case KindAuthentication:
		if strings.Contains(strings.ToLower(e.Detail), "project") {
			return "The project API credential was rejected. Ask an administrator to check the project key configuration."
		}
		return "Your API credential was rejected. Please check the configured API key."
	case KindRateLimited:
		return "The model is receiving too many requests right now. Wait a moment and send your message again."
	case KindPermissionDenied:
		return "The configured credential does not have permission to use this model."
	case KindNetwork:
		return "Could not reach the model service. Check your connection and try again."
	default:
		return "Something went wrong while generating a response. Please try again."
	}
}

// networkFingerprints are matched against transport errors that carry no
// HTTP status.
var networkFingerprints = []string{
	"connection refused",
	"connection reset",
	"no such host",
	"network is unreachable",
	"timeout",
	"deadline exceeded",
	"eof",
	"broken pipe",
}

// Classify maps a provider error into the taxonomy. Status codes win;
// content heuristics cover transport failures without one.
func Classify(modelId string, err error) *Error {
	var statusErr *llm.StatusError
	if errors.As(err, &statusErr) {
		kind := KindUnclassified
		switch statusErr.StatusCode {
		case http.StatusUnauthorized:
			kind = KindAuthentication
		case http.StatusForbidden:
			kind = KindPermissionDenied
		case http.StatusTooManyRequests:
			kind = KindRateLimited
		}
		return &Error{Kind: kind, Status: statusErr.StatusCode, ModelId: modelId, Detail: statusErr.Body}
	}

	lower := strings.ToLower(err.Error())
	for _, fp := range networkFingerprints {
		if strings.Contains(lower, fp) {
			return &Error{Kind: KindNetwork, ModelId: modelId, Detail: err.Error()}
		}
	}

	return &Error{Kind: KindUnclassified, ModelId: modelId, Detail: err.Error()}
}
