package entity

import (
	"time"

	"github.com/google/uuid"
)

// ExtractedContent is the text pulled from a session's uploaded documents.
// At most one entry exists per session; new extractions overwrite it unless
// the caller explicitly appends.
type ExtractedContent struct {
	ChatSessionId uuid.UUID
	Content       string
	CharCount     int
	UpdatedAt     time.Time
}
