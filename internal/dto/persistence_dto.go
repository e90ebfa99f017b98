package dto

import (
	"ai-traininglab-be/internal/entity"

	"github.com/google/uuid"
)

type PersistKind string

const (
	PersistSession        PersistKind = "session"
	PersistMessage        PersistKind = "message"
	PersistExtract        PersistKind = "extract"
	PersistSessionDeleted PersistKind = "session_deleted"
)

// PersistEnvelope is the async persistence queue payload. Exactly one of the
// pointer fields is set, selected by Kind.
type PersistEnvelope struct {
	Kind      PersistKind              `json:"kind"`
	UserId    uuid.UUID                `json:"user_id"`
	Session   *entity.ChatSession      `json:"session,omitempty"`
	Message   *entity.ChatMessage      `json:"message,omitempty"`
	Extract   *entity.ExtractedContent `json:"extract,omitempty"`
	SessionId uuid.UUID                `json:"session_id,omitempty"`
}
