package engine

import (
	"ai-traininglab-be/internal/entity"

	"github.com/google/uuid"
)

// ExtractStore is the per-session extracted-document cache the engine
// consults when building dispatch context. Writes are synchronous: a Get
// issued after Set returns observes the written value.
type ExtractStore interface {
	Set(sessionId uuid.UUID, content string) *entity.ExtractedContent
	Append(sessionId uuid.UUID, content string) *entity.ExtractedContent
	Get(sessionId uuid.UUID) (*entity.ExtractedContent, bool)
	Delete(sessionId uuid.UUID)
}

// Persister receives fire-and-forget persistence notifications after
// in-memory state has already changed. Implementations decide the policy
// (queue, log-and-continue); they must never block the caller on storage
// outcome, and the engine never rolls back on their account.
type Persister interface {
	SessionSaved(session *entity.ChatSession)
	MessageSaved(message *entity.ChatMessage)
	ExtractSaved(extract *entity.ExtractedContent)
	SessionDeleted(sessionId uuid.UUID)
}

// NopPersister is used in tests and for engines without a storage layer.
type NopPersister struct{}

func (NopPersister) SessionSaved(*entity.ChatSession) {}

func (NopPersister) MessageSaved(*entity.ChatMessage) {}

func (NopPersister) ExtractSaved(*entity.ExtractedContent) {}

func (NopPersister) SessionDeleted(uuid.UUID) {}
