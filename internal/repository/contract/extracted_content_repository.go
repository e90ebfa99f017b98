package contract

import (
	"context"

	"ai-traininglab-be/internal/entity"

	"github.com/google/uuid"
)

type ExtractedContentRepository interface {
	// Upsert replaces the session's row, creating it when absent.
	Upsert(ctx context.Context, content *entity.ExtractedContent) error
	FindBySessionId(ctx context.Context, sessionId uuid.UUID) (*entity.ExtractedContent, error)
	DeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error
}
