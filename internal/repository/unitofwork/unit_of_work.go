package unitofwork

import (
	"context"

	"ai-traininglab-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	ChatSessionRepository() contract.ChatSessionRepository
	ChatMessageRepository() contract.ChatMessageRepository
	ExtractedContentRepository() contract.ExtractedContentRepository
	NotificationRepository() contract.NotificationRepository
}
