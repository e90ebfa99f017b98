package implementation

import (
	"context"
	"errors"

	"ai-traininglab-be/internal/entity"
	"ai-traininglab-be/internal/mapper"
	"ai-traininglab-be/internal/model"
	"ai-traininglab-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ExtractedContentRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChatMapper
}

func NewExtractedContentRepository(db *gorm.DB) contract.ExtractedContentRepository {
	return &ExtractedContentRepositoryImpl{
		db:     db,
		mapper: mapper.NewChatMapper(),
	}
}

func (r *ExtractedContentRepositoryImpl) Upsert(ctx context.Context, content *entity.ExtractedContent) error {
	m := r.mapper.ExtractedContentToModel(content)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "chat_session_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"content", "char_count", "updated_at"}),
	}).Create(m).Error
	if err != nil {
		return err
	}
	*content = *r.mapper.ExtractedContentToEntity(m)
	return nil
}

func (r *ExtractedContentRepositoryImpl) FindBySessionId(ctx context.Context, sessionId uuid.UUID) (*entity.ExtractedContent, error) {
	var m model.ExtractedContent
	err := r.db.WithContext(ctx).Where("chat_session_id = ?", sessionId).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ExtractedContentToEntity(&m), nil
}

func (r *ExtractedContentRepositoryImpl) DeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("chat_session_id = ?", sessionId).Delete(&model.ExtractedContent{}).Error
}
