package mapper

import (
	"encoding/json"
	"time"

	"ai-traininglab-be/internal/entity"
	"ai-traininglab-be/internal/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

// Session Mappers

func (m *ChatMapper) ChatSessionToEntity(s *model.ChatSession) *entity.ChatSession {
	if s == nil {
		return nil
	}

	var deletedAt *time.Time
	if s.DeletedAt.Valid {
		t := s.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !s.UpdatedAt.IsZero() {
		t := s.UpdatedAt
		updatedAt = &t
	}

	return &entity.ChatSession{
		Id:           s.Id,
		UserId:       s.UserId,
		Title:        s.Title,
		IsComparison: s.IsComparison,
		ModelId:      s.ModelId,
		LeftModelId:  s.LeftModelId,
		RightModelId: s.RightModelId,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    updatedAt,
		DeletedAt:    deletedAt,
		IsDeleted:    s.DeletedAt.Valid,
	}
}

func (m *ChatMapper) ChatSessionToModel(s *entity.ChatSession) *model.ChatSession {
	if s == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if s.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *s.DeletedAt, Valid: true}
	} else if s.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if s.UpdatedAt != nil {
		updatedAt = *s.UpdatedAt
	}

	return &model.ChatSession{
		Id:           s.Id,
		UserId:       s.UserId,
		Title:        s.Title,
		IsComparison: s.IsComparison,
		ModelId:      s.ModelId,
		LeftModelId:  s.LeftModelId,
		RightModelId: s.RightModelId,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    updatedAt,
		DeletedAt:    deletedAt,
	}
}

// Message Mappers

func (m *ChatMapper) ChatMessageToEntity(msg *model.ChatMessage) *entity.ChatMessage {
	if msg == nil {
		return nil
	}

	var deletedAt *time.Time
	if msg.DeletedAt.Valid {
		t := msg.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !msg.UpdatedAt.IsZero() {
		t := msg.UpdatedAt
		updatedAt = &t
	}

	var attachments []string
	if len(msg.Attachments) > 0 {
		// malformed rows degrade to no attachments rather than failing the read
		_ = json.Unmarshal(msg.Attachments, &attachments)
	}

	return &entity.ChatMessage{
		Id:            msg.Id,
		ChatSessionId: msg.ChatSessionId,
		Side:          msg.Side,
		Role:          entity.Role(msg.Role),
		Chat:          msg.Chat,
		ModelId:       msg.ModelId,
		Attachments:   attachments,
		IsError:       msg.IsError,
		ErrorKind:     msg.ErrorKind,
		CreatedAt:     msg.CreatedAt,
		UpdatedAt:     updatedAt,
		DeletedAt:     deletedAt,
		IsDeleted:     msg.DeletedAt.Valid,
	}
}

func (m *ChatMapper) ChatMessageToModel(msg *entity.ChatMessage) *model.ChatMessage {
	if msg == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if msg.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *msg.DeletedAt, Valid: true}
	} else if msg.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if msg.UpdatedAt != nil {
		updatedAt = *msg.UpdatedAt
	}

	var attachments datatypes.JSON
	if len(msg.Attachments) > 0 {
		if raw, err := json.Marshal(msg.Attachments); err == nil {
			attachments = raw
		}
	}

	return &model.ChatMessage{
		Id:            msg.Id,
		ChatSessionId: msg.ChatSessionId,
		Side:          msg.Side,
		Role:          string(msg.Role),
		Chat:          msg.Chat,
		ModelId:       msg.ModelId,
		Attachments:   attachments,
		IsError:       msg.IsError,
		ErrorKind:     msg.ErrorKind,
		CreatedAt:     msg.CreatedAt,
		UpdatedAt:     updatedAt,
		DeletedAt:     deletedAt,
	}
}

// Extracted content

func (m *ChatMapper) ExtractedContentToEntity(e *model.ExtractedContent) *entity.ExtractedContent {
	if e == nil {
		return nil
	}
	return &entity.ExtractedContent{
		ChatSessionId: e.ChatSessionId,
		Content:       e.Content,
		CharCount:     e.CharCount,
		UpdatedAt:     e.UpdatedAt,
	}
}

func (m *ChatMapper) ExtractedContentToModel(e *entity.ExtractedContent) *model.ExtractedContent {
	if e == nil {
		return nil
	}
	return &model.ExtractedContent{
		ChatSessionId: e.ChatSessionId,
		Content:       e.Content,
		CharCount:     e.CharCount,
		UpdatedAt:     e.UpdatedAt,
	}
}
