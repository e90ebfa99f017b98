package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByChatSessionID struct {
	ChatSessionID uuid.UUID
}

func (s ByChatSessionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("chat_session_id = ?", s.ChatSessionID)
}

// BySide scopes messages to one thread of a comparison session.
type BySide struct {
	Side string
}

func (s BySide) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("side = ?", s.Side)
}

// Unread scopes notifications to the ones not yet read.
type Unread struct{}

func (s Unread) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("is_read = ?", false)
}
