package model

import (
	"time"

	"github.com/google/uuid"
)

// ExtractedContent keeps one row per session: the text pulled out of the
// user's uploaded documents. Replaced wholesale on overwrite.
type ExtractedContent struct {
	ChatSessionId uuid.UUID `gorm:"type:uuid;primaryKey"`
	Content       string    `gorm:"type:text;not null"`
	CharCount     int       `gorm:"not null;default:0"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime"`
}

func (ExtractedContent) TableName() string {
	return "extracted_contents"
}
