package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ChatMessage struct {
	Id            uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ChatSessionId uuid.UUID      `gorm:"type:uuid;not null;index"`
	Side          string         `gorm:"type:varchar(10);not null;default:'main'"`
	Role          string         `gorm:"type:varchar(50);not null"`
	Chat          string         `gorm:"type:text;not null"`
	ModelId       string         `gorm:"type:varchar(100)"`
	Attachments   datatypes.JSON `gorm:"type:jsonb"`
	IsError       bool           `gorm:"default:false"`
	ErrorKind     string         `gorm:"type:varchar(50)"`
	CreatedAt     time.Time      `gorm:"autoCreateTime"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime"`
	DeletedAt     gorm.DeletedAt `gorm:"index"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}
