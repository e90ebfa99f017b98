package entity

import (
	"time"

	"github.com/google/uuid"
)

type ChatSession struct {
	Id           uuid.UUID
	UserId       uuid.UUID
	Title        string
	IsComparison bool
	ModelId      string // selected model, regular sessions only
	LeftModelId  string // comparison sessions only
	RightModelId string // comparison sessions only
	CreatedAt    time.Time
	UpdatedAt    *time.Time
	DeletedAt    *time.Time
	IsDeleted    bool
}
