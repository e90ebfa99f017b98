package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	NotificationDispatchFailed    = "DISPATCH_FAILED"
	NotificationLateReplyArrived  = "LATE_REPLY_ARRIVED"
	NotificationPersistenceFailed = "PERSISTENCE_FAILED"
	NotificationUploadCompleted   = "UPLOAD_COMPLETED"
)

type Notification struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	TypeCode  string
	Title     string
	Message   string
	Metadata  map[string]interface{}
	IsRead    bool
	ReadAt    *time.Time
	CreatedAt time.Time
}
