package events

import (
	"time"

	"github.com/google/uuid"
)

// Event is the contract every domain event carries onto the bus.
type Event interface {
	// EventType returns the unique code for this event (e.g., "SESSION_CREATED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

const (
	TypeSessionCreated    = "SESSION_CREATED"
	TypeSessionDeleted    = "SESSION_DELETED"
	TypeDispatchFailed    = "DISPATCH_FAILED"
	TypeLateReplyArrived  = "LATE_REPLY_ARRIVED"
	TypePersistenceFailed = "PERSISTENCE_FAILED"
	TypeUploadCompleted   = "UPLOAD_COMPLETED"
)

// NewSessionCreated announces a fresh session, comparison or plain.
func NewSessionCreated(userId, sessionId uuid.UUID, isComparison bool) Event {
	return BaseEvent{
		Type: TypeSessionCreated,
		Data: map[string]interface{}{
			"user_id":       userId.String(),
			"session_id":    sessionId.String(),
			"is_comparison": isComparison,
		},
		OccurredAt: time.Now(),
	}
}

func NewSessionDeleted(userId, sessionId uuid.UUID) Event {
	return BaseEvent{
		Type: TypeSessionDeleted,
		Data: map[string]interface{}{
			"user_id":    userId.String(),
			"session_id": sessionId.String(),
		},
		OccurredAt: time.Now(),
	}
}

// NewDispatchFailed carries the classified failure of one model call.
func NewDispatchFailed(userId, sessionId uuid.UUID, modelId, kind string) Event {
	return BaseEvent{
		Type: TypeDispatchFailed,
		Data: map[string]interface{}{
			"user_id":    userId.String(),
			"session_id": sessionId.String(),
			"model_id":   modelId,
			"error_kind": kind,
		},
		OccurredAt: time.Now(),
	}
}

// NewLateReplyArrived announces a reply that landed after the user moved to
// another session, so the client can badge the origin session.
func NewLateReplyArrived(userId, sessionId uuid.UUID, modelId string) Event {
	return BaseEvent{
		Type: TypeLateReplyArrived,
		Data: map[string]interface{}{
			"user_id":    userId.String(),
			"session_id": sessionId.String(),
			"model_id":   modelId,
		},
		OccurredAt: time.Now(),
	}
}

func NewPersistenceFailed(userId, sessionId uuid.UUID, detail string) Event {
	return BaseEvent{
		Type: TypePersistenceFailed,
		Data: map[string]interface{}{
			"user_id":    userId.String(),
			"session_id": sessionId.String(),
			"detail":     detail,
		},
		OccurredAt: time.Now(),
	}
}

func NewUploadCompleted(userId, sessionId uuid.UUID, uploaded, failed int) Event {
	return BaseEvent{
		Type: TypeUploadCompleted,
		Data: map[string]interface{}{
			"user_id":    userId.String(),
			"session_id": sessionId.String(),
			"uploaded":   uploaded,
			"failed":     failed,
		},
		OccurredAt: time.Now(),
	}
}
