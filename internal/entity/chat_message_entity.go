package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Role is the validated sender of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ParseRole validates a raw role string, e.g. when rehydrating from storage.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleUser, RoleAssistant:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown message role %q", s)
	}
}

type ChatMessage struct {
	Id            uuid.UUID
	ChatSessionId uuid.UUID
	Side          string // constant.ChatSideMain | ChatSideLeft | ChatSideRight
	Role          Role
	Chat          string
	ModelId       string   // model that produced an assistant message
	Attachments   []string // file names attached to a user message
	IsError       bool
	ErrorKind     string
	CreatedAt     time.Time
	UpdatedAt     *time.Time
	DeletedAt     *time.Time
	IsDeleted     bool
}

// NewUserMessage builds a user message for a session thread.
func NewUserMessage(sessionId uuid.UUID, side, chat string, attachments []string, now time.Time) *ChatMessage {
	return &ChatMessage{
		Id:            uuid.New(),
		ChatSessionId: sessionId,
		Side:          side,
		Role:          RoleUser,
		Chat:          chat,
		Attachments:   attachments,
		CreatedAt:     now,
	}
}

// NewAssistantMessage builds a successful assistant reply.
func NewAssistantMessage(sessionId uuid.UUID, side, chat, modelId string, now time.Time) *ChatMessage {
	return &ChatMessage{
		Id:            uuid.New(),
		ChatSessionId: sessionId,
		Side:          side,
		Role:          RoleAssistant,
		Chat:          chat,
		ModelId:       modelId,
		CreatedAt:     now,
	}
}

// NewErrorMessage builds an assistant-role message carrying a dispatch
// failure classification. Failures surface in the thread, they are never
// re-raised to the rendering layer.
func NewErrorMessage(sessionId uuid.UUID, side, chat, modelId, kind string, now time.Time) *ChatMessage {
	return &ChatMessage{
		Id:            uuid.New(),
		ChatSessionId: sessionId,
		Side:          side,
		Role:          RoleAssistant,
		Chat:          chat,
		ModelId:       modelId,
		IsError:       true,
		ErrorKind:     kind,
		CreatedAt:     now,
	}
}
