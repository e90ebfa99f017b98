package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateSessionRequest struct {
	Comparison bool `json:"comparison"`
}

type CreateSessionResponse struct {
	Id uuid.UUID `json:"id"`
}

type GetAllSessionsResponse struct {
	Id           uuid.UUID  `json:"id"`
	Title        string     `json:"title"`
	IsComparison bool       `json:"is_comparison"`
	ModelId      string     `json:"model_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at"`
}

type GetChatHistoryResponse struct {
	Id          uuid.UUID `json:"id"`
	Role        string    `json:"role"`
	Chat        string    `json:"chat"`
	ModelId     string    `json:"model_id,omitempty"`
	Attachments []string  `json:"attachments,omitempty"`
	IsError     bool      `json:"is_error,omitempty"`
	ErrorKind   string    `json:"error_kind,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type SendChatRequest struct {
	ChatSessionId uuid.UUID `json:"chat_session_id"`
	Chat          string    `json:"chat"`
	ContextPrompt string    `json:"context_prompt,omitempty"`
	Attachments   []string  `json:"attachments,omitempty" validate:"max=10"`
}

type SendChatResponseChat struct {
	Id        uuid.UUID `json:"id"`
	Chat      string    `json:"chat"`
	Role      string    `json:"role"`
	ModelId   string    `json:"model_id,omitempty"`
	IsError   bool      `json:"is_error,omitempty"`
	ErrorKind string    `json:"error_kind,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type SendChatResponse struct {
	ChatSessionId    uuid.UUID             `json:"chat_session_id"`
	ChatSessionTitle string                `json:"title"`
	Sent             *SendChatResponseChat `json:"sent"`
	Reply            *SendChatResponseChat `json:"reply"`
}

type RenameSessionRequest struct {
	Title string `json:"title" validate:"required,max=60"`
}

type SetSessionModelRequest struct {
	ModelId string `json:"model_id" validate:"required"`
}

type UpdateContextPromptRequest struct {
	ContextPrompt string `json:"context_prompt"`
}

type UpdateExtractRequest struct {
	Content string `json:"content" validate:"required"`
	Append  bool   `json:"append"`
}

type ExtractContentResponse struct {
	ChatSessionId uuid.UUID `json:"chat_session_id"`
	Content       string    `json:"content"`
	CharCount     int       `json:"char_count"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type DeleteSessionRequest struct {
	ChatSessionId uuid.UUID `json:"chat_session_id"`
}

// --- Limit Exceeded Error Types ---

// LimitExceededData is the data payload for 429 responses
type LimitExceededData struct {
	Limit      int       `json:"limit"`
	Used       int       `json:"used"`
	ResetAfter time.Time `json:"reset_after"`
}

// LimitExceededResponse is the full 429 response structure
type LimitExceededResponse struct {
	Success   bool              `json:"success"`
	Code      int               `json:"code"`
	Message   string            `json:"message"`
	ErrorType string            `json:"error_type"`
	Data      LimitExceededData `json:"data"`
}
