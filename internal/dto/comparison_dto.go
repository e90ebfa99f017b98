package dto

import "github.com/google/uuid"

type ToggleCompareRequest struct {
	Enabled bool `json:"enabled"`
}

type ToggleCompareResponse struct {
	Enabled       bool       `json:"enabled"`
	ChatSessionId *uuid.UUID `json:"chat_session_id,omitempty"`
}

type SetComparisonModelRequest struct {
	ModelId string `json:"model_id" validate:"required"`
}

type ComparisonModelsResponse struct {
	LeftModelId  string `json:"left_model_id"`
	RightModelId string `json:"right_model_id"`
}

type SendComparisonRequest struct {
	ChatSessionId uuid.UUID `json:"chat_session_id"`
	Chat          string    `json:"chat"`
	LeftModelId   string    `json:"left_model_id"`
	RightModelId  string    `json:"right_model_id"`
	ContextPrompt string    `json:"context_prompt,omitempty"`
	Attachments   []string  `json:"attachments,omitempty" validate:"max=10"`
}

type SendComparisonResponse struct {
	ChatSessionId uuid.UUID                `json:"chat_session_id"`
	Left          []GetChatHistoryResponse `json:"left"`
	Right         []GetChatHistoryResponse `json:"right"`
}

type GetComparisonMessagesResponse struct {
	ChatSessionId uuid.UUID                `json:"chat_session_id"`
	Left          []GetChatHistoryResponse `json:"left"`
	Right         []GetChatHistoryResponse `json:"right"`
}
