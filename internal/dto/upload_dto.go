package dto

import "github.com/google/uuid"

type UploadFilesResponse struct {
	ChatSessionId uuid.UUID       `json:"chat_session_id"`
	Uploaded      []UploadedFile  `json:"uploaded"`
	Rejected      []RejectedFile  `json:"rejected,omitempty"`
	Extract       *ExtractSummary `json:"extract,omitempty"`
}

type UploadedFile struct {
	Name string `json:"name"`
	Url  string `json:"url"`
}

type RejectedFile struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

type ExtractSummary struct {
	CharCount int `json:"char_count"`
}
