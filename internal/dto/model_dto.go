package dto

type ModelResponse struct {
	Id          string   `json:"id"`
	DisplayName string   `json:"display_name"`
	Tags        []string `json:"tags,omitempty"`
	Provider    string   `json:"provider"`
}

type ListModelsResponse struct {
	Models []ModelResponse `json:"models"`
}
