package models

// LLMModel is one language model the writer can generate with.
type LLMModel struct {
	Key          string `json:"key"`
	DisplayName  string `json:"displayName"`
	APIName      string `json:"apiName"`
	ProviderID   string `json:"providerId"`
	ProviderName string `json:"providerName"`
	MaxTokens    int    `json:"maxTokens,omitempty"`
	Enabled      bool   `json:"enabled"`
}

// LLMModelGroup groups models by their provider for presentation.
type LLMModelGroup struct {
	ProviderID   string     `json:"providerId"`
	ProviderName string     `json:"providerName"`
	Models       []LLMModel `json:"models"`
}
