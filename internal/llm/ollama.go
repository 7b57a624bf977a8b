package llm

import (
	"fmt"
	"strings"
)

// DefaultOllamaURL is where a local Ollama server listens
const DefaultOllamaURL = "http://localhost:11434"

// NewOllamaProvider returns a provider for a local Ollama server, reached
// through its OpenAI-compatible /v1 API
func NewOllamaProvider(config Config) (*OpenAIProvider, error) {
	if config.Model == "" {
		return nil, fmt.Errorf("ollama model must be specified (e.g., llama3.1:8b, mistral)")
	}

	baseURL := strings.TrimSuffix(config.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultOllamaURL
	}
	if !strings.HasSuffix(baseURL, "/v1") {
		baseURL += "/v1"
	}
	config.BaseURL = baseURL

	// Ollama ignores the bearer token
	if config.APIKey == "" {
		config.APIKey = "ollama"
	}

	p, err := NewOpenAIProvider(config)
	if err != nil {
		return nil, err
	}
	p.name = "ollama"
	return p, nil
}
