package llm

import (
	"fmt"
	"strings"

	"github.com/ppiankov/omen/internal/model"
)

// NewProvider creates a new LLM provider based on configuration.
// An empty provider name disables summaries and returns nil.
func NewProvider(config Config) (Provider, error) {
	var (
		p   *OpenAIProvider
		err error
	)
	switch strings.ToLower(config.Provider) {
	case "openai":
		p, err = NewOpenAIProvider(config)
	case "ollama":
		p, err = NewOllamaProvider(config)
	case "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai, ollama)", config.Provider)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ConfigFromModel converts model configuration into provider configuration
func ConfigFromModel(cfg model.LLMConfig, httpCfg model.HTTPConfig) Config {
	return Config{
		Provider:        cfg.Provider,
		Model:           cfg.Model,
		APIKey:          cfg.APIKey,
		BaseURL:         cfg.BaseURL,
		Timeout:         cfg.Timeout,
		StrictCitations: cfg.StrictCitations,
		MaxTokens:       cfg.MaxTokens,
		HTTPProxy:       httpCfg.HTTPProxy,
		HTTPSProxy:      httpCfg.HTTPSProxy,
		NoProxy:         httpCfg.NoProxy,
	}
}
