package review

import (
	"fmt"
	"strings"
)

// NewProvider creates a provider based on configuration. An empty provider
// name disables the review stage and returns (nil, nil).
func NewProvider(config Config) (Provider, error) {
	switch strings.ToLower(config.Provider) {
	case "openai":
		return NewOpenAIProvider(config)

	case "ollama":
		return NewOllamaProvider(config)

	case "":
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown review provider: %s (supported: openai, ollama)", config.Provider)
	}
}
