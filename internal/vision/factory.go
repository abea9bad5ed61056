package vision

import (
	"fmt"
	"strings"
)

// NewProvider creates a multimodal provider based on configuration.
func NewProvider(config Config) (Provider, error) {
	switch strings.ToLower(config.Provider) {
	case "gemini", "google", "":
		return NewGeminiProvider(config)

	case "openai":
		return NewOpenAIProvider(config)

	default:
		return nil, fmt.Errorf("unknown vision provider: %s (supported: gemini, openai)", config.Provider)
	}
}
