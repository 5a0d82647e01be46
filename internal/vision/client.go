package vision

import (
	"context"
	"fmt"
)

// Provider constants
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderMock      = "mock"
)

// Client is a vision-capable model backend. Implementations send the image
// with a system/user prompt pair and return the model's raw text response.
type Client interface {
	AnalyzeImage(ctx context.Context, fileBytes []byte, systemPrompt, userPrompt string) (string, error)
}

// NewClient creates a vision client based on the provider name.
// Returns an error if the provider is unknown or the API key is empty (except for mock).
func NewClient(provider, apiKey string) (Client, error) {
	switch provider {
	case ProviderAnthropic:
		if apiKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY is required for Anthropic provider")
		}
		return NewAnthropicClient(apiKey), nil

	case ProviderOpenAI:
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required for OpenAI provider")
		}
		return NewOpenAIClient(apiKey), nil

	case ProviderMock:
		return NewMockClient(), nil

	default:
		return nil, fmt.Errorf("unknown vision provider: %s (valid options: anthropic, openai, mock)", provider)
	}
}

// sniffMediaType detects the image MIME type from magic bytes. Defaults to
// JPEG, which is what most uploads are.
func sniffMediaType(fileBytes []byte) string {
	if len(fileBytes) >= 8 && string(fileBytes[:4]) == "\x89PNG" {
		return "image/png"
	}
	if len(fileBytes) >= 4 && string(fileBytes[:4]) == "RIFF" {
		return "image/webp"
	}
	if len(fileBytes) >= 4 && string(fileBytes[:4]) == "GIF8" {
		return "image/gif"
	}
	return "image/jpeg"
}
