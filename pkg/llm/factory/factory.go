package factory

import (
	"fmt"

	"drive-copilot-be/pkg/llm"
	"drive-copilot-be/pkg/llm/gemini"
	"drive-copilot-be/pkg/llm/ollama"
)

type Config struct {
	Provider string
	Model    string
	BaseURL  string
	APIKey   string
}

func NewLLMProvider(cfg Config) (llm.LLMProvider, error) {
	switch cfg.Provider {
	case "gemini", "":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("gemini provider requires an API key")
		}
		model := cfg.Model
		if model == "" {
			model = "gemini-2.0-flash"
		}
		return gemini.NewGeminiProvider(cfg.BaseURL, cfg.APIKey, model), nil
	case "ollama":
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
