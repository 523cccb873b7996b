package factory

import (
	"context"
	"fmt"

	"stock-ticker-be/internal/config"
	"stock-ticker-be/pkg/llm"
	"stock-ticker-be/pkg/llm/gemini"
	"stock-ticker-be/pkg/llm/huggingface"
	"stock-ticker-be/pkg/llm/ollama"
	"stock-ticker-be/pkg/llm/openai"
)

func NewLLMProvider(ctx context.Context, cfg config.AIConfig) (llm.LLMProvider, error) {
	switch cfg.LLMProvider {
	case "ollama":
		baseURL := cfg.OllamaBaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, cfg.LLMModel), nil
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required for the openai provider")
		}
		return openai.NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.LLMModel), nil
	case "huggingface":
		return huggingface.NewHuggingFaceProvider(cfg.HuggingFaceKey, "", cfg.LLMModel), nil
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GOOGLE_GEMINI_API_KEY is required for the gemini provider")
		}
		return gemini.NewGeminiProvider(ctx, cfg.GeminiAPIKey, cfg.LLMModel)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.LLMProvider)
	}
}
