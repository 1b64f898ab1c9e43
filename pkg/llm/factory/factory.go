package factory

import (
	"fmt"

	"ai-scheduler-be/pkg/llm"
	"ai-scheduler-be/pkg/llm/huggingface"
	"ai-scheduler-be/pkg/llm/ollama"
)

// NewLLMProvider builds the backend named by providerType. "none" and ""
// return a nil provider, which disables the model fallback.
func NewLLMProvider(providerType, modelName, baseURL, apiKey string) (llm.LLMProvider, error) {
	switch providerType {
	case "", "none":
		return nil, nil
	case "ollama":
		return ollama.NewOllamaProvider(baseURL, modelName), nil
	case "huggingface":
		if apiKey == "" {
			return nil, fmt.Errorf("huggingface provider requires an API key")
		}
		return huggingface.NewHuggingFaceProvider(apiKey, baseURL, modelName), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
