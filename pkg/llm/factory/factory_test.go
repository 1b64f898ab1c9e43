package factory

import (
	"testing"

	"ai-scheduler-be/pkg/llm/huggingface"
	"ai-scheduler-be/pkg/llm/ollama"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLLMProvider(t *testing.T) {
	p, err := NewLLMProvider("ollama", "llama3", "", "")
	require.NoError(t, err)
	o, ok := p.(*ollama.OllamaProvider)
	require.True(t, ok)
	assert.Equal(t, ollama.DefaultBaseURL, o.BaseURL)

	p, err = NewLLMProvider("huggingface", "m", "", "key")
	require.NoError(t, err)
	assert.IsType(t, &huggingface.HuggingFaceProvider{}, p)

	_, err = NewLLMProvider("huggingface", "m", "", "")
	assert.Error(t, err)

	p, err = NewLLMProvider("none", "", "", "")
	require.NoError(t, err)
	assert.Nil(t, p)

	_, err = NewLLMProvider("gpt", "", "", "")
	assert.Error(t, err)
}
