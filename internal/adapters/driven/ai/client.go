package ai

import (
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	defaultOllamaBaseURL = "http://localhost:11434/v1"

	// ollamaAPIKey is sent to OpenAI-compatible servers that ignore auth
	ollamaAPIKey = "ollama"
)

// newClient builds a go-openai client for an OpenAI-compatible endpoint
func newClient(apiKey, baseURL string, timeout time.Duration) *openai.Client {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = strings.TrimRight(baseURL, "/")
	}
	config.HTTPClient = &http.Client{Timeout: timeout}
	return openai.NewClientWithConfig(config)
}

// ollamaBaseURL makes sure an Ollama URL points at its /v1 compatibility API
func ollamaBaseURL(baseURL string) string {
	if baseURL == "" {
		return defaultOllamaBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")
	if !strings.HasSuffix(baseURL, "/v1") {
		baseURL += "/v1"
	}
	return baseURL
}
