package domain

import (
	"testing"
)

func TestAIProvider_IsValid(t *testing.T) {
	tests := []struct {
		provider AIProvider
		expected bool
	}{
		{AIProviderOpenAI, true},
		{AIProviderOllama, true},
		{"anthropic", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.provider), func(t *testing.T) {
			if tt.provider.IsValid() != tt.expected {
				t.Errorf("expected IsValid() = %v for %q", tt.expected, tt.provider)
			}
		})
	}
}

func TestEmbeddingSettings_IsConfigured(t *testing.T) {
	tests := []struct {
		name     string
		settings EmbeddingSettings
		expected bool
	}{
		{
			name:     "empty provider",
			settings: EmbeddingSettings{Provider: "", Model: "test", APIKey: "key"},
			expected: false,
		},
		{
			name:     "openai without api key",
			settings: EmbeddingSettings{Provider: AIProviderOpenAI, Model: "test"},
			expected: false,
		},
		{
			name:     "openai with api key",
			settings: EmbeddingSettings{Provider: AIProviderOpenAI, APIKey: "sk-test"},
			expected: true,
		},
		{
			name:     "ollama without api key (ok)",
			settings: EmbeddingSettings{Provider: AIProviderOllama, Model: "nomic-embed-text"},
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := tt.settings.IsConfigured(); result != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, result)
			}
		})
	}
}

func TestClassifierSettings_IsConfigured(t *testing.T) {
	tests := []struct {
		name     string
		settings ClassifierSettings
		expected bool
	}{
		{
			name:     "empty provider",
			settings: ClassifierSettings{Model: "gpt-4o-mini", APIKey: "key"},
			expected: false,
		},
		{
			name:     "openai without api key",
			settings: ClassifierSettings{Provider: AIProviderOpenAI},
			expected: false,
		},
		{
			name:     "openai with api key",
			settings: ClassifierSettings{Provider: AIProviderOpenAI, APIKey: "sk-test", Temperature: 0.2},
			expected: true,
		},
		{
			name:     "ollama",
			settings: ClassifierSettings{Provider: AIProviderOllama, Model: "llama3"},
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := tt.settings.IsConfigured(); result != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, result)
			}
		})
	}
}
