package domain

// AIProvider identifies the AI/embedding provider
type AIProvider string

const (
	AIProviderOpenAI AIProvider = "openai"
	AIProviderOllama AIProvider = "ollama" // OpenAI-compatible endpoint
)

// EmbeddingSettings configures the embedding service
type EmbeddingSettings struct {
	Provider AIProvider `json:"provider" yaml:"provider"`
	Model    string     `json:"model" yaml:"model"`
	APIKey   string     `json:"-" yaml:"-"` // Never serialize
	BaseURL  string     `json:"base_url,omitempty" yaml:"base_url"`
}

// IsConfigured returns true if embedding settings are properly configured
func (e *EmbeddingSettings) IsConfigured() bool {
	if e.Provider == "" {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// ClassifierSettings configures the chunk classifier
type ClassifierSettings struct {
	Provider    AIProvider `json:"provider" yaml:"provider"`
	Model       string     `json:"model" yaml:"model"`
	APIKey      string     `json:"-" yaml:"-"` // Never serialize
	BaseURL     string     `json:"base_url,omitempty" yaml:"base_url"`
	Temperature float32    `json:"temperature" yaml:"temperature"`
}

// IsConfigured returns true if classifier settings are properly configured
func (c *ClassifierSettings) IsConfigured() bool {
	if c.Provider == "" {
		return false
	}
	if c.Provider.RequiresAPIKey() && c.APIKey == "" {
		return false
	}
	return true
}

// RequiresAPIKey returns true if this provider requires an API key
func (p AIProvider) RequiresAPIKey() bool {
	switch p {
	case AIProviderOllama:
		return false // Self-hosted, no API key needed
	default:
		return true
	}
}

// IsValid returns true if this is a known provider
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOpenAI, AIProviderOllama:
		return true
	default:
		return false
	}
}
