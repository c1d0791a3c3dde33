package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/custodia-labs/ingest-core/internal/core/domain"
	"github.com/custodia-labs/ingest-core/internal/core/ports/driven"
)

// Ensure OpenAIClassifier implements Classifier
var _ driven.Classifier = (*OpenAIClassifier)(nil)

// DefaultClassifierModel is used when no model is configured
const DefaultClassifierModel = openai.GPT4oMini

const classifierSystemPrompt = `You map fragments of project documents onto a project's work items.

Given a chunk of text, the document type, and a list of candidate existing records, decide one action:
- create_new: the chunk describes new work not covered by any candidate
- map_existing: the chunk restates or updates one candidate record
- append_spec: the chunk adds detail or requirements to one candidate record
- ignore: the chunk carries no actionable content (greetings, filler, logistics)

Only use map_existing or append_spec with a target_record_id copied exactly from the candidate list.

Return ONLY a JSON object with these fields:
- action: one of create_new, map_existing, append_spec, ignore
- confidence: number between 0 and 1
- risk_level: low, medium or high (impact of accepting the mapping)
- category: decision, rule, cr, action or pending
- extracted_title: short title, at most 12 words
- extracted_description: one or two sentences
- target_record_id: the candidate id, or empty
- reasoning: one sentence`

// OpenAIClassifier classifies chunks with a JSON-mode chat completion
type OpenAIClassifier struct {
	client      *openai.Client
	model       string
	temperature float32
}

// NewOpenAIClassifier creates a classifier for the OpenAI API
func NewOpenAIClassifier(apiKey, model, baseURL string, temperature float32) (*OpenAIClassifier, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	return newClassifier(apiKey, model, baseURL, temperature), nil
}

// NewOllamaClassifier creates a classifier backed by Ollama's OpenAI-compatible API
func NewOllamaClassifier(baseURL, model string, temperature float32) (*OpenAIClassifier, error) {
	if model == "" {
		return nil, fmt.Errorf("Ollama classifier model is required")
	}
	return newClassifier(ollamaAPIKey, model, ollamaBaseURL(baseURL), temperature), nil
}

func newClassifier(apiKey, model, baseURL string, temperature float32) *OpenAIClassifier {
	if model == "" {
		model = DefaultClassifierModel
	}
	return &OpenAIClassifier{
		client:      newClient(apiKey, baseURL, 90*time.Second),
		model:       model,
		temperature: temperature,
	}
}

// Classify sends one chunk with its candidates and parses the JSON answer.
// Field validation is left to the caller; only transport and JSON errors
// are reported here.
func (c *OpenAIClassifier) Classify(ctx context.Context, req driven.ClassificationRequest) (*driven.ClassificationResponse, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: classifierSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: BuildClassificationPrompt(req)},
		},
		Temperature: c.temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("classification request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no completion choices returned")
	}

	return ParseClassification(resp.Choices[0].Message.Content)
}

// Model returns the model name being used
func (c *OpenAIClassifier) Model() string {
	return c.model
}

// Ping lists models to verify the endpoint and credentials
func (c *OpenAIClassifier) Ping(ctx context.Context) error {
	if _, err := c.client.ListModels(ctx); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrServiceUnavailable, err)
	}
	return nil
}

// Close releases resources held by the classifier
func (c *OpenAIClassifier) Close() error {
	return nil
}

// BuildClassificationPrompt renders the user message for one chunk
func BuildClassificationPrompt(req driven.ClassificationRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Document type: %s\n\n", req.DocumentType)
	b.WriteString("Chunk:\n")
	b.WriteString(req.ChunkText)
	b.WriteString("\n\nCandidate records:\n")
	if len(req.Candidates) == 0 {
		b.WriteString("(none)\n")
	}
	for _, cand := range req.Candidates {
		fmt.Fprintf(&b, "- id: %s\n  title: %s\n", cand.ID, cand.Title)
		if cand.Description != "" {
			fmt.Fprintf(&b, "  description: %s\n", oneLine(cand.Description))
		}
	}
	return b.String()
}

// ParseClassification decodes a JSON answer, tolerating a fenced code block
func ParseClassification(content string) (*driven.ClassificationResponse, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var out driven.ClassificationResponse
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &out); err != nil {
		return nil, fmt.Errorf("failed to parse classification: %w", err)
	}
	return &out, nil
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
