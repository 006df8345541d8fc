package llmgateway

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GenAIBackend implements Gateway against Google's Gemini API.
type GenAIBackend struct {
	client *genai.Client
	model  string
}

// NewGenAIBackend builds a backend for the given API key and model. An
// empty model defaults to Gemini Flash.
func NewGenAIBackend(ctx context.Context, apiKey, model string) (*GenAIBackend, error) {
	if model == "" {
		model = "gemini-2.5-flash"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("llmgateway: genai client: %w", err)
	}
	return &GenAIBackend{client: client, model: model}, nil
}

func (b *GenAIBackend) Complete(ctx context.Context, req Request) (*Response, error) {
	contents := []*genai.Content{genai.NewContentFromText(req.User, genai.RoleUser)}

	cfg := &genai.GenerateContentConfig{}
	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens)
	}
	if req.Temperature > 0 {
		temp := float32(req.Temperature)
		cfg.Temperature = &temp
	}

	result, err := b.client.Models.GenerateContent(ctx, b.model, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("llmgateway: genai completion: %w", err)
	}

	return completeWithExtraction(result.Text(), req), nil
}
