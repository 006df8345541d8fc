package llmgateway

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GenAIEmbedder adapts the genai client onto pkg/descindex's Embedder
// interface.
type GenAIEmbedder struct {
	client *genai.Client
	model  string
	dims   int32
}

// NewGenAIEmbedder builds an Embedder. model defaults to
// "gemini-embedding-001"; dims defaults to 768.
func NewGenAIEmbedder(ctx context.Context, apiKey, model string, dims int32) (*GenAIEmbedder, error) {
	if model == "" {
		model = "gemini-embedding-001"
	}
	if dims <= 0 {
		dims = 768
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("llmgateway: genai embedder client: %w", err)
	}
	return &GenAIEmbedder{client: client, model: model, dims: dims}, nil
}

func (e *GenAIEmbedder) Dimensions() int { return int(e.dims) }

func (e *GenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	contents := []*genai.Content{genai.NewContentFromText(text, genai.RoleUser)}
	result, err := e.client.Models.EmbedContent(ctx, e.model, contents,
		&genai.EmbedContentConfig{OutputDimensionality: &e.dims})
	if err != nil {
		return nil, fmt.Errorf("llmgateway: embed: %w", err)
	}
	if len(result.Embeddings) == 0 {
		return nil, fmt.Errorf("llmgateway: embed: no embeddings returned")
	}
	return result.Embeddings[0].Values, nil
}
