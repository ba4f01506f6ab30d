package embedding

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// openAICompatibleEmbedder calls any OpenAI-compatible /embeddings endpoint.
type openAICompatibleEmbedder struct {
	client *openai.Client
	model  string
	dim    int
}

func newOpenAICompatibleEmbedder(apiKey, baseURL, model string, dim int) *openAICompatibleEmbedder {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &openAICompatibleEmbedder{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		dim:    dim,
	}
}

func (o *openAICompatibleEmbedder) embedOne(ctx context.Context, text string) ([]float32, error) {
	resp, err := o.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(o.model),
	})
	if err != nil {
		return nil, fmt.Errorf("openai embed: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("openai embed: empty response")
	}
	return resp.Data[0].Embedding, nil
}

func (o *openAICompatibleEmbedder) dimensions() int {
	return o.dim
}

func (o *openAICompatibleEmbedder) modelName() string {
	return o.model
}
