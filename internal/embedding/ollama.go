package embedding

import (
	"context"
	"fmt"
	"net/url"

	"github.com/ollama/ollama/api"
)

// ollamaEmbedder calls a local Ollama server's embeddings endpoint.
type ollamaEmbedder struct {
	client *api.Client
	model  string
	dim    int
}

func newOllamaEmbedder(baseURL, model string, dim int) *ollamaEmbedder {
	client := api.NewClient(mustParseURL(baseURL), nil)
	return &ollamaEmbedder{client: client, model: model, dim: dim}
}

func mustParseURL(raw string) *url.URL {
	if raw == "" {
		raw = "http://localhost:11434"
	}
	u, err := url.Parse(raw)
	if err != nil {
		u, _ = url.Parse("http://localhost:11434")
	}
	return u
}

func (o *ollamaEmbedder) embedOne(ctx context.Context, text string) ([]float32, error) {
	resp, err := o.client.Embed(ctx, &api.EmbedRequest{Model: o.model, Input: text})
	if err != nil {
		return nil, fmt.Errorf("ollama embed: %w", err)
	}
	if len(resp.Embeddings) == 0 {
		return nil, fmt.Errorf("ollama embed: empty response")
	}
	return resp.Embeddings[0], nil
}

func (o *ollamaEmbedder) dimensions() int {
	return o.dim
}

func (o *ollamaEmbedder) modelName() string {
	return o.model
}
