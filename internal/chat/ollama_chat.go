package chat

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"
)

// OllamaProvider implements Provider via a local Ollama server, grounded on
// the teacher's internal/models/chat/ollama.go (buildChatRequest /
// convertMessages shape), simplified to a single non-streaming Complete
// call per SPEC_FULL's scope.
type OllamaProvider struct {
	client *api.Client
	model  string
}

// NewOllamaProvider builds an OllamaProvider.
func NewOllamaProvider(baseURL, model string) *OllamaProvider {
	u, err := url.Parse(baseURL)
	if err != nil || baseURL == "" {
		u, _ = url.Parse("http://localhost:11434")
	}
	return &OllamaProvider{client: api.NewClient(u, nil), model: model}
}

func (p *OllamaProvider) Complete(ctx context.Context, messages []Message) (string, error) {
	apiMessages := make([]api.Message, 0, len(messages))
	for _, m := range messages {
		apiMessages = append(apiMessages, api.Message{Role: m.Role, Content: m.Content})
	}

	streamFlag := false
	req := &api.ChatRequest{
		Model:    p.model,
		Messages: apiMessages,
		Stream:   &streamFlag,
	}

	var sb strings.Builder
	err := p.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		sb.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama chat: %w", err)
	}
	return sb.String(), nil
}
