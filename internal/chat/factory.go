package chat

import (
	"fmt"
	"strings"

	"github.com/driftmind/driftmind/internal/config"
	"github.com/driftmind/driftmind/internal/types/interfaces"
)

// NewFromAppConfig builds a Gateway routed to the configured chat provider
// (mirrors the teacher's provider-switch factory pattern, narrowed to the
// two providers SPEC_FULL's DOMAIN STACK names).
func NewFromAppConfig(cfg *config.Config, blobGateway interfaces.BlobGateway) (*Gateway, error) {
	var provider Provider
	switch strings.ToLower(cfg.Chat.Provider) {
	case "ollama":
		provider = NewOllamaProvider(cfg.Chat.BaseURL, cfg.Chat.ModelName)
	case "openai_compatible", "":
		provider = NewOpenAIProvider(cfg.Chat.APIKey, cfg.Chat.BaseURL, cfg.Chat.ModelName)
	default:
		return nil, fmt.Errorf("unsupported chat provider: %s", cfg.Chat.Provider)
	}
	return New(provider, blobGateway, cfg.Server.UILanguage), nil
}
