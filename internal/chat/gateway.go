// Package chat implements the Chat Gateway (spec.md §4.7): prompt
// composition and LLM invocation, with and without chat history.
package chat

import (
	"context"
	"fmt"

	"github.com/driftmind/driftmind/internal/types"
	"github.com/driftmind/driftmind/internal/types/interfaces"
)

// Message is a role-tagged chat turn passed to a Provider.
type Message struct {
	Role    string
	Content string
}

// Provider is the minimal contract a concrete chat backend implements.
type Provider interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

// Gateway implements interfaces.ChatGateway.
type Gateway struct {
	provider    Provider
	blobGateway interfaces.BlobGateway
	uiLanguage  string
}

// New builds a Gateway.
func New(provider Provider, blobGateway interfaces.BlobGateway, uiLanguage string) *Gateway {
	if uiLanguage == "" {
		uiLanguage = "English"
	}
	return &Gateway{provider: provider, blobGateway: blobGateway, uiLanguage: uiLanguage}
}

// Answer implements spec.md §4.7's answer(query, results).
func (g *Gateway) Answer(ctx context.Context, query string, results []*types.SearchResult) (string, error) {
	return g.AnswerWithHistory(ctx, query, results, nil)
}

// AnswerWithHistory implements spec.md §4.7's answerWithHistory.
func (g *Gateway) AnswerWithHistory(ctx context.Context, query string, results []*types.SearchResult, history []types.ChatHistoryEntry) (string, error) {
	var messages []Message

	if len(results) == 0 {
		if len(history) == 0 {
			return "", fmt.Errorf("chat gateway: no sources and no history to answer from")
		}
		messages = append(messages, Message{Role: "system", Content: historyOnlySystemPrompt(g.uiLanguage)})
	} else {
		contextBlock := buildContextBlock(ctx, g.blobGateway, results)
		messages = append(messages, Message{Role: "system", Content: groundedSystemPrompt(g.uiLanguage, contextBlock)})
	}

	messages = append(messages, historyMessages(history)...)
	messages = append(messages, Message{Role: "user", Content: query})

	return g.provider.Complete(ctx, messages)
}

// ExpandQuery implements spec.md §4.1 step 2's query reformulation given
// chat history.
func (g *Gateway) ExpandQuery(ctx context.Context, query string, history []types.ChatHistoryEntry) (string, error) {
	if len(history) == 0 {
		return query, nil
	}

	messages := []Message{
		{Role: "system", Content: "Rewrite the user's latest message as a single, self-contained search query using context from the conversation. Respond with ONLY the rewritten query, no explanation."},
	}
	messages = append(messages, historyMessages(history)...)
	messages = append(messages, Message{Role: "user", Content: query})

	expanded, err := g.provider.Complete(ctx, messages)
	if err != nil {
		return query, nil
	}
	if expanded == "" {
		return query, nil
	}
	return expanded, nil
}

// historyMessages includes at most the last 10 history messages,
// role-tagged (spec.md §4.7).
func historyMessages(history []types.ChatHistoryEntry) []Message {
	if len(history) > 10 {
		history = history[len(history)-10:]
	}
	messages := make([]Message, 0, len(history))
	for _, h := range history {
		messages = append(messages, Message{Role: string(h.Role), Content: h.Content})
	}
	return messages
}
