package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftmind/driftmind/internal/types"
)

type fakeOrchestrator struct {
	lastRequest types.SearchRequest
	response    *types.SearchResponse
}

func (f *fakeOrchestrator) Search(ctx context.Context, req types.SearchRequest) *types.SearchResponse {
	f.lastRequest = req
	if f.response != nil {
		return f.response
	}
	return &types.SearchResponse{Query: req.Query, Success: true}
}

func newCallToolRequest(args map[string]interface{}) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func TestHandleSearchDocuments_PassesQueryThrough(t *testing.T) {
	fake := &fakeOrchestrator{}
	s := New(fake)

	result, err := s.handleSearchDocuments(context.Background(), newCallToolRequest(map[string]interface{}{
		"query": "what is the refund policy",
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Equal(t, "what is the refund policy", fake.lastRequest.Query)
	assert.True(t, fake.lastRequest.UseSemanticSearch)
	assert.False(t, fake.lastRequest.IncludeAnswer)
}

func TestHandleSearchDocuments_MissingQueryIsAnError(t *testing.T) {
	fake := &fakeOrchestrator{}
	s := New(fake)

	result, err := s.handleSearchDocuments(context.Background(), newCallToolRequest(map[string]interface{}{}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestHandleAskQuestion_RequestsAnswer(t *testing.T) {
	fake := &fakeOrchestrator{response: &types.SearchResponse{Query: "q", GeneratedAnswer: "the answer", Success: true}}
	s := New(fake)

	result, err := s.handleAskQuestion(context.Background(), newCallToolRequest(map[string]interface{}{
		"query":       "how do refunds work",
		"document_id": "doc-1",
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.True(t, fake.lastRequest.IncludeAnswer)
	assert.Equal(t, "doc-1", fake.lastRequest.DocumentID)

	var resp types.SearchResponse
	text := result.Content[0].(mcp.TextContent).Text
	require.NoError(t, json.Unmarshal([]byte(text), &resp))
	assert.Equal(t, "the answer", resp.GeneratedAnswer)
}
