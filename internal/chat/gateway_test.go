package chat

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/driftmind/driftmind/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	lastMessages []Message
	response     string
	err          error
}

func (f *fakeProvider) Complete(ctx context.Context, messages []Message) (string, error) {
	f.lastMessages = messages
	return f.response, f.err
}

type fakeBlobGateway struct {
	content map[string]string
}

func (f *fakeBlobGateway) Upload(ctx context.Context, container, key, contentType string, metadata map[string]string, body io.Reader, size int64) (string, error) {
	return key, nil
}

func (f *fakeBlobGateway) Download(ctx context.Context, container, key string) (io.ReadCloser, error) {
	content, ok := f.content[key]
	if !ok {
		return nil, errors.New("not found")
	}
	return io.NopCloser(strings.NewReader(content)), nil
}

func (f *fakeBlobGateway) Delete(ctx context.Context, container, key string) error { return nil }

func (f *fakeBlobGateway) Exists(ctx context.Context, container, key string) (bool, error) {
	_, ok := f.content[key]
	return ok, nil
}

func TestAnswer_NoResultsNoHistoryErrors(t *testing.T) {
	g := New(&fakeProvider{response: "ok"}, &fakeBlobGateway{}, "English")
	_, err := g.Answer(context.Background(), "query", nil)
	assert.Error(t, err)
}

func TestAnswer_UsesGroundedPromptWithResults(t *testing.T) {
	p := &fakeProvider{response: "the answer"}
	g := New(p, &fakeBlobGateway{}, "English")

	results := []*types.SearchResult{{DocumentID: "doc-1", Content: "relevant content"}}
	answer, err := g.Answer(context.Background(), "what is this", results)
	require.NoError(t, err)
	assert.Equal(t, "the answer", answer)
	require.NotEmpty(t, p.lastMessages)
	assert.Equal(t, "system", p.lastMessages[0].Role)
	assert.Contains(t, p.lastMessages[0].Content, "Sources")
}

func TestAnswerWithHistory_NoResultsUsesHistoryOnlyPrompt(t *testing.T) {
	p := &fakeProvider{response: "history answer"}
	g := New(p, &fakeBlobGateway{}, "English")

	history := []types.ChatHistoryEntry{{Role: types.RoleUser, Content: "earlier question"}}
	answer, err := g.AnswerWithHistory(context.Background(), "follow up", nil, history)
	require.NoError(t, err)
	assert.Equal(t, "history answer", answer)
	assert.Contains(t, p.lastMessages[0].Content, "No document sources")
}

func TestAnswerWithHistory_LimitsToLastTenMessages(t *testing.T) {
	p := &fakeProvider{response: "ok"}
	g := New(p, &fakeBlobGateway{}, "English")

	history := make([]types.ChatHistoryEntry, 15)
	for i := range history {
		history[i] = types.ChatHistoryEntry{Role: types.RoleUser, Content: "turn"}
	}
	results := []*types.SearchResult{{DocumentID: "doc-1", Content: "content"}}
	_, err := g.AnswerWithHistory(context.Background(), "query", results, history)
	require.NoError(t, err)

	// system + 10 history + user = 12
	assert.Len(t, p.lastMessages, 12)
}

func TestExpandQuery_NoHistoryReturnsOriginal(t *testing.T) {
	g := New(&fakeProvider{response: "rewritten"}, &fakeBlobGateway{}, "English")
	expanded, err := g.ExpandQuery(context.Background(), "original query", nil)
	require.NoError(t, err)
	assert.Equal(t, "original query", expanded)
}

func TestExpandQuery_WithHistoryUsesProvider(t *testing.T) {
	p := &fakeProvider{response: "rewritten query"}
	g := New(p, &fakeBlobGateway{}, "English")
	history := []types.ChatHistoryEntry{{Role: types.RoleUser, Content: "about databases"}}
	expanded, err := g.ExpandQuery(context.Background(), "what about it", history)
	require.NoError(t, err)
	assert.Equal(t, "rewritten query", expanded)
}

func TestExpandQuery_ProviderErrorFallsBackToOriginal(t *testing.T) {
	p := &fakeProvider{err: errors.New("upstream down")}
	g := New(p, &fakeBlobGateway{}, "English")
	history := []types.ChatHistoryEntry{{Role: types.RoleUser, Content: "about databases"}}
	expanded, err := g.ExpandQuery(context.Background(), "what about it", history)
	require.NoError(t, err)
	assert.Equal(t, "what about it", expanded)
}
