package history

import (
	"context"
	"errors"
	"testing"

	"github.com/driftmind/driftmind/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsFollowUp_ShortQuery(t *testing.T) {
	a := New()
	assert.True(t, a.IsFollowUp("why"))
	assert.True(t, a.IsFollowUp("tell me more"))
}

func TestIsFollowUp_QuestionWordLongQueryIsNotFollowUp(t *testing.T) {
	a := New()
	assert.False(t, a.IsFollowUp("what is the recommended backup retention policy for production databases"))
}

func TestIsFollowUp_PhraseMatch(t *testing.T) {
	a := New()
	assert.True(t, a.IsFollowUp("could you give me some more examples of that particular configuration option"))
}

func TestIsFollowUp_PlainLongStatementIsNotFollowUp(t *testing.T) {
	a := New()
	assert.False(t, a.IsFollowUp("the quarterly report needs to be finalized before the end of business tomorrow"))
}

func TestExtractKeywords_ReturnsAtMostEightKeywords(t *testing.T) {
	a := New()
	hist := []types.ChatHistoryEntry{
		{Role: types.RoleUser, Content: "tell me about backups and storage retention"},
		{Role: types.RoleUser, Content: "configuration settings for database encryption"},
	}
	keywords := a.ExtractKeywords(hist)
	require.NotEmpty(t, keywords)
	assert.LessOrEqual(t, len(keywords), 8)
}

func TestExtractKeywords_EmptyHistory(t *testing.T) {
	a := New()
	assert.Nil(t, a.ExtractKeywords(nil))
}

func TestExtractDocumentReferences_FindsFileNamesAfterSourcesMarker(t *testing.T) {
	a := New()
	hist := []types.ChatHistoryEntry{
		{Role: types.RoleAssistant, Content: "Here is the answer.\nSources:\n- manual.pdf\n- notes.docx"},
	}
	refs := a.ExtractDocumentReferences(hist)
	assert.Contains(t, refs, "manual.pdf")
	assert.Contains(t, refs, "notes.docx")
}

func TestExtractDocumentReferences_IgnoresMessagesWithoutMarker(t *testing.T) {
	a := New()
	hist := []types.ChatHistoryEntry{
		{Role: types.RoleAssistant, Content: "see manual.pdf for details"},
	}
	assert.Empty(t, a.ExtractDocumentReferences(hist))
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, CosineSimilarity([]float32{1, 0, 0}, []float32{1, 0, 0}), 1e-9)
	assert.InDelta(t, 0.0, CosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.Equal(t, 0.0, CosineSimilarity([]float32{0, 0}, []float32{1, 1}))
}

func TestIsRelatedTopic_HighSimilarity(t *testing.T) {
	a := New()
	hist := []types.ChatHistoryEntry{{Role: types.RoleUser, Content: "how does backup retention work"}}
	embed := func(s string) ([]float32, error) { return []float32{1, 0, 0}, nil }
	related, err := a.IsRelatedTopic(context.Background(), "more about backup retention", hist, embed)
	require.NoError(t, err)
	assert.True(t, related)
}

func TestIsRelatedTopic_NoHistoryReturnsFalse(t *testing.T) {
	a := New()
	embed := func(s string) ([]float32, error) { return []float32{1}, nil }
	related, err := a.IsRelatedTopic(context.Background(), "query", nil, embed)
	require.NoError(t, err)
	assert.False(t, related)
}

func TestIsRelatedTopic_EmbedErrorPropagates(t *testing.T) {
	a := New()
	hist := []types.ChatHistoryEntry{{Role: types.RoleUser, Content: "prior question"}}
	embed := func(s string) ([]float32, error) { return nil, errors.New("embedding failed") }
	_, err := a.IsRelatedTopic(context.Background(), "query", hist, embed)
	assert.Error(t, err)
}
