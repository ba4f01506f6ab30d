package orchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/driftmind/driftmind/internal/config"
	"github.com/driftmind/driftmind/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIndex struct {
	hybrid  func(ctx context.Context, query string, vector []float32, top int, filterDocumentID string) ([]types.IndexHit, error)
	keyword func(ctx context.Context, query string, top int) ([]types.IndexHit, error)
	chunk0s map[string]types.DocumentChunk
}

func (f *fakeIndex) Initialize(ctx context.Context) error { return nil }
func (f *fakeIndex) IndexChunks(ctx context.Context, chunks []types.DocumentChunk) (int, int, error) {
	return len(chunks), 0, nil
}
func (f *fakeIndex) KeywordSearch(ctx context.Context, query string, top int) ([]types.IndexHit, error) {
	if f.keyword != nil {
		return f.keyword(ctx, query, top)
	}
	return nil, nil
}
func (f *fakeIndex) VectorSearch(ctx context.Context, vector []float32, top int) ([]types.IndexHit, error) {
	return nil, nil
}
func (f *fakeIndex) HybridSearch(ctx context.Context, query string, vector []float32, top int, filterDocumentID string) ([]types.IndexHit, error) {
	if f.hybrid != nil {
		return f.hybrid(ctx, query, vector, top, filterDocumentID)
	}
	return nil, nil
}
func (f *fakeIndex) GetChunk0s(ctx context.Context, documentIDs []string) (map[string]types.DocumentChunk, error) {
	if f.chunk0s != nil {
		return f.chunk0s, nil
	}
	return map[string]types.DocumentChunk{}, nil
}
func (f *fakeIndex) DocumentExists(ctx context.Context, documentID string) (bool, error) { return false, nil }
func (f *fakeIndex) DeleteDocument(ctx context.Context, documentID string) (bool, error) { return true, nil }
func (f *fakeIndex) GetChunkCount(ctx context.Context, documentID string) (int, error)    { return 0, nil }
func (f *fakeIndex) GetLastUpdated(ctx context.Context, documentID string) (time.Time, error) {
	return time.Time{}, nil
}
func (f *fakeIndex) GetTopChunks(ctx context.Context, documentID string, n int) ([]types.DocumentChunk, error) {
	return nil, nil
}
func (f *fakeIndex) GetAdjacentChunks(ctx context.Context, documentID string, chunkIndex, k int) ([]types.DocumentChunk, error) {
	return nil, nil
}

type fakeEmbedder struct{}

func (fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{0.1, 0.2, 0.3}, nil
}
func (fakeEmbedder) BatchEmbed(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, nil
}
func (fakeEmbedder) Dimensions() int   { return 3 }
func (fakeEmbedder) ModelName() string { return "fake" }

type fakeScorer struct{}

func (fakeScorer) Score(content, query string, vectorScore *float64) float64 {
	if vectorScore != nil {
		return *vectorScore
	}
	return 0.5
}

type fakeHistory struct {
	isFollowUp  bool
	docRefs     []string
	keywords    []string
	related     bool
}

func (f *fakeHistory) IsFollowUp(query string) bool { return f.isFollowUp }
func (f *fakeHistory) ExtractKeywords(history []types.ChatHistoryEntry) []string {
	return f.keywords
}
func (f *fakeHistory) ExtractDocumentReferences(history []types.ChatHistoryEntry) []string {
	return f.docRefs
}
func (f *fakeHistory) IsRelatedTopic(ctx context.Context, query string, history []types.ChatHistoryEntry, embed func(string) ([]float32, error)) (bool, error) {
	return f.related, nil
}

type fakeChat struct {
	answer string
	err    error
}

func (f *fakeChat) Answer(ctx context.Context, query string, results []*types.SearchResult) (string, error) {
	return f.answer, f.err
}
func (f *fakeChat) AnswerWithHistory(ctx context.Context, query string, results []*types.SearchResult, history []types.ChatHistoryEntry) (string, error) {
	return f.answer, f.err
}
func (f *fakeChat) ExpandQuery(ctx context.Context, query string, history []types.ChatHistoryEntry) (string, error) {
	return query, nil
}

func hit(docID string, idx int, score float64) types.IndexHit {
	return types.IndexHit{
		Chunk: types.DocumentChunk{
			ID:         types.ChunkID(docID, idx),
			DocumentID: docID,
			ChunkIndex: idx,
			Content:    "relevant content about databases",
		},
		Score:       score,
		VectorScore: score,
	}
}

func newTestOrchestrator(index *fakeIndex, hist *fakeHistory, chat *fakeChat) *Orchestrator {
	return New(index, fakeEmbedder{}, fakeScorer{}, hist, chat, config.SearchConfig{})
}

func TestSearch_EmptyQueryReturnsError(t *testing.T) {
	o := newTestOrchestrator(&fakeIndex{}, &fakeHistory{}, &fakeChat{})
	resp := o.Search(context.Background(), types.SearchRequest{Query: ""})
	assert.False(t, resp.Success)
	assert.NotEmpty(t, resp.Message)
}

func TestSearch_MaxResultsOutOfRangeReturnsError(t *testing.T) {
	o := newTestOrchestrator(&fakeIndex{}, &fakeHistory{}, &fakeChat{})
	resp := o.Search(context.Background(), types.SearchRequest{Query: "q", MaxResults: 51})
	assert.False(t, resp.Success)
}

func TestSearch_HappyPathNoHistory(t *testing.T) {
	idx := &fakeIndex{
		hybrid: func(ctx context.Context, query string, vector []float32, top int, filterDocumentID string) ([]types.IndexHit, error) {
			return []types.IndexHit{hit("doc-1", 0, 0.9), hit("doc-2", 0, 0.8)}, nil
		},
	}
	o := newTestOrchestrator(idx, &fakeHistory{}, &fakeChat{})
	resp := o.Search(context.Background(), types.SearchRequest{
		Query: "tell me about databases", MaxResults: 5, UseSemanticSearch: true,
	})
	require.True(t, resp.Success)
	assert.Equal(t, 2, resp.TotalResults)
	assert.Empty(t, resp.GeneratedAnswer)
}

func TestSearch_IncludeAnswerCallsChatGateway(t *testing.T) {
	idx := &fakeIndex{
		hybrid: func(ctx context.Context, query string, vector []float32, top int, filterDocumentID string) ([]types.IndexHit, error) {
			return []types.IndexHit{hit("doc-1", 0, 0.9)}, nil
		},
	}
	chat := &fakeChat{answer: "the answer"}
	o := newTestOrchestrator(idx, &fakeHistory{}, chat)
	resp := o.Search(context.Background(), types.SearchRequest{
		Query: "tell me about databases", MaxResults: 5, UseSemanticSearch: true, IncludeAnswer: true,
	})
	require.True(t, resp.Success)
	assert.Equal(t, "the answer", resp.GeneratedAnswer)
}

func TestSearch_NoResultsNoHistoryReturnsNoInformationMessage(t *testing.T) {
	idx := &fakeIndex{}
	o := newTestOrchestrator(idx, &fakeHistory{}, &fakeChat{answer: "should not be used"})
	resp := o.Search(context.Background(), types.SearchRequest{
		Query: "tell me about databases", MaxResults: 5, UseSemanticSearch: true, IncludeAnswer: true,
	})
	require.True(t, resp.Success)
	assert.Equal(t, types.NoInformationFoundMessage, resp.GeneratedAnswer)
}

func TestSearch_FollowUpShortcutResolvesFileNameToDocumentID(t *testing.T) {
	// ExtractDocumentReferences returns a filename (e.g. from a "Sources:"
	// line), not the real document id, so the shortcut must resolve it
	// against hydrated chunk-0 metadata before scoping retrieval.
	idx := &fakeIndex{
		hybrid: func(ctx context.Context, query string, vector []float32, top int, filterDocumentID string) ([]types.IndexHit, error) {
			switch filterDocumentID {
			case "":
				return []types.IndexHit{hit("doc-uuid-1", 0, 0.4)}, nil
			case "doc-uuid-1":
				return []types.IndexHit{hit("doc-uuid-1", 0, 0.9)}, nil
			default:
				return nil, nil
			}
		},
		chunk0s: map[string]types.DocumentChunk{
			"doc-uuid-1": {DocumentID: "doc-uuid-1", OriginalFileName: "manual.pdf"},
		},
	}
	hist := &fakeHistory{isFollowUp: true, docRefs: []string{"manual.pdf"}}
	o := newTestOrchestrator(idx, hist, &fakeChat{})
	history := []types.ChatHistoryEntry{{Role: types.RoleAssistant, Content: "Sources: manual.pdf"}}
	resp := o.Search(context.Background(), types.SearchRequest{
		Query: "what about it", MaxResults: 5, UseSemanticSearch: true, ChatHistory: history,
	})
	require.True(t, resp.Success)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "doc-uuid-1", resp.Results[0].DocumentID)
}

func TestSearch_FollowUpShortcutFallsBackWhenFileNameUnresolved(t *testing.T) {
	// A referenced filename that doesn't match any hydrated document falls
	// back to the normal unscoped chain instead of scoping on the filename.
	idx := &fakeIndex{
		hybrid: func(ctx context.Context, query string, vector []float32, top int, filterDocumentID string) ([]types.IndexHit, error) {
			if filterDocumentID == "" {
				return []types.IndexHit{hit("doc-uuid-1", 0, 0.9)}, nil
			}
			return nil, nil
		},
		chunk0s: map[string]types.DocumentChunk{
			"doc-uuid-1": {DocumentID: "doc-uuid-1", OriginalFileName: "other.pdf"},
		},
	}
	hist := &fakeHistory{isFollowUp: true, docRefs: []string{"manual.pdf"}}
	o := newTestOrchestrator(idx, hist, &fakeChat{})
	history := []types.ChatHistoryEntry{{Role: types.RoleAssistant, Content: "Sources: manual.pdf"}}
	resp := o.Search(context.Background(), types.SearchRequest{
		Query: "what about it", MaxResults: 5, UseSemanticSearch: true, ChatHistory: history,
	})
	require.True(t, resp.Success)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "doc-uuid-1", resp.Results[0].DocumentID)
}

func TestSearch_ExpandedQuerySetWhenDifferent(t *testing.T) {
	idx := &fakeIndex{
		hybrid: func(ctx context.Context, query string, vector []float32, top int, filterDocumentID string) ([]types.IndexHit, error) {
			return []types.IndexHit{hit("doc-1", 0, 0.9)}, nil
		},
	}
	chat := &fakeChat{answer: "ok"}
	o := newTestOrchestrator(idx, &fakeHistory{}, chat)

	// expandPlugin delegates to chat.ExpandQuery, which fakeChat echoes
	// back unchanged, so expandedQuery should NOT surface when it matches.
	resp := o.Search(context.Background(), types.SearchRequest{
		Query: "databases", MaxResults: 5, UseSemanticSearch: true, EnableQueryExpansion: true,
	})
	require.True(t, resp.Success)
	assert.Empty(t, resp.ExpandedQuery)
}
