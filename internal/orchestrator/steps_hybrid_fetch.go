package orchestrator

import (
	"context"

	"github.com/driftmind/driftmind/internal/common"
	"github.com/driftmind/driftmind/internal/types"
	"github.com/driftmind/driftmind/internal/types/interfaces"
)

// hybridFetchPlugin implements spec.md §4.1 step 4.
type hybridFetchPlugin struct {
	index interfaces.IndexGateway
}

func (p *hybridFetchPlugin) ActivationEvents() []Step { return []Step{StepHybridFetch} }

func (p *hybridFetchPlugin) OnEvent(ctx context.Context, step Step, state *State, next func() *PluginError) *PluginError {
	k := fetchWidth(state.Request.MaxResults, state.SearchQuery)

	var hits []types.IndexHit
	var err error

	switch {
	case len(state.scopedDocumentIDs) > 0:
		hits, err = p.fetchScoped(ctx, state, k)
	case state.Request.UseSemanticSearch:
		hits, err = p.index.HybridSearch(ctx, state.SearchQuery, state.QueryVector, k, state.Request.DocumentID)
	default:
		limit := state.Request.MaxResults * 2
		if limit > 50 {
			limit = 50
		}
		hits, err = p.index.KeywordSearch(ctx, state.SearchQuery, limit)
	}
	if err != nil {
		return newPluginError(step, err)
	}

	state.Hits = hits
	common.PipelineInfo(ctx, string(step), "fetched", map[string]interface{}{
		"hit_count": len(hits),
		"k":         k,
	})
	return next()
}

// fetchScoped runs one hybrid search per scoped document and merges hits,
// used by the step-1 follow-up shortcut.
func (p *hybridFetchPlugin) fetchScoped(ctx context.Context, state *State, k int) ([]types.IndexHit, error) {
	var merged []types.IndexHit
	for _, docID := range state.scopedDocumentIDs {
		hits, err := p.index.HybridSearch(ctx, state.SearchQuery, state.QueryVector, k, docID)
		if err != nil {
			return nil, err
		}
		merged = append(merged, hits...)
	}
	return merged, nil
}

// fetchWidth implements K = maxResults * (4 if |searchQuery| < 20 else 3).
func fetchWidth(maxResults int, searchQuery string) int {
	multiplier := 3
	if len(searchQuery) < 20 {
		multiplier = 4
	}
	return maxResults * multiplier
}
