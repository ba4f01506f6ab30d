package orchestrator

import (
	"context"
	"sort"

	"github.com/driftmind/driftmind/internal/scorer"
	"github.com/driftmind/driftmind/internal/types"
)

// historyEnhancePlugin implements spec.md §4.1 step 9 / §4.5.
type historyEnhancePlugin struct {
	o *Orchestrator
}

func (p *historyEnhancePlugin) ActivationEvents() []Step { return []Step{StepHistoryEnhance} }

func (p *historyEnhancePlugin) OnEvent(ctx context.Context, step Step, state *State, next func() *PluginError) *PluginError {
	history := state.Request.ChatHistory
	if len(history) == 0 {
		return next()
	}

	o := p.o
	if !state.IsFollowUp {
		state.IsFollowUp = o.history.IsFollowUp(state.Request.Query)
	}

	embedFn := func(text string) ([]float32, error) { return o.embedder.Embed(ctx, text) }
	related, err := o.history.IsRelatedTopic(ctx, state.Request.Query, history, embedFn)
	if err != nil {
		return newPluginError(step, err)
	}
	state.IsRelatedTopic = related

	if !state.IsFollowUp && !state.IsRelatedTopic {
		return next()
	}

	contextSet := state.Results
	historyKeywords := o.history.ExtractKeywords(history)
	documentReferences := o.history.ExtractDocumentReferences(history)

	if state.IsFollowUp {
		contextDocs := distinctResultDocumentIDs(contextSet)
		if len(contextDocs) == 0 {
			contextDocs = documentReferences
		}
		if len(contextDocs) > 0 {
			enhanced, err := o.runFollowUpEnhanced(ctx, state, contextDocs)
			if err != nil {
				return newPluginError(step, err)
			}
			if anyAboveThreshold(enhanced, 0.15) {
				state.Results = mergeEnhanced(enhanced, contextSet, state.Request.MaxResults, state.MaxSources)
				return next()
			}
		}
	}

	enhanced, err := o.runGenericEnhanced(ctx, state, historyKeywords, documentReferences)
	if err != nil {
		return newPluginError(step, err)
	}
	state.Results = mergeEnhanced(enhanced, contextSet, state.Request.MaxResults, 0)
	return next()
}

// runGenericEnhanced implements §4.5 steps 1-5: hybrid search with the
// original query, hydrate, score, boost by document reference / history
// keyword match, top 15.
func (o *Orchestrator) runGenericEnhanced(ctx context.Context, state *State, historyKeywords, documentReferences []string) ([]*types.SearchResult, error) {
	hits, err := o.index.HybridSearch(ctx, state.Request.Query, state.QueryVector, o.cfg.HistoryEnhanceTopK+5, "")
	if err != nil {
		return nil, err
	}
	results, err := o.hydrateAndScore(ctx, state, hits)
	if err != nil {
		return nil, err
	}
	for _, r := range results {
		r.Score = scorer.Combine(r.Score, r.DocumentID, r.OriginalFileName, r.Content, documentReferences, historyKeywords)
	}
	sortByScoreDesc(results)
	return truncate(results, o.cfg.HistoryEnhanceTopK), nil
}

// runFollowUpEnhanced implements §4.5's follow-up variant: search restricted
// to contextDocs, same-document hits boosted x2.5.
func (o *Orchestrator) runFollowUpEnhanced(ctx context.Context, state *State, contextDocs []string) ([]*types.SearchResult, error) {
	contextDocSet := make(map[string]bool, len(contextDocs))
	for _, id := range contextDocs {
		contextDocSet[id] = true
	}

	var hits []types.IndexHit
	for _, docID := range contextDocs {
		docHits, err := o.index.HybridSearch(ctx, state.Request.Query, state.QueryVector, o.cfg.HistoryEnhanceTopK+5, docID)
		if err != nil {
			return nil, err
		}
		hits = append(hits, docHits...)
	}

	results, err := o.hydrateAndScore(ctx, state, hits)
	if err != nil {
		return nil, err
	}
	for _, r := range results {
		r.Score = scorer.FollowUpBoost(r.Score, contextDocSet[r.DocumentID])
	}
	sortByScoreDesc(results)
	return truncate(results, o.cfg.HistoryEnhanceTopK), nil
}

// hydrateAndScore hydrates hits' per-document metadata then assigns each
// result its raw §4.3 score, same as the main chain's hydrate+score steps.
func (o *Orchestrator) hydrateAndScore(ctx context.Context, state *State, hits []types.IndexHit) ([]*types.SearchResult, error) {
	documentIDs := distinctDocumentIDs(hits)
	chunk0s, err := o.index.GetChunk0s(ctx, documentIDs)
	if err != nil {
		return nil, err
	}

	results := make([]*types.SearchResult, 0, len(hits))
	for _, hit := range hits {
		result := hydrateHit(hit, chunk0s)
		var vectorScore *float64
		if state.Request.UseSemanticSearch {
			v := result.VectorScore
			vectorScore = &v
		}
		result.Score = o.scorer.Score(result.Content, state.Request.Query, vectorScore)
		results = append(results, result)
	}
	return results, nil
}

func distinctResultDocumentIDs(results []*types.SearchResult) []string {
	seen := make(map[string]bool, len(results))
	var ids []string
	for _, r := range results {
		if !seen[r.DocumentID] {
			seen[r.DocumentID] = true
			ids = append(ids, r.DocumentID)
		}
	}
	return ids
}

func anyAboveThreshold(results []*types.SearchResult, threshold float64) bool {
	for _, r := range results {
		if r.Score > threshold {
			return true
		}
	}
	return false
}

func sortByScoreDesc(results []*types.SearchResult) {
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
}

func truncate(results []*types.SearchResult, n int) []*types.SearchResult {
	if len(results) > n {
		return results[:n]
	}
	return results
}

// mergeEnhanced adds the enhanced set first (higher priority), then fills
// from contextSet, deduping by documentId and keeping the best chunk per
// document, sorted by score desc and truncated to maxResults (and maxSources
// when set, per §4.5's follow-up merge rule).
func mergeEnhanced(enhanced, contextSet []*types.SearchResult, maxResults, maxSources int) []*types.SearchResult {
	seen := make(map[string]bool)
	var merged []*types.SearchResult
	for _, r := range enhanced {
		if !seen[r.DocumentID] {
			seen[r.DocumentID] = true
			merged = append(merged, r)
		}
	}
	for _, r := range contextSet {
		if !seen[r.DocumentID] {
			seen[r.DocumentID] = true
			merged = append(merged, r)
		}
	}
	sortByScoreDesc(merged)

	limit := maxResults
	if maxSources > 0 && maxSources < limit {
		limit = maxSources
	}
	return truncate(merged, limit)
}
