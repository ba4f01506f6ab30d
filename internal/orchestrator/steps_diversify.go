package orchestrator

import (
	"context"
	"sort"

	"github.com/driftmind/driftmind/internal/config"
	"github.com/driftmind/driftmind/internal/types"
)

// diversifyPlugin implements spec.md §4.1 step 8: one best chunk per
// document, widening maxSources for the first question of a conversation or
// when multiple documents survive filtering, to preserve follow-up candidates.
type diversifyPlugin struct {
	cfg config.SearchConfig
}

func (p *diversifyPlugin) ActivationEvents() []Step { return []Step{StepDiversify} }

func (p *diversifyPlugin) OnEvent(ctx context.Context, step Step, state *State, next func() *PluginError) *PluginError {
	best := bestPerDocument(state.Results)

	sort.SliceStable(best, func(i, j int) bool { return best[i].Score > best[j].Score })

	maxSources := state.MaxSources
	if maxSources == 0 {
		maxSources = p.cfg.MaxSourcesForAnswer
	}
	if len(state.Request.ChatHistory) == 0 || len(best) > 1 {
		if widened := len(best); widened > maxSources {
			maxSources = widened
		}
		if maxSources > 10 {
			maxSources = 10
		}
	}

	take := state.Request.MaxResults
	if maxSources < take {
		take = maxSources
	}
	if take > len(best) {
		take = len(best)
	}
	state.Results = best[:take]
	return next()
}

func bestPerDocument(results []*types.SearchResult) []*types.SearchResult {
	bestByDoc := make(map[string]*types.SearchResult, len(results))
	var order []string
	for _, r := range results {
		existing, ok := bestByDoc[r.DocumentID]
		if !ok {
			order = append(order, r.DocumentID)
			bestByDoc[r.DocumentID] = r
			continue
		}
		if r.Score > existing.Score {
			bestByDoc[r.DocumentID] = r
		}
	}
	best := make([]*types.SearchResult, 0, len(order))
	for _, docID := range order {
		best = append(best, bestByDoc[docID])
	}
	return best
}
