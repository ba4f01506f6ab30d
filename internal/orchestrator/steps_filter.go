package orchestrator

import (
	"context"
	"sort"

	"github.com/driftmind/driftmind/internal/types"
)

// filterPlugin implements spec.md §4.1 step 7. The threshold itself
// (state.MinScore) is set by Orchestrator.Search before the chain runs,
// since it depends on whether this is a follow-up query.
type filterPlugin struct{}

func (p *filterPlugin) ActivationEvents() []Step { return []Step{StepFilter} }

func (p *filterPlugin) OnEvent(ctx context.Context, step Step, state *State, next func() *PluginError) *PluginError {
	kept := make([]*types.SearchResult, 0, len(state.Results))
	for _, r := range state.Results {
		if r.Score >= state.MinScore {
			kept = append(kept, r)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Score > kept[j].Score })

	if len(kept) > state.Request.MaxResults {
		kept = kept[:state.Request.MaxResults]
	}
	state.Results = kept
	return next()
}
