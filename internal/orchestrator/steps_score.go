package orchestrator

import (
	"context"

	"github.com/driftmind/driftmind/internal/types/interfaces"
)

// scorePlugin implements spec.md §4.1 step 6 / §4.3's scorer.
type scorePlugin struct {
	scorer interfaces.RelevanceScorer
}

func (p *scorePlugin) ActivationEvents() []Step { return []Step{StepScore} }

func (p *scorePlugin) OnEvent(ctx context.Context, step Step, state *State, next func() *PluginError) *PluginError {
	for _, result := range state.Results {
		var vectorScore *float64
		if state.Request.UseSemanticSearch {
			v := result.VectorScore
			vectorScore = &v
		}
		result.Score = p.scorer.Score(result.Content, state.SearchQuery, vectorScore)
	}
	return next()
}
