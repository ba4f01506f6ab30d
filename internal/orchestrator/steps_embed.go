package orchestrator

import (
	"context"

	"github.com/driftmind/driftmind/internal/types/interfaces"
)

// embedPlugin implements spec.md §4.1 step 3: queryVector = embed(searchQuery).
type embedPlugin struct {
	embedder interfaces.Embedder
}

func (p *embedPlugin) ActivationEvents() []Step { return []Step{StepEmbed} }

func (p *embedPlugin) OnEvent(ctx context.Context, step Step, state *State, next func() *PluginError) *PluginError {
	vector, err := p.embedder.Embed(ctx, state.SearchQuery)
	if err != nil {
		return newPluginError(step, err)
	}
	state.QueryVector = vector
	return next()
}
