package orchestrator

import (
	"context"
	"strings"

	"github.com/driftmind/driftmind/internal/common"
	"github.com/driftmind/driftmind/internal/types/interfaces"
)

// expandPlugin implements spec.md §4.1 step 2: query expansion via the Chat
// Gateway, using the reformulation only when it differs case-insensitively
// from the original query.
type expandPlugin struct {
	chat interfaces.ChatGateway
}

func (p *expandPlugin) ActivationEvents() []Step { return []Step{StepExpand} }

func (p *expandPlugin) OnEvent(ctx context.Context, step Step, state *State, next func() *PluginError) *PluginError {
	state.SearchQuery = state.Request.Query

	if state.Request.EnableQueryExpansion {
		expanded, err := p.chat.ExpandQuery(ctx, state.Request.Query, state.Request.ChatHistory)
		if err != nil {
			return newPluginError(step, err)
		}
		state.ExpandedQuery = expanded
		if !strings.EqualFold(expanded, state.Request.Query) {
			state.SearchQuery = expanded
		}
	}

	common.PipelineInfo(ctx, string(step), "expanded", map[string]interface{}{
		"search_query": state.SearchQuery,
	})
	return next()
}
