package orchestrator

import (
	"context"

	"github.com/driftmind/driftmind/internal/types"
)

// answerPlugin implements spec.md §4.1 step 10.
type answerPlugin struct {
	o *Orchestrator
}

func (p *answerPlugin) ActivationEvents() []Step { return []Step{StepAnswer} }

func (p *answerPlugin) OnEvent(ctx context.Context, step Step, state *State, next func() *PluginError) *PluginError {
	if !state.Request.IncludeAnswer {
		return next()
	}
	o := p.o
	history := state.Request.ChatHistory

	if len(state.Results) > 0 {
		answer, err := o.chat.AnswerWithHistory(ctx, state.Request.Query, state.Results, history)
		if err != nil {
			return newPluginError(step, err)
		}
		state.Answer = answer
		return next()
	}

	if len(history) == 0 {
		state.Answer = types.NoInformationFoundMessage
		return next()
	}

	keywords := o.history.ExtractKeywords(history)
	if len(keywords) >= 2 {
		documentReferences := o.history.ExtractDocumentReferences(history)
		enhanced, err := o.runGenericEnhanced(ctx, state, keywords, documentReferences)
		if err == nil && len(enhanced) > 0 {
			if answer, err := o.chat.AnswerWithHistory(ctx, state.Request.Query, enhanced, history); err == nil {
				state.Results = enhanced
				state.Answer = answer
				return next()
			}
		}
	}

	if answer, err := o.chat.AnswerWithHistory(ctx, state.Request.Query, nil, history); err == nil {
		state.Answer = answer
		return next()
	}

	state.Answer = types.NoInformationFoundMessage
	return next()
}
