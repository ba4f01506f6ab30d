// Package orchestrator implements the Search Orchestrator (spec.md §4.1): the
// CORE operation search(request) -> SearchResponse, executed as an ordered
// chain of Plugin steps registered on an EventManager (grounded in the
// teacher's chat_pipline package).
package orchestrator

import "context"

// Step names the stage a Plugin activates on. The chain runs Expand through
// Answer in this order, matching spec.md §4.1 steps 2-10 one-to-one (step 1,
// the follow-up shortcut, is a pre-chain branch handled by Orchestrator.Search
// itself).
type Step string

const (
	StepExpand         Step = "expand"
	StepEmbed          Step = "embed"
	StepHybridFetch    Step = "hybrid_fetch"
	StepHydrate        Step = "hydrate"
	StepScore          Step = "score"
	StepFilter         Step = "filter"
	StepDiversify      Step = "diversify"
	StepHistoryEnhance Step = "history_enhance"
	StepAnswer         Step = "answer"
)

// chain lists the fixed run order. A Plugin's ActivationEvents determines
// which of these steps it fires on; a step with no registered plugin is
// simply a no-op in the chain.
var chain = []Step{
	StepExpand,
	StepEmbed,
	StepHybridFetch,
	StepHydrate,
	StepScore,
	StepFilter,
	StepDiversify,
	StepHistoryEnhance,
	StepAnswer,
}

// PluginError is a chain-abort signal carrying the stage that produced it.
type PluginError struct {
	Step Step
	Err  error
}

func (e *PluginError) Error() string {
	if e == nil || e.Err == nil {
		return ""
	}
	return string(e.Step) + ": " + e.Err.Error()
}

func (e *PluginError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// newPluginError wraps err with the step it occurred in. Returns nil if err
// is nil, so plugins can write `return newPluginError(step, err)` unconditionally.
func newPluginError(step Step, err error) *PluginError {
	if err == nil {
		return nil
	}
	return &PluginError{Step: step, Err: err}
}

// Plugin is one stage of the search pipeline.
type Plugin interface {
	// ActivationEvents returns the steps this plugin handles. A plugin
	// registered for more than one step runs on each independently.
	ActivationEvents() []Step

	// OnEvent runs the plugin's work for step against state, then calls
	// next() to continue the chain. A plugin that wants to short-circuit
	// the remaining chain returns without calling next().
	OnEvent(ctx context.Context, step Step, state *State, next func() *PluginError) *PluginError
}

// EventManager dispatches a State through the registered Plugins in chain
// order, one call to OnEvent per (step, plugin) pair.
type EventManager struct {
	byStep map[Step][]Plugin
}

// NewEventManager builds an empty EventManager; plugins register themselves
// via Register (mirroring the teacher's NewPlugin* constructors).
func NewEventManager() *EventManager {
	return &EventManager{byStep: make(map[Step][]Plugin)}
}

// Register adds plugin to every step it activates on.
func (m *EventManager) Register(plugin Plugin) {
	for _, step := range plugin.ActivationEvents() {
		m.byStep[step] = append(m.byStep[step], plugin)
	}
}

// Run executes the full chain against state in fixed step order, stopping at
// the first step whose plugins return a non-nil PluginError.
func (m *EventManager) Run(ctx context.Context, state *State) *PluginError {
	return m.runFrom(ctx, 0, state)
}

func (m *EventManager) runFrom(ctx context.Context, idx int, state *State) *PluginError {
	for idx < len(chain) {
		step := chain[idx]
		plugins := m.byStep[step]
		if len(plugins) == 0 {
			idx++
			continue
		}
		return m.runStep(ctx, step, plugins, idx, state)
	}
	return nil
}

// runStep chains the plugins registered for one step, then continues the
// overall chain via next() once all of them have run.
func (m *EventManager) runStep(ctx context.Context, step Step, plugins []Plugin, idx int, state *State) *PluginError {
	var invoke func(i int) *PluginError
	invoke = func(i int) *PluginError {
		if i >= len(plugins) {
			return m.runFrom(ctx, idx+1, state)
		}
		return plugins[i].OnEvent(ctx, step, state, func() *PluginError {
			return invoke(i + 1)
		})
	}
	return invoke(0)
}
