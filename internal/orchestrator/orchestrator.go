package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/driftmind/driftmind/internal/common"
	"github.com/driftmind/driftmind/internal/config"
	"github.com/driftmind/driftmind/internal/tracing"
	"github.com/driftmind/driftmind/internal/types"
	"github.com/driftmind/driftmind/internal/types/interfaces"
)

// Orchestrator implements interfaces.SearchOrchestrator (spec.md §4.1).
type Orchestrator struct {
	index    interfaces.IndexGateway
	embedder interfaces.Embedder
	scorer   interfaces.RelevanceScorer
	history  interfaces.HistoryAnalyzer
	chat     interfaces.ChatGateway
	cfg      config.SearchConfig

	events *EventManager
}

// New wires the plugin chain once and returns a ready Orchestrator.
func New(
	index interfaces.IndexGateway,
	embedder interfaces.Embedder,
	scorer interfaces.RelevanceScorer,
	history interfaces.HistoryAnalyzer,
	chat interfaces.ChatGateway,
	cfg config.SearchConfig,
) *Orchestrator {
	o := &Orchestrator{
		index:    index,
		embedder: embedder,
		scorer:   scorer,
		history:  history,
		chat:     chat,
		cfg:      applyDefaults(cfg),
	}

	events := NewEventManager()
	events.Register(&expandPlugin{chat: chat})
	events.Register(&embedPlugin{embedder: embedder})
	events.Register(&hybridFetchPlugin{index: index})
	events.Register(&hydratePlugin{index: index})
	events.Register(&scorePlugin{scorer: scorer})
	events.Register(&filterPlugin{})
	events.Register(&diversifyPlugin{cfg: o.cfg})
	events.Register(&historyEnhancePlugin{o: o})
	events.Register(&answerPlugin{o: o})
	o.events = events

	return o
}

func applyDefaults(cfg config.SearchConfig) config.SearchConfig {
	if cfg.MinScoreForAnswer == 0 {
		cfg.MinScoreForAnswer = 0.15
	}
	if cfg.MinScoreForFollowUp == 0 {
		cfg.MinScoreForFollowUp = 0.05
	}
	if cfg.MaxSourcesForAnswer == 0 {
		cfg.MaxSourcesForAnswer = 5
	}
	if cfg.HybridFetchCap == 0 {
		cfg.HybridFetchCap = 100
	}
	if cfg.HistoryEnhanceTopK == 0 {
		cfg.HistoryEnhanceTopK = 15
	}
	return cfg
}

// Search implements spec.md §4.1's search(request) -> SearchResponse. It
// never returns a Go error: all failures are reported through the
// SearchResponse's success/message fields per the spec's error contract.
func (o *Orchestrator) Search(ctx context.Context, req types.SearchRequest) *types.SearchResponse {
	ctx, endSpan := tracing.StartSpan(ctx, "orchestrator", "search", attribute.String("query", req.Query))
	var traceErr error
	defer func() { endSpan(traceErr) }()

	if err := ValidateRequest(req); err != nil {
		traceErr = err
		return &types.SearchResponse{Query: req.Query, Success: false, Message: err.Error()}
	}
	req = withDefaults(req)

	// Step 1: follow-up shortcut. If the query looks like a follow-up and
	// we have chat history, try scoping retrieval to documents referenced
	// by the last (up to 3) assistant turns before running the normal chain.
	isFollowUp := len(req.ChatHistory) > 0 && o.history.IsFollowUp(req.Query)
	if isFollowUp {
		if fileNames := o.history.ExtractDocumentReferences(req.ChatHistory); len(fileNames) > 0 {
			if docIDs, err := o.resolveDocumentIDs(ctx, req, fileNames); err == nil && len(docIDs) > 0 {
				if resp, ok := o.runScopedShortcut(ctx, req, docIDs); ok {
					return resp
				}
			}
		}
	}

	minScore := o.cfg.MinScoreForAnswer
	if isFollowUp {
		minScore = o.cfg.MinScoreForFollowUp
	}
	state := &State{
		Request:     req,
		SearchQuery: req.Query,
		IsFollowUp:  isFollowUp,
		MinScore:    minScore,
		MaxSources:  o.cfg.MaxSourcesForAnswer,
	}

	if pluginErr := o.events.Run(ctx, state); pluginErr != nil {
		common.PipelineError(ctx, string(pluginErr.Step), "search_failed", map[string]interface{}{
			"query": req.Query,
			"error": pluginErr.Error(),
		})
		traceErr = pluginErr
		return &types.SearchResponse{Query: req.Query, Success: false, Message: pluginErr.Error()}
	}

	return state.Response()
}

// runScopedShortcut implements step 1's "scoped search against those
// documents only" by reusing the same chain with scopedDocumentIDs set, and
// reports ok=false when it produced nothing usable so Search can fall back
// to the normal unscoped chain.
func (o *Orchestrator) runScopedShortcut(ctx context.Context, req types.SearchRequest, docIDs []string) (*types.SearchResponse, bool) {
	state := &State{
		Request:           req,
		SearchQuery:        req.Query,
		MinScore:          o.cfg.MinScoreForFollowUp,
		MaxSources:        o.cfg.MaxSourcesForAnswer,
		IsFollowUp:        true,
		scopedDocumentIDs: docIDs,
	}

	if pluginErr := o.events.Run(ctx, state); pluginErr != nil {
		return nil, false
	}
	if len(state.Results) == 0 {
		return nil, false
	}
	return state.Response(), true
}

// resolveDocumentIDs implements the filename->documentId resolution the
// follow-up shortcut needs: ExtractDocumentReferences returns filenames
// pulled from a prior "Sources:" line, not the index's internal document
// ids, so a broad unscoped search is hydrated first and its chunk-0
// OriginalFileName metadata is matched against the referenced filenames.
func (o *Orchestrator) resolveDocumentIDs(ctx context.Context, req types.SearchRequest, fileNames []string) ([]string, error) {
	vector, err := o.embedder.Embed(ctx, req.Query)
	if err != nil {
		return nil, err
	}
	hits, err := o.index.HybridSearch(ctx, req.Query, vector, o.cfg.HybridFetchCap, "")
	if err != nil {
		return nil, err
	}

	chunk0s, err := o.index.GetChunk0s(ctx, distinctDocumentIDs(hits))
	if err != nil {
		return nil, err
	}

	wanted := make(map[string]bool, len(fileNames))
	for _, f := range fileNames {
		wanted[strings.ToLower(strings.TrimSpace(f))] = true
	}

	var docIDs []string
	for docID, chunk := range chunk0s {
		if wanted[strings.ToLower(strings.TrimSpace(chunk.OriginalFileName))] {
			docIDs = append(docIDs, docID)
		}
	}
	return docIDs, nil
}

// ValidateRequest checks the fields spec.md §6 requires for a valid search
// request, exported so handler can distinguish a validation failure (400)
// from a pipeline failure (500) before delegating to Search.
func ValidateRequest(req types.SearchRequest) error {
	if req.Query == "" {
		return fmt.Errorf("query must not be empty")
	}
	if req.MaxResults < 0 || req.MaxResults > 50 {
		return fmt.Errorf("max_results must be in [1,50]")
	}
	return nil
}

func withDefaults(req types.SearchRequest) types.SearchRequest {
	if req.MaxResults == 0 {
		req.MaxResults = 10
	}
	return req
}
