package orchestrator

import (
	"strings"

	"github.com/driftmind/driftmind/internal/types"
)

// State is the mutable working set threaded through the plugin chain for
// one search() call, analogous to the teacher's ChatManage.
type State struct {
	Request types.SearchRequest

	// SearchQuery is the query actually sent to retrieval: either the
	// original query or, after StepExpand, its reformulation.
	SearchQuery  string
	ExpandedQuery string

	QueryVector []float32

	// Hits carries the raw index hits from StepHybridFetch to StepHydrate,
	// which projects them into Results.
	Hits []types.IndexHit

	// Results is the public projection built once hydration (StepHydrate)
	// has filled in per-document metadata; Score/Filter/Diversify operate
	// on this slice in place.
	Results []*types.SearchResult

	IsFollowUp    bool
	IsRelatedTopic bool
	MinScore      float64
	MaxSources    int

	Answer string

	// scopedDocumentIDs restricts retrieval to these documents when set;
	// only the step-1 follow-up shortcut sets it.
	scopedDocumentIDs []string
}

// Response projects the final State into spec.md §4.1's SearchResponse.
func (s *State) Response() *types.SearchResponse {
	resp := &types.SearchResponse{
		Query:        s.Request.Query,
		Results:      s.Results,
		TotalResults: len(s.Results),
		Success:      true,
	}
	if s.ExpandedQuery != "" && !strings.EqualFold(s.ExpandedQuery, s.Request.Query) {
		resp.ExpandedQuery = s.ExpandedQuery
	}
	if s.Answer != "" {
		resp.GeneratedAnswer = s.Answer
	}
	return resp
}
