// Package mcp exposes the Search Orchestrator as an MCP agent tool surface
// (SPEC_FULL "Agent tool surface"): search_documents and ask_question, read-only,
// so an external agent client (an IDE assistant, say) can use retrieval as a
// tool without touching ingest. Grounded on WeKnora's go.mod
// mark3labs/mcp-go + google/jsonschema-go dependencies (unused by the
// retrieved teacher slice) and on internal/utils/json.go's
// GenerateSchema[T]() pattern, copied from the teacher almost verbatim.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/driftmind/driftmind/internal/types"
	"github.com/driftmind/driftmind/internal/types/interfaces"
	"github.com/driftmind/driftmind/internal/utils"
)

// searchDocumentsArgs is the input schema for the search_documents tool.
type searchDocumentsArgs struct {
	Query      string `json:"query" jsonschema:"the search query"`
	DocumentID string `json:"document_id,omitempty" jsonschema:"restrict the search to one document, optional"`
	MaxResults int    `json:"max_results,omitempty" jsonschema:"maximum number of results to return, default 10"`
}

// askQuestionArgs is the input schema for the ask_question tool.
type askQuestionArgs struct {
	Query      string `json:"query" jsonschema:"the natural-language question"`
	DocumentID string `json:"document_id,omitempty" jsonschema:"restrict the answer to one document, optional"`
}

// Server wraps a SearchOrchestrator as an MCP tool server.
type Server struct {
	orchestrator interfaces.SearchOrchestrator
	mcp          *server.MCPServer
}

// New builds an MCP Server backed by orchestrator, registering the
// search_documents and ask_question tools.
func New(orchestrator interfaces.SearchOrchestrator) *Server {
	s := &Server{
		orchestrator: orchestrator,
		mcp:          server.NewMCPServer("driftmind", "1.0.0", server.WithToolCapabilities(false)),
	}

	s.mcp.AddTool(
		mcp.NewToolWithRawSchema("search_documents",
			"Search ingested documents by keyword and semantic similarity, returning ranked source passages.",
			utils.GenerateSchema[searchDocumentsArgs]()),
		s.handleSearchDocuments,
	)
	s.mcp.AddTool(
		mcp.NewToolWithRawSchema("ask_question",
			"Ask a natural-language question answered from ingested documents, with a generated answer and its sources.",
			utils.GenerateSchema[askQuestionArgs]()),
		s.handleAskQuestion,
	)

	return s
}

// MCPServer returns the underlying mcp-go server for transport wiring
// (stdio or HTTP) in the composition root.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) handleSearchDocuments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args searchDocumentsArgs
	if err := bindArguments(request, &args); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if args.Query == "" {
		return mcp.NewToolResultError("query is required"), nil
	}
	if args.MaxResults <= 0 {
		args.MaxResults = 10
	}

	resp := s.orchestrator.Search(ctx, types.SearchRequest{
		Query:             args.Query,
		DocumentID:        args.DocumentID,
		MaxResults:        args.MaxResults,
		UseSemanticSearch: true,
		IncludeAnswer:     false,
	})
	return toolResultJSON(resp)
}

func (s *Server) handleAskQuestion(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args askQuestionArgs
	if err := bindArguments(request, &args); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if args.Query == "" {
		return mcp.NewToolResultError("query is required"), nil
	}

	resp := s.orchestrator.Search(ctx, types.SearchRequest{
		Query:                args.Query,
		DocumentID:           args.DocumentID,
		MaxResults:            5,
		UseSemanticSearch:    true,
		EnableQueryExpansion: true,
		IncludeAnswer:        true,
	})
	return toolResultJSON(resp)
}

// bindArguments decodes an MCP tool call's arguments into a typed struct via
// a JSON round-trip, the simplest correct way to honor whatever concrete
// argument shape the client actually sent.
func bindArguments(request mcp.CallToolRequest, out interface{}) error {
	raw, err := json.Marshal(request.GetArguments())
	if err != nil {
		return fmt.Errorf("marshal tool arguments: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode tool arguments: %w", err)
	}
	return nil
}

func toolResultJSON(v interface{}) (*mcp.CallToolResult, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(raw)), nil
}
