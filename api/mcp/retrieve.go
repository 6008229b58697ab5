package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/papercomputeco/leadline/pkg/retrieval"
	"github.com/papercomputeco/leadline/pkg/stage"
)

var (
	retrieveToolName    = "retrieve_context"
	retrieveDescription = "Search the school knowledge base the way the assistant does for a given stage. Returns the relevant snippets and their sources after filtering and truncation."
)

// RetrieveInput represents the input arguments for the retrieve tool.
type RetrieveInput struct {
	Query string `json:"query" jsonschema:"the search query text"`
	Stage string `json:"stage,omitempty" jsonschema:"conversation stage; late stages return fewer results (default: active)"`
}

// RetrieveOutput represents the output of the retrieve tool.
type RetrieveOutput struct {
	Query    string             `json:"query"`
	Stage    stage.Stage        `json:"stage"`
	Snippets []string           `json:"snippets"`
	Sources  []retrieval.Source `json:"sources"`
	Count    int                `json:"count"`
}

// handleRetrieve runs one retrieval.
func (s *Server) handleRetrieve(ctx context.Context, _ *mcp.CallToolRequest, input RetrieveInput) (*mcp.CallToolResult, RetrieveOutput, error) {
	query := strings.TrimSpace(input.Query)
	if query == "" {
		return errorResult("query is required"), RetrieveOutput{}, nil
	}

	st := stage.Stage(input.Stage)
	if st == "" {
		st = stage.Default
	}

	s.config.Logger.Debug("MCP retrieve request",
		"query", query,
		"stage", st,
	)

	res := s.config.Retrieval.Retrieve(ctx, query, st)
	output := RetrieveOutput{
		Query:    query,
		Stage:    st,
		Snippets: res.Texts(),
		Sources:  res.Sources(),
		Count:    len(res.Snippets),
	}

	jsonBytes, err := json.Marshal(output)
	if err != nil {
		return errorResult(fmt.Sprintf("Failed to serialize results: %v", err)), RetrieveOutput{}, nil
	}
	return jsonResult(jsonBytes), output, nil
}
