package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/papercomputeco/leadline/pkg/campus"
	"github.com/papercomputeco/leadline/pkg/conversation"
	"github.com/papercomputeco/leadline/pkg/signals"
	"github.com/papercomputeco/leadline/pkg/stage"
)

var (
	classifyToolName    = "classify_conversation"
	classifyDescription = "Classify a lead conversation. Given the latest user message and the prior turns, returns the conversation stage, the detector signals behind it, the extracted contact details, the language and the campuses the mentioned programs map to."

	campusToolName    = "infer_campus"
	campusDescription = "Map free text to the campuses (ny, nj) that teach the programs it mentions, with the campus guidance given to the assistant."
)

// Turn is one prior conversation turn.
type Turn struct {
	Role string `json:"role" jsonschema:"user or assistant"`
	Text string `json:"text" jsonschema:"the turn text"`
}

// ClassifyInput represents the input arguments for the classify tool.
type ClassifyInput struct {
	Message string `json:"message" jsonschema:"the latest user message"`
	History []Turn `json:"history,omitempty" jsonschema:"prior turns, oldest first"`
}

// ClassifyOutput represents the output of the classify tool.
type ClassifyOutput struct {
	Stage    stage.Stage     `json:"stage"`
	Fallback bool            `json:"fallback"`
	Signals  stage.Signals   `json:"signals"`
	Contact  signals.Contact `json:"contact"`
	Language string          `json:"language"`
	Campuses []string        `json:"campuses"`
	Error    string          `json:"error,omitempty"`
}

// handleClassify runs the stage classifier over the given conversation.
func (s *Server) handleClassify(_ context.Context, _ *mcp.CallToolRequest, input ClassifyInput) (*mcp.CallToolResult, ClassifyOutput, error) {
	if strings.TrimSpace(input.Message) == "" {
		return errorResult("message is required"), ClassifyOutput{}, nil
	}

	raw := make([]any, 0, len(input.History))
	for _, t := range input.History {
		raw = append(raw, map[string]any{"role": t.Role, "text": t.Text})
	}

	res, err := stage.Classify(strings.TrimSpace(input.Message), conversation.Normalize(raw))
	output := ClassifyOutput{
		Stage:    res.Stage,
		Fallback: res.Fallback,
		Signals:  res.Signals,
		Contact:  res.Contact,
		Language: string(res.Language),
		Campuses: []string(res.Campuses),
	}
	if output.Campuses == nil {
		output.Campuses = []string{}
	}
	if err != nil {
		s.config.Logger.Warn("MCP classification fell back", "error", err)
		output.Error = err.Error()
	}

	s.config.Logger.Debug("MCP classify request",
		"stage", res.Stage,
		"turns", len(input.History),
	)

	jsonBytes, err := json.Marshal(output)
	if err != nil {
		return errorResult(fmt.Sprintf("Failed to serialize classification: %v", err)), ClassifyOutput{}, nil
	}
	return jsonResult(jsonBytes), output, nil
}

// CampusInput represents the input arguments for the infer_campus tool.
type CampusInput struct {
	Text string `json:"text" jsonschema:"text that may mention programs"`
}

// CampusOutput represents the output of the infer_campus tool.
type CampusOutput struct {
	Campuses []string `json:"campuses"`
	Policy   string   `json:"policy"`
}

// handleInferCampus maps text to campuses.
func (s *Server) handleInferCampus(_ context.Context, _ *mcp.CallToolRequest, input CampusInput) (*mcp.CallToolResult, CampusOutput, error) {
	set := campus.Infer(input.Text)
	output := CampusOutput{
		Campuses: []string(set),
		Policy:   set.Policy(),
	}
	if output.Campuses == nil {
		output.Campuses = []string{}
	}

	jsonBytes, err := json.Marshal(output)
	if err != nil {
		return errorResult(fmt.Sprintf("Failed to serialize campuses: %v", err)), CampusOutput{}, nil
	}
	return jsonResult(jsonBytes), output, nil
}
