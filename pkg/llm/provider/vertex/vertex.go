// Package vertex implements the Provider codec for Gemini models served by
// Google Cloud's Vertex AI generateContent and streamGenerateContent APIs.
package vertex

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/papercomputeco/leadline/pkg/llm"
)

const (
	roleModel = "model"

	finishSafety = "SAFETY"

	// BlockOnlyHigh is the threshold applied to every harm category.
	BlockOnlyHigh = "BLOCK_ONLY_HIGH"
)

// harmCategories are the categories the safety settings are applied to.
var harmCategories = []string{
	"HARM_CATEGORY_HATE_SPEECH",
	"HARM_CATEGORY_DANGEROUS_CONTENT",
	"HARM_CATEGORY_SEXUALLY_EXPLICIT",
	"HARM_CATEGORY_HARASSMENT",
}

// ErrNoContents is returned when a request carries no user or assistant turns.
var ErrNoContents = errors.New("request has no contents")

// Provider implements the Provider interface for Gemini on Vertex AI.
type Provider struct{}

// New
func New() *Provider { return &Provider{} }

// Name
func (p *Provider) Name() string {
	return "vertex"
}

// EncodeRequest maps the assistant role to Gemini's "model" role and sends the
// system prompt as systemInstruction.
func (p *Provider) EncodeRequest(req *llm.ChatRequest) ([]byte, error) {
	body := vertexRequest{
		Contents: make([]vertexContent, 0, len(req.Messages)),
	}

	for _, msg := range req.Messages {
		text := msg.GetText()
		if text == "" {
			continue
		}

		role := llm.RoleUser
		if msg.Role == llm.RoleAssistant {
			role = roleModel
		}
		body.Contents = append(body.Contents, vertexContent{
			Role:  role,
			Parts: []vertexPart{{Text: text}},
		})
	}

	if len(body.Contents) == 0 {
		return nil, ErrNoContents
	}

	if req.System != "" {
		body.SystemInstruction = &vertexContent{Parts: []vertexPart{{Text: req.System}}}
	}

	if req.Temperature != nil || req.TopP != nil || req.MaxTokens != nil {
		body.GenerationConfig = &generationConfig{
			Temperature:     req.Temperature,
			TopP:            req.TopP,
			MaxOutputTokens: req.MaxTokens,
		}
	}

	body.SafetySettings = make([]safetySetting, 0, len(harmCategories))
	for _, category := range harmCategories {
		body.SafetySettings = append(body.SafetySettings, safetySetting{
			Category:  category,
			Threshold: BlockOnlyHigh,
		})
	}

	return json.Marshal(body)
}

func (p *Provider) ParseResponse(payload []byte) (*llm.ChatResponse, error) {
	var resp vertexResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return nil, err
	}

	var stopReason string
	if len(resp.Candidates) > 0 {
		stopReason = resp.Candidates[0].FinishReason
	} else if resp.PromptFeedback != nil {
		stopReason = resp.PromptFeedback.BlockReason
	}

	return &llm.ChatResponse{
		Model:       resp.ModelVersion,
		CreatedAt:   time.Now(),
		Message:     llm.NewTextMessage(llm.RoleAssistant, extractText(resp.Candidates)),
		Done:        true,
		StopReason:  stopReason,
		Usage:       resp.UsageMetadata.toUsage(),
		RawResponse: payload,
	}, nil
}

// ParseStreamChunk decodes one SSE data payload of streamGenerateContent.
// Each payload is a complete response object carrying a text delta.
func (p *Provider) ParseStreamChunk(payload []byte) (*llm.StreamChunk, error) {
	trimmed := strings.TrimSpace(string(payload))
	if trimmed == "" || trimmed == "[DONE]" {
		return nil, nil
	}

	var resp vertexResponse
	if err := json.Unmarshal([]byte(trimmed), &resp); err != nil {
		return nil, err
	}

	chunk := &llm.StreamChunk{
		Model:     resp.ModelVersion,
		CreatedAt: time.Now(),
		Message:   llm.NewTextMessage(llm.RoleAssistant, ""),
		Usage:     resp.UsageMetadata.toUsage(),
	}

	if len(resp.Candidates) == 0 {
		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			chunk.Blocked = true
			chunk.Done = true
			chunk.StopReason = resp.PromptFeedback.BlockReason
		}
		return chunk, nil
	}

	c := resp.Candidates[0]
	chunk.StopReason = c.FinishReason
	chunk.Done = c.FinishReason != ""
	if c.blocked() {
		chunk.Blocked = true
		return chunk, nil
	}
	chunk.Message.Content[0].Text = c.text()

	return chunk, nil
}

// extractText returns the reply text of a response: the first candidate's
// text when it is not blocked and non-empty, otherwise the concatenated text
// of every candidate that was not blocked for safety.
func extractText(candidates []vertexCandidate) string {
	if len(candidates) == 0 {
		return ""
	}

	if first := candidates[0]; !first.blocked() {
		if text := first.text(); text != "" {
			return text
		}
	}

	var b strings.Builder
	for _, c := range candidates {
		if c.blocked() {
			continue
		}
		b.WriteString(c.text())
	}
	return b.String()
}

func (c vertexCandidate) blocked() bool {
	if c.FinishReason == finishSafety {
		return true
	}
	for _, r := range c.SafetyRatings {
		if r.Blocked {
			return true
		}
	}
	return false
}

func (c vertexCandidate) text() string {
	var b strings.Builder
	for _, part := range c.Content.Parts {
		if part.Thought {
			continue
		}
		b.WriteString(part.Text)
	}
	return b.String()
}

func (u *usageMetadata) toUsage() *llm.Usage {
	if u == nil {
		return nil
	}
	return &llm.Usage{
		PromptTokens:     u.PromptTokenCount,
		CompletionTokens: u.CandidatesTokenCount,
		TotalTokens:      u.TotalTokenCount,
	}
}
