// Package conversation turns loosely typed chat history payloads into
// canonical llm.Message turns and provides the windowing and text helpers
// the classifier and generator use.
package conversation

import (
	"strings"

	"github.com/papercomputeco/leadline/pkg/llm"
)

// Normalize converts raw history records into canonical turns. Accepted
// record shapes:
//
//	{"role": "user", "text": "..."}
//	{"role": "user", "content": "..."}
//	{"role": "user", "content": [{"type": "text", "text": "..."}]}
//	{"role": "user", "parts": [{"text": "..."}]}
//
// Roles other than user and assistant, records that are not objects, and
// records without text are dropped. Normalize never fails.
func Normalize(raw []any) []llm.Message {
	out := make([]llm.Message, 0, len(raw))
	for _, item := range raw {
		record, ok := item.(map[string]any)
		if !ok {
			continue
		}

		role, _ := record["role"].(string)
		role = strings.ToLower(strings.TrimSpace(role))
		if role != llm.RoleUser && role != llm.RoleAssistant {
			continue
		}

		text := strings.TrimSpace(recordText(record))
		if text == "" {
			continue
		}

		out = append(out, llm.NewTextMessage(role, text))
	}
	return out
}

func recordText(record map[string]any) string {
	if text, ok := record["text"].(string); ok && strings.TrimSpace(text) != "" {
		return text
	}

	switch content := record["content"].(type) {
	case string:
		return content
	case []any:
		return blocksText(content)
	}

	if parts, ok := record["parts"].([]any); ok {
		return blocksText(parts)
	}

	return ""
}

func blocksText(blocks []any) string {
	var b strings.Builder
	for _, item := range blocks {
		switch block := item.(type) {
		case string:
			b.WriteString(block)
		case map[string]any:
			if t, ok := block["type"].(string); ok && t != "text" {
				continue
			}
			if text, ok := block["text"].(string); ok {
				b.WriteString(text)
			}
		}
	}
	return b.String()
}

// Window keeps the most recent n turns and drops leading assistant turns so
// the window starts with a user turn. n <= 0 keeps everything.
func Window(msgs []llm.Message, n int) []llm.Message {
	start := 0
	if n > 0 && len(msgs) > n {
		start = len(msgs) - n
	}
	for start < len(msgs) && msgs[start].Role != llm.RoleUser {
		start++
	}
	return msgs[start:]
}

// Text joins the text of every turn with single spaces.
func Text(msgs []llm.Message) string {
	parts := make([]string, 0, len(msgs))
	for i := range msgs {
		if text := msgs[i].GetText(); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

// RecentText joins the text of the last n turns.
func RecentText(msgs []llm.Message, n int) string {
	if n > 0 && len(msgs) > n {
		msgs = msgs[len(msgs)-n:]
	}
	return Text(msgs)
}
