package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/leadline/pkg/assistant"
)

// MissingMessage is the 400 body for requests without a user turn.
const MissingMessage = "Missing 'message' or 'query' in request."

// ErrorResponse is the body of every 4xx and 5xx reply.
type ErrorResponse struct {
	Error        string  `json:"error"`
	Detail       string  `json:"detail,omitempty"`
	TotalLatency float64 `json:"total_latency"`
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleChat answers one chat turn.
func (s *Server) handleChat(c *fiber.Ctx) error {
	req := parseRequest(c.Body())

	resp, err := s.assistant.Chat(c.UserContext(), req)
	if err != nil {
		if assistant.CodeOf(err) == assistant.CodeInvalidInput {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
				Error:        MissingMessage,
				TotalLatency: elapsed(c),
			})
		}
		return internalError(c, err)
	}

	return c.JSON(resp)
}

// handleError maps errors that escaped a handler, including recovered
// panics, to the 500 body and records them against the request's IDs.
func (s *Server) handleError(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(ErrorResponse{
			Error:        fe.Message,
			TotalLatency: elapsed(c),
		})
	}

	s.assistant.Fail(parseRequest(c.Body()), err, since(c))
	return internalError(c, err)
}

func internalError(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
		Error:        "internal error",
		Detail:       err.Error(),
		TotalLatency: elapsed(c),
	})
}

// parseRequest decodes body leniently. A body that is not a JSON object reads
// as an empty request, which then fails validation. Within an object, IDs of
// any scalar type are kept as text, message fields must be strings and a
// history that is not a list is ignored.
func parseRequest(body []byte) *assistant.Request {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return &assistant.Request{}
	}

	req := &assistant.Request{
		Message:  stringField(fields["message"]),
		Query:    stringField(fields["query"]),
		Text:     stringField(fields["text"]),
		UserID:   idField(fields["user_id"]),
		ThreadID: idField(fields["thread_id"]),
	}
	if history, ok := fields["history"].([]any); ok {
		req.History = history
	}
	return req
}

func stringField(v any) string {
	s, _ := v.(string)
	return s
}

func idField(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case json.Number, bool:
		return fmt.Sprint(v)
	default:
		return ""
	}
}

func since(c *fiber.Ctx) time.Duration {
	start, ok := c.Locals(startKey).(time.Time)
	if !ok {
		return 0
	}
	return time.Since(start)
}

func elapsed(c *fiber.Ctx) float64 {
	return assistant.Seconds(since(c))
}
