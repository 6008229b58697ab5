// Package assistant runs one chat turn end to end: it normalizes the
// history, classifies the conversation, retrieves context, assembles the
// system instruction, generates a reply and emits analytics events.
package assistant

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/papercomputeco/leadline/pkg/analytics"
	"github.com/papercomputeco/leadline/pkg/conversation"
	"github.com/papercomputeco/leadline/pkg/generation"
	"github.com/papercomputeco/leadline/pkg/llm"
	"github.com/papercomputeco/leadline/pkg/metrics"
	"github.com/papercomputeco/leadline/pkg/prompt"
	"github.com/papercomputeco/leadline/pkg/retrieval"
	"github.com/papercomputeco/leadline/pkg/stage"
	"github.com/papercomputeco/leadline/pkg/textnorm"
)

// DefaultHistoryWindow is how many prior turns are sent to the model.
const DefaultHistoryWindow = 12

// Phase names used for latency metrics.
const (
	PhaseClassification = "classification"
	PhaseRetrieval      = "retrieval"
	PhaseGeneration     = "generation"
	PhaseTotal          = "total"
)

// Config holds the process-scoped handles a Service is built from.
type Config struct {
	// Generation produces replies. Required.
	Generation *generation.Client

	// Prompt renders the system instruction. Required.
	Prompt *prompt.Assembler

	// Retrieval looks up knowledge base snippets. A nil client disables
	// retrieval.
	Retrieval *retrieval.Client

	// Sink receives analytics events. Optional.
	Sink *analytics.Sink

	// HistoryWindow caps the prior turns sent to the model (defaults to 12).
	HistoryWindow int

	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

// Service answers chat turns. It holds no per-conversation state and is
// safe for concurrent use.
type Service struct {
	generation    *generation.Client
	prompt        *prompt.Assembler
	retrieval     *retrieval.Client
	sink          *analytics.Sink
	historyWindow int
	logger        *slog.Logger
	metrics       *metrics.Metrics
}

// NewService validates c and returns a Service.
func NewService(c *Config) (*Service, error) {
	if c == nil || c.Generation == nil {
		return nil, errors.New("generation client is required")
	}
	if c.Prompt == nil {
		return nil, errors.New("prompt assembler is required")
	}

	logger := c.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	window := c.HistoryWindow
	if window <= 0 {
		window = DefaultHistoryWindow
	}

	return &Service{
		generation:    c.Generation,
		prompt:        c.Prompt,
		retrieval:     c.Retrieval,
		sink:          c.Sink,
		historyWindow: window,
		logger:        logger.With("component", "assistant"),
		metrics:       c.Metrics,
	}, nil
}

// Model returns the configured generation model.
func (s *Service) Model() string {
	return s.generation.Model()
}

// Chat answers req. Failures are returned as *Error; every failure except
// invalid input is also logged and emitted as an assistant_error event.
func (s *Service) Chat(ctx context.Context, req *Request) (*Response, error) {
	start := time.Now()

	query := req.Input()
	if query == "" {
		s.metrics.ObserveRequest("", metrics.OutcomeInvalid)
		return nil, &Error{Code: CodeInvalidInput, Err: ErrMissingMessage}
	}

	userEvent := analytics.NewEvent(analytics.EventUserMessage, req.UserID, req.ThreadID)
	userEvent.Role = llm.RoleUser
	userEvent.Message = query
	s.sink.Emit(userEvent)

	history := conversation.Normalize(req.History)

	if FastComplete(query, history) {
		return s.complete(req, query, history, start), nil
	}

	classifyStart := time.Now()
	res, err := stage.Classify(query, history)
	if err != nil {
		s.logger.Warn("classification failed, using default stage",
			"stage", res.Stage,
			"error", err,
		)
	}
	classifyElapsed := time.Since(classifyStart)

	retrieveStart := time.Now()
	found := s.retrieval.Retrieve(ctx, query, res.Stage)
	retrieveElapsed := time.Since(retrieveStart)

	system := s.prompt.Build(prompt.Input{
		Classification: res,
		Snippets:       found.Texts(),
	})

	window := conversation.Window(history, s.historyWindow)
	contents := make([]llm.Message, 0, len(window)+1)
	contents = append(contents, window...)
	contents = append(contents, llm.NewTextMessage(llm.RoleUser, query))

	generateStart := time.Now()
	reply, err := s.generation.Complete(ctx, system, contents, res.Stage)
	if err != nil {
		err = &Error{Code: CodeGeneration, Err: err}
		s.Fail(req, err, time.Since(start))
		return nil, err
	}
	generateElapsed := time.Since(generateStart)

	model := reply.Model
	if model == "" {
		model = s.generation.Model()
	}

	resp := &Response{
		Response:              textnorm.PlainTextOrRaw(reply.Message.GetText()),
		Model:                 model,
		Stage:                 res.Stage,
		ShouldComplete:        res.Stage == stage.Completion,
		Snippets:              found.Texts(),
		Sources:               found.Sources(),
		ClassificationLatency: Seconds(classifyElapsed),
		RetrievalLatency:      Seconds(retrieveElapsed),
		GenerationLatency:     Seconds(generateElapsed),
	}
	total := time.Since(start)
	resp.TotalLatency = Seconds(total)

	s.metrics.ObservePhase(PhaseClassification, classifyElapsed)
	s.metrics.ObservePhase(PhaseRetrieval, retrieveElapsed)
	s.metrics.ObservePhase(PhaseGeneration, generateElapsed)
	s.metrics.ObservePhase(PhaseTotal, total)
	s.metrics.ObserveRequest(string(res.Stage), metrics.OutcomeOK)

	replyEvent := s.replyEvent(req, resp)
	replyEvent.Language = string(res.Language)
	replyEvent.SnippetCount = len(resp.Snippets)
	s.sink.Emit(replyEvent)

	return resp, nil
}

// Fail records a failed request: an error log, the error metric and an
// assistant_error event carrying whatever IDs req has.
func (s *Service) Fail(req *Request, err error, elapsed time.Duration) {
	var userID, threadID string
	if req != nil {
		userID, threadID = req.UserID, req.ThreadID
	}

	s.logger.Error("chat request failed",
		"user_id", userID,
		"thread_id", threadID,
		"code", CodeOf(err),
		"error", err,
	)
	s.metrics.ObserveRequest("", metrics.OutcomeError)

	e := analytics.NewEvent(analytics.EventAssistantError, userID, threadID)
	e.Error = err.Error()
	e.Latency.Total = Seconds(elapsed)
	s.sink.Emit(e)
}

// complete answers a closing turn with the canned message. It skips
// retrieval and generation.
func (s *Service) complete(req *Request, query string, history []llm.Message, start time.Time) *Response {
	lang := completionLanguage(query, history)

	resp := &Response{
		Response:       CompletionReply(lang),
		Model:          s.generation.Model(),
		Stage:          stage.Completion,
		ShouldComplete: true,
		Snippets:       []string{},
		Sources:        []retrieval.Source{},
	}
	total := time.Since(start)
	resp.TotalLatency = Seconds(total)

	s.metrics.ObservePhase(PhaseTotal, total)
	s.metrics.ObserveRequest(string(stage.Completion), metrics.OutcomeFastPath)

	e := s.replyEvent(req, resp)
	e.Language = string(lang)
	s.sink.Emit(e)

	return resp
}

func (s *Service) replyEvent(req *Request, resp *Response) *analytics.Event {
	e := analytics.NewEvent(analytics.EventAssistantReply, req.UserID, req.ThreadID)
	e.Role = llm.RoleAssistant
	e.Message = resp.Response
	e.Stage = string(resp.Stage)
	e.Model = resp.Model
	e.Latency = analytics.Latency{
		Classification: resp.ClassificationLatency,
		Retrieval:      resp.RetrievalLatency,
		Generation:     resp.GenerationLatency,
		Total:          resp.TotalLatency,
	}
	return e
}
