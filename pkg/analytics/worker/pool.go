// Package worker provides the asynchronous worker pool that publishes
// analytics events using the provided analytics.Publisher.
//
// The pool decouples warehouse writes from the chat request path so that
// a slow or failing warehouse never delays a reply.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/papercomputeco/leadline/pkg/analytics"
	"github.com/papercomputeco/leadline/pkg/metrics"
)

var (
	defaultNumWorkers     uint = 3
	defaultJobQueueSize   uint = 256
	defaultPublishTimeout      = 10 * time.Second
)

// Config is the configuration options for the worker pool.
type Config struct {
	// Publisher is the warehouse backend events are written to.
	Publisher analytics.Publisher

	// NumWorkers is the number of background workers in the pool.
	NumWorkers uint

	// QueueSize is the capacity of the buffered job channel (defaults to 256).
	QueueSize uint

	// PublishTimeout bounds each publish call (defaults to 10s).
	PublishTimeout time.Duration

	// Logger is the provided slog logger
	Logger *slog.Logger

	// Metrics counts dropped events. Optional.
	Metrics *metrics.Metrics
}

// Pool publishes events asynchronously via a worker pool. Failed publishes
// are logged and dropped; there are no retries and no dead letter queue.
type Pool struct {
	config    *Config
	queue     chan *analytics.Event
	wg        sync.WaitGroup
	logger    *slog.Logger
	closeOnce sync.Once
	mu        sync.RWMutex
	closed    bool
}

// NewPool creates a new Pool and starts its worker goroutines.
func NewPool(c *Config) (*Pool, error) {
	if c.Publisher == nil {
		return nil, fmt.Errorf("publisher is required")
	}

	if c.NumWorkers == 0 {
		c.NumWorkers = defaultNumWorkers
	}

	if c.QueueSize == 0 {
		c.QueueSize = defaultJobQueueSize
	}

	if c.PublishTimeout == 0 {
		c.PublishTimeout = defaultPublishTimeout
	}

	if c.NumWorkers > uint(math.MaxInt) {
		return nil, fmt.Errorf("NumWorkers %d exceeds max int", c.NumWorkers)
	}

	logger := c.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	wp := &Pool{
		config: c,
		queue:  make(chan *analytics.Event, c.QueueSize),
		logger: logger.With("component", "analytics-worker"),
	}

	wp.wg.Add(int(c.NumWorkers))
	for i := range c.NumWorkers {
		go wp.worker(i)
	}

	return wp, nil
}

// Enqueue submits an event for publishing by the worker pool.
// Returns true if enqueued, false if the queue is full or the pool is
// closed, resulting in the event being dropped.
func (p *Pool) Enqueue(event *analytics.Event) bool {
	if event == nil {
		return false
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		p.drop(event, metrics.DropPoolClosed, "event not queued, pool closed, event dropped")
		return false
	}

	select {
	case p.queue <- event:
		p.logger.Debug("event queued",
			"event", event.EventType,
			"event_id", event.EventID,
		)
		return true
	default:
		p.drop(event, metrics.DropQueueFull, "event not queued, queue full, event dropped")
		return false
	}
}

// Close signals workers to stop and waits for in-flight events to drain.
// Call this during graceful shutdown after the HTTP server has stopped.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		close(p.queue)
		p.mu.Unlock()

		p.wg.Wait()
	})
}

func (p *Pool) drop(event *analytics.Event, reason, msg string) {
	p.logger.Error(msg,
		"event", event.EventType,
		"event_id", event.EventID,
	)
	p.config.Metrics.AnalyticsDrop(reason)
}

// worker is the inner worker thread that continuously pulls events off the queue
func (p *Pool) worker(id uint) {
	defer p.wg.Done()
	p.logger.Debug("worker started", "worker_id", id)

	for event := range p.queue {
		p.processJob(event)
	}

	p.logger.Debug("worker stopped", "worker_id", id)
}

// processJob publishes one event, logging and dropping it on failure.
func (p *Pool) processJob(event *analytics.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), p.config.PublishTimeout)
	defer cancel()

	if err := p.config.Publisher.Publish(ctx, event); err != nil {
		p.logger.Error("analytics publish failed, event dropped",
			"event", event.EventType,
			"event_id", event.EventID,
			"error", err,
		)
		p.config.Metrics.AnalyticsDrop(metrics.DropPublishError)
		return
	}

	p.logger.Debug("event published",
		"event", event.EventType,
		"event_id", event.EventID,
	)
}

var _ analytics.Enqueuer = (*Pool)(nil)
