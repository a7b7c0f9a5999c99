// internal/analytics/dispatcher.go
package analytics

import (
	"context"
	"sync"
	"time"

	"acadezone-chatbot/internal/common/logger"
	"acadezone-chatbot/internal/common/metrics"
	"acadezone-chatbot/internal/models"
)

const defaultEventTimeout = 5 * time.Second

// Dispatcher decouples analytics writes from the conversation path. Events
// are queued onto a buffered channel and delivered by a single worker
// goroutine; a full buffer drops the event instead of blocking the caller.
type Dispatcher struct {
	sink    Sink
	queue   chan func(context.Context)
	logger  logger.Logger
	wg      sync.WaitGroup
	closeMu sync.Mutex
	closed  bool
}

func NewDispatcher(sink Sink, bufferSize int, log logger.Logger) *Dispatcher {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	d := &Dispatcher{
		sink:   sink,
		queue:  make(chan func(context.Context), bufferSize),
		logger: log.WithFields(map[string]interface{}{"component": "analytics"}),
	}
	d.wg.Add(1)
	go d.run()
	return d
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for task := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), defaultEventTimeout)
		task(ctx)
		cancel()
	}
}

// Close stops accepting events and waits for the queue to drain.
func (d *Dispatcher) Close() {
	d.closeMu.Lock()
	if d.closed {
		d.closeMu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.closeMu.Unlock()
	d.wg.Wait()
}

// enqueue hands a task to the worker, dropping it when the buffer is full
// or the dispatcher is closed.
func (d *Dispatcher) enqueue(name string, task func(context.Context)) {
	d.closeMu.Lock()
	defer d.closeMu.Unlock()
	if d.closed {
		metrics.AnalyticsEventsDropped.Inc()
		return
	}
	select {
	case d.queue <- task:
	default:
		metrics.AnalyticsEventsDropped.Inc()
		d.logger.Warn("analytics event dropped, buffer full", map[string]interface{}{
			"event": name,
		})
	}
}

func (d *Dispatcher) logFailure(event string, err error) {
	if err != nil {
		d.logger.Warn("analytics event failed", map[string]interface{}{
			"event": event,
			"error": err.Error(),
		})
	}
}

func (d *Dispatcher) SessionStart(_ context.Context, sessionID, pageURL, referrer string) error {
	d.enqueue("session_start", func(ctx context.Context) {
		d.logFailure("session_start", d.sink.SessionStart(ctx, sessionID, pageURL, referrer))
	})
	return nil
}

func (d *Dispatcher) StepCompleted(_ context.Context, event StepCompletedEvent) error {
	d.enqueue("step_completed", func(ctx context.Context) {
		d.logFailure("step_completed", d.sink.StepCompleted(ctx, event))
	})
	return nil
}

func (d *Dispatcher) SessionCompleted(_ context.Context, event SessionCompletedEvent) error {
	d.enqueue("session_completed", func(ctx context.Context) {
		d.logFailure("session_completed", d.sink.SessionCompleted(ctx, event))
	})
	return nil
}

func (d *Dispatcher) ContactRequestCreated(_ context.Context, userID string, kind models.ContactRequestKind) error {
	d.enqueue("contact_request_created", func(ctx context.Context) {
		d.logFailure("contact_request_created", d.sink.ContactRequestCreated(ctx, userID, kind))
	})
	return nil
}
