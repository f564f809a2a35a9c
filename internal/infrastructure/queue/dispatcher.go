package queue

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/wisdombase/wisdombase-api/internal/metrics"
	"github.com/wisdombase/wisdombase-api/internal/core/domain"
	"github.com/wisdombase/wisdombase-api/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	appendTimeout  = 5 * time.Second
)

// AuditDispatcher persists audit records off the request path. Records are
// sharded by actor id onto a fixed set of workers, so one actor's records are
// appended in the order they were signalled.
type AuditDispatcher struct {
	workers []chan domain.OperationLog
	repo    ports.OperationLogRepository
	log     zerolog.Logger

	mu      sync.RWMutex
	stopped bool
	wg      sync.WaitGroup
}

// NewAuditDispatcher creates a dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewAuditDispatcher(numWorkers int, repo ports.OperationLogRepository, log zerolog.Logger) *AuditDispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &AuditDispatcher{
		workers: make([]chan domain.OperationLog, numWorkers),
		repo:    repo,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.OperationLog, channelBuffer)
	}
	return d
}

// Start launches the worker goroutines. ctx is used for the appends; workers
// exit once Stop closes their channels and the backlog is written.
func (d *AuditDispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Record implements ports.AuditSink. It blocks only when the worker's buffer
// is full. Records signalled after Stop are dropped with a warning.
func (d *AuditDispatcher) Record(entry domain.OperationLog) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		d.log.Warn().Str("action", entry.Action).Int64("user_id", entry.UserID).Msg("audit dispatcher stopped, record dropped")
		return
	}
	metrics.AuditQueueDepth.Inc()
	d.workers[d.shardIndex(entry.UserID)] <- entry
}

// Stop closes the queues and waits for the workers to drain them.
func (d *AuditDispatcher) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	for _, ch := range d.workers {
		close(ch)
	}
	d.mu.Unlock()
	d.wg.Wait()
}

// shardIndex maps an actor id deterministically to a worker index.
func (d *AuditDispatcher) shardIndex(userID int64) int {
	if userID < 0 {
		userID = -userID
	}
	return int(userID % int64(len(d.workers)))
}

func (d *AuditDispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.OperationLog) {
	defer d.wg.Done()
	for entry := range ch {
		metrics.AuditQueueDepth.Dec()

		appendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), appendTimeout)
		err := d.repo.Append(appendCtx, &entry)
		cancel()

		if err != nil {
			metrics.AuditRecordsTotal.WithLabelValues(entry.Action, "error").Inc()
			d.log.Error().Err(err).
				Str("action", entry.Action).
				Str("resource_type", entry.ResourceType).
				Int64("user_id", entry.UserID).
				Int("worker_id", id).
				Msg("audit record append failed")
			continue
		}
		metrics.AuditRecordsTotal.WithLabelValues(entry.Action, "ok").Inc()
		d.log.Debug().
			Str("log_id", strconv.FormatInt(entry.ID, 10)).
			Int("worker_id", id).
			Msg("audit record stored")
	}
}
