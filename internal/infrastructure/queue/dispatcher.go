package queue

import (
	"context"
	"hash/fnv"
	"time"

	"github.com/rs/zerolog"

	"github.com/loqui/chat-system/internal/api/metrics"
	"github.com/loqui/chat-system/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 1024
	touchTimeout   = 5 * time.Second
)

// TouchDispatcher records session last-used timestamps off the request
// path. Tokens are routed to a fixed set of workers by consistent
// hashing, so updates for one token stay ordered. Enqueueing never
// blocks: when a worker's buffer is full the update is dropped, which is
// acceptable for diagnostic data.
type TouchDispatcher struct {
	workers  []chan string
	sessions ports.SessionRepository
	log      zerolog.Logger
}

// NewTouchDispatcher creates a TouchDispatcher with numWorkers sharded
// workers. If numWorkers <= 0, defaultWorkers is used.
func NewTouchDispatcher(numWorkers int, sessions ports.SessionRepository, log zerolog.Logger) *TouchDispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &TouchDispatcher{
		workers:  make([]chan string, numWorkers),
		sessions: sessions,
		log:      log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan string, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is
// cancelled.
func (d *TouchDispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Record schedules a last-used update for token. Never blocks.
func (d *TouchDispatcher) Record(token string) {
	select {
	case d.workers[d.shardIndex(token)] <- token:
	default:
		metrics.SessionTouchDroppedTotal.Inc()
		d.log.Debug().Msg("touch queue full, update dropped")
	}
}

// shardIndex maps a token deterministically to a worker index.
func (d *TouchDispatcher) shardIndex(token string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(token))
	return int(h.Sum32()) % len(d.workers)
}

func (d *TouchDispatcher) runWorker(ctx context.Context, id int, ch <-chan string) {
	for {
		select {
		case <-ctx.Done():
			return
		case token, ok := <-ch:
			if !ok {
				return
			}
			touchCtx, cancel := context.WithTimeout(ctx, touchTimeout)
			err := d.sessions.Touch(touchCtx, token)
			cancel()
			if err != nil {
				d.log.Warn().Err(err).
					Int("worker_id", id).
					Msg("session touch failed")
			}
		}
	}
}
