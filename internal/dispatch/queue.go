package dispatch

import (
	"context"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/breeze-rmm/sendinput/internal/logging"
)

var log = logging.L("dispatch")

// Handler consumes one payload. It must not retain the slice.
type Handler func(payload []byte)

// Stats is a snapshot of queue counters.
type Stats struct {
	Handled  uint64
	Rejected uint64
	Panicked uint64
}

// Queue hands payloads to a fixed set of workers through a bounded buffer.
// With a single worker payloads are handled in submission order.
type Queue struct {
	handle    Handler
	workers   int
	queue     chan []byte
	wg        sync.WaitGroup
	mu        sync.RWMutex
	accepting bool
	stopOnce  sync.Once
	closeOnce sync.Once
	stopChan  chan struct{}

	handled  atomic.Uint64
	rejected atomic.Uint64
	panicked atomic.Uint64
}

// New starts a queue with the given number of workers and buffer size.
// Values below 1 are raised to 1.
func New(handle Handler, workers, size int) *Queue {
	if workers < 1 {
		workers = 1
	}
	if size < 1 {
		size = 1
	}

	q := &Queue{
		handle:   handle,
		workers:  workers,
		queue:    make(chan []byte, size),
		stopChan: make(chan struct{}),
	}
	q.accepting = true

	for i := 0; i < workers; i++ {
		go q.worker()
	}

	log.Debug("dispatch queue started", "workers", workers, "size", size)
	return q
}

// Submit enqueues a copy of payload. It returns false when the queue is
// stopped or full.
func (q *Queue) Submit(payload []byte) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if !q.accepting {
		q.rejected.Add(1)
		return false
	}

	buf := append([]byte(nil), payload...)

	// Add before the send so Drain cannot miss an enqueued payload.
	q.wg.Add(1)
	select {
	case q.queue <- buf:
		return true
	default:
		q.wg.Done()
		q.rejected.Add(1)
		log.Warn("dispatch queue full, payload rejected", logging.KeyBytes, len(payload))
		return false
	}
}

// StopAccepting makes every later Submit fail.
func (q *Queue) StopAccepting() {
	q.mu.Lock()
	q.accepting = false
	q.mu.Unlock()
}

// Drain stops accepting, waits for queued payloads until ctx is done and
// then releases the workers.
func (q *Queue) Drain(ctx context.Context) {
	q.StopAccepting()
	q.stopOnce.Do(func() {
		close(q.stopChan)
	})

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Debug("dispatch queue drained")
	case <-ctx.Done():
		log.Warn("dispatch queue drain timed out", "pending", len(q.queue))
	}

	q.closeOnce.Do(func() {
		close(q.queue)
	})
}

func (q *Queue) Stats() Stats {
	return Stats{
		Handled:  q.handled.Load(),
		Rejected: q.rejected.Load(),
		Panicked: q.panicked.Load(),
	}
}

func (q *Queue) worker() {
	for {
		select {
		case payload, ok := <-q.queue:
			if !ok {
				return
			}
			q.run(payload)
		case <-q.stopChan:
			for {
				select {
				case payload, ok := <-q.queue:
					if !ok {
						return
					}
					q.run(payload)
				default:
					return
				}
			}
		}
	}
}

func (q *Queue) run(payload []byte) {
	defer q.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			q.panicked.Add(1)
			log.Error("payload handler panicked", "panic", r, "stack", string(debug.Stack()))
		}
	}()
	q.handle(payload)
	q.handled.Add(1)
}
