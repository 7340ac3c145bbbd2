// Package dispatch serializes calls to the recognition service: one request
// in flight at a time, strict submission order, and a minimum gap between
// the end of one call and the start of the next.
package dispatch

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cartdanawa/pricescan/internal/clock"
	"github.com/cartdanawa/pricescan/internal/models"
	"github.com/cartdanawa/pricescan/internal/recognition"
)

// DefaultSpacing is the gap kept between recognition calls
const DefaultSpacing = 1500 * time.Millisecond

// Recognizer performs a single recognition call
type Recognizer interface {
	Recognize(ctx context.Context, p recognition.Payload) (models.RecognitionResult, error)
}

type request struct {
	payload recognition.Payload
	future  *Future
}

// Queue is a FIFO, single-in-flight, spaced request scheduler
type Queue struct {
	client  Recognizer
	spacing time.Duration
	clock   clock.Clock

	mu       sync.Mutex
	pending  []request
	running  bool
	lastDone time.Time
}

// New creates a queue in front of client. A nil clock means the wall clock.
func New(client Recognizer, spacing time.Duration, clk clock.Clock) *Queue {
	if clk == nil {
		clk = clock.Real{}
	}
	if spacing < 0 {
		spacing = 0
	}
	return &Queue{
		client:  client,
		spacing: spacing,
		clock:   clk,
	}
}

// Submit appends p to the queue and returns its handle immediately
func (q *Queue) Submit(p recognition.Payload) *Future {
	f := newFuture()

	q.mu.Lock()
	q.pending = append(q.pending, request{payload: p, future: f})
	depth := len(q.pending)
	start := !q.running
	q.running = true
	q.mu.Unlock()

	slog.Debug("Recognition request queued", "kind", p.Kind, "pending", depth)

	if start {
		go q.run()
	}
	return f
}

// Pending returns the number of requests not yet dispatched
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

func (q *Queue) run() {
	for {
		q.mu.Lock()
		if len(q.pending) == 0 {
			q.running = false
			q.mu.Unlock()
			return
		}
		var wait time.Duration
		if !q.lastDone.IsZero() {
			wait = q.spacing - q.clock.Now().Sub(q.lastDone)
		}
		q.mu.Unlock()

		if wait > 0 {
			<-q.clock.After(wait)
		}

		q.mu.Lock()
		req := q.pending[0]
		q.pending[0] = request{}
		q.pending = q.pending[1:]
		q.mu.Unlock()

		// Callers cannot cancel a dispatched request.
		result, err := q.client.Recognize(context.Background(), req.payload)
		if err != nil {
			slog.Warn("Recognition request failed", "kind", req.payload.Kind, "err", err)
		}

		q.mu.Lock()
		q.lastDone = q.clock.Now()
		q.mu.Unlock()

		req.future.complete(result, err)
	}
}
