package dispatch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cartdanawa/pricescan/internal/clock"
	"github.com/cartdanawa/pricescan/internal/models"
	"github.com/cartdanawa/pricescan/internal/recognition"
)

type call struct {
	text string
	at   time.Time
}

// recordingRecognizer answers instantly and logs when each call ran
type recordingRecognizer struct {
	clock clock.Clock
	fail  map[string]bool

	mu    sync.Mutex
	calls []call
}

func (r *recordingRecognizer) Recognize(ctx context.Context, p recognition.Payload) (models.RecognitionResult, error) {
	r.mu.Lock()
	r.calls = append(r.calls, call{text: p.Text, at: r.clock.Now()})
	price := len(r.calls) * 1000
	r.mu.Unlock()
	if r.fail[p.Text] {
		return models.RecognitionResult{}, recognition.ErrServiceUnavailable
	}
	return models.RecognitionResult{Price: &price, RawText: p.Text}, nil
}

func (r *recordingRecognizer) snapshot() []call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]call(nil), r.calls...)
}

func waitAll(t *testing.T, futures []*Future) {
	t.Helper()
	for i, f := range futures {
		select {
		case <-f.Done():
		case <-time.After(2 * time.Second):
			t.Fatalf("Timeout waiting for future %d", i)
		}
	}
}

func TestQueueOrderAndSpacing(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clk := clock.NewFake(start)
	rec := &recordingRecognizer{clock: clk}
	q := New(rec, 1500*time.Millisecond, clk)

	futures := []*Future{
		q.Submit(recognition.TextPayload("first")),
		q.Submit(recognition.TextPayload("second")),
		q.Submit(recognition.TextPayload("third")),
	}
	waitAll(t, futures)

	calls := rec.snapshot()
	if len(calls) != 3 {
		t.Fatalf("Expected 3 calls, got %d", len(calls))
	}
	for i, want := range []string{"first", "second", "third"} {
		if calls[i].text != want {
			t.Errorf("Expected call %d to be %s, got %s", i, want, calls[i].text)
		}
	}
	for i := 1; i < len(calls); i++ {
		if gap := calls[i].at.Sub(calls[i-1].at); gap < 1500*time.Millisecond {
			t.Errorf("Expected at least 1500ms between call %d and %d, got %v", i-1, i, gap)
		}
	}

	for i, f := range futures {
		res, err := f.Wait(context.Background())
		if err != nil {
			t.Fatalf("future %d failed: %v", i, err)
		}
		if res.RawText != calls[i].text {
			t.Errorf("Expected future %d to carry %s, got %s", i, calls[i].text, res.RawText)
		}
	}
}

func TestQueueFailureDoesNotStopLaterRequests(t *testing.T) {
	clk := clock.NewFake(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	rec := &recordingRecognizer{clock: clk, fail: map[string]bool{"first": true}}
	q := New(rec, 1500*time.Millisecond, clk)

	futures := []*Future{
		q.Submit(recognition.TextPayload("first")),
		q.Submit(recognition.TextPayload("second")),
		q.Submit(recognition.TextPayload("third")),
	}
	waitAll(t, futures)

	if _, err := futures[0].Wait(context.Background()); !errors.Is(err, recognition.ErrServiceUnavailable) {
		t.Errorf("Expected first request to fail, got %v", err)
	}
	for i := 1; i < 3; i++ {
		if _, err := futures[i].Wait(context.Background()); err != nil {
			t.Errorf("Expected request %d to succeed, got %v", i, err)
		}
	}

	calls := rec.snapshot()
	for i := 1; i < len(calls); i++ {
		if gap := calls[i].at.Sub(calls[i-1].at); gap < 1500*time.Millisecond {
			t.Errorf("Expected spacing after failure, got %v", gap)
		}
	}
}

func TestQueueSpacingAfterDrain(t *testing.T) {
	clk := clock.NewFake(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	rec := &recordingRecognizer{clock: clk}
	q := New(rec, 1500*time.Millisecond, clk)

	waitAll(t, []*Future{q.Submit(recognition.TextPayload("a"))})
	clk.Advance(200 * time.Millisecond)
	waitAll(t, []*Future{q.Submit(recognition.TextPayload("b"))})

	calls := rec.snapshot()
	if gap := calls[1].at.Sub(calls[0].at); gap < 1500*time.Millisecond {
		t.Errorf("Expected queue to honor spacing after draining, got %v", gap)
	}
}

func TestQueueRealClockSpacing(t *testing.T) {
	rec := &recordingRecognizer{clock: clock.Real{}}
	q := New(rec, 30*time.Millisecond, nil)

	futures := make([]*Future, 0, 3)
	for _, s := range []string{"a", "b", "c"} {
		futures = append(futures, q.Submit(recognition.TextPayload(s)))
	}
	waitAll(t, futures)

	calls := rec.snapshot()
	for i := 1; i < len(calls); i++ {
		if gap := calls[i].at.Sub(calls[i-1].at); gap < 30*time.Millisecond {
			t.Errorf("Expected at least 30ms between calls, got %v", gap)
		}
	}
}

// gatedRecognizer blocks every call until released
type gatedRecognizer struct {
	gate     chan struct{}
	started  chan string
	inFlight atomic.Int32
	maxSeen  atomic.Int32
}

func newGatedRecognizer() *gatedRecognizer {
	return &gatedRecognizer{gate: make(chan struct{}), started: make(chan string, 16)}
}

func (g *gatedRecognizer) Recognize(ctx context.Context, p recognition.Payload) (models.RecognitionResult, error) {
	n := g.inFlight.Add(1)
	for {
		seen := g.maxSeen.Load()
		if n <= seen || g.maxSeen.CompareAndSwap(seen, n) {
			break
		}
	}
	g.started <- p.Text
	<-g.gate
	g.inFlight.Add(-1)
	price := 4830
	return models.RecognitionResult{Price: &price}, nil
}

func TestQueueSingleInFlight(t *testing.T) {
	g := newGatedRecognizer()
	close(g.gate)
	q := New(g, 0, nil)

	var futures []*Future
	for i := 0; i < 5; i++ {
		futures = append(futures, q.Submit(recognition.TextPayload("x")))
	}
	waitAll(t, futures)

	if got := g.maxSeen.Load(); got != 1 {
		t.Errorf("Expected at most 1 request in flight, saw %d", got)
	}
}

func TestQueuePendingAndAbandonedWait(t *testing.T) {
	g := newGatedRecognizer()
	q := New(g, 0, nil)

	first := q.Submit(recognition.TextPayload("first"))
	second := q.Submit(recognition.TextPayload("second"))

	select {
	case <-g.started:
	case <-time.After(2 * time.Second):
		t.Fatal("Timeout waiting for first dispatch")
	}
	if got := q.Pending(); got != 1 {
		t.Errorf("Expected 1 pending request, got %d", got)
	}
	if first.Ready() {
		t.Error("Expected first future to be unresolved")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := first.Wait(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}

	close(g.gate)
	waitAll(t, []*Future{first, second})

	res, err := first.Wait(context.Background())
	if err != nil {
		t.Fatalf("Expected abandoned request to still complete, got %v", err)
	}
	if res.Price == nil || *res.Price != 4830 {
		t.Errorf("Expected price 4830, got %v", res.Price)
	}
}

func TestFutureResolvesOnce(t *testing.T) {
	f := newFuture()
	price := 100
	if !f.complete(models.RecognitionResult{Price: &price}, nil) {
		t.Fatal("Expected first completion to succeed")
	}
	if f.complete(models.RecognitionResult{}, errors.New("late")) {
		t.Error("Expected second completion to be ignored")
	}

	res, err := f.Wait(context.Background())
	if err != nil {
		t.Errorf("Expected original outcome, got error %v", err)
	}
	if res.Price == nil || *res.Price != 100 {
		t.Errorf("Expected price 100, got %v", res.Price)
	}
}

func TestFutureThen(t *testing.T) {
	f := newFuture()
	var calls atomic.Int32
	if err := f.Then(func(models.RecognitionResult, error) { calls.Add(1) }); err != nil {
		t.Fatalf("Then failed: %v", err)
	}
	if err := f.Then(func(models.RecognitionResult, error) {}); !errors.Is(err, ErrContinuationSet) {
		t.Errorf("Expected ErrContinuationSet, got %v", err)
	}

	f.complete(models.RecognitionResult{}, nil)
	f.complete(models.RecognitionResult{}, nil)
	if got := calls.Load(); got != 1 {
		t.Errorf("Expected continuation to run once, ran %d times", got)
	}

	resolved := newFuture()
	resolved.complete(models.RecognitionResult{}, recognition.ErrMalformedResponse)
	var gotErr error
	if err := resolved.Then(func(_ models.RecognitionResult, err error) { gotErr = err }); err != nil {
		t.Fatalf("Then failed: %v", err)
	}
	if !errors.Is(gotErr, recognition.ErrMalformedResponse) {
		t.Errorf("Expected immediate continuation with error, got %v", gotErr)
	}
}
