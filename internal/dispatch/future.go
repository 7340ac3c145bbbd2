package dispatch

import (
	"context"
	"errors"
	"sync"

	"github.com/cartdanawa/pricescan/internal/models"
)

// ErrContinuationSet is returned by Then when a continuation is already registered
var ErrContinuationSet = errors.New("continuation already registered")

// Future is the caller's handle on a submitted request. It resolves exactly
// once, with either a result or an error.
type Future struct {
	done chan struct{}

	mu       sync.Mutex
	resolved bool
	result   models.RecognitionResult
	err      error
	then     func(models.RecognitionResult, error)
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// Done is closed once the future resolves
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Ready reports whether the future has resolved, without blocking
func (f *Future) Ready() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Wait blocks until the future resolves or ctx ends. A cancelled ctx only
// detaches this caller; the request itself keeps running.
func (f *Future) Wait(ctx context.Context) (models.RecognitionResult, error) {
	select {
	case <-f.done:
		f.mu.Lock()
		defer f.mu.Unlock()
		return f.result, f.err
	case <-ctx.Done():
		return models.RecognitionResult{}, ctx.Err()
	}
}

// Then registers fn to run once with the outcome. If the future has already
// resolved fn runs immediately on the calling goroutine, otherwise on the
// queue's goroutine at resolution time.
func (f *Future) Then(fn func(models.RecognitionResult, error)) error {
	f.mu.Lock()
	if f.then != nil {
		f.mu.Unlock()
		return ErrContinuationSet
	}
	f.then = fn
	if !f.resolved {
		f.mu.Unlock()
		return nil
	}
	result, err := f.result, f.err
	f.mu.Unlock()

	fn(result, err)
	return nil
}

// complete resolves the future. Only the first call has any effect. The
// continuation runs before Done is closed.
func (f *Future) complete(result models.RecognitionResult, err error) bool {
	f.mu.Lock()
	if f.resolved {
		f.mu.Unlock()
		return false
	}
	f.resolved = true
	f.result, f.err = result, err
	then := f.then
	f.mu.Unlock()

	if then != nil {
		then(result, err)
	}
	close(f.done)
	return true
}
