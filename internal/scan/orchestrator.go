// Package scan runs the capture → recognize → evaluate cycle for one
// scanning session and decides which scans reach the cart.
package scan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cartdanawa/pricescan/internal/capture"
	"github.com/cartdanawa/pricescan/internal/clock"
	"github.com/cartdanawa/pricescan/internal/dispatch"
	"github.com/cartdanawa/pricescan/internal/heuristic"
	"github.com/cartdanawa/pricescan/internal/models"
	"github.com/cartdanawa/pricescan/internal/recognition"
)

// DefaultDedupWindow suppresses repeated identical prices
const DefaultDedupWindow = 3000 * time.Millisecond

// UnknownItemName is used when a price was found but no product name
const UnknownItemName = "Unknown Item"

// FrameSource supplies the frame, guide and viewport for one capture
type FrameSource interface {
	Capture(ctx context.Context) (capture.Snapshot, error)
}

// Submitter queues recognition work
type Submitter interface {
	Submit(p recognition.Payload) *dispatch.Future
}

// Cart receives accepted scans
type Cart interface {
	Add(ctx context.Context, rec models.ScanRecord)
}

// CartFunc adapts a function to Cart
type CartFunc func(ctx context.Context, rec models.ScanRecord)

func (f CartFunc) Add(ctx context.Context, rec models.ScanRecord) { f(ctx, rec) }

// Notifier receives the transient status message of each finished cycle
type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(n Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }

// DedupState remembers the last accepted scan of a session
type DedupState struct {
	LastAcceptedPrice *int
	LastAcceptedAt    time.Time
}

// Orchestrator drives scan cycles for one session. A new cycle is skipped
// while the previous cycle's request is still outstanding.
type Orchestrator struct {
	frames   FrameSource
	queue    Submitter
	cart     Cart
	notifier Notifier
	clock    clock.Clock

	// DedupWindow defaults to DefaultDedupWindow
	DedupWindow time.Duration

	mu             sync.Mutex
	state          State
	busy           bool
	remoteDisabled bool
	dedup          DedupState
}

// NewOrchestrator wires a session's collaborators. notifier may be nil.
func NewOrchestrator(frames FrameSource, queue Submitter, cart Cart, notifier Notifier, clk clock.Clock) *Orchestrator {
	if clk == nil {
		clk = clock.Real{}
	}
	if notifier == nil {
		notifier = NotifierFunc(func(Notification) {})
	}
	return &Orchestrator{
		frames:      frames,
		queue:       queue,
		cart:        cart,
		notifier:    notifier,
		clock:       clk,
		DedupWindow: DefaultDedupWindow,
		state:       StateIdle,
	}
}

// State returns the state of the most recent cycle
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Dedup returns a copy of the dedup state
func (o *Orchestrator) Dedup() DedupState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.dedup
}

// RemoteDisabled reports whether a configuration error switched off the
// recognition service for this session
func (o *Orchestrator) RemoteDisabled() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.remoteDisabled
}

// Trigger runs one capture cycle from the frame source
func (o *Orchestrator) Trigger(ctx context.Context) Notification {
	if !o.begin() {
		return Notification{Outcome: OutcomeSkipped, At: o.clock.Now()}
	}

	payload, err := o.captureImage(ctx)
	if err != nil {
		slog.Warn("Capture failed", "err", err)
		return o.finish(StateFailed, failed(o.clock.Now(), captureMessage(err)))
	}

	return o.await(ctx, payload)
}

// ScanText runs one cycle on text already read off a price tag
func (o *Orchestrator) ScanText(ctx context.Context, text string) Notification {
	if !o.begin() {
		return Notification{Outcome: OutcomeSkipped, At: o.clock.Now()}
	}
	return o.await(ctx, recognition.TextPayload(text))
}

// AutoCapture triggers a cycle every interval until ctx ends. Triggers that
// land while a request is outstanding are skipped by Trigger itself. A
// non-positive interval returns at once.
func (o *Orchestrator) AutoCapture(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			go o.Trigger(ctx)
		}
	}
}

func (o *Orchestrator) begin() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.busy {
		slog.Debug("Capture skipped, previous request outstanding")
		return false
	}
	o.busy = true
	o.state = StateCapturing
	return true
}

func (o *Orchestrator) release() {
	o.mu.Lock()
	o.busy = false
	o.mu.Unlock()
}

func (o *Orchestrator) setState(s State) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
}

func (o *Orchestrator) captureImage(ctx context.Context) (recognition.Payload, error) {
	snap, err := o.frames.Capture(ctx)
	if err != nil {
		return recognition.Payload{}, err
	}

	rect, err := capture.MapToSource(snap.Frame.Size(), snap.Viewport.Size, snap.Guide)
	if err != nil {
		return recognition.Payload{}, err
	}

	cropped, err := capture.Crop(snap.Frame.Image, rect)
	if err != nil {
		return recognition.Payload{}, err
	}

	data, err := capture.EncodeJPEG(cropped)
	if err != nil {
		return recognition.Payload{}, err
	}

	slog.Debug("Captured guide region", "x", rect.X, "y", rect.Y, "width", rect.Width, "height", rect.Height, "bytes", len(data))
	return recognition.ImagePayload(data, "image/jpeg"), nil
}

func (o *Orchestrator) await(ctx context.Context, payload recognition.Payload) Notification {
	o.setState(StateAwaitingResult)

	if o.RemoteDisabled() {
		return o.evaluate(ctx, o.fallback(payload, models.RecognitionResult{}))
	}

	// Whoever sees both the resolution and the detach releases the
	// outstanding flag. A caller that stays attached releases it in finish.
	var (
		handoff  sync.Mutex
		detached bool
		resolved bool
	)
	future := o.queue.Submit(payload)
	_ = future.Then(func(models.RecognitionResult, error) {
		handoff.Lock()
		resolved = true
		release := detached
		handoff.Unlock()
		if release {
			o.release()
		}
	})

	result, err := future.Wait(ctx)
	if err != nil {
		if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
			handoff.Lock()
			detached = true
			release := resolved
			handoff.Unlock()
			if release {
				o.release()
			}
			o.setState(StateIdle)
			return Notification{Outcome: OutcomeAbandoned, At: o.clock.Now()}
		}
		o.recordFailure(err)
		return o.evaluate(ctx, o.fallback(payload, models.RecognitionResult{}))
	}

	if !result.HasPrice() {
		return o.evaluate(ctx, o.fallback(payload, result))
	}
	return o.evaluate(ctx, result)
}

func (o *Orchestrator) recordFailure(err error) {
	if recognition.IsConfigurationError(err) {
		o.mu.Lock()
		first := !o.remoteDisabled
		o.remoteDisabled = true
		o.mu.Unlock()
		if first {
			slog.Error("Recognition service is not configured, using local parsing only", "err", err)
		}
		return
	}
	slog.Warn("Recognition failed, falling back to local parsing", "err", err)
}

// fallback runs the heuristic parser on whatever text is known. A remote
// product name is kept when the parser finds none.
func (o *Orchestrator) fallback(payload recognition.Payload, remote models.RecognitionResult) models.RecognitionResult {
	text := remote.RawText
	if text == "" && payload.Kind == recognition.KindText {
		text = payload.Text
	}
	parsed := heuristic.Parse(text)
	if parsed.ProductName == nil {
		parsed.ProductName = remote.ProductName
	}
	return parsed
}

func (o *Orchestrator) evaluate(ctx context.Context, result models.RecognitionResult) Notification {
	o.setState(StateEvaluating)
	now := o.clock.Now()

	if !result.HasPrice() {
		return o.finish(StateFailed, failed(now, "Price not found"))
	}
	price := *result.Price

	o.mu.Lock()
	last := o.dedup
	duplicate := last.LastAcceptedPrice != nil && *last.LastAcceptedPrice == price && now.Sub(last.LastAcceptedAt) < o.DedupWindow
	if !duplicate {
		o.dedup = DedupState{LastAcceptedPrice: &price, LastAcceptedAt: now}
	}
	o.mu.Unlock()

	if duplicate {
		return o.finish(StateRejected, Notification{
			Outcome: OutcomeDuplicate,
			Message: fmt.Sprintf("Already scanned %s", formatPrice(price)),
			At:      now,
		})
	}

	name := UnknownItemName
	if result.ProductName != nil && *result.ProductName != "" {
		name = *result.ProductName
	}
	record := models.ScanRecord{Name: name, Price: price}
	o.cart.Add(ctx, record)

	slog.Info("Scan accepted", "name", record.Name, "price", record.Price)
	return o.finish(StateAccepted, Notification{
		Outcome: OutcomeAccepted,
		Message: fmt.Sprintf("Added %s %s", record.Name, formatPrice(record.Price)),
		Record:  &record,
		At:      now,
	})
}

// finish reports a completed cycle and frees the orchestrator for the next
func (o *Orchestrator) finish(terminal State, n Notification) Notification {
	o.setState(terminal)
	o.notifier.Notify(n)

	o.mu.Lock()
	o.state = StateIdle
	o.busy = false
	o.mu.Unlock()
	return n
}

func failed(at time.Time, msg string) Notification {
	return Notification{Outcome: OutcomeFailed, Message: msg, At: at}
}

func captureMessage(err error) string {
	switch {
	case errors.Is(err, capture.ErrNoFrame), errors.Is(err, capture.ErrInvalidFrame):
		return "Camera not ready"
	case errors.Is(err, capture.ErrInvalidGuide):
		return "Align the price tag inside the guide"
	default:
		return "Capture failed"
	}
}
