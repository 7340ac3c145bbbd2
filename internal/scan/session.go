package scan

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cartdanawa/pricescan/internal/capture"
	"github.com/cartdanawa/pricescan/internal/clock"
)

// Session is one open scanning screen: the latest camera frame, the
// orchestrator deciding what reaches the cart, and the last status shown.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`

	frames       *capture.LatestFrame
	orchestrator *Orchestrator

	mu   sync.RWMutex
	last *Notification
	stop context.CancelFunc
}

// SessionView is the JSON shape of a session
type SessionView struct {
	ID         string        `json:"id"`
	CreatedAt  time.Time     `json:"created_at"`
	State      State         `json:"state"`
	HasFrame   bool          `json:"has_frame"`
	LocalOnly  bool          `json:"local_only"`
	Auto       bool          `json:"auto_capture"`
	LastResult *Notification `json:"last_result,omitempty"`
}

// NewSession opens a session with fresh dedup state. An empty id gets a
// random one.
func NewSession(id string, queue Submitter, cart Cart, clk clock.Clock) *Session {
	if clk == nil {
		clk = clock.Real{}
	}
	if id == "" {
		id = uuid.New().String()
	}
	s := &Session{
		ID:        id,
		CreatedAt: clk.Now(),
		frames:    capture.NewLatestFrame(),
	}
	s.orchestrator = NewOrchestrator(s.frames, queue, cart, NotifierFunc(s.record), clk)
	return s
}

func (s *Session) record(n Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = &n
}

// Orchestrator exposes the session's scan cycle driver
func (s *Session) Orchestrator() *Orchestrator {
	return s.orchestrator
}

// SetFrame stores the latest camera frame for the next capture
func (s *Session) SetFrame(snap capture.Snapshot) {
	s.frames.Set(snap)
}

// Capture stores snap and runs one capture cycle on it
func (s *Session) Capture(ctx context.Context, snap capture.Snapshot) Notification {
	s.SetFrame(snap)
	return s.orchestrator.Trigger(ctx)
}

// StartAutoCapture runs a cycle on the latest frame every interval until
// Close. Calling it again replaces the running loop.
func (s *Session) StartAutoCapture(interval time.Duration) {
	if interval <= 0 {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())

	s.mu.Lock()
	if s.stop != nil {
		s.stop()
	}
	s.stop = cancel
	s.mu.Unlock()

	slog.Debug("Auto capture started", "session_id", s.ID, "interval", interval)
	go s.orchestrator.AutoCapture(ctx, interval)
}

// Close stops auto capture. Requests already queued still resolve.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil {
		s.stop()
		s.stop = nil
	}
}

func (s *Session) autoCapturing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stop != nil
}

// Text runs one cycle on text read off a price tag
func (s *Session) Text(ctx context.Context, text string) Notification {
	return s.orchestrator.ScanText(ctx, text)
}

// LastNotification returns the most recent notification, if any
func (s *Session) LastNotification() (Notification, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last == nil {
		return Notification{}, false
	}
	return *s.last, true
}

// View summarizes the session for API responses
func (s *Session) View() SessionView {
	_, err := s.frames.Capture(context.Background())
	v := SessionView{
		ID:        s.ID,
		CreatedAt: s.CreatedAt,
		State:     s.orchestrator.State(),
		HasFrame:  err == nil,
		LocalOnly: s.orchestrator.RemoteDisabled(),
		Auto:      s.autoCapturing(),
	}
	if n, ok := s.LastNotification(); ok {
		v.LastResult = &n
	}
	return v
}
