package storage

import (
	"testing"
	"time"

	"github.com/cartdanawa/pricescan/internal/clock"
	"github.com/cartdanawa/pricescan/internal/dispatch"
	"github.com/cartdanawa/pricescan/internal/scan"
)

func TestSessionStore(t *testing.T) {
	clk := clock.NewFake(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	q := dispatch.New(nil, 0, clk)
	cart := scan.CartFunc(nil)

	s := New()
	first := scan.NewSession("", q, cart, clk)
	clk.Advance(time.Second)
	second := scan.NewSession("", q, cart, clk)
	s.Set(second)
	s.Set(first)

	if s.Len() != 2 {
		t.Errorf("Expected 2 sessions, got %d", s.Len())
	}
	got, ok := s.Get(first.ID)
	if !ok || got != first {
		t.Error("Expected to find first session")
	}

	list := s.List()
	if len(list) != 2 || list[0] != first || list[1] != second {
		t.Errorf("Expected sessions ordered by creation time")
	}

	if !s.Delete(first.ID) {
		t.Error("Expected delete to report existing session")
	}
	if s.Delete(first.ID) {
		t.Error("Expected second delete to report missing session")
	}
	if _, ok := s.Get(first.ID); ok {
		t.Error("Expected session to be gone")
	}
}
