package scan

import (
	"fmt"
	"strconv"
	"time"

	"github.com/cartdanawa/pricescan/internal/models"
)

// State is where a scan cycle currently is
type State int

const (
	StateIdle State = iota
	StateCapturing
	StateAwaitingResult
	StateEvaluating
	StateAccepted
	StateRejected
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCapturing:
		return "capturing"
	case StateAwaitingResult:
		return "awaiting_result"
	case StateEvaluating:
		return "evaluating"
	case StateAccepted:
		return "accepted"
	case StateRejected:
		return "rejected"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// MarshalText lets states appear by name in JSON responses
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(text []byte) error {
	for st := StateIdle; st <= StateFailed; st++ {
		if st.String() == string(text) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown scan state %q", text)
}

// Outcome is how a cycle ended
type Outcome string

const (
	OutcomeAccepted  Outcome = "accepted"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeFailed    Outcome = "failed"
	// OutcomeSkipped means the trigger arrived while a request was outstanding
	OutcomeSkipped Outcome = "skipped"
	// OutcomeAbandoned means the caller stopped waiting. The request still
	// runs and its result is dropped.
	OutcomeAbandoned Outcome = "abandoned"
)

// Notification is the transient status of one finished cycle
type Notification struct {
	Outcome Outcome            `json:"outcome"`
	Message string             `json:"message,omitempty"`
	Record  *models.ScanRecord `json:"record,omitempty"`
	At      time.Time          `json:"at"`
}

// formatPrice renders 4830 as "4,830원"
func formatPrice(price int) string {
	s := strconv.Itoa(price)
	neg := false
	if price < 0 {
		neg = true
		s = s[1:]
	}
	out := make([]byte, 0, len(s)+len(s)/3+1)
	for i := range len(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, s[i])
	}
	if neg {
		return "-" + string(out) + "원"
	}
	return string(out) + "원"
}
