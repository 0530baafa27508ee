package metrics

import (
	"fmt"
	"math"
	"sync"
	"time"

	"trayping/internal/models"
)

// Uptime summarises probe outcomes since the tally was last reset.
type Uptime struct {
	UptimePercent float64
	TotalChecks   int
	Passing       int
	Failing       int
	Since         time.Time
	LastLatency   time.Duration
}

// Tally counts probe outcomes. Only counters are kept, never the samples.
type Tally struct {
	mu          sync.Mutex
	passing     int
	failing     int
	since       time.Time
	lastLatency time.Duration
	now         func() time.Time
}

// NewTally starts an empty tally.
func NewTally() *Tally {
	t := &Tally{now: time.Now}
	t.since = t.now()
	return t
}

// Record adds one probe outcome.
func (t *Tally) Record(res models.ProbeResult) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if res.OK {
		t.passing++
		t.lastLatency = res.Latency
	} else {
		t.failing++
	}
}

// Reset clears the counters.
func (t *Tally) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.passing, t.failing = 0, 0
	t.lastLatency = 0
	t.since = t.now()
}

// Summary computes the current uptime figures.
func (t *Tally) Summary() Uptime {
	t.mu.Lock()
	defer t.mu.Unlock()

	total := t.passing + t.failing
	uptime := 0.0
	if total > 0 {
		uptime = float64(t.passing) / float64(total) * 100
	}
	return Uptime{
		UptimePercent: round2(uptime),
		TotalChecks:   total,
		Passing:       t.passing,
		Failing:       t.failing,
		Since:         t.since,
		LastLatency:   t.lastLatency,
	}
}

// Tooltip renders the tray tooltip line for the given state.
func Tooltip(title string, state models.RunState, reach models.Reachability, u Uptime) string {
	if state == models.Paused {
		return title + ": paused"
	}
	var status string
	switch reach {
	case models.Reachable:
		status = "online"
		if u.LastLatency > 0 {
			status = fmt.Sprintf("online (%d ms)", u.LastLatency.Milliseconds())
		}
	case models.Unreachable:
		status = "offline"
	default:
		status = "checking"
	}
	if u.TotalChecks == 0 {
		return title + ": " + status
	}
	line := fmt.Sprintf("%s: %s · %.2f%% of %d checks", title, status, u.UptimePercent, u.TotalChecks)
	if !u.Since.IsZero() {
		line += " since " + u.Since.Format("15:04")
	}
	return line
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
