package invitations

import (
	"time"

	"go.uber.org/atomic"
)

// Progress tracks batch completion counters. Counters only ever increase;
// atomic access keeps snapshots consistent for readers observing a batch
// from another goroutine.
type Progress struct {
	total     int
	processed atomic.Int64
	succeeded atomic.Int64
	failed    atomic.Int64
	warned    atomic.Int64
	started   time.Time

	now func() time.Time
}

// NewProgress creates a progress tracker for a batch of the given size.
func NewProgress(total int) *Progress {
	return &Progress{
		total:   total,
		started: time.Now(),
		now:     time.Now,
	}
}

// Total returns the batch size.
func (p *Progress) Total() int { return p.total }

// Processed returns how many entries have completed.
func (p *Progress) Processed() int { return int(p.processed.Load()) }

// Succeeded returns how many entries completed as invited.
func (p *Progress) Succeeded() int { return int(p.succeeded.Load()) }

// Failed returns how many entries completed with an error.
func (p *Progress) Failed() int { return int(p.failed.Load()) }

// Warned returns how many entries completed in an incomplete state.
func (p *Progress) Warned() int { return int(p.warned.Load()) }

// Started returns the batch start time.
func (p *Progress) Started() time.Time { return p.started }

// Percentage returns completion as 0-100.
func (p *Progress) Percentage() float64 {
	if p.total == 0 {
		return 0
	}
	return float64(p.Processed()) / float64(p.total) * 100
}

// Elapsed returns time since the batch started.
func (p *Progress) Elapsed() time.Duration {
	return p.now().Sub(p.started)
}

// ETA estimates remaining time from the observed processing rate. Returns
// false until at least one entry has completed.
func (p *Progress) ETA() (time.Duration, bool) {
	processed := p.Processed()
	if processed == 0 {
		return 0, false
	}
	elapsed := p.Elapsed()
	rate := float64(processed) / elapsed.Seconds()
	remaining := float64(p.total-processed) / rate
	return time.Duration(remaining * float64(time.Second)), true
}

// Snapshot is an immutable copy of the counters for reporting.
type Snapshot struct {
	Total     int       `json:"total"`
	Processed int       `json:"processed"`
	Succeeded int       `json:"succeeded"`
	Failed    int       `json:"failed"`
	Warned    int       `json:"warned"`
	Started   time.Time `json:"started"`
}

// Snapshot returns a point-in-time copy of the counters.
func (p *Progress) Snapshot() Snapshot {
	return Snapshot{
		Total:     p.total,
		Processed: p.Processed(),
		Succeeded: p.Succeeded(),
		Failed:    p.Failed(),
		Warned:    p.Warned(),
		Started:   p.started,
	}
}
