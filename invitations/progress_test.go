package invitations

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressCounters(t *testing.T) {
	p := NewProgress(4)

	assert.Equal(t, 4, p.Total())
	assert.Zero(t, p.Processed())
	assert.Equal(t, 0.0, p.Percentage())

	p.processed.Inc()
	p.succeeded.Inc()
	p.processed.Inc()
	p.failed.Inc()
	p.processed.Inc()
	p.warned.Inc()

	assert.Equal(t, 3, p.Processed())
	assert.Equal(t, 1, p.Succeeded())
	assert.Equal(t, 1, p.Failed())
	assert.Equal(t, 1, p.Warned())
	assert.Equal(t, 75.0, p.Percentage())
}

func TestProgressETA(t *testing.T) {
	p := NewProgress(10)
	base := p.Started()
	p.now = func() time.Time { return base.Add(20 * time.Second) }

	_, ok := p.ETA()
	assert.False(t, ok, "no estimate before the first entry finishes")

	// 4 entries in 20s means 5s per entry, 6 remaining
	for i := 0; i < 4; i++ {
		p.processed.Inc()
	}
	eta, ok := p.ETA()
	require.True(t, ok)
	assert.Equal(t, 30*time.Second, eta)
	assert.Equal(t, 20*time.Second, p.Elapsed())
}

func TestProgressSnapshot(t *testing.T) {
	p := NewProgress(2)
	p.processed.Inc()
	p.succeeded.Inc()

	snap := p.Snapshot()
	assert.Equal(t, 2, snap.Total)
	assert.Equal(t, 1, snap.Processed)
	assert.Equal(t, 1, snap.Succeeded)
	assert.Equal(t, p.Started(), snap.Started)

	// Snapshot is a copy; later increments do not leak into it
	p.processed.Inc()
	assert.Equal(t, 1, snap.Processed)
}

func TestProgressZeroTotal(t *testing.T) {
	p := NewProgress(0)
	assert.Equal(t, 0.0, p.Percentage())
}
