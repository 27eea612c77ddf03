package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestGate(clock *fakeClock) *DebounceGate {
	return NewDebounceGate(800*time.Millisecond, 3*time.Second, clock.Now, nil)
}

func TestDebounceGateAdmitsFirstScan(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}
	gate := newTestGate(clock)

	result := gate.Admit("STU-001", clock.Now())
	assert.True(t, result.Admitted)
}

func TestDebounceGateRejectsWithinMinInterval(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}
	gate := newTestGate(clock)

	gate.Admit("STU-001", clock.Now())
	clock.Advance(500 * time.Millisecond)

	result := gate.Admit("STU-001", clock.Now())
	assert.False(t, result.Admitted)
	assert.Equal(t, ReasonDebounced, result.Reason)
}

func TestDebounceGateSuppressesDuplicateWindow(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}
	gate := newTestGate(clock)

	gate.Admit("STU-001", clock.Now())
	clock.Advance(2 * time.Second)

	result := gate.Admit("STU-001", clock.Now())
	assert.False(t, result.Admitted)
	assert.Equal(t, ReasonDuplicateSuppressed, result.Reason)
}

func TestDebounceGateAdmitsAfterSuppressWindow(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}
	gate := newTestGate(clock)

	gate.Admit("STU-001", clock.Now())
	clock.Advance(3 * time.Second)

	result := gate.Admit("STU-001", clock.Now())
	assert.True(t, result.Admitted)
}

func TestDebounceGateRejectionDoesNotExtendWindow(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}
	gate := newTestGate(clock)

	gate.Admit("STU-001", clock.Now())
	clock.Advance(2 * time.Second)
	gate.Admit("STU-001", clock.Now()) // suppressed; must not refresh lastAccepted
	clock.Advance(1 * time.Second)

	result := gate.Admit("STU-001", clock.Now())
	assert.True(t, result.Admitted)
}

func TestDebounceGateTracksStudentsIndependently(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}
	gate := newTestGate(clock)

	gate.Admit("STU-001", clock.Now())
	clock.Advance(100 * time.Millisecond)

	result := gate.Admit("STU-002", clock.Now())
	assert.True(t, result.Admitted)
}

func TestDebounceGateJudgesByScanTimeNotArrival(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)}
	gate := newTestGate(clock)

	// Two historical scans hours apart, replayed back to back by a bulk
	// import. Their own timestamps must carry the spacing.
	checkin := time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)
	checkout := time.Date(2025, 3, 10, 12, 30, 0, 0, time.UTC)

	assert.True(t, gate.Admit("STU-001", checkin).Admitted)
	assert.True(t, gate.Admit("STU-001", checkout).Admitted)
}

func TestDebounceGatePrune(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}
	gate := newTestGate(clock)

	gate.Admit("STU-001", clock.Now())
	gate.Admit("STU-002", clock.Now())
	clock.Advance(10 * time.Second)
	gate.Admit("STU-003", clock.Now())

	removed := gate.Prune()
	assert.Equal(t, 2, removed)
}
