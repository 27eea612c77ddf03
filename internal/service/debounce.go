package service

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// AdmitResult is the debounce gate's verdict on a raw scan attempt.
type AdmitResult struct {
	Admitted bool
	Reason   string
}

// DebounceGate is a process-local, per-student rate limiter sitting in front
// of the classifier. It absorbs accidental double-scans and scanner
// buffering. Losing its state on restart only reopens a debounce window; the
// attendance store's atomic insert remains the correctness boundary.
type DebounceGate struct {
	minInterval       time.Duration
	duplicateSuppress time.Duration
	now               func() time.Time
	logger            *zap.Logger

	mu           sync.Mutex
	lastAccepted map[string]time.Time
}

// NewDebounceGate builds a gate with the given intervals. The clock feeds
// Prune and is injectable so tests never sleep.
func NewDebounceGate(minInterval, duplicateSuppress time.Duration, now func() time.Time, logger *zap.Logger) *DebounceGate {
	if minInterval <= 0 {
		minInterval = 800 * time.Millisecond
	}
	if duplicateSuppress < minInterval {
		duplicateSuppress = 3 * time.Second
	}
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DebounceGate{
		minInterval:       minInterval,
		duplicateSuppress: duplicateSuppress,
		now:               now,
		logger:            logger,
		lastAccepted:      make(map[string]time.Time),
	}
}

// Admit decides whether a scan for studentID may proceed. at is the scan's
// effective timestamp, not the processing time: bulk-imported historical
// scans are judged by when they happened, so a batch replayed in
// milliseconds keeps its real spacing. An attempt within minInterval of the
// last accepted one is a bounce; within duplicateSuppress it is treated as
// the same physical scan arriving twice (two stations racing before either
// write lands). Rejected attempts never reach the classifier or the store.
func (g *DebounceGate) Admit(studentID string, at time.Time) AdmitResult {
	g.mu.Lock()
	defer g.mu.Unlock()

	if last, ok := g.lastAccepted[studentID]; ok {
		elapsed := at.Sub(last)
		if elapsed < g.minInterval {
			g.logger.Debug("scan debounced",
				zap.String("student_id", studentID),
				zap.Duration("elapsed", elapsed))
			return AdmitResult{Admitted: false, Reason: ReasonDebounced}
		}
		if elapsed < g.duplicateSuppress {
			g.logger.Debug("duplicate scan suppressed",
				zap.String("student_id", studentID),
				zap.Duration("elapsed", elapsed))
			return AdmitResult{Admitted: false, Reason: ReasonDuplicateSuppressed}
		}
	}

	g.lastAccepted[studentID] = at
	return AdmitResult{Admitted: true}
}

// Prune drops entries older than the suppression interval. Call it
// periodically to keep the map bounded on long-running processes.
func (g *DebounceGate) Prune() int {
	cutoff := g.now().Add(-g.duplicateSuppress)

	g.mu.Lock()
	defer g.mu.Unlock()

	removed := 0
	for id, last := range g.lastAccepted {
		if last.Before(cutoff) {
			delete(g.lastAccepted, id)
			removed++
		}
	}
	return removed
}
