package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/campus-ops/shift-attendance-api/internal/models"
)

type scanGatePruner interface {
	Prune() int
}

// ReconcileScheduler polls each shift on a fixed interval and invokes the
// reconciler. Cadence is a tuning knob, not a correctness one: Run returns
// NotDue before the window closes and is idempotent after it. The loop also
// hosts the debounce gate's periodic pruning.
type ReconcileScheduler struct {
	reconciler *ReconcilerService
	pruner     scanGatePruner
	interval   time.Duration
	logger     *zap.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	started bool
}

// NewReconcileScheduler constructs the scheduler. pruner may be nil.
func NewReconcileScheduler(reconciler *ReconcilerService, pruner scanGatePruner, interval time.Duration, logger *zap.Logger) *ReconcileScheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReconcileScheduler{reconciler: reconciler, pruner: pruner, interval: interval, logger: logger}
}

// Start launches the polling loop. Safe to call once.
func (s *ReconcileScheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.started = true

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sweep(ctx)
			}
		}
	}()
	s.logger.Info("reconciliation scheduler started", zap.Duration("interval", s.interval))
}

// Stop cancels the loop and waits for it to exit.
func (s *ReconcileScheduler) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.cancel()
	done := s.done
	s.mu.Unlock()
	<-done
	s.logger.Info("reconciliation scheduler stopped")
}

func (s *ReconcileScheduler) sweep(ctx context.Context) {
	if s.pruner != nil {
		if removed := s.pruner.Prune(); removed > 0 {
			s.logger.Debug("pruned stale debounce entries", zap.Int("removed", removed))
		}
	}

	now := time.Now()
	for _, shift := range models.AllShifts() {
		report, err := s.reconciler.Run(ctx, shift, now)
		if err != nil {
			s.logger.Error("scheduled reconciliation failed",
				zap.String("shift", string(shift)),
				zap.Error(err))
			continue
		}
		if report.State == models.ReconcileCompleted && report.MarkedAbsent > 0 {
			s.logger.Info("scheduled reconciliation marked absences",
				zap.String("shift", string(shift)),
				zap.Int("marked_absent", report.MarkedAbsent))
		}

		if _, err := s.reconciler.ClosePartialDays(ctx, shift, now); err != nil {
			s.logger.Error("scheduled partial-day close failed",
				zap.String("shift", string(shift)),
				zap.Error(err))
		}
	}
}
