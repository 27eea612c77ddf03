package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/campus-ops/shift-attendance-api/internal/models"
	appErrors "github.com/campus-ops/shift-attendance-api/pkg/errors"
)

type reconcileWindows interface {
	windowResolver
	WindowsForDate(ctx context.Context, shift models.Shift, date time.Time) (*models.ResolvedWindow, error)
}

type reconcileStore interface {
	ListStudentsWithoutRecord(ctx context.Context, shift models.Shift, date time.Time) ([]models.Student, error)
	TryInsert(ctx context.Context, rec *models.AttendanceRecord) (bool, error)
	ClosePartialDays(ctx context.Context, shift models.Shift, date time.Time) (int64, error)
}

type reportCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// ReconcilerService is the batch sweep that marks every student with no
// event as Absent once a shift's check-in window has closed. Runs are
// idempotent and safe under concurrent or duplicate triggers: the store's
// atomic insert makes a second run a no-op.
type ReconcilerService struct {
	windows   reconcileWindows
	store     reconcileStore
	cache     reportCache
	metrics   *MetricsService
	logger    *zap.Logger
	reportTTL time.Duration
	now       func() time.Time
}

// NewReconcilerService constructs the reconciler.
func NewReconcilerService(windows reconcileWindows, store reconcileStore, cache reportCache, metrics *MetricsService, logger *zap.Logger, reportTTL time.Duration, now func() time.Time) *ReconcilerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if reportTTL <= 0 {
		reportTTL = 24 * time.Hour
	}
	if now == nil {
		now = time.Now
	}
	return &ReconcilerService{
		windows:   windows,
		store:     store,
		cache:     cache,
		metrics:   metrics,
		logger:    logger,
		reportTTL: reportTTL,
		now:       now,
	}
}

// Run sweeps one shift for the day the given instant falls on. The
// scheduler and the admin "Run Now" action share the same sweep, so trigger
// frequency is irrelevant to correctness.
func (s *ReconcilerService) Run(ctx context.Context, shift models.Shift, at time.Time) (*models.ReconcileReport, error) {
	window, err := s.windows.WindowsFor(ctx, shift, at)
	if err != nil {
		return nil, err
	}
	return s.sweep(ctx, shift, window)
}

// RunForDate sweeps one shift for an explicitly named calendar day, as an
// admin supplies it. The day is taken by its date fields, not as an instant,
// so a UTC-parsed date still sweeps that local day.
func (s *ReconcilerService) RunForDate(ctx context.Context, shift models.Shift, date time.Time) (*models.ReconcileReport, error) {
	window, err := s.windows.WindowsForDate(ctx, shift, date)
	if err != nil {
		return nil, err
	}
	return s.sweep(ctx, shift, window)
}

func (s *ReconcilerService) sweep(ctx context.Context, shift models.Shift, window *models.ResolvedWindow) (*models.ReconcileReport, error) {
	now := s.now().In(window.Location)
	report := &models.ReconcileReport{Shift: shift, Date: window.Date, RanAt: now}

	// Guard against a misfired or overly frequent trigger: nothing happens
	// until the check-in window has fully closed.
	if !now.After(window.CheckinEnd) {
		report.State = models.ReconcileNotDue
		s.observe(report)
		return report, nil
	}
	report.State = models.ReconcileDue

	students, err := s.store.ListStudentsWithoutRecord(ctx, shift, window.Date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "snapshot students without record")
	}

	notes := fmt.Sprintf("Auto-marked absent after %s check-in window closed", shift)
	for _, student := range students {
		rec := &models.AttendanceRecord{
			StudentID:   student.StudentID,
			StudentName: student.Name,
			Program:     student.Program,
			Shift:       student.Shift,
			Date:        window.Date,
			Status:      models.AttendanceStatusAbsent,
			Notes:       &notes,
		}
		inserted, err := s.store.TryInsert(ctx, rec)
		if err != nil {
			// Inserts are independent; one failure never aborts the sweep.
			report.Errors = append(report.Errors, models.ReconcileError{StudentID: student.StudentID, Reason: err.Error()})
			continue
		}
		if !inserted {
			// A live scan won the race between snapshot and write. Expected.
			report.AlreadyPresent++
			continue
		}
		report.MarkedAbsent++
	}
	report.ErrorCount = len(report.Errors)
	report.State = models.ReconcileCompleted

	s.logger.Info("absence reconciliation completed",
		zap.String("shift", string(shift)),
		zap.Time("date", window.Date),
		zap.Int("marked_absent", report.MarkedAbsent),
		zap.Int("already_present", report.AlreadyPresent),
		zap.Int("errors", report.ErrorCount))

	s.observe(report)
	s.cacheReport(ctx, report)
	return report, nil
}

// ClosePartialDays relabels checked-in records without a checkout to
// PartialDay once the shift's class has ended. Idempotent: a second pass
// matches nothing.
func (s *ReconcilerService) ClosePartialDays(ctx context.Context, shift models.Shift, at time.Time) (int64, error) {
	window, err := s.windows.WindowsFor(ctx, shift, at)
	if err != nil {
		return 0, err
	}
	if !s.now().In(window.Location).After(window.ClassEnd) {
		return 0, nil
	}
	closed, err := s.store.ClosePartialDays(ctx, shift, window.Date)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "close partial days")
	}
	if closed > 0 {
		s.logger.Info("relabelled partial-day records",
			zap.String("shift", string(shift)),
			zap.Int64("closed", closed))
		s.invalidateSummaries(ctx, window.Date)
	}
	return closed, nil
}

// LastReport returns the cached report of the most recent completed run for
// the shift/date, if any.
func (s *ReconcilerService) LastReport(ctx context.Context, shift models.Shift, date time.Time) (*models.ReconcileReport, error) {
	if s.cache == nil {
		return nil, appErrors.ErrNotFound
	}
	var report models.ReconcileReport
	if err := s.cache.Get(ctx, reportCacheKey(shift, date), &report); err != nil {
		if appErrors.FromError(err).Code == appErrors.ErrCacheMiss.Code {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no reconciliation run recorded")
		}
		return nil, err
	}
	return &report, nil
}

func (s *ReconcilerService) observe(report *models.ReconcileReport) {
	if s.metrics != nil {
		s.metrics.ObserveReconcileRun(report)
	}
}

func (s *ReconcilerService) cacheReport(ctx context.Context, report *models.ReconcileReport) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, reportCacheKey(report.Shift, report.Date), report, s.reportTTL); err != nil {
		s.logger.Warn("cache reconciliation report failed", zap.Error(err))
	}
	s.invalidateSummaries(ctx, report.Date)
}

func (s *ReconcilerService) invalidateSummaries(ctx context.Context, date time.Time) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, summaryCacheKey(date)); err != nil {
		s.logger.Warn("invalidate summary cache failed", zap.Error(err))
	}
}

func reportCacheKey(shift models.Shift, date time.Time) string {
	return fmt.Sprintf("reconcile:%s:%s", shift, date.Format("2006-01-02"))
}
