package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campus-ops/shift-attendance-api/internal/models"
	appErrors "github.com/campus-ops/shift-attendance-api/pkg/errors"
)

type windowResolver interface {
	WindowsFor(ctx context.Context, shift models.Shift, at time.Time) (*models.ResolvedWindow, error)
}

type studentDirectory interface {
	GetByStudentID(ctx context.Context, studentID string) (*models.Student, error)
}

type attendanceStore interface {
	TryInsert(ctx context.Context, rec *models.AttendanceRecord) (bool, error)
	TryUpdateCheckout(ctx context.Context, studentID string, date time.Time, checkout time.Time) (models.CheckoutResult, error)
	GetForDate(ctx context.Context, studentID string, date time.Time) (*models.AttendanceRecord, error)
}

// ScanService orchestrates debounce, classification and persistence for a
// single incoming scan, regardless of source (scanner, bulk import, manual
// entry).
type ScanService struct {
	gate      *DebounceGate
	windows   windowResolver
	students  studentDirectory
	store     attendanceStore
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger

	storageTimeout time.Duration
	retryBackoff   time.Duration
	now            func() time.Time
}

// ScanServiceConfig tunes storage timeouts and the injectable clock.
type ScanServiceConfig struct {
	StorageTimeout time.Duration
	RetryBackoff   time.Duration
	Now            func() time.Time
}

// NewScanService constructs the ingestion service.
func NewScanService(gate *DebounceGate, windows windowResolver, students studentDirectory, store attendanceStore, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg ScanServiceConfig) *ScanService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.StorageTimeout <= 0 {
		cfg.StorageTimeout = 5 * time.Second
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 200 * time.Millisecond
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	svc := &ScanService{
		gate:           gate,
		windows:        windows,
		students:       students,
		store:          store,
		metrics:        metrics,
		validator:      validate,
		logger:         logger,
		storageTimeout: cfg.StorageTimeout,
		retryBackoff:   cfg.RetryBackoff,
		now:            cfg.Now,
	}
	svc.validator.RegisterValidation("scan_source", func(fl validator.FieldLevel) bool {
		return models.ScanSource(fl.Field().String()).Valid()
	})
	return svc
}

// SubmitScanRequest is one raw scan arriving from any front end.
type SubmitScanRequest struct {
	StudentID string            `json:"student_id" validate:"required"`
	Source    models.ScanSource `json:"source" validate:"omitempty,scan_source"`
	At        *time.Time        `json:"scanned_at"`
}

// SubmitScanResult is what the caller renders back to the person scanning.
type SubmitScanResult struct {
	Result models.ScanOutcome       `json:"result"`
	Reason string                   `json:"reason,omitempty"`
	Record *models.AttendanceRecord `json:"record,omitempty"`
}

// Submit processes one scan end to end. Classification outcomes are values,
// not errors; the returned error is reserved for configuration failures and
// storage being unavailable after a retry.
func (s *ScanService) Submit(ctx context.Context, req SubmitScanRequest) (*SubmitScanResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid scan payload")
	}
	source := req.Source
	if source == "" {
		source = models.ScanSourceScanner
	}

	// The effective scan time drives the gate as well as classification:
	// bulk rows carry scanned_at hours apart even when the queue drains
	// them back to back.
	now := s.now()
	if req.At != nil {
		now = *req.At
	}

	if admit := s.gate.Admit(req.StudentID, now); !admit.Admitted {
		if s.metrics != nil {
			s.metrics.ObserveDebounceRejection(admit.Reason)
		}
		return &SubmitScanResult{Result: models.ScanOutcomeDuplicate, Reason: admit.Reason}, nil
	}

	var student *models.Student
	err := s.withStorage(ctx, "lookup student", func(ctx context.Context) error {
		var err error
		student, err = s.students.GetByStudentID(ctx, req.StudentID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if student == nil {
		return s.finish(source, &SubmitScanResult{Result: models.ScanOutcomeInvalid, Reason: ReasonUnknownStudent}), nil
	}
	if !student.Active {
		return s.finish(source, &SubmitScanResult{Result: models.ScanOutcomeInvalid, Reason: ReasonInactiveStudent}), nil
	}

	window, err := s.windows.WindowsFor(ctx, student.Shift, now)
	if err != nil {
		s.logger.Error("shift window resolution failed",
			zap.String("student_id", student.StudentID),
			zap.String("shift", string(student.Shift)),
			zap.Error(err))
		return nil, err
	}

	var existing *models.AttendanceRecord
	err = s.withStorage(ctx, "read record", func(ctx context.Context) error {
		var err error
		existing, err = s.store.GetForDate(ctx, student.StudentID, window.Date)
		return err
	})
	if err != nil {
		return nil, err
	}

	decision := Classify(window, now, existing)
	switch decision.Outcome {
	case models.ScanOutcomeCheckedIn:
		return s.checkIn(ctx, source, student, window, now)
	case models.ScanOutcomeCheckedOut:
		return s.checkOut(ctx, source, student, window, now, existing)
	default:
		return s.finish(source, &SubmitScanResult{Result: decision.Outcome, Reason: decision.Reason, Record: existing}), nil
	}
}

func (s *ScanService) checkIn(ctx context.Context, source models.ScanSource, student *models.Student, window *models.ResolvedWindow, now time.Time) (*SubmitScanResult, error) {
	checkin := now.In(window.Location).Truncate(time.Second)
	rec := &models.AttendanceRecord{
		StudentID:   student.StudentID,
		StudentName: student.Name,
		Program:     student.Program,
		Shift:       student.Shift,
		Date:        window.Date,
		Status:      models.AttendanceStatusPresent,
		CheckInTime: &checkin,
	}

	var inserted bool
	err := s.withStorage(ctx, "insert record", func(ctx context.Context) error {
		var err error
		inserted, err = s.store.TryInsert(ctx, rec)
		return err
	})
	if err != nil {
		return nil, err
	}
	if inserted {
		s.logger.Info("student checked in",
			zap.String("student_id", student.StudentID),
			zap.String("shift", string(student.Shift)),
			zap.String("source", string(source)))
		return s.finish(source, &SubmitScanResult{Result: models.ScanOutcomeCheckedIn, Record: rec}), nil
	}

	// Lost the insert race. Re-read and re-classify exactly once; if the
	// second pass says checkout, carry on, otherwise the scan is a duplicate.
	var current *models.AttendanceRecord
	err = s.withStorage(ctx, "re-read record", func(ctx context.Context) error {
		var err error
		current, err = s.store.GetForDate(ctx, student.StudentID, window.Date)
		return err
	})
	if err != nil {
		return nil, err
	}
	decision := Classify(window, now, current)
	if decision.Outcome == models.ScanOutcomeCheckedOut {
		return s.checkOut(ctx, source, student, window, now, current)
	}
	reason := decision.Reason
	if reason == "" {
		reason = ReasonRecordExists
	}
	return s.finish(source, &SubmitScanResult{Result: models.ScanOutcomeDuplicate, Reason: reason, Record: current}), nil
}

func (s *ScanService) checkOut(ctx context.Context, source models.ScanSource, student *models.Student, window *models.ResolvedWindow, now time.Time, existing *models.AttendanceRecord) (*SubmitScanResult, error) {
	checkout := now.In(window.Location).Truncate(time.Second)

	var result models.CheckoutResult
	err := s.withStorage(ctx, "update checkout", func(ctx context.Context) error {
		var err error
		result, err = s.store.TryUpdateCheckout(ctx, student.StudentID, window.Date, checkout)
		return err
	})
	if err != nil {
		return nil, err
	}

	switch result {
	case models.CheckoutUpdated:
		if existing != nil {
			snapshot := *existing
			snapshot.CheckOutTime = &checkout
			existing = &snapshot
		}
		s.logger.Info("student checked out",
			zap.String("student_id", student.StudentID),
			zap.String("shift", string(student.Shift)),
			zap.String("source", string(source)))
		return s.finish(source, &SubmitScanResult{Result: models.ScanOutcomeCheckedOut, Record: existing}), nil
	case models.CheckoutAlreadyCheckedOut:
		return s.finish(source, &SubmitScanResult{Result: models.ScanOutcomeDuplicate, Reason: ReasonAlreadyCheckedOut, Record: existing}), nil
	default:
		return s.finish(source, &SubmitScanResult{Result: models.ScanOutcomeDuplicate, Reason: ReasonRecordExists, Record: existing}), nil
	}
}

func (s *ScanService) finish(source models.ScanSource, result *SubmitScanResult) *SubmitScanResult {
	if s.metrics != nil {
		s.metrics.ObserveScanOutcome(source, result.Result)
	}
	return result
}

// withStorage bounds a store call with the configured timeout and retries it
// once with backoff before surfacing a StorageError. Callers seeing that
// error must re-invoke Submit rather than re-derive the classification;
// Submit resolves to Duplicate if the original write actually landed.
func (s *ScanService) withStorage(ctx context.Context, op string, fn func(context.Context) error) error {
	attempt := func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, s.storageTimeout)
		defer cancel()
		return fn(attemptCtx)
	}

	err := attempt()
	if err == nil {
		return nil
	}
	s.logger.Warn("storage operation failed, retrying once",
		zap.String("op", op),
		zap.Error(err))

	select {
	case <-ctx.Done():
		return appErrors.Wrap(ctx.Err(), appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, appErrors.ErrStorage.Message)
	case <-time.After(s.retryBackoff):
	}

	if err = attempt(); err != nil {
		return appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, appErrors.ErrStorage.Message)
	}
	return nil
}
