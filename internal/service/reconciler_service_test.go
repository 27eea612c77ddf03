package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-ops/shift-attendance-api/internal/models"
	appErrors "github.com/campus-ops/shift-attendance-api/pkg/errors"
)

type stubReconcileStore struct {
	students    []models.Student
	listErr     error
	insertErrs  map[string]error
	conflicts   map[string]bool
	inserted    []*models.AttendanceRecord
	closed      int64
	closedCalls int
}

func (s *stubReconcileStore) ListStudentsWithoutRecord(ctx context.Context, shift models.Shift, date time.Time) ([]models.Student, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.students, nil
}

func (s *stubReconcileStore) TryInsert(ctx context.Context, rec *models.AttendanceRecord) (bool, error) {
	if err, ok := s.insertErrs[rec.StudentID]; ok {
		return false, err
	}
	if s.conflicts[rec.StudentID] {
		return false, nil
	}
	s.inserted = append(s.inserted, rec)
	return true, nil
}

func (s *stubReconcileStore) ClosePartialDays(ctx context.Context, shift models.Shift, date time.Time) (int64, error) {
	s.closedCalls++
	return s.closed, nil
}

type stubReportCache struct {
	reports map[string]*models.ReconcileReport
	deleted []string
}

func (c *stubReportCache) Get(ctx context.Context, key string, dest interface{}) error {
	report, ok := c.reports[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	*(dest.(*models.ReconcileReport)) = *report
	return nil
}

func (c *stubReportCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c.reports == nil {
		c.reports = make(map[string]*models.ReconcileReport)
	}
	if report, ok := value.(*models.ReconcileReport); ok {
		copied := *report
		c.reports[key] = &copied
	}
	return nil
}

func (c *stubReportCache) DeleteByPattern(ctx context.Context, pattern string) error {
	c.deleted = append(c.deleted, pattern)
	return nil
}

func newTestReconciler(t *testing.T, store *stubReconcileStore, cache *stubReportCache, now time.Time) *ReconcilerService {
	t.Helper()
	windows := &stubWindowResolver{window: testWindow(t)}
	return NewReconcilerService(windows, store, cache, nil, nil, time.Hour, func() time.Time { return now })
}

func TestReconcilerNotDueBeforeCheckinEnd(t *testing.T) {
	store := &stubReconcileStore{students: []models.Student{{StudentID: "STU-001"}}}
	svc := newTestReconciler(t, store, &stubReportCache{}, time.Date(2025, 3, 10, 10, 45, 0, 0, time.UTC))

	report, err := svc.Run(context.Background(), models.ShiftMorning, time.Date(2025, 3, 10, 10, 45, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, models.ReconcileNotDue, report.State)
	assert.Empty(t, store.inserted)
}

func TestReconcilerNotDueAtExactCheckinEnd(t *testing.T) {
	store := &stubReconcileStore{students: []models.Student{{StudentID: "STU-001"}}}
	boundary := time.Date(2025, 3, 10, 11, 0, 0, 0, time.UTC)
	svc := newTestReconciler(t, store, &stubReportCache{}, boundary)

	report, err := svc.Run(context.Background(), models.ShiftMorning, boundary)
	require.NoError(t, err)
	assert.Equal(t, models.ReconcileNotDue, report.State)
}

func TestReconcilerMarksAbsentWithNote(t *testing.T) {
	store := &stubReconcileStore{students: []models.Student{
		{StudentID: "STU-001", Name: "Ayesha Khan", Shift: models.ShiftMorning},
		{StudentID: "STU-002", Name: "Bilal Ahmed", Shift: models.ShiftMorning},
	}}
	cache := &stubReportCache{}
	svc := newTestReconciler(t, store, cache, time.Date(2025, 3, 10, 11, 5, 0, 0, time.UTC))

	report, err := svc.Run(context.Background(), models.ShiftMorning, time.Date(2025, 3, 10, 11, 5, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, models.ReconcileCompleted, report.State)
	assert.Equal(t, 2, report.MarkedAbsent)
	assert.Equal(t, 0, report.AlreadyPresent)

	require.Len(t, store.inserted, 2)
	rec := store.inserted[0]
	assert.Equal(t, models.AttendanceStatusAbsent, rec.Status)
	assert.Nil(t, rec.CheckInTime)
	require.NotNil(t, rec.Notes)
	assert.Equal(t, "Auto-marked absent after Morning check-in window closed", *rec.Notes)
}

func TestReconcilerRunForDateSweepsNamedDay(t *testing.T) {
	store := &stubReconcileStore{students: []models.Student{{StudentID: "STU-001", Shift: models.ShiftMorning}}}
	svc := newTestReconciler(t, store, &stubReportCache{}, time.Date(2025, 3, 10, 11, 5, 0, 0, time.UTC))

	// The admin names a day, parsed as UTC midnight.
	named := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	report, err := svc.RunForDate(context.Background(), models.ShiftMorning, named)
	require.NoError(t, err)
	assert.Equal(t, models.ReconcileCompleted, report.State)
	assert.Equal(t, 1, report.MarkedAbsent)
}

func TestReconcilerRaceCountsAlreadyPresent(t *testing.T) {
	store := &stubReconcileStore{
		students:  []models.Student{{StudentID: "STU-001"}, {StudentID: "STU-002"}},
		conflicts: map[string]bool{"STU-002": true},
	}
	svc := newTestReconciler(t, store, &stubReportCache{}, time.Date(2025, 3, 10, 11, 5, 0, 0, time.UTC))

	report, err := svc.Run(context.Background(), models.ShiftMorning, time.Date(2025, 3, 10, 11, 5, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 1, report.MarkedAbsent)
	assert.Equal(t, 1, report.AlreadyPresent)
	assert.Equal(t, 0, report.ErrorCount)
}

func TestReconcilerInsertFailureDoesNotAbortSweep(t *testing.T) {
	store := &stubReconcileStore{
		students:   []models.Student{{StudentID: "STU-001"}, {StudentID: "STU-002"}},
		insertErrs: map[string]error{"STU-001": errors.New("connection reset")},
	}
	svc := newTestReconciler(t, store, &stubReportCache{}, time.Date(2025, 3, 10, 11, 5, 0, 0, time.UTC))

	report, err := svc.Run(context.Background(), models.ShiftMorning, time.Date(2025, 3, 10, 11, 5, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, models.ReconcileCompleted, report.State)
	assert.Equal(t, 1, report.MarkedAbsent)
	assert.Equal(t, 1, report.ErrorCount)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, "STU-001", report.Errors[0].StudentID)
}

func TestReconcilerSecondRunIsNoOp(t *testing.T) {
	store := &stubReconcileStore{students: []models.Student{{StudentID: "STU-001"}}}
	svc := newTestReconciler(t, store, &stubReportCache{}, time.Date(2025, 3, 10, 11, 5, 0, 0, time.UTC))

	first, err := svc.Run(context.Background(), models.ShiftMorning, time.Date(2025, 3, 10, 11, 5, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 1, first.MarkedAbsent)

	// Everyone now has a record: the snapshot is empty and nothing is written.
	store.students = nil
	second, err := svc.Run(context.Background(), models.ShiftMorning, time.Date(2025, 3, 10, 11, 6, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, models.ReconcileCompleted, second.State)
	assert.Equal(t, 0, second.MarkedAbsent)
	assert.Len(t, store.inserted, 1)
}

func TestReconcilerLastReport(t *testing.T) {
	store := &stubReconcileStore{students: []models.Student{{StudentID: "STU-001"}}}
	cache := &stubReportCache{}
	svc := newTestReconciler(t, store, cache, time.Date(2025, 3, 10, 11, 5, 0, 0, time.UTC))

	ran, err := svc.Run(context.Background(), models.ShiftMorning, time.Date(2025, 3, 10, 11, 5, 0, 0, time.UTC))
	require.NoError(t, err)

	report, err := svc.LastReport(context.Background(), models.ShiftMorning, ran.Date)
	require.NoError(t, err)
	assert.Equal(t, 1, report.MarkedAbsent)
}

func TestReconcilerLastReportMiss(t *testing.T) {
	svc := newTestReconciler(t, &stubReconcileStore{}, &stubReportCache{}, time.Now())

	_, err := svc.LastReport(context.Background(), models.ShiftEvening, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestReconcilerClosePartialDays(t *testing.T) {
	store := &stubReconcileStore{closed: 3}
	svc := newTestReconciler(t, store, &stubReportCache{}, time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC))

	closed, err := svc.ClosePartialDays(context.Background(), models.ShiftMorning, time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, int64(3), closed)
	assert.Equal(t, 1, store.closedCalls)
}

func TestReconcilerClosePartialDaysBeforeClassEnd(t *testing.T) {
	store := &stubReconcileStore{closed: 3}
	svc := newTestReconciler(t, store, &stubReportCache{}, time.Date(2025, 3, 10, 13, 0, 0, 0, time.UTC))

	closed, err := svc.ClosePartialDays(context.Background(), models.ShiftMorning, time.Date(2025, 3, 10, 13, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, int64(0), closed)
	assert.Equal(t, 0, store.closedCalls)
}
