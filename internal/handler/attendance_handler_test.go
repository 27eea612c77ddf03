package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-ops/shift-attendance-api/internal/models"
	"github.com/campus-ops/shift-attendance-api/pkg/response"
)

type attendanceReaderMock struct {
	filter models.AttendanceFilter
	rows   []models.AttendanceRecord
	total  int
	err    error
}

func (m *attendanceReaderMock) List(_ context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, int, error) {
	m.filter = filter
	return m.rows, m.total, m.err
}

type summaryProviderMock struct {
	date    time.Time
	summary *models.DailySummary
	cached  bool
	err     error
}

func (m *summaryProviderMock) DailySummary(_ context.Context, date time.Time) (*models.DailySummary, bool, error) {
	m.date = date
	return m.summary, m.cached, m.err
}

func TestAttendanceHandlerList(t *testing.T) {
	reader := &attendanceReaderMock{
		rows:  []models.AttendanceRecord{{StudentID: "STU-001", Status: models.AttendanceStatusPresent}},
		total: 1,
	}
	h := NewAttendanceHandler(reader, &summaryProviderMock{})

	c, w := newScanTestContext(t, http.MethodGet, "/attendance?shift=Morning&status=Present&dateFrom=2025-03-10&limit=20", nil)
	h.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.ShiftMorning, reader.filter.Shift)
	require.NotNil(t, reader.filter.Status)
	assert.Equal(t, models.AttendanceStatusPresent, *reader.filter.Status)
	require.NotNil(t, reader.filter.DateFrom)
	assert.Equal(t, "2025-03-10", reader.filter.DateFrom.Format("2006-01-02"))
	assert.Equal(t, 20, reader.filter.PageSize)
	assert.Equal(t, 1, reader.filter.Page)
}

func TestAttendanceHandlerListRejectsUnknownStatus(t *testing.T) {
	reader := &attendanceReaderMock{}
	h := NewAttendanceHandler(reader, &summaryProviderMock{})

	c, w := newScanTestContext(t, http.MethodGet, "/attendance?status=Tardy", nil)
	h.List(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, reader.filter.StudentID)
}

func TestAttendanceHandlerListRejectsBadDate(t *testing.T) {
	h := NewAttendanceHandler(&attendanceReaderMock{}, &summaryProviderMock{})

	c, w := newScanTestContext(t, http.MethodGet, "/attendance?dateFrom=10-03-2025", nil)
	h.List(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAttendanceHandlerSummary(t *testing.T) {
	provider := &summaryProviderMock{
		summary: &models.DailySummary{Present: 40, Absent: 8, PartialDay: 2, Total: 50, PresentRate: 84.0},
		cached:  true,
	}
	h := NewAttendanceHandler(&attendanceReaderMock{}, provider)

	c, w := newScanTestContext(t, http.MethodGet, "/attendance/summary?date=2025-03-10", nil)
	h.Summary(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2025-03-10", provider.date.Format("2006-01-02"))

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Meta)
	assert.Equal(t, true, envelope.Meta["cached"])
}
