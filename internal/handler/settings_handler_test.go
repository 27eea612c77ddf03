package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-ops/shift-attendance-api/internal/models"
)

type windowManagerMock struct {
	window  *models.ResolvedWindow
	err     error
	updated []models.ShiftWindow
	byDate  []time.Time
}

func (m *windowManagerMock) WindowsFor(ctx context.Context, shift models.Shift, at time.Time) (*models.ResolvedWindow, error) {
	if m.err != nil {
		return nil, m.err
	}
	window := *m.window
	window.Shift = shift
	return &window, nil
}

func (m *windowManagerMock) WindowsForDate(ctx context.Context, shift models.Shift, date time.Time) (*models.ResolvedWindow, error) {
	m.byDate = append(m.byDate, date)
	return m.WindowsFor(ctx, shift, date)
}

func (m *windowManagerMock) UpdateWindow(ctx context.Context, window models.ShiftWindow, updatedBy string) error {
	m.updated = append(m.updated, window)
	return nil
}

func resolvedTestWindow(t *testing.T) *models.ResolvedWindow {
	t.Helper()
	return &models.ResolvedWindow{
		Shift:        models.ShiftMorning,
		Date:         time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		CheckinStart: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
		CheckinEnd:   time.Date(2025, 3, 10, 11, 0, 0, 0, time.UTC),
		Location:     time.UTC,
	}
}

func TestSettingsHandlerGetWindows(t *testing.T) {
	mock := &windowManagerMock{window: resolvedTestWindow(t)}
	handler := NewSettingsHandler(mock)

	c, w := newScanTestContext(t, http.MethodGet, "/settings/windows?date=2025-03-10", nil)
	handler.GetWindows(c)

	assert.Equal(t, http.StatusOK, w.Code)
	// One named-day resolution per shift.
	assert.Len(t, mock.byDate, 2)
}

func TestSettingsHandlerGetWindowsRejectsBadDate(t *testing.T) {
	handler := NewSettingsHandler(&windowManagerMock{window: resolvedTestWindow(t)})

	c, w := newScanTestContext(t, http.MethodGet, "/settings/windows?date=bogus", nil)
	handler.GetWindows(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSettingsHandlerUpdateWindows(t *testing.T) {
	mock := &windowManagerMock{window: resolvedTestWindow(t)}
	handler := NewSettingsHandler(mock)

	c, w := newScanTestContext(t, http.MethodPut, "/settings/windows", gin.H{
		"shift":          "Evening",
		"checkin_start":  "09:00:00",
		"checkin_end":    "12:00:00",
		"checkout_start": "12:00:00",
		"checkout_end":   "14:00:00",
		"class_end":      "14:00:00",
	})
	handler.UpdateWindows(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, mock.updated, 1)
	assert.Equal(t, models.ShiftEvening, mock.updated[0].Shift)
	assert.Equal(t, "12:00:00", mock.updated[0].CheckinEnd.String())
}

func TestSettingsHandlerUpdateWindowsRejectsUnknownShift(t *testing.T) {
	handler := NewSettingsHandler(&windowManagerMock{window: resolvedTestWindow(t)})

	c, w := newScanTestContext(t, http.MethodPut, "/settings/windows", gin.H{
		"shift":          "Night",
		"checkin_start":  "09:00:00",
		"checkin_end":    "12:00:00",
		"checkout_start": "12:00:00",
		"checkout_end":   "14:00:00",
		"class_end":      "14:00:00",
	})
	handler.UpdateWindows(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSettingsHandlerUpdateWindowsRejectsBadBoundary(t *testing.T) {
	handler := NewSettingsHandler(&windowManagerMock{window: resolvedTestWindow(t)})

	c, w := newScanTestContext(t, http.MethodPut, "/settings/windows", gin.H{
		"shift":          "Morning",
		"checkin_start":  "nine o'clock",
		"checkin_end":    "12:00:00",
		"checkout_start": "12:00:00",
		"checkout_end":   "14:00:00",
		"class_end":      "14:00:00",
	})
	handler.UpdateWindows(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
