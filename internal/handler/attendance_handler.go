package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/campus-ops/shift-attendance-api/internal/models"
	appErrors "github.com/campus-ops/shift-attendance-api/pkg/errors"
	"github.com/campus-ops/shift-attendance-api/pkg/response"
)

type attendanceReader interface {
	List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, int, error)
}

type summaryProvider interface {
	DailySummary(ctx context.Context, date time.Time) (*models.DailySummary, bool, error)
}

// AttendanceHandler serves the record reads consumed by reporting screens.
// The persisted record shape is a stable contract; exports render it as-is.
type AttendanceHandler struct {
	store     attendanceReader
	dashboard summaryProvider
}

// NewAttendanceHandler constructs the handler.
func NewAttendanceHandler(store attendanceReader, dashboard summaryProvider) *AttendanceHandler {
	return &AttendanceHandler{store: store, dashboard: dashboard}
}

// List godoc
// @Summary List attendance records
// @Tags Attendance
// @Produce json
// @Param shift query string false "Shift (Morning/Evening)"
// @Param status query string false "Status (Present/Absent/PartialDay)"
// @Param studentId query string false "Student roll number"
// @Param dateFrom query string false "From date (YYYY-MM-DD)"
// @Param dateTo query string false "To date (YYYY-MM-DD)"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Param sortBy query string false "Sort by field"
// @Param sortOrder query string false "Sort order (asc/desc)"
// @Success 200 {object} response.Envelope
// @Router /attendance [get]
func (h *AttendanceHandler) List(c *gin.Context) {
	filter := models.AttendanceFilter{
		Shift:     models.Shift(c.Query("shift")),
		StudentID: c.Query("studentId"),
		SortBy:    c.Query("sortBy"),
		SortOrder: c.Query("sortOrder"),
		Page:      parseQueryInt(c, "page", 1),
		PageSize:  parseQueryInt(c, "limit", 50),
	}
	if raw := c.Query("status"); raw != "" {
		status := models.AttendanceStatus(raw)
		if !status.Valid() {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid status filter"))
			return
		}
		filter.Status = &status
	}
	from, err := parseDateParam(c.Query("dateFrom"))
	if err != nil {
		response.Error(c, err)
		return
	}
	to, err := parseDateParam(c.Query("dateTo"))
	if err != nil {
		response.Error(c, err)
		return
	}
	filter.DateFrom = from
	filter.DateTo = to

	rows, total, err := h.store.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	if pagination.Page < 1 {
		pagination.Page = 1
	}
	response.JSON(c, http.StatusOK, rows, pagination)
}

// Summary godoc
// @Summary Daily attendance summary
// @Tags Attendance
// @Produce json
// @Param date query string false "Date (YYYY-MM-DD, defaults to today)"
// @Success 200 {object} response.Envelope
// @Router /attendance/summary [get]
func (h *AttendanceHandler) Summary(c *gin.Context) {
	date := time.Now().Truncate(24 * time.Hour)
	if raw := c.Query("date"); raw != "" {
		parsed, err := parseDateParam(raw)
		if err != nil {
			response.Error(c, err)
			return
		}
		date = *parsed
	}

	summary, cached, err := h.dashboard.DailySummary(c.Request.Context(), date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil, map[string]interface{}{"cached": cached})
}
