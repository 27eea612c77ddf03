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

type reconcileRunner interface {
	Run(ctx context.Context, shift models.Shift, at time.Time) (*models.ReconcileReport, error)
	RunForDate(ctx context.Context, shift models.Shift, date time.Time) (*models.ReconcileReport, error)
	LastReport(ctx context.Context, shift models.Shift, date time.Time) (*models.ReconcileReport, error)
}

// ReconcileHandler exposes the absence reconciliation endpoints shared by
// the scheduler-equivalent "Run Now" action and the dashboard.
type ReconcileHandler struct {
	service reconcileRunner
}

// NewReconcileHandler constructs the handler.
func NewReconcileHandler(service reconcileRunner) *ReconcileHandler {
	return &ReconcileHandler{service: service}
}

type runReconcilePayload struct {
	Shift string `json:"shift" binding:"required"`
	Date  string `json:"date"`
}

// Run godoc
// @Summary Run the absence reconciliation sweep for a shift
// @Tags Reconciliation
// @Accept json
// @Produce json
// @Param payload body runReconcilePayload true "Shift and optional date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /reconciliation/run [post]
func (h *ReconcileHandler) Run(c *gin.Context) {
	var payload runReconcilePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid reconciliation payload"))
		return
	}
	shift := models.Shift(payload.Shift)
	if !shift.Valid() {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "shift must be Morning or Evening"))
		return
	}

	var report *models.ReconcileReport
	var err error
	if payload.Date != "" {
		// An explicit date names a calendar day; RunForDate keeps it on
		// that day whatever the configured timezone's offset.
		parsed, perr := parseDateParam(payload.Date)
		if perr != nil {
			response.Error(c, perr)
			return
		}
		report, err = h.service.RunForDate(c.Request.Context(), shift, *parsed)
	} else {
		report, err = h.service.Run(c.Request.Context(), shift, time.Now())
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// Last godoc
// @Summary Fetch the last recorded reconciliation report for a shift/date
// @Tags Reconciliation
// @Produce json
// @Param shift query string true "Shift (Morning/Evening)"
// @Param date query string false "Date (YYYY-MM-DD, defaults to today)"
// @Success 200 {object} response.Envelope
// @Router /reconciliation/last [get]
func (h *ReconcileHandler) Last(c *gin.Context) {
	shift := models.Shift(c.Query("shift"))
	if !shift.Valid() {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "shift must be Morning or Evening"))
		return
	}

	date := time.Now()
	if raw := c.Query("date"); raw != "" {
		parsed, err := parseDateParam(raw)
		if err != nil {
			response.Error(c, err)
			return
		}
		date = *parsed
	}

	report, err := h.service.LastReport(c.Request.Context(), shift, date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}
