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

type windowManager interface {
	WindowsFor(ctx context.Context, shift models.Shift, at time.Time) (*models.ResolvedWindow, error)
	WindowsForDate(ctx context.Context, shift models.Shift, date time.Time) (*models.ResolvedWindow, error)
	UpdateWindow(ctx context.Context, window models.ShiftWindow, updatedBy string) error
}

// SettingsHandler manages the shift window configuration.
type SettingsHandler struct {
	windows windowManager
}

// NewSettingsHandler constructs the handler.
func NewSettingsHandler(windows windowManager) *SettingsHandler {
	return &SettingsHandler{windows: windows}
}

// GetWindows godoc
// @Summary Read the resolved shift windows for a date
// @Tags Settings
// @Produce json
// @Param date query string false "Date (YYYY-MM-DD, defaults to today)"
// @Success 200 {object} response.Envelope
// @Router /settings/windows [get]
func (h *SettingsHandler) GetWindows(c *gin.Context) {
	resolve := func(ctx context.Context, shift models.Shift) (*models.ResolvedWindow, error) {
		return h.windows.WindowsFor(ctx, shift, time.Now())
	}
	if raw := c.Query("date"); raw != "" {
		parsed, err := parseDateParam(raw)
		if err != nil {
			response.Error(c, err)
			return
		}
		// A named date binds to that calendar day in the configured
		// timezone, not to the UTC instant it parsed as.
		resolve = func(ctx context.Context, shift models.Shift) (*models.ResolvedWindow, error) {
			return h.windows.WindowsForDate(ctx, shift, *parsed)
		}
	}

	windows := make(map[string]*models.ResolvedWindow, 2)
	for _, shift := range models.AllShifts() {
		window, err := resolve(c.Request.Context(), shift)
		if err != nil {
			response.Error(c, err)
			return
		}
		windows[string(shift)] = window
	}
	response.JSON(c, http.StatusOK, windows, nil)
}

type updateWindowPayload struct {
	Shift         string `json:"shift" binding:"required"`
	CheckinStart  string `json:"checkin_start" binding:"required"`
	CheckinEnd    string `json:"checkin_end" binding:"required"`
	CheckoutStart string `json:"checkout_start" binding:"required"`
	CheckoutEnd   string `json:"checkout_end" binding:"required"`
	ClassEnd      string `json:"class_end" binding:"required"`
	Timezone      string `json:"timezone"`
}

// UpdateWindows godoc
// @Summary Update a shift's window boundaries
// @Tags Settings
// @Accept json
// @Produce json
// @Param payload body updateWindowPayload true "Window boundaries (HH:MM:SS)"
// @Success 200 {object} response.Envelope
// @Router /settings/windows [put]
func (h *SettingsHandler) UpdateWindows(c *gin.Context) {
	var payload updateWindowPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid window payload"))
		return
	}
	shift := models.Shift(payload.Shift)
	if !shift.Valid() {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "shift must be Morning or Evening"))
		return
	}

	boundaries := make([]models.TimeOfDay, 5)
	for i, raw := range []string{payload.CheckinStart, payload.CheckinEnd, payload.CheckoutStart, payload.CheckoutEnd, payload.ClassEnd} {
		boundary, err := models.ParseTimeOfDay(raw)
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid window boundary"))
			return
		}
		boundaries[i] = boundary
	}

	window := models.ShiftWindow{
		Shift:         shift,
		CheckinStart:  boundaries[0],
		CheckinEnd:    boundaries[1],
		CheckoutStart: boundaries[2],
		CheckoutEnd:   boundaries[3],
		ClassEnd:      boundaries[4],
		Timezone:      payload.Timezone,
	}

	updatedBy := ""
	if claims := stationFromContext(c); claims != nil {
		updatedBy = claims.StationID
	}
	if err := h.windows.UpdateWindow(c.Request.Context(), window, updatedBy); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"updated": true}, nil)
}
