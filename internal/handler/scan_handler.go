package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/campus-ops/shift-attendance-api/internal/models"
	"github.com/campus-ops/shift-attendance-api/internal/service"
	appErrors "github.com/campus-ops/shift-attendance-api/pkg/errors"
	"github.com/campus-ops/shift-attendance-api/pkg/jobs"
	"github.com/campus-ops/shift-attendance-api/pkg/response"
)

type scanSubmitter interface {
	Submit(ctx context.Context, req service.SubmitScanRequest) (*service.SubmitScanResult, error)
}

type bulkEnqueuer interface {
	Enqueue(job jobs.Job) error
}

// ScanHandler exposes the scan ingestion endpoints.
type ScanHandler struct {
	service scanSubmitter
	queue   bulkEnqueuer
}

// NewScanHandler constructs the handler.
func NewScanHandler(service scanSubmitter, queue bulkEnqueuer) *ScanHandler {
	return &ScanHandler{service: service, queue: queue}
}

type submitScanPayload struct {
	StudentID string     `json:"student_id" binding:"required"`
	Source    string     `json:"source"`
	ScannedAt *time.Time `json:"scanned_at"`
}

// Submit godoc
// @Summary Submit a single attendance scan
// @Tags Scans
// @Accept json
// @Produce json
// @Param payload body submitScanPayload true "Scan payload"
// @Success 200 {object} response.Envelope
// @Router /scans [post]
func (h *ScanHandler) Submit(c *gin.Context) {
	var payload submitScanPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid scan payload"))
		return
	}

	source := models.ScanSource(payload.Source)
	if source == "" {
		source = models.ScanSourceScanner
	}

	result, err := h.service.Submit(c.Request.Context(), service.SubmitScanRequest{
		StudentID: payload.StudentID,
		Source:    source,
		At:        payload.ScannedAt,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

type bulkScanItem struct {
	StudentID string     `json:"student_id" binding:"required"`
	ScannedAt *time.Time `json:"scanned_at"`
}

type bulkScanPayload struct {
	Items []bulkScanItem `json:"items" binding:"required,min=1,dive"`
}

// SubmitBulk godoc
// @Summary Enqueue a batch of scans for asynchronous ingestion
// @Tags Scans
// @Accept json
// @Produce json
// @Param payload body bulkScanPayload true "Batch payload"
// @Success 202 {object} response.Envelope
// @Router /scans/bulk [post]
func (h *ScanHandler) SubmitBulk(c *gin.Context) {
	var payload bulkScanPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid bulk payload"))
		return
	}
	if h.queue == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "bulk import disabled"))
		return
	}

	accepted := 0
	for _, item := range payload.Items {
		job := jobs.Job{
			ID:   uuid.NewString(),
			Type: "bulk_scan",
			Payload: service.SubmitScanRequest{
				StudentID: item.StudentID,
				Source:    models.ScanSourceBulk,
				At:        item.ScannedAt,
			},
		}
		if err := h.queue.Enqueue(job); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "enqueue bulk scan"))
			return
		}
		accepted++
	}
	response.JSON(c, http.StatusAccepted, gin.H{"accepted": accepted}, nil)
}
