package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campus-ops/shift-attendance-api/internal/models"
	appErrors "github.com/campus-ops/shift-attendance-api/pkg/errors"
	"github.com/campus-ops/shift-attendance-api/pkg/response"
)

type studentRepo interface {
	GetByStudentID(ctx context.Context, studentID string) (*models.Student, error)
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	Create(ctx context.Context, student *models.Student) error
}

// StudentHandler is the thin directory surface the engine consumes.
type StudentHandler struct {
	repo studentRepo
}

// NewStudentHandler constructs the handler.
func NewStudentHandler(repo studentRepo) *StudentHandler {
	return &StudentHandler{repo: repo}
}

// List godoc
// @Summary List students
// @Tags Students
// @Produce json
// @Param search query string false "Search by roll number or name"
// @Param shift query string false "Shift (Morning/Evening)"
// @Param program query string false "Program"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /students [get]
func (h *StudentHandler) List(c *gin.Context) {
	filter := models.StudentFilter{
		Search:    c.Query("search"),
		Shift:     models.Shift(c.Query("shift")),
		Program:   c.Query("program"),
		SortBy:    c.Query("sortBy"),
		SortOrder: c.Query("sortOrder"),
		Page:      parseQueryInt(c, "page", 1),
		PageSize:  parseQueryInt(c, "limit", 50),
	}
	students, total, err := h.repo.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total})
}

// Get godoc
// @Summary Get a student by roll number
// @Tags Students
// @Produce json
// @Param id path string true "Student roll number"
// @Success 200 {object} response.Envelope
// @Router /students/{id} [get]
func (h *StudentHandler) Get(c *gin.Context) {
	student, err := h.repo.GetByStudentID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if student == nil {
		response.Error(c, appErrors.ErrNotFound)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

type createStudentPayload struct {
	StudentID string `json:"student_id" binding:"required"`
	Name      string `json:"name" binding:"required"`
	Program   string `json:"program"`
	Shift     string `json:"shift" binding:"required"`
}

// Create godoc
// @Summary Register a student
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body createStudentPayload true "Student payload"
// @Success 201 {object} response.Envelope
// @Router /students [post]
func (h *StudentHandler) Create(c *gin.Context) {
	var payload createStudentPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload"))
		return
	}
	shift := models.Shift(payload.Shift)
	if !shift.Valid() {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "shift must be Morning or Evening"))
		return
	}

	existing, err := h.repo.GetByStudentID(c.Request.Context(), payload.StudentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if existing != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrConflict, "student already registered"))
		return
	}

	student := &models.Student{
		StudentID: payload.StudentID,
		Name:      payload.Name,
		Program:   payload.Program,
		Shift:     shift,
		Active:    true,
	}
	if err := h.repo.Create(c.Request.Context(), student); err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, student)
}
