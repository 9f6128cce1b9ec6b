package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kohei-dev/student-management-api/internal/dto"
	appErrors "github.com/kohei-dev/student-management-api/pkg/errors"
	"github.com/kohei-dev/student-management-api/pkg/response"
)

type studentService interface {
	List(ctx context.Context) ([]dto.StudentDetailResponse, error)
	Get(ctx context.Context, id int64) (*dto.StudentDetailResponse, error)
	Register(ctx context.Context, form dto.StudentDetailForm) (*dto.StudentDetailResponse, error)
	Update(ctx context.Context, form dto.StudentDetailForm) (*dto.StudentDetailResponse, error)
	Delete(ctx context.Context, id int64) error
}

type exportService interface {
	Roster(ctx context.Context, format string) ([]byte, string, error)
}

// StudentHandler exposes the student roster endpoints.
type StudentHandler struct {
	students studentService
	exports  exportService
}

// NewStudentHandler constructs StudentHandler. exports may be nil when the
// export endpoint is disabled.
func NewStudentHandler(students studentService, exports exportService) *StudentHandler {
	return &StudentHandler{students: students, exports: exports}
}

// List godoc
// @Summary List active students with their courses
// @Tags Students
// @Produce json
// @Success 200 {array} dto.StudentDetailResponse
// @Router /students [get]
func (h *StudentHandler) List(c *gin.Context) {
	details, err := h.students.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, details)
}

// Get godoc
// @Summary Get one student detail
// @Tags Students
// @Produce json
// @Param studentId path int true "Student ID"
// @Success 200 {object} dto.StudentDetailResponse
// @Failure 400 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Router /students/{studentId} [get]
func (h *StudentHandler) Get(c *gin.Context) {
	id, ok := studentIDParam(c)
	if !ok {
		return
	}
	detail, err := h.students.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail)
}

// Register godoc
// @Summary Register a student with courses
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body dto.StudentDetailForm true "Student detail payload"
// @Success 201 {object} dto.StudentDetailResponse
// @Failure 400 {object} response.ErrorBody
// @Router /students [post]
func (h *StudentHandler) Register(c *gin.Context) {
	var form dto.StudentDetailForm
	if err := c.ShouldBindJSON(&form); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInvalidArgument.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	detail, err := h.students.Register(c.Request.Context(), form)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, detail)
}

// Update godoc
// @Summary Update a student and its courses
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body dto.StudentDetailForm true "Student detail payload"
// @Success 200 {object} dto.StudentDetailResponse
// @Failure 400 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Router /students [put]
func (h *StudentHandler) Update(c *gin.Context) {
	var form dto.StudentDetailForm
	if err := c.ShouldBindJSON(&form); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInvalidArgument.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	detail, err := h.students.Update(c.Request.Context(), form)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail)
}

// Delete godoc
// @Summary Logically delete a student
// @Tags Students
// @Produce json
// @Param studentId path int true "Student ID"
// @Success 204
// @Failure 404 {object} response.ErrorBody
// @Router /students/{studentId} [delete]
func (h *StudentHandler) Delete(c *gin.Context) {
	id, ok := studentIDParam(c)
	if !ok {
		return
	}
	if err := h.students.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Export godoc
// @Summary Export the active roster
// @Tags Students
// @Produce text/csv
// @Param format query string false "Export format (csv or pdf)"
// @Success 200
// @Router /students/export [get]
func (h *StudentHandler) Export(c *gin.Context) {
	if h.exports == nil {
		response.Error(c, appErrors.ErrInvalidAccess)
		return
	}
	payload, contentType, err := h.exports.Roster(c.Request.Context(), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Data(http.StatusOK, contentType, payload)
}

// studentIDParam parses the path segment, rejecting anything that is not a
// positive integer before it reaches the domain layer.
func studentIDParam(c *gin.Context) (int64, bool) {
	raw := c.Param("studentId")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		response.Error(c, appErrors.Clone(appErrors.ErrInvalidArgument, "studentId must be a positive integer: "+raw))
		return 0, false
	}
	return id, true
}
