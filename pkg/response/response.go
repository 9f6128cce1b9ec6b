package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/kohei-dev/student-management-api/pkg/errors"
)

// ErrorBody is the wire shape for every failed request.
type ErrorBody struct {
	Status  int                   `json:"status"`
	Message string                `json:"message"`
	Errors  []appErrors.Violation `json:"errors,omitempty"`
}

// JSON sends a success payload as-is.
func JSON(c *gin.Context, status int, data interface{}) {
	c.Header("Cache-Control", "no-store")
	c.JSON(status, data)
}

// Created responds with HTTP 201 Created.
func Created(c *gin.Context, data interface{}) {
	JSON(c, http.StatusCreated, data)
}

// NoContent sends a 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error converts the error into the common error body and sends it.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	c.Header("Cache-Control", "no-store")
	c.JSON(appErr.Status, ErrorBody{
		Status:  appErr.Status,
		Message: appErr.Message,
		Errors:  appErr.Violations,
	})
}
