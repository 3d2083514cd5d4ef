package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"food-ordering-api/apperr"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// envelope is the body of every JSON response.
type envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Errors  []string    `json:"errors,omitempty"`
}

func respond(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, envelope{Success: true, Message: message, Data: data})
}

// fail maps err to its status. Internal causes are logged, never sent.
func (h *Handler) fail(c *gin.Context, err error) {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		appErr = apperr.Wrap(err, "Internal server error")
	}

	status := apperr.HTTPStatus(appErr.Kind)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
		h.Log.WithError(err).WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		}).Error(appErr.Message)
	}
	c.JSON(status, envelope{Success: false, Message: appErr.Message, Errors: appErr.Details})
}

func badBody() error {
	return apperr.BadInput("Invalid request body")
}

// bindJSON decodes the body into dst; malformed bodies are InvalidInput.
func bindJSON(c *gin.Context, dst interface{}) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return badBody()
	}
	return nil
}

func paramID(c *gin.Context, name, what string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.BadInput("Invalid " + what + " id")
	}
	return uint(id), nil
}
