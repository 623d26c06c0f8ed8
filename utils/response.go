package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// SendError writes the failure envelope. Errors that are not an *AppError are
// treated as internal and their text is logged, never returned.
func SendError(c *gin.Context, err error) {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		appErr = InternalError("Internal server error", err)
	}

	if appErr.Status >= http.StatusInternalServerError {
		Logger.WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		}).WithError(err).Error("request failed")
		c.AbortWithStatusJSON(appErr.Status, ErrorResponse{Success: false, Message: "Internal server error"})
		return
	}

	c.AbortWithStatusJSON(appErr.Status, ErrorResponse{Success: false, Message: appErr.Message})
}

func SendValidationError(c *gin.Context, msg string) {
	SendError(c, ValidationError(msg))
}

// SendSuccess writes {success: true, ...body}.
func SendSuccess(c *gin.Context, status int, body gin.H) {
	response := gin.H{"success": true}
	for k, v := range body {
		response[k] = v
	}
	c.JSON(status, response)
}

func SendMessage(c *gin.Context, message string) {
	SendSuccess(c, http.StatusOK, gin.H{"message": message})
}
