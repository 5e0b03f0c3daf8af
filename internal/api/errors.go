package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// Generic error details returned to clients
const (
	DetailInternalError  = "Internal Server Error"
	DetailNotImplemented = "Not implemented yet"
)

// ErrorResponse is the error body shape shared by every route
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// respondInternalError logs the cause for operators and answers with a fixed
// message so upstream details never reach the client
func respondInternalError(c *gin.Context, err error, fields log.Fields) {
	entry := log.WithFields(log.Fields{
		"method": c.Request.Method,
		"path":   c.FullPath(),
	})
	if fields != nil {
		entry = entry.WithFields(fields)
	}
	entry.WithError(err).Error("Request failed")

	_ = c.Error(err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Detail: DetailInternalError})
}

func respondNotImplemented(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusNotImplemented, ErrorResponse{Detail: DetailNotImplemented})
}

func respondValidationError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusUnprocessableEntity, ErrorResponse{Detail: err.Error()})
}
