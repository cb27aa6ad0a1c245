package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/gatepass/internal/models"
	"github.com/joshua-takyi/gatepass/internal/services"
)

// respondError maps service errors to an HTTP status and response status.
// Unexpected errors are attached to the context for the ErrorHandler to log
// and are never echoed to the client.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		c.JSON(http.StatusBadRequest, models.ErrorResponse(models.StatusInvalidRequest, err.Error()))
	case errors.Is(err, services.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, models.ErrorResponse(models.StatusUnauthorized, err.Error()))
	case errors.Is(err, services.ErrSignatureMismatch):
		c.JSON(http.StatusBadRequest, models.ErrorResponse(models.StatusFailed, err.Error()))
	case errors.Is(err, services.ErrConflict):
		c.JSON(http.StatusConflict, models.ErrorResponse(models.StatusConflict, err.Error()))
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse(models.StatusNotFound, err.Error()))
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse(models.StatusError, "internal server error"))
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse(models.StatusInvalidRequest, msg))
}
