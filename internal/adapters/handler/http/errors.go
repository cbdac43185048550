package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/comitanigiacomo/kanso-progress-engine/internal/core/domain"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func isValidationError(err error) bool {
	for _, target := range []error{
		domain.ErrHabitTitleEmpty,
		domain.ErrHabitTitleTooLong,
		domain.ErrInvalidColor,
		domain.ErrInvalidTarget,
		domain.ErrInvalidPeriod,
		domain.ErrMalformedEvent,
		domain.ErrInvalidTimeFrame,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		c.JSON(http.StatusForbidden, errorResponse{Error: "unauthorized access"})

	case errors.Is(err, domain.ErrEventNotFound) || errors.Is(err, domain.ErrHabitNotFound):
		c.JSON(http.StatusNotFound, errorResponse{Error: "resource not found"})

	case errors.Is(err, domain.ErrEventConflict) || errors.Is(err, domain.ErrHabitConflict):
		c.JSON(http.StatusConflict, errorResponse{
			Error:   "version conflict",
			Message: "data has been modified elsewhere, please sync",
		})

	case errors.Is(err, domain.ErrHabitArchived):
		c.JSON(http.StatusConflict, errorResponse{Error: err.Error()})

	case isValidationError(err):
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})

	case errors.Is(err, domain.ErrDataFetch):
		log.WithError(err).Warnf("[HTTP] %s %s: tracking data unavailable", c.Request.Method, c.Request.URL.Path)
		c.JSON(http.StatusBadGateway, errorResponse{Error: "tracking data unavailable, try again later"})

	default:
		log.Printf("[ERROR] Request %s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}

func bindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body", Message: err.Error()})
}
