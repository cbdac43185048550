package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-progress-engine/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/kanso-progress-engine/internal/core/services"
)

// defaultListWindow bounds GET /events when no range is given.
const defaultListWindow = 30 * 24 * time.Hour

type TrackingHandler struct {
	svc *services.TrackingService
}

func NewTrackingHandler(svc *services.TrackingService) *TrackingHandler {
	return &TrackingHandler{
		svc: svc,
	}
}

type logEventRequest struct {
	ID         string    `json:"id"`
	HabitID    string    `json:"habit_id" binding:"required"`
	OccurredAt time.Time `json:"occurred_at"`
	Count      *int      `json:"count" binding:"required"`
}

type correctEventRequest struct {
	Count   *int `json:"count" binding:"required"`
	Version int  `json:"version" binding:"required"`
}

func (h *TrackingHandler) RegisterRoutes(router *gin.RouterGroup) {
	events := router.Group("/events")
	{
		events.POST("", h.Log)
		events.GET("", h.List)
		events.GET("/sync", h.Sync)
		events.PUT("/:id", h.Correct)
		events.DELETE("/:id", h.Delete)
	}
}

// Log godoc
// @Summary  Log a tracking event
// @Tags     events
// @Accept   json
// @Produce  json
// @Param    event body logEventRequest true "Tracking event"
// @Success  201 {object} domain.TrackingEvent
// @Failure  400 {object} errorResponse
// @Failure  403 {object} errorResponse
// @Failure  404 {object} errorResponse
// @Security BearerAuth
// @Router   /events [post]
func (h *TrackingHandler) Log(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse{Error: "user context missing"})
		return
	}

	var req logEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	event, err := h.svc.Log(c.Request.Context(), services.LogEventInput{
		ID:         req.ID,
		HabitID:    req.HabitID,
		UserID:     userID,
		OccurredAt: req.OccurredAt,
		Count:      *req.Count,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, event)
}

func (h *TrackingHandler) Correct(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse{Error: "user context missing"})
		return
	}

	var req correctEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	event, err := h.svc.Correct(c.Request.Context(), services.CorrectEventInput{
		ID:      c.Param("id"),
		UserID:  userID,
		Count:   *req.Count,
		Version: req.Version,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, event)
}

func (h *TrackingHandler) Delete(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse{Error: "user context missing"})
		return
	}

	if err := h.svc.Delete(c.Request.Context(), c.Param("id"), userID); err != nil {
		handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// List returns the caller's events in [from, to), optionally for one habit.
// Without bounds it covers the last 30 days.
func (h *TrackingHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse{Error: "user context missing"})
		return
	}

	from, err := parseInstant(c.Query("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	to, err := parseInstant(c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	if to.IsZero() {
		to = time.Now().UTC()
	}
	if from.IsZero() {
		from = to.Add(-defaultListWindow)
	}

	list, err := h.svc.List(c.Request.Context(), userID, c.Query("habit_id"), from, to)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

func (h *TrackingHandler) Sync(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse{Error: "user context missing"})
		return
	}

	var since time.Time
	if raw := c.Query("since"); raw != "" {
		var err error
		since, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid date format (use RFC3339)"})
			return
		}
	}

	changes, err := h.svc.GetDelta(c.Request.Context(), userID, since)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"changes":   changes,
		"timestamp": time.Now().UTC(),
	})
}
