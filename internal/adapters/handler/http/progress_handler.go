package http

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/comitanigiacomo/kanso-progress-engine/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/kanso-progress-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-progress-engine/internal/core/services"
)

const streamBuffer = 16

type ProgressHandler struct {
	svc       *services.ProgressService
	keepAlive time.Duration
}

// NewProgressHandler serves the progress read side. keepAlive is the interval
// of ping events on idle streams.
func NewProgressHandler(svc *services.ProgressService, keepAlive time.Duration) *ProgressHandler {
	if keepAlive <= 0 {
		keepAlive = 25 * time.Second
	}
	return &ProgressHandler{
		svc:       svc,
		keepAlive: keepAlive,
	}
}

func (h *ProgressHandler) RegisterRoutes(router *gin.RouterGroup) {
	progress := router.Group("/progress")
	{
		progress.GET("/summary", h.Summary)
		progress.GET("/stream", h.Stream)
		progress.GET("/:habit_id", h.Series)
		progress.GET("/:habit_id/heatmap", h.Heatmap)
		progress.GET("/:habit_id/stats", h.Stats)
	}
}

func (h *ProgressHandler) session(c *gin.Context) (domain.Session, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse{Error: "user context missing"})
		return domain.Session{}, false
	}

	reference, err := parseInstant(c.Query("reference"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return domain.Session{}, false
	}

	return domain.Session{UserID: userID, Reference: reference}, true
}

// Series godoc
// @Summary  Progress series of a habit
// @Tags     progress
// @Produce  json
// @Param    habit_id   path  string true  "Habit ID"
// @Param    time_frame query string false "1w, 1m, YTD, 1y or All" default(1w)
// @Param    reference  query string false "Reference date (YYYY-MM-DD), defaults to today"
// @Success  200 {object} domain.ProgressSeries
// @Failure  400 {object} errorResponse
// @Failure  403 {object} errorResponse
// @Failure  404 {object} errorResponse
// @Failure  502 {object} errorResponse
// @Security BearerAuth
// @Router   /progress/{habit_id} [get]
func (h *ProgressHandler) Series(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	tf, err := domain.ParseTimeFrame(c.DefaultQuery("time_frame", string(domain.TimeFrameWeek)))
	if err != nil {
		handleError(c, err)
		return
	}

	series, err := h.svc.GetProgressSeries(c.Request.Context(), session, c.Param("habit_id"), tf)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, series)
}

// Heatmap godoc
// @Summary  Five-week heatmap of a habit
// @Tags     progress
// @Produce  json
// @Param    habit_id  path  string true  "Habit ID"
// @Param    reference query string false "Reference date (YYYY-MM-DD)"
// @Success  200 {object} domain.HeatmapGrid
// @Security BearerAuth
// @Router   /progress/{habit_id}/heatmap [get]
func (h *ProgressHandler) Heatmap(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	grid, err := h.svc.GetHeatmapGrid(c.Request.Context(), session, c.Param("habit_id"))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, grid)
}

// Stats godoc
// @Summary  Lifetime stats of a habit
// @Tags     progress
// @Produce  json
// @Param    habit_id path string true "Habit ID"
// @Success  200 {object} domain.LifetimeStats
// @Security BearerAuth
// @Router   /progress/{habit_id}/stats [get]
func (h *ProgressHandler) Stats(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	stats, err := h.svc.GetLifetimeStats(c.Request.Context(), session, c.Param("habit_id"))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// Summary godoc
// @Summary  Lifetime stats across all habits of the caller
// @Tags     progress
// @Produce  json
// @Success  200 {object} domain.LifetimeStats
// @Security BearerAuth
// @Router   /progress/summary [get]
func (h *ProgressHandler) Summary(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	stats, err := h.svc.GetSummary(c.Request.Context(), session)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// Stream pushes every refreshed view of the caller's habits as a
// "progress" server-sent event until the client goes away.
func (h *ProgressHandler) Stream(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse{Error: "user context missing"})
		return
	}

	ctx := c.Request.Context()
	updates := h.svc.Updates(ctx, userID, streamBuffer)

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	log.WithField("user_id", userID).Debug("[HTTP] progress stream opened")
	defer log.WithField("user_id", userID).Debug("[HTTP] progress stream closed")

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case update, ok := <-updates:
			if !ok {
				return false
			}
			c.SSEvent("progress", update)
			return true
		case t := <-ticker.C:
			c.SSEvent("ping", t.UTC().Format(time.RFC3339))
			return true
		case <-ctx.Done():
			return false
		}
	})
}
