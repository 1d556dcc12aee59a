package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/learnhub-backend/internal/domain/learning"
	"github.com/yungbote/learnhub-backend/internal/http/response"
	"github.com/yungbote/learnhub-backend/internal/pkg/logger"
	"github.com/yungbote/learnhub-backend/internal/services"
)

type ProgressHandler struct {
	log      *logger.Logger
	progress services.ProgressService
}

func NewProgressHandler(log *logger.Logger, progress services.ProgressService) *ProgressHandler {
	return &ProgressHandler{
		log:      log.With("handler", "ProgressHandler"),
		progress: progress,
	}
}

// GET /api/progress/stats
func (h *ProgressHandler) Stats(c *gin.Context) {
	rd := caller(c)
	if rd == nil {
		return
	}
	stats, err := h.progress.ComputeUserStats(c.Request.Context(), rd.UserID)
	if err != nil {
		h.log.Error("ComputeUserStats failed", "user_id", rd.UserID, "error", err)
		respondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"stats": stats})
}

// GET /api/progress/courses
func (h *ProgressHandler) Courses(c *gin.Context) {
	rd := caller(c)
	if rd == nil {
		return
	}
	rows, err := h.progress.ListEnrolledCourses(c.Request.Context(), rd.UserID)
	if err != nil {
		h.log.Error("ListEnrolledCourses failed", "user_id", rd.UserID, "error", err)
		respondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"courses": rows})
}

// GET /api/progress/stats/stream sends a "stats" event now and after each enrollment change.
func (h *ProgressHandler) StatsStream(c *gin.Context) {
	rd := caller(c)
	if rd == nil {
		return
	}
	ctx := c.Request.Context()
	updates := make(chan learning.UserStats, 8)
	watchDone := make(chan struct{})
	go func() {
		defer close(watchDone)
		err := h.progress.WatchUserStats(ctx, rd.UserID, func(s learning.UserStats) {
			select {
			case updates <- s:
			case <-ctx.Done():
			}
		})
		if err != nil {
			h.log.Warn("Stats stream ended", "user_id", rd.UserID, "error", err)
		}
	}()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.Flush()
	for {
		select {
		case <-ctx.Done():
			return
		case <-watchDone:
			return
		case s := <-updates:
			c.SSEvent("stats", s)
			c.Writer.Flush()
		}
	}
}
