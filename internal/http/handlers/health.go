package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/yungbote/learnhub-backend/internal/pkg/errors"
	"github.com/yungbote/learnhub-backend/internal/pkg/logger"
)

// HealthCheck probes one dependency; nil means healthy.
type HealthCheck func(ctx context.Context) error

type HealthHandler struct {
	log     *logger.Logger
	checks  map[string]HealthCheck
	timeout time.Duration
}

func NewHealthHandler(log *logger.Logger, checks map[string]HealthCheck) *HealthHandler {
	return &HealthHandler{
		log:     log.With("handler", "HealthHandler"),
		checks:  checks,
		timeout: 2 * time.Second,
	}
}

// GET /healthcheck
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()
	for name, check := range h.checks {
		if check == nil {
			continue
		}
		if err := check(ctx); err != nil {
			h.log.Warn("Health check failed", "check", name, "error", err)
			respondErr(c, fmt.Errorf("%s: %w", name, apperrors.ErrUnavailable))
			return
		}
	}
	c.String(http.StatusOK, "ok")
}
