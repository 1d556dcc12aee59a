package app

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/learnhub-backend/internal/http"
	"github.com/yungbote/learnhub-backend/internal/pkg/logger"
)

func wireRouter(log *logger.Logger, cfg Config, handlers Handlers, middleware Middleware) *gin.Engine {
	return http.NewRouter(http.RouterConfig{
		Log:               log,
		ServiceName:       ServiceName,
		CORSOrigins:       cfg.CORSOrigins,
		AuthMiddleware:    middleware.Auth,
		HealthHandler:     handlers.Health,
		GenerationHandler: handlers.Generation,
		CourseHandler:     handlers.Course,
		EnrollmentHandler: handlers.Enrollment,
		ProgressHandler:   handlers.Progress,
	})
}
