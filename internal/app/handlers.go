package app

import (
	httpH "github.com/yungbote/learnhub-backend/internal/http/handlers"
	httpMW "github.com/yungbote/learnhub-backend/internal/http/middleware"
	"github.com/yungbote/learnhub-backend/internal/pkg/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health     *httpH.HealthHandler
	Generation *httpH.GenerationHandler
	Course     *httpH.CourseHandler
	Enrollment *httpH.EnrollmentHandler
	Progress   *httpH.ProgressHandler
}

func wireHandlers(log *logger.Logger, services Services, checks map[string]httpH.HealthCheck) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:     httpH.NewHealthHandler(log, checks),
		Generation: httpH.NewGenerationHandler(log, services.Generation),
		Course:     httpH.NewCourseHandler(log, services.Course),
		Enrollment: httpH.NewEnrollmentHandler(log, services.Enrollment, services.Course),
		Progress:   httpH.NewProgressHandler(log, services.Progress),
	}
}

func wireMiddleware(log *logger.Logger, clients Clients) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, clients.Verifier),
	}
}
