package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/learnhub-backend/internal/http/handlers"
	httpMW "github.com/yungbote/learnhub-backend/internal/http/middleware"
	"github.com/yungbote/learnhub-backend/internal/pkg/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	ServiceName    string
	CORSOrigins    []string
	AuthMiddleware *httpMW.AuthMiddleware

	HealthHandler     *httpH.HealthHandler
	GenerationHandler *httpH.GenerationHandler
	CourseHandler     *httpH.CourseHandler
	EnrollmentHandler *httpH.EnrollmentHandler
	ProgressHandler   *httpH.ProgressHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachRequestContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	protected := r.Group("/api")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// Generation
		if cfg.GenerationHandler != nil {
			protected.POST("/generation/topics", cfg.GenerationHandler.GenerateTopics)
			protected.POST("/generation/courses", cfg.GenerationHandler.GenerateCourses)
		}

		// Courses
		if cfg.CourseHandler != nil {
			protected.GET("/courses", cfg.CourseHandler.ListCourses)
			protected.GET("/courses/mine", cfg.CourseHandler.ListMyCourses)
			protected.GET("/courses/:id", cfg.CourseHandler.GetCourse)
			protected.POST("/courses/:id/quiz", cfg.CourseHandler.SubmitQuiz)
			protected.POST("/courses/:id/copy", cfg.CourseHandler.CopyCourse)
		}

		// Enrollment
		if cfg.EnrollmentHandler != nil {
			protected.POST("/courses/:id/enroll", cfg.EnrollmentHandler.Enroll)
			protected.GET("/courses/:id/enrollment", cfg.EnrollmentHandler.GetEnrollment)
			protected.POST("/courses/:id/chapters/:index/open", cfg.EnrollmentHandler.OpenChapter)
			protected.POST("/courses/:id/chapters/:index/complete", cfg.EnrollmentHandler.CompleteChapter)
		}

		// Progress
		if cfg.ProgressHandler != nil {
			protected.GET("/progress/stats", cfg.ProgressHandler.Stats)
			protected.GET("/progress/stats/stream", cfg.ProgressHandler.StatsStream)
			protected.GET("/progress/courses", cfg.ProgressHandler.Courses)
		}
	}

	return r
}
