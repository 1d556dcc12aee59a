package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/learnhub-backend/internal/data/docstore"
	"github.com/yungbote/learnhub-backend/internal/modules/learning/prompts"
	"github.com/yungbote/learnhub-backend/internal/pkg/logger"
	"github.com/yungbote/learnhub-backend/internal/services"
)

type Services struct {
	Store      docstore.Store
	Generation services.CourseGenerationService
	Course     services.CourseService
	Enrollment services.EnrollmentService
	Progress   services.ProgressService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, clients Clients) Services {
	log.Info("Wiring services...")
	store := docstore.NewGormStore(db, log, clients.Feed)
	enrollment := services.NewEnrollmentService(log, store)
	return Services{
		Store:      store,
		Generation: services.NewCourseGenerationService(log, store, clients.OpenAI, prompts.Default(log), cfg.GenerationTimeout),
		Course:     services.NewCourseService(log, store),
		Enrollment: enrollment,
		Progress:   services.NewProgressService(log, store, enrollment, cfg.StatsConcurrency),
	}
}
