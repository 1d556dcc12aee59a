package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/learnhub-backend/internal/data/docstore"
	"github.com/yungbote/learnhub-backend/internal/domain/learning"
	"github.com/yungbote/learnhub-backend/internal/pkg/logger"
)

// EnrolledCourse is one row of the progress screen.
type EnrolledCourse struct {
	Course     *learning.Course            `json:"course"`
	Enrollment learning.EnrollmentSnapshot `json:"enrollment"`
	Percent    float64                     `json:"percent"`
	Status     learning.CourseStatus       `json:"status"`
}

type ProgressService interface {
	// ComputeUserStats counts the user's courses. Enrollments whose course cannot be loaded are
	// skipped; only a failure to list enrollments is returned.
	ComputeUserStats(ctx context.Context, userID string) (learning.UserStats, error)
	ListEnrolledCourses(ctx context.Context, userID string) ([]EnrolledCourse, error)
	// WatchUserStats calls onStats now and again after every change to the user's enrollments,
	// until ctx is done.
	WatchUserStats(ctx context.Context, userID string, onStats func(learning.UserStats)) error
}

type progressService struct {
	log          *logger.Logger
	store        docstore.Store
	enrollments  EnrollmentService
	concurrency  int
	pollInterval time.Duration
}

func NewProgressService(
	baseLog *logger.Logger,
	store docstore.Store,
	enrollments EnrollmentService,
	concurrency int,
) ProgressService {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &progressService{
		log:          baseLog.With("service", "ProgressService"),
		store:        store,
		enrollments:  enrollments,
		concurrency:  concurrency,
		pollInterval: 5 * time.Second,
	}
}

func (s *progressService) ComputeUserStats(ctx context.Context, userID string) (learning.UserStats, error) {
	ctx, span := tracer.Start(ctx, "Progress.ComputeUserStats")
	defer span.End()

	var stats learning.UserStats
	enrollments, err := s.enrollments.ListUserEnrollments(ctx, userID)
	if err != nil {
		span.RecordError(err)
		return stats, err
	}
	courses, err := s.loadCourses(ctx, enrollments)
	if err != nil {
		return stats, err
	}

	distinct := make(map[string]struct{}, len(courses))
	for _, e := range enrollments {
		c, ok := courses[e.CourseID]
		if !ok {
			continue
		}
		distinct[e.CourseID] = struct{}{}
		switch learning.Classify(c.ChapterCount(), e.CompletedCount()) {
		case learning.StatusCompleted:
			stats.Completed++
		default:
			stats.InProgress++
		}
	}
	stats.Total = len(distinct)
	stats = stats.Clamp()

	span.SetAttributes(
		attribute.Int("enrollments", len(enrollments)),
		attribute.Int("stats.total", stats.Total),
		attribute.Int("stats.completed", stats.Completed),
	)
	return stats, nil
}

func (s *progressService) ListEnrolledCourses(ctx context.Context, userID string) ([]EnrolledCourse, error) {
	enrollments, err := s.enrollments.ListUserEnrollments(ctx, userID)
	if err != nil {
		return nil, err
	}
	courses, err := s.loadCourses(ctx, enrollments)
	if err != nil {
		return nil, err
	}
	out := make([]EnrolledCourse, 0, len(enrollments))
	for _, e := range enrollments {
		c, ok := courses[e.CourseID]
		if !ok {
			continue
		}
		total, done := c.ChapterCount(), e.CompletedCount()
		out = append(out, EnrolledCourse{
			Course:     c,
			Enrollment: e.Snapshot(),
			Percent:    learning.CardPercent(total, done),
			Status:     learning.DisplayStatus(total, done),
		})
	}
	return out, nil
}

// loadCourses fetches each referenced course once. Lookups that fail are logged and left out of
// the result; only cancellation of ctx is returned.
func (s *progressService) loadCourses(ctx context.Context, enrollments []*learning.Enrollment) (map[string]*learning.Course, error) {
	ids := make([]string, 0, len(enrollments))
	seen := make(map[string]struct{}, len(enrollments))
	for _, e := range enrollments {
		if e.CourseID == "" {
			s.log.Warn("Skipping enrollment without courseId", "userId", e.UserID)
			continue
		}
		if _, ok := seen[e.CourseID]; ok {
			continue
		}
		seen[e.CourseID] = struct{}{}
		ids = append(ids, e.CourseID)
	}

	var (
		mu  sync.Mutex
		out = make(map[string]*learning.Course, len(ids))
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, id := range ids {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			var c learning.Course
			if err := docstore.GetInto(gctx, s.store, learning.CoursesCollection, id, &c); err != nil {
				if errors.Is(err, docstore.ErrNotFound) {
					s.log.Warn("Enrolled course no longer exists", "courseId", id)
				} else {
					s.log.Error("Enrolled course lookup failed", "courseId", id, "error", err)
				}
				return nil
			}
			mu.Lock()
			out[id] = &c
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *progressService) WatchUserStats(ctx context.Context, userID string, onStats func(learning.UserStats)) error {
	if onStats == nil {
		return errors.New("watch stats: callback required")
	}
	emit := func() {
		stats, err := s.ComputeUserStats(ctx, userID)
		if err != nil {
			if ctx.Err() == nil {
				s.log.Warn("Stats refresh failed", "userId", userID, "error", err)
			}
			return
		}
		onStats(stats)
	}
	emit()

	stop, err := s.store.OnChange(ctx, learning.EnrollmentsCollection,
		[]docstore.Filter{docstore.Where("userId", userID)},
		func(*docstore.Document) { emit() },
	)
	if errors.Is(err, docstore.ErrNoFeed) {
		return s.pollUserStats(ctx, emit)
	}
	if err != nil {
		return err
	}
	defer stop()
	<-ctx.Done()
	return nil
}

func (s *progressService) pollUserStats(ctx context.Context, emit func()) error {
	t := time.NewTicker(s.pollInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			emit()
		}
	}
}
