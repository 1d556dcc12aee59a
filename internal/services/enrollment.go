package services

import (
	"context"
	"errors"
	"time"

	"github.com/yungbote/learnhub-backend/internal/data/docstore"
	"github.com/yungbote/learnhub-backend/internal/domain/learning"
	"github.com/yungbote/learnhub-backend/internal/pkg/logger"
)

type EnrollmentService interface {
	IsEnrolled(ctx context.Context, userID, courseID string) bool
	// Enroll writes a fresh enrollment. Enrolling again resets completed chapters and progress.
	Enroll(ctx context.Context, userID, courseID string, course *learning.Course) bool
	CompleteChapter(ctx context.Context, userID, courseID string, chapterIndex, totalChapters int) bool
	// ProgressOf returns nil when the user is not enrolled or the lookup failed.
	ProgressOf(ctx context.Context, userID, courseID string) *learning.EnrollmentSnapshot
	ListUserEnrollments(ctx context.Context, userID string) ([]*learning.Enrollment, error)
	// OpenChapter enrolls the user on first open and leaves existing progress alone.
	OpenChapter(ctx context.Context, userID string, course *learning.Course) bool
}

type enrollmentService struct {
	log   *logger.Logger
	store docstore.Store
	now   func() time.Time
}

func NewEnrollmentService(baseLog *logger.Logger, store docstore.Store) EnrollmentService {
	return &enrollmentService{
		log:   baseLog.With("service", "EnrollmentService"),
		store: store,
		now:   time.Now,
	}
}

func (s *enrollmentService) IsEnrolled(ctx context.Context, userID, courseID string) bool {
	id := learning.EnrollmentID(userID, courseID)
	_, err := s.store.Get(ctx, learning.EnrollmentsCollection, id)
	if err == nil {
		return true
	}
	if !errors.Is(err, docstore.ErrNotFound) {
		s.log.Warn("Enrollment lookup failed", "enrollmentId", id, "error", err)
	}
	return false
}

func (s *enrollmentService) Enroll(ctx context.Context, userID, courseID string, course *learning.Course) bool {
	id := learning.EnrollmentID(userID, courseID)
	now := s.now().UTC()
	e := learning.Enrollment{
		UserID:            userID,
		CourseID:          courseID,
		EnrolledAt:        now,
		CompletedChapters: []int{},
		Progress:          0,
		TotalChapters:     course.ChapterCount(),
		LastAccessed:      now,
	}
	if course != nil {
		e.CourseTitle = course.CourseTitle
		e.CourseOwner = course.CreatedBy
	}
	if err := docstore.SetValue(ctx, s.store, learning.EnrollmentsCollection, id, &e); err != nil {
		s.log.Error("Enroll failed", "enrollmentId", id, "error", err)
		return false
	}
	return true
}

func (s *enrollmentService) CompleteChapter(ctx context.Context, userID, courseID string, chapterIndex, totalChapters int) bool {
	id := learning.EnrollmentID(userID, courseID)
	if chapterIndex < 0 {
		s.log.Warn("Rejected negative chapter index", "enrollmentId", id, "chapterIndex", chapterIndex)
		return false
	}
	err := s.store.Update(ctx, learning.EnrollmentsCollection, id, map[string]any{
		"completedChapters": docstore.Union(chapterIndex),
		"progress":          learning.StoredProgress(chapterIndex, totalChapters),
		"lastAccessed":      s.now().UTC(),
	})
	if err != nil {
		s.log.Error("Complete chapter failed", "enrollmentId", id, "chapterIndex", chapterIndex, "error", err)
		return false
	}
	return true
}

func (s *enrollmentService) ProgressOf(ctx context.Context, userID, courseID string) *learning.EnrollmentSnapshot {
	id := learning.EnrollmentID(userID, courseID)
	var e learning.Enrollment
	if err := docstore.GetInto(ctx, s.store, learning.EnrollmentsCollection, id, &e); err != nil {
		if !errors.Is(err, docstore.ErrNotFound) {
			s.log.Warn("Progress lookup failed", "enrollmentId", id, "error", err)
		}
		return nil
	}
	snap := e.Snapshot()
	return &snap
}

func (s *enrollmentService) ListUserEnrollments(ctx context.Context, userID string) ([]*learning.Enrollment, error) {
	docs, err := s.store.Query(ctx, learning.EnrollmentsCollection,
		[]docstore.Filter{docstore.Where("userId", userID)},
		docstore.Desc("lastAccessed"),
	)
	if err != nil {
		return nil, err
	}
	out := make([]*learning.Enrollment, 0, len(docs))
	for _, d := range docs {
		var e learning.Enrollment
		if err := d.Decode(&e); err != nil {
			s.log.Warn("Skipping undecodable enrollment", "enrollmentId", d.ID, "error", err)
			continue
		}
		out = append(out, &e)
	}
	return out, nil
}

func (s *enrollmentService) OpenChapter(ctx context.Context, userID string, course *learning.Course) bool {
	if course == nil {
		return false
	}
	if s.IsEnrolled(ctx, userID, course.DocID) {
		return true
	}
	return s.Enroll(ctx, userID, course.DocID, course)
}
