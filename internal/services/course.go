package services

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/yungbote/learnhub-backend/internal/data/docstore"
	"github.com/yungbote/learnhub-backend/internal/domain/learning"
	apperrors "github.com/yungbote/learnhub-backend/internal/pkg/errors"
	"github.com/yungbote/learnhub-backend/internal/pkg/logger"
)

// QuizSummary is the outcome of one quiz submission. Results are keyed by question index.
type QuizSummary struct {
	Correct int                                 `json:"correct"`
	Total   int                                 `json:"total"`
	Results map[string]learning.QuizResultEntry `json:"results"`
}

type CourseService interface {
	GetCourse(ctx context.Context, courseID string) (*learning.Course, error)
	// ListOwnedCourses returns the courses created by ownerEmail, newest first.
	ListOwnedCourses(ctx context.Context, ownerEmail string) ([]*learning.Course, error)
	// ListCourses returns every course, newest first. A non-empty category narrows the list.
	ListCourses(ctx context.Context, category string) ([]*learning.Course, error)
	// SubmitQuiz grades answers against the course quiz and replaces the stored quiz result.
	SubmitQuiz(ctx context.Context, courseID string, answers map[int]string) (*QuizSummary, error)
	// CopyCourse saves a copy of a course under a new id owned by ownerEmail.
	CopyCourse(ctx context.Context, courseID, ownerEmail string) (string, error)
}

type courseService struct {
	log   *logger.Logger
	store docstore.Store
	now   func() time.Time
	newID func() (string, error)
}

func NewCourseService(baseLog *logger.Logger, store docstore.Store) CourseService {
	return &courseService{
		log:   baseLog.With("service", "CourseService"),
		store: store,
		now:   time.Now,
		newID: newCourseID,
	}
}

func (s *courseService) GetCourse(ctx context.Context, courseID string) (*learning.Course, error) {
	if strings.TrimSpace(courseID) == "" {
		return nil, fmt.Errorf("course id required: %w", apperrors.ErrInvalidArgument)
	}
	var c learning.Course
	if err := docstore.GetInto(ctx, s.store, learning.CoursesCollection, courseID, &c); err != nil {
		return nil, err
	}
	if c.DocID == "" {
		c.DocID = courseID
	}
	return &c, nil
}

func (s *courseService) ListOwnedCourses(ctx context.Context, ownerEmail string) ([]*learning.Course, error) {
	if strings.TrimSpace(ownerEmail) == "" {
		return []*learning.Course{}, nil
	}
	return s.list(ctx, []docstore.Filter{docstore.Where("createdBy", ownerEmail)})
}

func (s *courseService) ListCourses(ctx context.Context, category string) ([]*learning.Course, error) {
	var filters []docstore.Filter
	if category = strings.TrimSpace(category); category != "" {
		filters = append(filters, docstore.Where("category", category))
	}
	return s.list(ctx, filters)
}

func (s *courseService) list(ctx context.Context, filters []docstore.Filter) ([]*learning.Course, error) {
	docs, err := s.store.Query(ctx, learning.CoursesCollection, filters, docstore.Desc("createdOn"))
	if err != nil {
		return nil, err
	}
	out := make([]*learning.Course, 0, len(docs))
	for _, d := range docs {
		var c learning.Course
		if err := d.Decode(&c); err != nil {
			s.log.Warn("Skipping undecodable course", "courseId", d.ID, "error", err)
			continue
		}
		if c.DocID == "" {
			c.DocID = d.ID
		}
		out = append(out, &c)
	}
	return out, nil
}

func (s *courseService) SubmitQuiz(ctx context.Context, courseID string, answers map[int]string) (*QuizSummary, error) {
	if len(answers) == 0 {
		return nil, fmt.Errorf("no answers submitted: %w", apperrors.ErrInvalidArgument)
	}
	course, err := s.GetCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	indexes := make([]int, 0, len(answers))
	for idx := range answers {
		if idx < 0 || idx >= len(course.Quiz) {
			return nil, fmt.Errorf("question %d out of range [0,%d): %w", idx, len(course.Quiz), apperrors.ErrInvalidArgument)
		}
		indexes = append(indexes, idx)
	}
	sort.Ints(indexes)

	summary := &QuizSummary{Results: make(map[string]learning.QuizResultEntry, len(indexes))}
	for _, idx := range indexes {
		q := course.Quiz[idx]
		choice := answers[idx]
		entry := learning.QuizResultEntry{
			UserChoice: choice,
			IsCorrect:  choice == q.CorrectAns,
			Question:   q.Question,
			CorrectAns: q.CorrectAns,
		}
		if entry.IsCorrect {
			summary.Correct++
		}
		summary.Results[strconv.Itoa(idx)] = entry
	}
	summary.Total = len(indexes)

	if err := s.store.Update(ctx, learning.CoursesCollection, courseID, map[string]any{
		"quizResult": summary.Results,
	}); err != nil {
		s.log.Error("Saving quiz result failed", "courseId", courseID, "error", err)
		return nil, err
	}
	return summary, nil
}

func (s *courseService) CopyCourse(ctx context.Context, courseID, ownerEmail string) (string, error) {
	if strings.TrimSpace(ownerEmail) == "" {
		return "", fmt.Errorf("owner required: %w", apperrors.ErrInvalidArgument)
	}
	course, err := s.GetCourse(ctx, courseID)
	if err != nil {
		return "", err
	}
	id, err := s.newID()
	if err != nil {
		return "", fmt.Errorf("course id: %w", err)
	}
	course.DocID = id
	course.CreatedBy = ownerEmail
	course.CreatedOn = s.now().UTC()
	course.Enrolled = true
	course.QuizResult = nil
	if err := docstore.SetValue(ctx, s.store, learning.CoursesCollection, id, course); err != nil {
		return "", err
	}
	s.log.Info("Course copied", "from", courseID, "to", id, "owner", ownerEmail)
	return id, nil
}
