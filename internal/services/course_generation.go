package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/yungbote/learnhub-backend/internal/data/docstore"
	"github.com/yungbote/learnhub-backend/internal/domain/learning"
	"github.com/yungbote/learnhub-backend/internal/modules/learning/prompts"
	"github.com/yungbote/learnhub-backend/internal/pkg/aijson"
	"github.com/yungbote/learnhub-backend/internal/pkg/logger"
	"github.com/yungbote/learnhub-backend/internal/platform/openai"
)

var tracer = otel.Tracer("learnhub/services")

type CourseGenerationService interface {
	// GenerateTopics asks the model for course titles matching userPrompt.
	GenerateTopics(ctx context.Context, userPrompt string) ([]string, error)
	// GenerateCourse asks the model for one course per topic and stores each returned course
	// under a fresh id. Stores are independent; see GenerateCourseResult.
	GenerateCourse(ctx context.Context, selectedTopics []string, ownerID string) (*GenerateCourseResult, error)
}

// CourseResult is the outcome for one element of the model's courses array.
type CourseResult struct {
	Index    int    `json:"index"`
	CourseID string `json:"courseId,omitempty"`
	Title    string `json:"courseTitle,omitempty"`
	Error    string `json:"error,omitempty"`

	Err error `json:"-"`
}

type GenerateCourseResult struct {
	// CourseIDs lists the stored courses in the order the model returned them.
	CourseIDs []string       `json:"courseIds"`
	Results   []CourseResult `json:"results"`
}

type courseGenerationService struct {
	log     *logger.Logger
	store   docstore.Store
	ai      openai.Client
	prompts *prompts.Set
	timeout time.Duration
	now     func() time.Time
	newID   func() (string, error)
}

func NewCourseGenerationService(
	baseLog *logger.Logger,
	store docstore.Store,
	ai openai.Client,
	promptSet *prompts.Set,
	timeout time.Duration,
) CourseGenerationService {
	serviceLog := baseLog.With("service", "CourseGenerationService")
	if promptSet == nil {
		promptSet = prompts.Default(serviceLog)
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &courseGenerationService{
		log:     serviceLog,
		store:   store,
		ai:      ai,
		prompts: promptSet,
		timeout: timeout,
		now:     time.Now,
		newID:   newCourseID,
	}
}

// newCourseID returns a time-ordered UUIDv7 string.
func newCourseID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

func (s *courseGenerationService) GenerateTopics(ctx context.Context, userPrompt string) ([]string, error) {
	ctx, span := tracer.Start(ctx, "CourseGeneration.GenerateTopics")
	defer span.End()

	if strings.TrimSpace(userPrompt) == "" {
		return nil, &GenerationError{Kind: KindEmptyInput}
	}
	p, err := s.prompts.TopicsPrompt(userPrompt)
	if err != nil {
		return nil, fmt.Errorf("build topics prompt: %w", err)
	}

	value, err := s.generateJSON(ctx, p)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(GenerationKind(err)))
		return nil, err
	}

	titles, err := topicTitles(value)
	if err != nil {
		s.log.Warn("Model returned unusable topics", "error", err)
		span.SetStatus(codes.Error, string(KindInvalidTopicsShape))
		return nil, &GenerationError{Kind: KindInvalidTopicsShape, Err: err}
	}
	span.SetAttributes(attribute.Int("topics.count", len(titles)))
	return titles, nil
}

func topicTitles(value any) ([]string, error) {
	obj, ok := value.(map[string]any)
	if !ok {
		return nil, errors.New("response is not an object")
	}
	raw, ok := obj["Course_titles"].([]any)
	if !ok {
		return nil, errors.New("Course_titles is missing or not a list")
	}
	titles := make([]string, 0, len(raw))
	for i, v := range raw {
		title, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("Course_titles[%d] is %T, not a string", i, v)
		}
		titles = append(titles, title)
	}
	if len(titles) == 0 {
		return nil, errors.New("Course_titles is empty")
	}
	return titles, nil
}

func (s *courseGenerationService) GenerateCourse(ctx context.Context, selectedTopics []string, ownerID string) (*GenerateCourseResult, error) {
	ctx, span := tracer.Start(ctx, "CourseGeneration.GenerateCourse")
	defer span.End()

	if len(selectedTopics) == 0 {
		return nil, &GenerationError{Kind: KindNoTopicsSelected}
	}
	if strings.TrimSpace(ownerID) == "" {
		ownerID = "unknown"
	}
	p, err := s.prompts.CoursePrompt(selectedTopics)
	if err != nil {
		return nil, fmt.Errorf("build course prompt: %w", err)
	}

	value, err := s.generateJSON(ctx, p)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(GenerationKind(err)))
		return nil, err
	}
	obj, _ := value.(map[string]any)
	rawCourses, ok := obj["courses"].([]any)
	if !ok {
		s.log.Warn("Model returned no courses array")
		span.SetStatus(codes.Error, string(KindInvalidCourseShape))
		return nil, &GenerationError{Kind: KindInvalidCourseShape, Err: errors.New("courses is missing or not a list")}
	}

	out := &GenerateCourseResult{
		CourseIDs: make([]string, 0, len(rawCourses)),
		Results:   make([]CourseResult, 0, len(rawCourses)),
	}
	// Written one at a time in model order; a failed course does not undo earlier ones.
	for i, raw := range rawCourses {
		res := s.storeCourse(ctx, i, raw, ownerID)
		if res.Err != nil {
			res.Error = res.Err.Error()
			s.log.Error("Generated course not stored", "index", i, "owner", ownerID, "error", res.Err)
		} else {
			out.CourseIDs = append(out.CourseIDs, res.CourseID)
		}
		out.Results = append(out.Results, res)
	}
	span.SetAttributes(
		attribute.Int("courses.returned", len(rawCourses)),
		attribute.Int("courses.stored", len(out.CourseIDs)),
	)
	return out, nil
}

func (s *courseGenerationService) storeCourse(ctx context.Context, index int, raw any, ownerID string) CourseResult {
	res := CourseResult{Index: index}
	if _, ok := raw.(map[string]any); !ok {
		res.Err = &GenerationError{Kind: KindInvalidCourseShape, Err: fmt.Errorf("courses[%d] is %T, not an object", index, raw)}
		return res
	}
	b, err := json.Marshal(raw)
	if err != nil {
		res.Err = &GenerationError{Kind: KindInvalidCourseShape, Err: err}
		return res
	}
	var course learning.Course
	if err := json.Unmarshal(b, &course); err != nil {
		res.Err = &GenerationError{Kind: KindInvalidCourseShape, Err: fmt.Errorf("courses[%d]: %w", index, err)}
		return res
	}

	id, err := s.newID()
	if err != nil {
		res.Err = fmt.Errorf("course id: %w", err)
		return res
	}
	course.DocID = id
	course.CreatedOn = s.now().UTC()
	course.CreatedBy = ownerID
	course.Enrolled = false
	course.QuizResult = nil
	res.Title = course.CourseTitle

	if err := docstore.SetValue(ctx, s.store, learning.CoursesCollection, id, &course); err != nil {
		res.Err = err
		return res
	}
	res.CourseID = id
	return res
}

// generateJSON runs one bounded model call and extracts the JSON value from its reply.
func (s *courseGenerationService) generateJSON(ctx context.Context, p prompts.Prompt) (any, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	text, err := s.ai.GenerateText(callCtx, p.System, p.User)
	if err != nil {
		switch {
		case errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded):
			s.log.Warn("Model call timed out", "prompt", p.Name, "timeout", s.timeout.String())
			return nil, &GenerationError{Kind: KindTimeout, Err: err}
		case errors.Is(err, context.Canceled):
			return nil, err
		}
		s.log.Error("Model call failed", "prompt", p.Name, "error", err)
		return nil, &GenerationError{Kind: KindModelUnavailable, Err: err}
	}

	value, err := aijson.Extract(text)
	if err != nil {
		kind := KindUnparsableJSON
		if aijson.KindOf(err) == aijson.KindNoJSONStart {
			kind = KindNoJSONStart
		}
		var ee *aijson.ExtractError
		if errors.As(err, &ee) {
			s.log.Warn("Model reply had no usable JSON",
				"prompt", p.Name,
				"kind", ee.Kind,
				"original", ee.Original,
				"candidate", ee.Candidate,
				"repaired", ee.Repaired,
			)
		}
		return nil, &GenerationError{Kind: kind, Err: err}
	}
	return value, nil
}
