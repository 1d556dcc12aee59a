package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/learnhub-backend/internal/data/docstore"
	"github.com/yungbote/learnhub-backend/internal/data/docstore/testutil"
	"github.com/yungbote/learnhub-backend/internal/domain/learning"
	httpapi "github.com/yungbote/learnhub-backend/internal/http"
	httpH "github.com/yungbote/learnhub-backend/internal/http/handlers"
	httpMW "github.com/yungbote/learnhub-backend/internal/http/middleware"
	"github.com/yungbote/learnhub-backend/internal/modules/learning/prompts"
	"github.com/yungbote/learnhub-backend/internal/platform/authtoken"
	"github.com/yungbote/learnhub-backend/internal/services"
)

type cannedAI struct {
	reply string
	err   error
}

func (a *cannedAI) GenerateText(ctx context.Context, system, user string) (string, error) {
	return a.reply, a.err
}

type apiFixture struct {
	router *gin.Engine
	store  docstore.Store
	token  string
	ai     *cannedAI
	dbErr  error
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := testutil.Logger(t)
	store := testutil.Store(t)
	ai := &cannedAI{}

	verifier, err := authtoken.NewVerifier("test-secret")
	if err != nil {
		t.Fatalf("verifier: %v", err)
	}
	token, err := verifier.Issue("user-1", "me@example.com", time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	f := &apiFixture{store: store, token: token, ai: ai}
	dbPing := func(ctx context.Context) error { return f.dbErr }

	enrollments := services.NewEnrollmentService(log, store)
	courses := services.NewCourseService(log, store)
	f.router = httpapi.NewRouter(httpapi.RouterConfig{
		Log:               log,
		AuthMiddleware:    httpMW.NewAuthMiddleware(log, verifier),
		HealthHandler:     httpH.NewHealthHandler(log, map[string]httpH.HealthCheck{"database": dbPing}),
		GenerationHandler: httpH.NewGenerationHandler(log, services.NewCourseGenerationService(log, store, ai, prompts.Default(log), time.Second)),
		CourseHandler:     httpH.NewCourseHandler(log, courses),
		EnrollmentHandler: httpH.NewEnrollmentHandler(log, enrollments, courses),
		ProgressHandler:   httpH.NewProgressHandler(log, services.NewProgressService(log, store, enrollments, 2)),
	})
	return f
}

func (f *apiFixture) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+f.token)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	var out map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return rec, out
}

func errorCode(out map[string]any) string {
	e, _ := out["error"].(map[string]any)
	code, _ := e["code"].(string)
	return code
}

func TestHealthcheckIsPublic(t *testing.T) {
	f := newAPI(t)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthcheck", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("healthcheck=%d %q", rec.Code, rec.Body.String())
	}
}

func TestHealthcheckReportsDownDependency(t *testing.T) {
	f := newAPI(t)
	f.dbErr = errors.New("connection refused")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthcheck", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("healthcheck=%d %q", rec.Code, rec.Body.String())
	}
	var out map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	if code := errorCode(out); code != "unavailable" {
		t.Fatalf("code=%q", code)
	}
}

func TestAPIRequiresToken(t *testing.T) {
	f := newAPI(t)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/courses", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status=%d want 401", rec.Code)
	}
}

func TestGenerationErrorsMapToDistinctCodes(t *testing.T) {
	cases := []struct {
		name     string
		path     string
		body     any
		reply    string
		wantCode int
		wantErr  string
	}{
		{name: "empty_prompt", path: "/api/generation/topics", body: map[string]any{"prompt": " "}, wantCode: http.StatusBadRequest, wantErr: "empty_prompt"},
		{name: "no_topics", path: "/api/generation/courses", body: map[string]any{"topics": []string{}}, wantCode: http.StatusBadRequest, wantErr: "no_topics_selected"},
		{name: "no_json", path: "/api/generation/topics", body: map[string]any{"prompt": "go"}, reply: "sorry", wantCode: http.StatusBadGateway, wantErr: "generation_failed"},
		{name: "bad_shape", path: "/api/generation/courses", body: map[string]any{"topics": []string{"go"}}, reply: `{"x": 1}`, wantCode: http.StatusBadGateway, wantErr: "generation_failed"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newAPI(t)
			f.ai.reply = tc.reply
			rec, out := f.do(t, http.MethodPost, tc.path, tc.body)
			if rec.Code != tc.wantCode || errorCode(out) != tc.wantErr {
				t.Fatalf("status=%d code=%q want %d %q body=%s", rec.Code, errorCode(out), tc.wantCode, tc.wantErr, rec.Body.String())
			}
		})
	}
}

func TestCourseLifecycleOverHTTP(t *testing.T) {
	f := newAPI(t)
	f.ai.reply = "```json\n" + `{"courses": [{"courseTitle": "Go", "category": "Programming",
		"chapters": [{"chapterName": "One"}, {"chapterName": "Two"}],
		"quiz": [{"question": "q", "options": ["a", "b"], "correctAns": "a"}]}]}` + "\n```"

	rec, out := f.do(t, http.MethodPost, "/api/generation/courses", map[string]any{"topics": []string{"Go"}})
	if rec.Code != http.StatusOK {
		t.Fatalf("generate status=%d body=%s", rec.Code, rec.Body.String())
	}
	ids, _ := out["courseIds"].([]any)
	if len(ids) != 1 {
		t.Fatalf("courseIds=%v", out["courseIds"])
	}
	id := ids[0].(string)

	var course learning.Course
	if err := docstore.GetInto(context.Background(), f.store, learning.CoursesCollection, id, &course); err != nil {
		t.Fatalf("stored course: %v", err)
	}
	if course.CreatedBy != "me@example.com" {
		t.Fatalf("createdBy=%q", course.CreatedBy)
	}

	if rec, _ := f.do(t, http.MethodGet, "/api/courses/"+id+"/enrollment", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("enrollment before enroll status=%d", rec.Code)
	}
	if rec, _ := f.do(t, http.MethodPost, "/api/courses/"+id+"/chapters/0/open", nil); rec.Code != http.StatusOK {
		t.Fatalf("open status=%d body=%s", rec.Code, rec.Body.String())
	}
	if rec, _ := f.do(t, http.MethodPost, "/api/courses/"+id+"/chapters/5/complete", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("out of range complete status=%d", rec.Code)
	}
	for _, idx := range []string{"0", "1"} {
		if rec, _ := f.do(t, http.MethodPost, "/api/courses/"+id+"/chapters/"+idx+"/complete", nil); rec.Code != http.StatusOK {
			t.Fatalf("complete %s status=%d body=%s", idx, rec.Code, rec.Body.String())
		}
	}

	rec, out = f.do(t, http.MethodGet, "/api/progress/stats", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("stats status=%d", rec.Code)
	}
	stats, _ := out["stats"].(map[string]any)
	if stats["total"] != float64(1) || stats["completed"] != float64(1) || stats["inProgress"] != float64(0) {
		t.Fatalf("stats=%v", stats)
	}

	rec, out = f.do(t, http.MethodPost, "/api/courses/"+id+"/quiz", map[string]any{"answers": map[string]string{"0": "a"}})
	if rec.Code != http.StatusOK || out["correct"] != float64(1) || out["total"] != float64(1) {
		t.Fatalf("quiz status=%d body=%s", rec.Code, rec.Body.String())
	}

	rec, out = f.do(t, http.MethodPost, "/api/courses/"+id+"/copy", nil)
	if rec.Code != http.StatusCreated || out["courseId"] == "" {
		t.Fatalf("copy status=%d body=%s", rec.Code, rec.Body.String())
	}
	rec, out = f.do(t, http.MethodGet, "/api/courses/mine", nil)
	if list, _ := out["courses"].([]any); rec.Code != http.StatusOK || len(list) != 2 {
		t.Fatalf("mine status=%d body=%s", rec.Code, rec.Body.String())
	}

	if rec, _ := f.do(t, http.MethodGet, "/api/courses/missing", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("missing course status=%d", rec.Code)
	}
}

func TestStatsStreamSendsInitialEvent(t *testing.T) {
	f := newAPI(t)
	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/progress/stats/stream?token="+f.token, nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		defer close(done)
		f.router.ServeHTTP(rec, req)
	}()
	time.Sleep(200 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("stream did not stop after cancel")
	}

	body := rec.Body.String()
	if !strings.Contains(body, "event:stats") || !strings.Contains(body, `"total":0`) {
		t.Fatalf("stream body=%q", body)
	}
}
