package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/learnhub-backend/internal/http/response"
	"github.com/yungbote/learnhub-backend/internal/pkg/logger"
	"github.com/yungbote/learnhub-backend/internal/platform/apierr"
	"github.com/yungbote/learnhub-backend/internal/services"
)

type CourseHandler struct {
	log           *logger.Logger
	courseService services.CourseService
}

func NewCourseHandler(log *logger.Logger, courseService services.CourseService) *CourseHandler {
	return &CourseHandler{
		log:           log.With("handler", "CourseHandler"),
		courseService: courseService,
	}
}

// GET /api/courses?category=
func (h *CourseHandler) ListCourses(c *gin.Context) {
	if caller(c) == nil {
		return
	}
	courses, err := h.courseService.ListCourses(c.Request.Context(), c.Query("category"))
	if err != nil {
		h.log.Error("ListCourses failed", "error", err)
		respondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"courses": courses})
}

// GET /api/courses/mine
func (h *CourseHandler) ListMyCourses(c *gin.Context) {
	rd := caller(c)
	if rd == nil {
		return
	}
	courses, err := h.courseService.ListOwnedCourses(c.Request.Context(), rd.Email)
	if err != nil {
		h.log.Error("ListOwnedCourses failed", "user_id", rd.UserID, "error", err)
		respondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"courses": courses})
}

// GET /api/courses/:id
func (h *CourseHandler) GetCourse(c *gin.Context) {
	if caller(c) == nil {
		return
	}
	course, err := h.courseService.GetCourse(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"course": course})
}

type quizRequest struct {
	// Keys are question indexes.
	Answers map[string]string `json:"answers"`
}

// POST /api/courses/:id/quiz
func (h *CourseHandler) SubmitQuiz(c *gin.Context) {
	rd := caller(c)
	if rd == nil {
		return
	}
	var req quizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, apierr.CodeInvalidRequest, err)
		return
	}
	answers := make(map[int]string, len(req.Answers))
	for k, v := range req.Answers {
		idx, err := strconv.Atoi(k)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, apierr.CodeInvalidRequest, err)
			return
		}
		answers[idx] = v
	}
	summary, err := h.courseService.SubmitQuiz(c.Request.Context(), c.Param("id"), answers)
	if err != nil {
		h.log.Warn("SubmitQuiz failed", "user_id", rd.UserID, "course_id", c.Param("id"), "error", err)
		respondErr(c, err)
		return
	}
	response.RespondOK(c, summary)
}

// POST /api/courses/:id/copy
func (h *CourseHandler) CopyCourse(c *gin.Context) {
	rd := caller(c)
	if rd == nil {
		return
	}
	id, err := h.courseService.CopyCourse(c.Request.Context(), c.Param("id"), rd.Email)
	if err != nil {
		h.log.Warn("CopyCourse failed", "user_id", rd.UserID, "course_id", c.Param("id"), "error", err)
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"courseId": id})
}
