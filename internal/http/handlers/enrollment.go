package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/learnhub-backend/internal/domain/learning"
	"github.com/yungbote/learnhub-backend/internal/http/response"
	"github.com/yungbote/learnhub-backend/internal/pkg/logger"
	"github.com/yungbote/learnhub-backend/internal/platform/apierr"
	"github.com/yungbote/learnhub-backend/internal/services"
)

type EnrollmentHandler struct {
	log         *logger.Logger
	enrollments services.EnrollmentService
	courses     services.CourseService
}

func NewEnrollmentHandler(log *logger.Logger, enrollments services.EnrollmentService, courses services.CourseService) *EnrollmentHandler {
	return &EnrollmentHandler{
		log:         log.With("handler", "EnrollmentHandler"),
		enrollments: enrollments,
		courses:     courses,
	}
}

var errNotEnrolled = errors.New("not enrolled in this course")

// POST /api/courses/:id/enroll
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	rd := caller(c)
	if rd == nil {
		return
	}
	course, err := h.courses.GetCourse(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	if !h.enrollments.Enroll(c.Request.Context(), rd.UserID, course.DocID, course) {
		response.RespondError(c, http.StatusInternalServerError, apierr.CodeEnrollmentFailed, errors.New("enrollment was not saved"))
		return
	}
	response.RespondOK(c, gin.H{
		"enrollmentId": learning.EnrollmentID(rd.UserID, course.DocID),
		"enrollment":   h.enrollments.ProgressOf(c.Request.Context(), rd.UserID, course.DocID),
	})
}

// GET /api/courses/:id/enrollment
func (h *EnrollmentHandler) GetEnrollment(c *gin.Context) {
	rd := caller(c)
	if rd == nil {
		return
	}
	snap := h.enrollments.ProgressOf(c.Request.Context(), rd.UserID, c.Param("id"))
	if snap == nil {
		response.RespondError(c, http.StatusNotFound, apierr.CodeNotFound, errNotEnrolled)
		return
	}
	response.RespondOK(c, gin.H{"enrollment": snap})
}

// POST /api/courses/:id/chapters/:index/open
func (h *EnrollmentHandler) OpenChapter(c *gin.Context) {
	rd := caller(c)
	if rd == nil {
		return
	}
	course, idx, ok := h.chapterTarget(c)
	if !ok {
		return
	}
	if !h.enrollments.OpenChapter(c.Request.Context(), rd.UserID, course) {
		response.RespondError(c, http.StatusInternalServerError, apierr.CodeEnrollmentFailed, errors.New("enrollment was not saved"))
		return
	}
	response.RespondOK(c, gin.H{"chapter": course.Chapters[idx], "index": idx})
}

// POST /api/courses/:id/chapters/:index/complete
func (h *EnrollmentHandler) CompleteChapter(c *gin.Context) {
	rd := caller(c)
	if rd == nil {
		return
	}
	course, idx, ok := h.chapterTarget(c)
	if !ok {
		return
	}
	if !h.enrollments.CompleteChapter(c.Request.Context(), rd.UserID, course.DocID, idx, course.ChapterCount()) {
		if !h.enrollments.IsEnrolled(c.Request.Context(), rd.UserID, course.DocID) {
			response.RespondError(c, http.StatusNotFound, apierr.CodeNotFound, errNotEnrolled)
			return
		}
		response.RespondError(c, http.StatusInternalServerError, apierr.CodeEnrollmentFailed, errors.New("chapter completion was not saved"))
		return
	}
	response.RespondOK(c, gin.H{"enrollment": h.enrollments.ProgressOf(c.Request.Context(), rd.UserID, course.DocID)})
}

// chapterTarget loads the course and validates the chapter index, writing the error response
// itself when either fails.
func (h *EnrollmentHandler) chapterTarget(c *gin.Context) (*learning.Course, int, bool) {
	idx, err := strconv.Atoi(c.Param("index"))
	if err != nil || idx < 0 {
		response.RespondError(c, http.StatusBadRequest, apierr.CodeInvalidRequest, fmt.Errorf("invalid chapter index %q", c.Param("index")))
		return nil, 0, false
	}
	course, err := h.courses.GetCourse(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return nil, 0, false
	}
	if idx >= course.ChapterCount() {
		response.RespondError(c, http.StatusBadRequest, apierr.CodeInvalidRequest,
			fmt.Errorf("chapter %d out of range, course has %d", idx, course.ChapterCount()))
		return nil, 0, false
	}
	return course, idx, true
}
