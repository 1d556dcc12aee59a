package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/learnhub-backend/internal/http/response"
	"github.com/yungbote/learnhub-backend/internal/pkg/logger"
	"github.com/yungbote/learnhub-backend/internal/platform/apierr"
	"github.com/yungbote/learnhub-backend/internal/services"
)

type GenerationHandler struct {
	log        *logger.Logger
	generation services.CourseGenerationService
}

func NewGenerationHandler(log *logger.Logger, generation services.CourseGenerationService) *GenerationHandler {
	return &GenerationHandler{
		log:        log.With("handler", "GenerationHandler"),
		generation: generation,
	}
}

type topicsRequest struct {
	Prompt string `json:"prompt"`
}

// POST /api/generation/topics
func (h *GenerationHandler) GenerateTopics(c *gin.Context) {
	rd := caller(c)
	if rd == nil {
		return
	}
	var req topicsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, apierr.CodeInvalidRequest, err)
		return
	}
	topics, err := h.generation.GenerateTopics(c.Request.Context(), req.Prompt)
	if err != nil {
		h.log.Warn("GenerateTopics failed", "user_id", rd.UserID, "error", err)
		respondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"topics": topics})
}

type coursesRequest struct {
	Topics []string `json:"topics"`
}

// POST /api/generation/courses
func (h *GenerationHandler) GenerateCourses(c *gin.Context) {
	rd := caller(c)
	if rd == nil {
		return
	}
	var req coursesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, apierr.CodeInvalidRequest, err)
		return
	}
	res, err := h.generation.GenerateCourse(c.Request.Context(), req.Topics, rd.Email)
	if err != nil {
		h.log.Warn("GenerateCourse failed", "user_id", rd.UserID, "error", err)
		respondErr(c, err)
		return
	}
	response.RespondOK(c, res)
}
