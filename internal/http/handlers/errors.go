package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/learnhub-backend/internal/http/response"
	"github.com/yungbote/learnhub-backend/internal/pkg/ctxutil"
	apperrors "github.com/yungbote/learnhub-backend/internal/pkg/errors"
	"github.com/yungbote/learnhub-backend/internal/platform/apierr"
	"github.com/yungbote/learnhub-backend/internal/services"
)

// toAPIError maps service errors onto HTTP status and code.
func toAPIError(err error) *apierr.Error {
	var ge *services.GenerationError
	if errors.As(err, &ge) {
		msg := errors.New(ge.UserMessage())
		switch ge.Kind {
		case services.KindEmptyInput:
			return apierr.New(http.StatusBadRequest, apierr.CodeEmptyPrompt, msg)
		case services.KindNoTopicsSelected:
			return apierr.New(http.StatusBadRequest, apierr.CodeNoTopicsSelected, msg)
		case services.KindTimeout:
			return apierr.New(http.StatusGatewayTimeout, apierr.CodeGenerationTimeout, msg)
		case services.KindModelUnavailable:
			return apierr.New(http.StatusBadGateway, apierr.CodeModelUnavailable, msg)
		}
		return apierr.New(http.StatusBadGateway, apierr.CodeGenerationFailed, msg)
	}
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return apierr.New(http.StatusNotFound, apierr.CodeNotFound, errors.New("not found"))
	case errors.Is(err, apperrors.ErrInvalidArgument):
		return apierr.New(http.StatusBadRequest, apierr.CodeInvalidRequest, err)
	case errors.Is(err, apperrors.ErrUnauthorized):
		return apierr.New(http.StatusUnauthorized, apierr.CodeUnauthorized, err)
	case errors.Is(err, apperrors.ErrUnavailable):
		return apierr.New(http.StatusServiceUnavailable, apierr.CodeUnavailable, err)
	}
	return apierr.From(err)
}

func respondErr(c *gin.Context, err error) {
	response.RespondAPIError(c, toAPIError(err))
}

// caller returns the authenticated user, or writes a 401 and returns nil.
func caller(c *gin.Context) *ctxutil.RequestData {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == "" {
		response.RespondError(c, http.StatusUnauthorized, apierr.CodeUnauthorized, errors.New("not authenticated"))
		return nil
	}
	return rd
}
