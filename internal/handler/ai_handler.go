package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shinyyama/localaid-backend/internal/ai"
)

type PostSuggester interface {
	Suggest(ctx context.Context, draft string) (*ai.Suggestion, error)
}

type AIHandler struct {
	suggester PostSuggester
}

func NewAIHandler(suggester PostSuggester) *AIHandler {
	return &AIHandler{suggester: suggester}
}

type suggestRequest struct {
	Text string `json:"text" validate:"required,max=2000"`
}

func (h *AIHandler) Suggest(c echo.Context) error {
	if h.suggester == nil {
		return c.JSON(http.StatusServiceUnavailable, NewErrorResponse("unavailable", "post suggestions are not configured"))
	}
	var req suggestRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	s, err := h.suggester.Suggest(c.Request().Context(), strings.TrimSpace(req.Text))
	if err != nil {
		if errors.Is(err, ai.ErrParseFailed) {
			return c.JSON(http.StatusBadGateway, NewErrorResponse("upstream_error", "could not understand the suggestion"))
		}
		return c.JSON(http.StatusBadGateway, NewErrorResponse("upstream_error", "failed to call gemini"))
	}
	return c.JSON(http.StatusOK, s)
}
