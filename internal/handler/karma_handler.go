package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/samber/lo"
	"github.com/shinyyama/localaid-backend/internal/model"
	"github.com/shinyyama/localaid-backend/internal/service"
)

type KarmaHandler struct {
	svc service.KarmaService
}

func NewKarmaHandler(svc service.KarmaService) *KarmaHandler {
	return &KarmaHandler{svc: svc}
}

type KarmaAwardResponse struct {
	PostID    uint64    `json:"postId"`
	Points    int64     `json:"points"`
	CreatedAt time.Time `json:"createdAt"`
}

type KarmaResponse struct {
	KarmaPoints int64                `json:"karmaPoints"`
	Awarded     int64                `json:"awarded"`
	Awards      []KarmaAwardResponse `json:"awards"`
}

// Get handles GET /api/me/karma.
func (h *KarmaHandler) Get(c echo.Context) error {
	uid := currentUID(c)
	if uid == "" {
		return unauthorized(c)
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	sum, err := h.svc.Summary(c.Request().Context(), uid, limit)
	if err != nil {
		return writeError(c, err, "failed to load karma")
	}
	return c.JSON(http.StatusOK, KarmaResponse{
		KarmaPoints: sum.Balance,
		Awarded:     sum.Awarded,
		Awards: lo.Map(sum.Awards, func(a model.KarmaAward, _ int) KarmaAwardResponse {
			return KarmaAwardResponse{PostID: a.PostID, Points: a.Points, CreatedAt: a.CreatedAt}
		}),
	})
}
