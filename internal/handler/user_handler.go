package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shinyyama/localaid-backend/internal/model"
	"github.com/shinyyama/localaid-backend/internal/repository"
	"github.com/shinyyama/localaid-backend/internal/service"
	"gorm.io/gorm"
)

type UserHandler struct {
	users repository.UserRepository
	convs service.ConversationService
}

func NewUserHandler(users repository.UserRepository, convs service.ConversationService) *UserHandler {
	return &UserHandler{users: users, convs: convs}
}

type PublicUserResponse struct {
	UID         string  `json:"uid"`
	DisplayName string  `json:"displayName"`
	PhotoURL    *string `json:"photoURL"`
	KarmaPoints int64   `json:"karmaPoints"`
}

type UpdateMeRequest struct {
	DisplayName *string `json:"displayName" validate:"omitempty,min=1,max=120"`
	AvatarURL   *string `json:"avatarUrl" validate:"omitempty,url"`
}

func (h *UserHandler) Me(c echo.Context) error {
	uid := currentUID(c)
	if uid == "" {
		return unauthorized(c)
	}
	u, err := h.users.FindByUID(c.Request().Context(), uid)
	if err != nil {
		return h.userError(c, err)
	}
	return c.JSON(http.StatusOK, toPublicUser(u))
}

func (h *UserHandler) UpdateMe(c echo.Context) error {
	uid := currentUID(c)
	if uid == "" {
		return unauthorized(c)
	}
	var req UpdateMeRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	u, err := h.users.UpdateProfile(c.Request().Context(), uid, req.DisplayName, req.AvatarURL)
	if err != nil {
		return h.userError(c, err)
	}
	return c.JSON(http.StatusOK, toPublicUser(u))
}

// Contacts lists the people the caller has chatted with; the client offers
// them as candidates when marking a post fulfilled.
func (h *UserHandler) Contacts(c echo.Context) error {
	uid := currentUID(c)
	if uid == "" {
		return unauthorized(c)
	}
	partners, err := h.convs.Partners(c.Request().Context(), uid)
	if err != nil {
		return writeError(c, err, "failed to fetch contacts")
	}
	resp := make([]PublicUserResponse, 0, len(partners))
	for i := range partners {
		resp = append(resp, toPublicUser(&partners[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *UserHandler) GetPublic(c echo.Context) error {
	uid := c.Param("uid")
	if uid == "" {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid uid"))
	}
	u, err := h.users.FindByUID(c.Request().Context(), uid)
	if err != nil {
		return h.userError(c, err)
	}
	return c.JSON(http.StatusOK, toPublicUser(u))
}

func (h *UserHandler) userError(c echo.Context, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "user not found"))
	}
	return writeError(c, err, "failed to fetch user")
}

func toPublicUser(u *model.User) PublicUserResponse {
	return PublicUserResponse{
		UID:         u.UID,
		DisplayName: u.DisplayName,
		PhotoURL:    u.AvatarURL,
		KarmaPoints: u.KarmaPoints,
	}
}
