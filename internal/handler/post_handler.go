package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shinyyama/localaid-backend/internal/model"
	"github.com/shinyyama/localaid-backend/internal/reqctx"
	"github.com/shinyyama/localaid-backend/internal/repository"
	"github.com/shinyyama/localaid-backend/internal/service"
)

type PostHandler struct {
	svc     service.PostService
	fulfill service.FulfillmentService
}

func NewPostHandler(svc service.PostService, fulfill service.FulfillmentService) *PostHandler {
	return &PostHandler{svc: svc, fulfill: fulfill}
}

type PostResponse struct {
	ID          uint64   `json:"id"`
	OwnerUID    string   `json:"ownerUid"`
	Type        string   `json:"type"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category,omitempty"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
	ImageURL    *string  `json:"imageUrl,omitempty"`
	Status      string   `json:"status"`
	FulfilledBy *string  `json:"fulfilledBy"`
	FulfilledAt *string  `json:"fulfilledAt,omitempty"`
	CreatedAt   string   `json:"createdAt"`
	UpdatedAt   string   `json:"updatedAt"`
}

type PostListResponse struct {
	Posts []PostResponse `json:"posts"`
	Total int64          `json:"total"`
}

type CreatePostRequest struct {
	Type        string   `json:"type" validate:"required,oneof=request offer"`
	Title       string   `json:"title" validate:"required,max=120"`
	Description string   `json:"description" validate:"required"`
	Category    string   `json:"category" validate:"max=64"`
	Latitude    *float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude   *float64 `json:"longitude" validate:"omitempty,longitude"`
	ImageURL    *string  `json:"imageUrl" validate:"omitempty,url"`
}

type FulfillRequest struct {
	HelperID string `json:"helperId" validate:"required"`
}

// FulfillResponse is the updated post plus the helper's karma after the award.
type FulfillResponse struct {
	PostResponse
	NewKarma int64 `json:"newKarma"`
}

func (h *PostHandler) Create(c echo.Context) error {
	uid := currentUID(c)
	if uid == "" {
		return unauthorized(c)
	}
	var req CreatePostRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	post, err := h.svc.Create(c.Request().Context(), uid, service.PostInput{
		Type:        model.PostType(req.Type),
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		return writeError(c, err, "failed to create post")
	}
	return c.JSON(http.StatusCreated, toPostResponse(post))
}

func (h *PostHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid id"))
	}
	post, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err, "failed to fetch post")
	}
	return c.JSON(http.StatusOK, toPostResponse(post))
}

func (h *PostHandler) List(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	filter := repository.PostFilter{
		Type:   model.PostType(c.QueryParam("type")),
		Status: model.PostStatus(c.QueryParam("status")),
	}
	posts, total, err := h.svc.List(c.Request().Context(), filter, limit, offset)
	if err != nil {
		return writeError(c, err, "failed to fetch posts")
	}
	return c.JSON(http.StatusOK, toPostList(posts, total))
}

func (h *PostHandler) ListMine(c echo.Context) error {
	uid := currentUID(c)
	if uid == "" {
		return unauthorized(c)
	}
	posts, err := h.svc.ListByOwner(c.Request().Context(), uid)
	if err != nil {
		return writeError(c, err, "failed to fetch posts")
	}
	return c.JSON(http.StatusOK, toPostList(posts, int64(len(posts))))
}

func (h *PostHandler) Delete(c echo.Context) error {
	uid := currentUID(c)
	if uid == "" {
		return unauthorized(c)
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid id"))
	}
	if err := h.svc.Delete(c.Request().Context(), id, uid); err != nil {
		return writeError(c, err, "failed to delete post")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *PostHandler) Fulfill(c echo.Context) error {
	uid := currentUID(c)
	if uid == "" {
		return unauthorized(c)
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid id"))
	}
	var req FulfillRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	ctx := reqctx.WithPostID(c.Request().Context(), id)
	res, err := h.fulfill.Fulfill(ctx, uid, id, req.HelperID)
	if err != nil {
		return writeError(c, err, "failed to fulfill post")
	}
	return c.JSON(http.StatusOK, FulfillResponse{PostResponse: toPostResponse(res.Post), NewKarma: res.NewKarma})
}

func toPostList(posts []model.Post, total int64) PostListResponse {
	resp := PostListResponse{
		Posts: make([]PostResponse, 0, len(posts)),
		Total: total,
	}
	for i := range posts {
		resp.Posts = append(resp.Posts, toPostResponse(&posts[i]))
	}
	return resp
}

func toPostResponse(p *model.Post) PostResponse {
	resp := PostResponse{
		ID:          p.ID,
		OwnerUID:    p.OwnerUID,
		Type:        string(p.Type),
		Title:       p.Title,
		Description: p.Description,
		Category:    p.Category,
		Latitude:    p.Latitude,
		Longitude:   p.Longitude,
		ImageURL:    p.ImageURL,
		Status:      string(p.Status),
		FulfilledBy: p.FulfilledBy,
		CreatedAt:   p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   p.UpdatedAt.Format(time.RFC3339),
	}
	if p.FulfilledAt != nil {
		at := p.FulfilledAt.Format(time.RFC3339)
		resp.FulfilledAt = &at
	}
	return resp
}
