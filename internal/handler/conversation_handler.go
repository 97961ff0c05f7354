package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shinyyama/localaid-backend/internal/model"
	"github.com/shinyyama/localaid-backend/internal/service"
)

type ConversationHandler struct {
	svc      service.ConversationService
	presence service.PresenceService
}

func NewConversationHandler(svc service.ConversationService, presence service.PresenceService) *ConversationHandler {
	return &ConversationHandler{svc: svc, presence: presence}
}

type ConversationResponse struct {
	ConversationID  uint64                  `json:"conversationId"`
	Members         []string                `json:"members"`
	Counterpart     *PublicUserResponse     `json:"counterpart,omitempty"`
	LatestMessage   *service.MessagePayload `json:"latestMessage,omitempty"`
	LatestMessageAt *string                 `json:"latestMessageAt"`
	CreatedAt       string                  `json:"createdAt"`
}

type CreateConversationRequest struct {
	UserID string `json:"userId" validate:"required"`
}

type MessageRequest struct {
	Text     string  `json:"text" validate:"max=4000"`
	ImageURL *string `json:"imageUrl" validate:"omitempty,url"`
}

type MessageListResponse struct {
	Messages []service.MessagePayload `json:"messages"`
	// NextBefore is the cursor for the previous page, absent on the last page.
	NextBefore *uint64 `json:"nextBefore,omitempty"`
}

func (h *ConversationHandler) Create(c echo.Context) error {
	uid := currentUID(c)
	if uid == "" {
		return unauthorized(c)
	}
	var req CreateConversationRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	cv, err := h.svc.FindOrCreate(c.Request().Context(), uid, req.UserID)
	if err != nil {
		return writeError(c, err, "failed to open conversation")
	}
	return c.JSON(http.StatusOK, toConversationResponse(cv, nil, nil))
}

func (h *ConversationHandler) List(c echo.Context) error {
	uid := currentUID(c)
	if uid == "" {
		return unauthorized(c)
	}
	list, err := h.svc.ListForUser(c.Request().Context(), uid)
	if err != nil {
		return writeError(c, err, "failed to fetch conversations")
	}
	resp := make([]ConversationResponse, 0, len(list))
	for i := range list {
		resp = append(resp, toConversationResponse(&list[i].Conversation, list[i].Counterpart, list[i].LatestMessage))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *ConversationHandler) Get(c echo.Context) error {
	uid := currentUID(c)
	if uid == "" {
		return unauthorized(c)
	}
	convID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid conversation id"))
	}
	cv, err := h.svc.Get(c.Request().Context(), convID, uid)
	if err != nil {
		return writeError(c, err, "failed to fetch conversation")
	}
	return c.JSON(http.StatusOK, toConversationResponse(cv, nil, nil))
}

func (h *ConversationHandler) ListMessages(c echo.Context) error {
	uid := currentUID(c)
	if uid == "" {
		return unauthorized(c)
	}
	convID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid conversation id"))
	}
	var before uint64
	if v := c.QueryParam("before"); v != "" {
		if before, err = strconv.ParseUint(v, 10, 64); err != nil {
			return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid before cursor"))
		}
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	msgs, err := h.svc.ListMessages(c.Request().Context(), convID, uid, before, limit)
	if err != nil {
		return writeError(c, err, "failed to fetch messages")
	}
	resp := MessageListResponse{Messages: make([]service.MessagePayload, 0, len(msgs))}
	for i := range msgs {
		resp.Messages = append(resp.Messages, service.ToMessagePayload(&msgs[i]))
	}
	if len(msgs) > 0 && len(msgs) == service.MessagePageSize(limit) {
		next := msgs[0].ID
		resp.NextBefore = &next
	}
	return c.JSON(http.StatusOK, resp)
}

// CreateMessage is the REST path into the same append-and-broadcast flow the
// socket uses, so connected members see messages posted from either side.
func (h *ConversationHandler) CreateMessage(c echo.Context) error {
	uid := currentUID(c)
	if uid == "" {
		return unauthorized(c)
	}
	convID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid conversation id"))
	}
	var req MessageRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	msg, err := h.presence.RelayMessage(c.Request().Context(), nil, uid, convID, service.MessageInput{Text: req.Text, ImageURL: req.ImageURL})
	if err != nil {
		return writeError(c, err, "failed to post message")
	}
	return c.JSON(http.StatusCreated, service.ToMessagePayload(msg))
}

func toConversationResponse(cv *model.Conversation, counterpart *model.User, latest *model.Message) ConversationResponse {
	resp := ConversationResponse{
		ConversationID: cv.ID,
		Members:        []string{cv.MemberA, cv.MemberB},
		CreatedAt:      cv.CreatedAt.Format(time.RFC3339),
	}
	if cv.LatestMessageAt != nil {
		at := cv.LatestMessageAt.Format(time.RFC3339)
		resp.LatestMessageAt = &at
	}
	if counterpart != nil {
		u := toPublicUser(counterpart)
		resp.Counterpart = &u
	}
	if latest != nil {
		m := service.ToMessagePayload(latest)
		resp.LatestMessage = &m
	}
	return resp
}
