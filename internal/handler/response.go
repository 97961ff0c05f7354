package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shinyyama/localaid-backend/internal/service"
)

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse is the {"error":{"code","message"}} envelope every failed request answers with.
type ErrorResponse struct {
	Error errorPayload `json:"error"`
}

func NewErrorResponse(code, message string) ErrorResponse {
	return ErrorResponse{
		Error: errorPayload{
			Code:    code,
			Message: message,
		},
	}
}

// ErrorCode maps a service error to its HTTP status and envelope code.
func ErrorCode(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, service.ErrNotAMember):
		return http.StatusForbidden, "not_a_member"
	case errors.Is(err, service.ErrNotOwner):
		return http.StatusForbidden, "not_owner"
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, service.ErrAlreadyFulfilled):
		return http.StatusConflict, "already_fulfilled"
	case errors.Is(err, service.ErrInvalidHelper):
		return http.StatusUnprocessableEntity, "invalid_helper"
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest, "bad_request"
	}
	return http.StatusInternalServerError, "internal_error"
}

// writeError answers with the mapped envelope. Internal errors get fallback as
// their message so nothing from the storage layer leaks to clients.
func writeError(c echo.Context, err error, fallback string) error {
	status, code := ErrorCode(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		c.Logger().Errorf("%s: %v", fallback, err)
		msg = fallback
	}
	return c.JSON(status, NewErrorResponse(code, msg))
}

func currentUID(c echo.Context) string {
	uid, _ := c.Get("uid").(string)
	return uid
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
}
