package handler

import (
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shinyyama/localaid-backend/internal/repository"
	"github.com/shinyyama/localaid-backend/internal/storage"
)

type UploadHandler struct {
	uploader storage.Uploader
	users    repository.UserRepository
}

func NewUploadHandler(uploader storage.Uploader, users repository.UserRepository) *UploadHandler {
	return &UploadHandler{uploader: uploader, users: users}
}

type UploadResponse struct {
	URL string `json:"url"`
}

// Profile stores a new avatar and points the caller's profile at it.
func (h *UploadHandler) Profile(c echo.Context) error {
	uid := currentUID(c)
	if uid == "" {
		return unauthorized(c)
	}
	url, err := h.store(c, "profiles", uid)
	if err != nil || url == "" {
		return err
	}
	if _, err := h.users.UpdateProfile(c.Request().Context(), uid, nil, &url); err != nil {
		return writeError(c, err, "failed to update profile")
	}
	return c.JSON(http.StatusOK, UploadResponse{URL: url})
}

func (h *UploadHandler) MessageImage(c echo.Context) error {
	uid := currentUID(c)
	if uid == "" {
		return unauthorized(c)
	}
	url, err := h.store(c, "messages", uid)
	if err != nil || url == "" {
		return err
	}
	return c.JSON(http.StatusOK, UploadResponse{URL: url})
}

// store returns an empty url when it already wrote an error response.
func (h *UploadHandler) store(c echo.Context, prefix, uid string) (string, error) {
	if h.uploader == nil {
		return "", c.JSON(http.StatusServiceUnavailable, NewErrorResponse("unavailable", "image upload is not configured"))
	}
	fh, err := c.FormFile("image")
	if err != nil {
		return "", c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "image file is required"))
	}
	if fh.Size > storage.MaxImageBytes {
		return "", c.JSON(http.StatusRequestEntityTooLarge, NewErrorResponse("too_large", storage.ErrTooLarge.Error()))
	}
	f, err := fh.Open()
	if err != nil {
		return "", c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "unreadable file"))
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, storage.MaxImageBytes+1))
	if err != nil {
		return "", c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "unreadable file"))
	}
	mime, ext, err := storage.SniffImage(data)
	if err != nil {
		if errors.Is(err, storage.ErrTooLarge) {
			return "", c.JSON(http.StatusRequestEntityTooLarge, NewErrorResponse("too_large", err.Error()))
		}
		return "", c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", err.Error()))
	}
	path := storage.ObjectPath(prefix, uid, ext)
	url, err := h.uploader.Upload(c.Request().Context(), path, mime, data)
	if err != nil {
		log.Printf("[upload] uid=%s path=%s err=%v", uid, path, err)
		return "", c.JSON(http.StatusBadGateway, NewErrorResponse("upstream_error", "failed to store image"))
	}
	log.Printf("[upload] uid=%s path=%s bytes=%d", uid, path, len(data))
	return url, nil
}
