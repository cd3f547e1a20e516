package post_http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"feedstack-post-service/internal/custom_errors"
	ports "feedstack-post-service/internal/domain/ports/output"
	"feedstack-post-service/internal/infrastructure/inbound/http/middleware"
	"feedstack-post-service/internal/infrastructure/inbound/http/response"

	"github.com/gin-gonic/gin"
)

type ReadMarker interface {
	MarkRead(ctx context.Context, userID int64, postID int64) error
	MarkUnread(ctx context.Context, userID int64, postID int64) error
}

type ReadStateHandler struct {
	postService ReadMarker
	log         ports.Logger
}

func NewReadStateHandler(postService ReadMarker, log ports.Logger) *ReadStateHandler {
	return &ReadStateHandler{postService: postService, log: log}
}

func (h *ReadStateHandler) MarkRead(c *gin.Context) {
	userID, postID, ok := h.target(c)
	if !ok {
		return
	}

	if err := h.postService.MarkRead(c.Request.Context(), userID, postID); err != nil {
		switch {
		case errors.Is(err, custom_errors.ErrPostNotFound):
			response.Error(c, http.StatusNotFound, "post not found")
		case errors.Is(err, custom_errors.ErrUserNotFound):
			response.Error(c, http.StatusNotFound, "user not found")
		default:
			h.log.Error("Failed to mark post read", slog.Int64("post_id", postID), slog.String("error", err.Error()))
			response.Error(c, http.StatusInternalServerError, "server error")
		}
		return
	}

	response.Message(c, http.StatusOK, "post marked as read")
}

func (h *ReadStateHandler) MarkUnread(c *gin.Context) {
	userID, postID, ok := h.target(c)
	if !ok {
		return
	}

	if err := h.postService.MarkUnread(c.Request.Context(), userID, postID); err != nil {
		h.log.Error("Failed to mark post unread", slog.Int64("post_id", postID), slog.String("error", err.Error()))
		response.Error(c, http.StatusInternalServerError, "server error")
		return
	}

	response.Message(c, http.StatusOK, "post marked as unread")
}

func (h *ReadStateHandler) target(c *gin.Context) (int64, int64, bool) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "access denied: no token provided")
		return 0, 0, false
	}
	postID, ok := parseID(c)
	if !ok {
		response.Error(c, http.StatusBadRequest, "invalid post id")
		return 0, 0, false
	}
	return userID, postID, true
}
