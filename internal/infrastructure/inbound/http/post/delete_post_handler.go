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

type PostDeleter interface {
	DeletePost(ctx context.Context, userID int64, id int64) error
}

type DeletePostHandler struct {
	postService PostDeleter
	log         ports.Logger
}

func NewDeletePostHandler(postService PostDeleter, log ports.Logger) *DeletePostHandler {
	return &DeletePostHandler{postService: postService, log: log}
}

func (h *DeletePostHandler) Handle(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "access denied: no token provided")
		return
	}
	id, ok := parseID(c)
	if !ok {
		response.Error(c, http.StatusBadRequest, "invalid post id")
		return
	}

	h.log.Debug("Received DeletePost request", slog.Int64("post_id", id), slog.Int64("user_id", userID))

	if err := h.postService.DeletePost(c.Request.Context(), userID, id); err != nil {
		switch {
		case errors.Is(err, custom_errors.ErrPostNotFound):
			response.Error(c, http.StatusNotFound, "post not found")
		case errors.Is(err, custom_errors.ErrForbidden):
			response.Error(c, http.StatusForbidden, "you do not have permission to delete this post")
		default:
			h.log.Error("Failed to delete post", slog.Int64("post_id", id), slog.String("error", err.Error()))
			response.Error(c, http.StatusInternalServerError, "server error")
		}
		return
	}

	response.Message(c, http.StatusOK, "post deleted successfully")
}
