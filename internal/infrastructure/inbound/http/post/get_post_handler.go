package post_http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"feedstack-post-service/internal/custom_errors"
	model "feedstack-post-service/internal/domain/models"
	ports "feedstack-post-service/internal/domain/ports/output"
	"feedstack-post-service/internal/infrastructure/inbound/http/response"

	"github.com/gin-gonic/gin"
)

type PostGetter interface {
	GetPostByID(ctx context.Context, id int64) (*model.PostDetailed, error)
}

type GetPostHandler struct {
	postService PostGetter
	log         ports.Logger
	baseURL     string
}

func NewGetPostHandler(postService PostGetter, log ports.Logger, baseURL string) *GetPostHandler {
	return &GetPostHandler{postService: postService, log: log, baseURL: baseURL}
}

func (h *GetPostHandler) Handle(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		response.Error(c, http.StatusBadRequest, "invalid post id")
		return
	}

	post, err := h.postService.GetPostByID(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, custom_errors.ErrPostNotFound):
			response.Error(c, http.StatusNotFound, "post not found")
		default:
			h.log.Error("Failed to get post", slog.Int64("post_id", id), slog.String("error", err.Error()))
			response.Error(c, http.StatusInternalServerError, "error fetching post")
		}
		return
	}

	c.JSON(http.StatusOK, newPostResponse(post.Post, post.AuthorName, h.baseURL))
}
