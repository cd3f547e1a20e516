package post_http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"feedstack-post-service/internal/custom_errors"
	model "feedstack-post-service/internal/domain/models"
	ports "feedstack-post-service/internal/domain/ports/output"
	"feedstack-post-service/internal/infrastructure/inbound/http/middleware"
	"feedstack-post-service/internal/infrastructure/inbound/http/response"
	"feedstack-post-service/internal/validation"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type PostLister interface {
	ListPosts(ctx context.Context, viewerID int64, filters *model.PostFilters) ([]*model.FeedItem, error)
}

type ListPostsHandler struct {
	postService PostLister
	validate    *validator.Validate
	log         ports.Logger
	baseURL     string
}

func NewListPostsHandler(postService PostLister, validate *validator.Validate, log ports.Logger, baseURL string) *ListPostsHandler {
	return &ListPostsHandler{postService: postService, validate: validate, log: log, baseURL: baseURL}
}

type ListPostsRequest struct {
	AuthorID *int64 `form:"author_id" json:"author_id" validate:"omitempty,gt=0"`
	Limit    *int   `form:"limit" json:"limit" validate:"omitempty,gt=0,lte=100"`
	Offset   *int   `form:"offset" json:"offset" validate:"omitempty,gte=0"`
}

func (h *ListPostsHandler) Handle(c *gin.Context) {
	viewerID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "access denied: no token provided")
		return
	}

	var req ListPostsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.log.Debug("Failed to bind list query", slog.String("error", err.Error()))
		response.Error(c, http.StatusBadRequest, "invalid query parameters")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.log.Debug("ListPosts validation failed", slog.String("error", err.Error()))
		response.Error(c, http.StatusBadRequest, validation.Describe(err))
		return
	}

	items, err := h.postService.ListPosts(c.Request.Context(), viewerID, &model.PostFilters{
		AuthorID: req.AuthorID,
		Limit:    req.Limit,
		Offset:   req.Offset,
	})
	if err != nil {
		switch {
		case errors.Is(err, custom_errors.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, "invalid query parameters")
		default:
			h.log.Error("Failed to list posts", slog.Int64("user_id", viewerID), slog.String("error", err.Error()))
			response.Error(c, http.StatusInternalServerError, "error fetching posts")
		}
		return
	}

	result := make([]FeedItemResponse, 0, len(items))
	for _, item := range items {
		result = append(result, FeedItemResponse{
			PostResponse: newPostResponse(item.Post, item.AuthorName, h.baseURL),
			IsRead:       item.IsRead,
		})
	}
	c.JSON(http.StatusOK, result)
}
