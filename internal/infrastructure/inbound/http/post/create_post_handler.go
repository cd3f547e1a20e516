package post_http

import (
	"context"
	"errors"
	"io"
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

const mediaField = "media"

// multipartOverhead is the allowance for form fields on top of the media size.
const multipartOverhead = 1 << 20

type PostCreator interface {
	CreatePost(ctx context.Context, post *model.CreatePostDTO) (*model.PostDetailed, error)
}

type MediaSaver interface {
	Save(ctx context.Context, originalName string, r io.Reader) (string, error)
}

type CreatePostHandler struct {
	postService  PostCreator
	media        MediaSaver
	validate     *validator.Validate
	log          ports.Logger
	baseURL      string
	maxMediaSize int64
}

func NewCreatePostHandler(postService PostCreator, media MediaSaver, validate *validator.Validate, log ports.Logger, baseURL string, maxMediaSize int64) *CreatePostHandler {
	return &CreatePostHandler{
		postService:  postService,
		media:        media,
		validate:     validate,
		log:          log,
		baseURL:      baseURL,
		maxMediaSize: maxMediaSize,
	}
}

type CreatePostRequest struct {
	Title   string `form:"title" json:"title" validate:"required,max=255"`
	Content string `form:"content" json:"content" validate:"required,max=10000"`
}

func (h *CreatePostHandler) Handle(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "access denied: no token provided")
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxMediaSize+multipartOverhead)

	var req CreatePostRequest
	if err := c.ShouldBind(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, http.StatusRequestEntityTooLarge, "media file too large")
			return
		}
		h.log.Debug("Failed to bind create post request", slog.String("error", err.Error()))
		response.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		h.log.Debug("CreatePost validation failed", slog.Int64("user_id", userID), slog.String("error", err.Error()))
		response.Error(c, http.StatusBadRequest, validation.Describe(err))
		return
	}

	mediaPath, ok := h.saveMedia(c)
	if !ok {
		return
	}

	created, err := h.postService.CreatePost(c.Request.Context(), &model.CreatePostDTO{
		AuthorID:  userID,
		Title:     req.Title,
		Content:   req.Content,
		MediaPath: mediaPath,
	})
	if err != nil {
		switch {
		case errors.Is(err, custom_errors.ErrPostValidation):
			response.Error(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, custom_errors.ErrUserNotFound):
			response.Error(c, http.StatusBadRequest, "user not found")
		default:
			h.log.Error("Failed to create post", slog.Int64("user_id", userID), slog.String("error", err.Error()))
			response.Error(c, http.StatusInternalServerError, "server error")
		}
		return
	}

	c.JSON(http.StatusCreated, newPostResponse(created.Post, created.AuthorName, h.baseURL))
}

// saveMedia stores the optional media part. It writes the error response
// itself and reports false when the request must stop.
func (h *CreatePostHandler) saveMedia(c *gin.Context) (*string, bool) {
	file, header, err := c.Request.FormFile(mediaField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, true
		}
		h.log.Debug("Failed to read media part", slog.String("error", err.Error()))
		response.Error(c, http.StatusBadRequest, "invalid media file")
		return nil, false
	}
	defer file.Close()

	if header.Size > h.maxMediaSize {
		response.Error(c, http.StatusRequestEntityTooLarge, "media file too large")
		return nil, false
	}

	path, err := h.media.Save(c.Request.Context(), header.Filename, file)
	if err != nil {
		switch {
		case errors.Is(err, custom_errors.ErrUnsupportedMedia):
			response.Error(c, http.StatusUnsupportedMediaType, "unsupported file type: only images, videos and audio files are allowed")
		case errors.Is(err, custom_errors.ErrMediaTooLarge):
			response.Error(c, http.StatusRequestEntityTooLarge, "media file too large")
		default:
			h.log.Error("Failed to save media", slog.String("error", err.Error()))
			response.Error(c, http.StatusInternalServerError, "server error")
		}
		return nil, false
	}
	return &path, true
}
