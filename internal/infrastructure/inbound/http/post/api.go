package post_http

import (
	post_service "feedstack-post-service/internal/domain/ports/input/post"
	ports "feedstack-post-service/internal/domain/ports/output"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type PostHTTPService struct {
	createPostHandler *CreatePostHandler
	getPostHandler    *GetPostHandler
	listPostsHandler  *ListPostsHandler
	deletePostHandler *DeletePostHandler
	readStateHandler  *ReadStateHandler
}

func NewPostHTTPService(postService post_service.Service, media MediaSaver, validate *validator.Validate, log ports.Logger, baseURL string, maxMediaSize int64) *PostHTTPService {
	return &PostHTTPService{
		createPostHandler: NewCreatePostHandler(postService, media, validate, log, baseURL, maxMediaSize),
		getPostHandler:    NewGetPostHandler(postService, log, baseURL),
		listPostsHandler:  NewListPostsHandler(postService, validate, log, baseURL),
		deletePostHandler: NewDeletePostHandler(postService, log),
		readStateHandler:  NewReadStateHandler(postService, log),
	}
}

// Register mounts the post routes. The group is expected to be authenticated.
func (s *PostHTTPService) Register(rg *gin.RouterGroup) {
	rg.POST("/create", s.createPostHandler.Handle)
	rg.GET("", s.listPostsHandler.Handle)
	rg.GET("/", s.listPostsHandler.Handle)
	rg.GET("/:id", s.getPostHandler.Handle)
	rg.DELETE("/:id", s.deletePostHandler.Handle)
	rg.POST("/:id/mark-read", s.readStateHandler.MarkRead)
	rg.POST("/:id/mark-unread", s.readStateHandler.MarkUnread)
}
