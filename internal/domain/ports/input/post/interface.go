package post_service

import (
	"context"

	model "feedstack-post-service/internal/domain/models"
)

//go:generate mockery --name Service --dir . --output ../../../../../mocks/post --outpkg mocks --filename PostService.go
type Service interface {
	CreatePost(ctx context.Context, post *model.CreatePostDTO) (*model.PostDetailed, error)
	GetPostByID(ctx context.Context, id int64) (*model.PostDetailed, error)
	ListPosts(ctx context.Context, viewerID int64, filters *model.PostFilters) ([]*model.FeedItem, error)
	DeletePost(ctx context.Context, userID int64, id int64) error
	MarkRead(ctx context.Context, userID int64, postID int64) error
	MarkUnread(ctx context.Context, userID int64, postID int64) error
}
