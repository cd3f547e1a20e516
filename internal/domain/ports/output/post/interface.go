package post_repository

import (
	"context"

	model "feedstack-post-service/internal/domain/models"
)

//go:generate mockery --name Repository --dir . --output ../../../../../mocks/post --outpkg mocks --filename PostRepository.go
type Repository interface {
	Create(ctx context.Context, post *model.Post) (*model.Post, error)
	GetByID(ctx context.Context, id int64) (*model.Post, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filters model.PostFilters) ([]*model.Post, error)
}
