package user_repository

import (
	"context"

	model "feedstack-post-service/internal/domain/models"
)

//go:generate mockery --name Repository --dir . --output ../../../../../mocks/user --outpkg mocks --filename UserRepository.go
type Repository interface {
	Create(ctx context.Context, user *model.User) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByIDs(ctx context.Context, ids []int64) (map[int64]*model.User, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	Delete(ctx context.Context, id int64) error
}
