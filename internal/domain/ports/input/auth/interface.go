package auth_service

import (
	"context"

	model "feedstack-post-service/internal/domain/models"
)

//go:generate mockery --name Service --dir . --output ../../../../../mocks/auth --outpkg mocks --filename AuthService.go
type Service interface {
	Signup(ctx context.Context, req *model.SignupDTO) (*model.User, error)
	Login(ctx context.Context, req *model.LoginDTO) (string, error)
	Profile(ctx context.Context, userID int64) (*model.User, error)
	DeleteAccount(ctx context.Context, userID int64) error
	ChangePassword(ctx context.Context, userID int64, req *model.ChangePasswordDTO) error
	Authenticate(ctx context.Context, token string) (int64, error)
}
