package auth_service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"feedstack-post-service/internal/custom_errors"
	model "feedstack-post-service/internal/domain/models"
	ports "feedstack-post-service/internal/domain/ports/output"
	user_repository "feedstack-post-service/internal/domain/ports/output/user"
	"feedstack-post-service/internal/validation"

	"github.com/go-playground/validator/v10"
)

type AuthService struct {
	userRepo user_repository.Repository
	hasher   ports.PasswordHasher
	tokens   ports.TokenService
	log      ports.Logger
	metrics  ports.MetricsProvider
	validate *validator.Validate
}

func NewAuthService(
	userRepo user_repository.Repository,
	hasher ports.PasswordHasher,
	tokens ports.TokenService,
	log ports.Logger,
	metrics ports.MetricsProvider,
) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		hasher:   hasher,
		tokens:   tokens,
		log:      log,
		metrics:  metrics,
		validate: validation.New(),
	}
}

func (s *AuthService) Signup(ctx context.Context, req *model.SignupDTO) (user *model.User, err error) {
	defer func() { s.metrics.IncrementAuthOperations("signup", err == nil) }()

	if req == nil {
		return nil, fmt.Errorf("%w: empty request", custom_errors.ErrUserValidation)
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.validate.Struct(req); err != nil {
		s.log.Debug("Signup validation failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %s", custom_errors.ErrUserValidation, validation.Describe(err))
	}

	_, err = s.userRepo.GetByEmail(ctx, req.Email)
	switch {
	case err == nil:
		s.log.Debug("Signup with registered email")
		return nil, custom_errors.ErrEmailTaken
	case !errors.Is(err, custom_errors.ErrUserNotFound):
		s.log.Error("Failed to look up email", slog.String("error", err.Error()))
		return nil, custom_errors.ErrDatabaseQuery
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		s.log.Error("Failed to hash password", slog.String("error", err.Error()))
		return nil, err
	}

	user, err = s.userRepo.Create(ctx, &model.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
	})
	if err != nil {
		switch {
		case errors.Is(err, custom_errors.ErrEmailTaken):
			return nil, custom_errors.ErrEmailTaken
		default:
			s.log.Error("Failed to create user", slog.String("error", err.Error()))
			return nil, custom_errors.ErrDatabaseQuery
		}
	}

	s.log.Info("User signed up", slog.Int64("user_id", user.ID))
	return user, nil
}

// Login returns a signed access token. An unknown email and a wrong password
// are reported separately.
func (s *AuthService) Login(ctx context.Context, req *model.LoginDTO) (token string, err error) {
	defer func() { s.metrics.IncrementAuthOperations("login", err == nil) }()

	if req == nil {
		return "", fmt.Errorf("%w: empty request", custom_errors.ErrUserValidation)
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.validate.Struct(req); err != nil {
		return "", fmt.Errorf("%w: %s", custom_errors.ErrUserValidation, validation.Describe(err))
	}

	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, custom_errors.ErrUserNotFound):
			s.log.Debug("Login for unknown email")
			return "", custom_errors.ErrUserNotFound
		default:
			s.log.Error("Failed to get user by email", slog.String("error", err.Error()))
			return "", custom_errors.ErrDatabaseQuery
		}
	}

	if err := s.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		if errors.Is(err, custom_errors.ErrInvalidCredentials) {
			s.log.Debug("Login with wrong password", slog.Int64("user_id", user.ID))
			return "", custom_errors.ErrInvalidCredentials
		}
		s.log.Error("Failed to compare password", slog.Int64("user_id", user.ID), slog.String("error", err.Error()))
		return "", err
	}

	token, err = s.tokens.Issue(user.ID)
	if err != nil {
		s.log.Error("Failed to issue token", slog.Int64("user_id", user.ID), slog.String("error", err.Error()))
		return "", err
	}

	s.log.Debug("User logged in", slog.Int64("user_id", user.ID))
	return token, nil
}

func (s *AuthService) Profile(ctx context.Context, userID int64) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		switch {
		case errors.Is(err, custom_errors.ErrUserNotFound):
			return nil, custom_errors.ErrUserNotFound
		default:
			s.log.Error("Failed to get profile", slog.Int64("user_id", userID), slog.String("error", err.Error()))
			return nil, custom_errors.ErrDatabaseQuery
		}
	}
	return user, nil
}

// DeleteAccount removes the user. Their posts stay and are shown under
// model.DeletedAuthorName.
func (s *AuthService) DeleteAccount(ctx context.Context, userID int64) (err error) {
	defer func() { s.metrics.IncrementAuthOperations("delete_account", err == nil) }()

	if err := s.userRepo.Delete(ctx, userID); err != nil {
		switch {
		case errors.Is(err, custom_errors.ErrUserNotFound):
			return custom_errors.ErrUserNotFound
		default:
			s.log.Error("Failed to delete account", slog.Int64("user_id", userID), slog.String("error", err.Error()))
			return custom_errors.ErrDatabaseQuery
		}
	}

	s.log.Info("Account deleted", slog.Int64("user_id", userID))
	return nil
}

func (s *AuthService) ChangePassword(ctx context.Context, userID int64, req *model.ChangePasswordDTO) (err error) {
	defer func() { s.metrics.IncrementAuthOperations("change_password", err == nil) }()

	if req == nil {
		return fmt.Errorf("%w: empty request", custom_errors.ErrUserValidation)
	}
	if err := s.validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %s", custom_errors.ErrUserValidation, validation.Describe(err))
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		switch {
		case errors.Is(err, custom_errors.ErrUserNotFound):
			return custom_errors.ErrUserNotFound
		default:
			s.log.Error("Failed to get user", slog.Int64("user_id", userID), slog.String("error", err.Error()))
			return custom_errors.ErrDatabaseQuery
		}
	}

	if err := s.hasher.Compare(user.PasswordHash, req.CurrentPassword); err != nil {
		if errors.Is(err, custom_errors.ErrInvalidCredentials) {
			s.log.Debug("Wrong current password", slog.Int64("user_id", userID))
			return custom_errors.ErrInvalidCredentials
		}
		s.log.Error("Failed to compare password", slog.Int64("user_id", userID), slog.String("error", err.Error()))
		return err
	}

	hash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		s.log.Error("Failed to hash password", slog.String("error", err.Error()))
		return err
	}

	if err := s.userRepo.UpdatePassword(ctx, userID, hash); err != nil {
		switch {
		case errors.Is(err, custom_errors.ErrUserNotFound):
			return custom_errors.ErrUserNotFound
		default:
			s.log.Error("Failed to update password", slog.Int64("user_id", userID), slog.String("error", err.Error()))
			return custom_errors.ErrDatabaseQuery
		}
	}

	s.log.Info("Password changed", slog.Int64("user_id", userID))
	return nil
}

// Authenticate resolves a bearer token to the caller's user id.
func (s *AuthService) Authenticate(ctx context.Context, token string) (int64, error) {
	userID, err := s.tokens.Verify(token)
	if err != nil {
		s.metrics.IncrementAuthOperations("authenticate", false)
		return 0, custom_errors.ErrInvalidToken
	}
	return userID, nil
}
