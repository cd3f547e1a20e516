package memory

import (
	"context"
	"log/slog"
	"strings"

	"feedstack-post-service/internal/custom_errors"
	model "feedstack-post-service/internal/domain/models"
)

type UserRepository struct {
	store *Store
}

func (u *UserRepository) Create(ctx context.Context, user *model.User) (*model.User, error) {
	s := u.store
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(user.Email)
	for _, existing := range s.users {
		if existing.Email == email {
			return nil, custom_errors.ErrEmailTaken
		}
	}

	created := &model.User{
		ID:           s.nextUserID,
		Username:     user.Username,
		Email:        email,
		PasswordHash: user.PasswordHash,
		CreatedAt:    s.timestamp(),
	}
	s.nextUserID++
	s.users[created.ID] = created

	s.log.Debug("User created (memory impl)", slog.Int64("id", created.ID))
	result := *created
	return &result, nil
}

func (u *UserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	s := u.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, custom_errors.ErrUserNotFound
	}
	result := *user
	return &result, nil
}

func (u *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	s := u.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	email = strings.ToLower(email)
	for _, user := range s.users {
		if user.Email == email {
			result := *user
			return &result, nil
		}
	}
	return nil, custom_errors.ErrUserNotFound
}

func (u *UserRepository) GetByIDs(ctx context.Context, ids []int64) (map[int64]*model.User, error) {
	s := u.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[int64]*model.User, len(ids))
	for _, id := range ids {
		if user, ok := s.users[id]; ok {
			c := *user
			result[id] = &c
		}
	}
	return result, nil
}

func (u *UserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	s := u.store
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return custom_errors.ErrUserNotFound
	}
	user.PasswordHash = passwordHash
	return nil
}

// Delete drops the user and their read markers and detaches their posts.
func (u *UserRepository) Delete(ctx context.Context, id int64) error {
	s := u.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return custom_errors.ErrUserNotFound
	}

	delete(s.users, id)
	for key := range s.reads {
		if key.userID == id {
			delete(s.reads, key)
		}
	}
	for _, post := range s.posts {
		if post.AuthorID == id {
			post.AuthorID = 0
		}
	}

	s.log.Debug("User deleted (memory impl)", slog.Int64("id", id))
	return nil
}
