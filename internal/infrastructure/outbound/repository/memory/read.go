package memory

import (
	"context"
	"log/slog"

	"feedstack-post-service/internal/custom_errors"
	model "feedstack-post-service/internal/domain/models"
)

type ReadRepository struct {
	store *Store
}

func (r *ReadRepository) Upsert(ctx context.Context, userID, postID int64) (*model.ReadMarker, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[postID]; !ok {
		return nil, custom_errors.ErrPostNotFound
	}
	if _, ok := s.users[userID]; !ok {
		return nil, custom_errors.ErrUserNotFound
	}

	key := readKey{userID: userID, postID: postID}
	marker := &model.ReadMarker{UserID: userID, PostID: postID, ReadAt: s.timestamp()}
	s.reads[key] = marker

	s.log.Debug("Read marker stored (memory impl)", slog.Int64("user_id", userID), slog.Int64("post_id", postID))
	result := *marker
	return &result, nil
}

func (r *ReadRepository) Get(ctx context.Context, userID, postID int64) (*model.ReadMarker, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	marker, ok := s.reads[readKey{userID: userID, postID: postID}]
	if !ok {
		return nil, custom_errors.ErrReadMarkerNotFound
	}
	result := *marker
	return &result, nil
}

func (r *ReadRepository) Delete(ctx context.Context, userID, postID int64) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.reads, readKey{userID: userID, postID: postID})
	return nil
}

func (r *ReadRepository) DeleteByPost(ctx context.Context, postID int64) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for key := range s.reads {
		if key.postID == postID {
			delete(s.reads, key)
		}
	}
	return nil
}

func (r *ReadRepository) ReadPostIDs(ctx context.Context, userID int64, postIDs []int64) (map[int64]bool, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[int64]bool, len(postIDs))
	for _, postID := range postIDs {
		if _, ok := s.reads[readKey{userID: userID, postID: postID}]; ok {
			result[postID] = true
		}
	}
	return result, nil
}
