package read_repository

import (
	"context"

	model "feedstack-post-service/internal/domain/models"
)

//go:generate mockery --name Repository --dir . --output ../../../../../mocks/read --outpkg mocks --filename ReadRepository.go
type Repository interface {
	// Upsert creates the marker or refreshes its timestamp. Uniqueness of
	// (user, post) is enforced by the store, not by the caller.
	Upsert(ctx context.Context, userID, postID int64) (*model.ReadMarker, error)
	// Get returns custom_errors.ErrReadMarkerNotFound when the user has not
	// read the post.
	Get(ctx context.Context, userID, postID int64) (*model.ReadMarker, error)
	Delete(ctx context.Context, userID, postID int64) error
	DeleteByPost(ctx context.Context, postID int64) error
	ReadPostIDs(ctx context.Context, userID int64, postIDs []int64) (map[int64]bool, error)
}
