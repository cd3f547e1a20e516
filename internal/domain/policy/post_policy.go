// Package policy holds the authorization rules for posts.
package policy

import (
	"feedstack-post-service/internal/custom_errors"
	model "feedstack-post-service/internal/domain/models"
)

// CanDeletePost allows the delete only for the creator of the post. No other
// relation grants delete rights. Callers check existence first so that a
// missing post is reported as not found rather than forbidden.
func CanDeletePost(post *model.Post, requesterID int64) error {
	if post == nil || !post.HasAuthor() || requesterID <= 0 {
		return custom_errors.ErrForbidden
	}
	if post.AuthorID != requesterID {
		return custom_errors.ErrForbidden
	}
	return nil
}
