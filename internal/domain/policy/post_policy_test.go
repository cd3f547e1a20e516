package policy_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"feedstack-post-service/internal/custom_errors"
	model "feedstack-post-service/internal/domain/models"
	"feedstack-post-service/internal/domain/policy"
)

func TestCanDeletePost(t *testing.T) {
	tests := []struct {
		name        string
		post        *model.Post
		requesterID int64
		wantErr     error
	}{
		{
			name:        "creator may delete",
			post:        &model.Post{ID: 1, AuthorID: 7},
			requesterID: 7,
		},
		{
			name:        "other user is forbidden",
			post:        &model.Post{ID: 1, AuthorID: 7},
			requesterID: 8,
			wantErr:     custom_errors.ErrForbidden,
		},
		{
			name:        "post of deleted account is forbidden for everyone",
			post:        &model.Post{ID: 1, AuthorID: 0},
			requesterID: 7,
			wantErr:     custom_errors.ErrForbidden,
		},
		{
			name:        "anonymous requester",
			post:        &model.Post{ID: 1, AuthorID: 7},
			requesterID: 0,
			wantErr:     custom_errors.ErrForbidden,
		},
		{
			name:        "nil post",
			post:        nil,
			requesterID: 7,
			wantErr:     custom_errors.ErrForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := policy.CanDeletePost(tt.post, tt.requesterID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}
