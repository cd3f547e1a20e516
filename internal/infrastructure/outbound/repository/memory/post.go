package memory

import (
	"context"
	"log/slog"
	"sort"

	"feedstack-post-service/internal/custom_errors"
	model "feedstack-post-service/internal/domain/models"
)

type PostRepository struct {
	store *Store
}

func (p *PostRepository) Create(ctx context.Context, post *model.Post) (*model.Post, error) {
	s := p.store
	s.log.Debug("Creating new post (memory impl)", slog.Int64("author_id", post.AuthorID), slog.String("title", post.Title))

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[post.AuthorID]; !ok {
		s.log.Debug("Author does not exist (memory impl)", slog.Int64("author_id", post.AuthorID))
		return nil, custom_errors.ErrUserNotFound
	}

	newPost := &model.Post{
		ID:        s.nextPostID,
		AuthorID:  post.AuthorID,
		Title:     post.Title,
		Content:   post.Content,
		MediaPath: copyString(post.MediaPath),
		CreatedAt: s.timestamp(),
	}
	s.postSeq[newPost.ID] = s.nextPostID
	s.nextPostID++
	s.posts[newPost.ID] = newPost

	s.log.Debug("Successfully created post (memory impl)", slog.Int64("id", newPost.ID))
	return copyPost(newPost), nil
}

func (p *PostRepository) GetByID(ctx context.Context, id int64) (*model.Post, error) {
	s := p.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	post, exists := s.posts[id]
	if !exists {
		s.log.Debug("Post not found by id", slog.Int64("id", id))
		return nil, custom_errors.ErrPostNotFound
	}
	return copyPost(post), nil
}

// Delete removes the post together with its read markers.
func (p *PostRepository) Delete(ctx context.Context, id int64) error {
	s := p.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.posts[id]; !exists {
		s.log.Debug("Post not found during deletion", slog.Int64("id", id))
		return custom_errors.ErrPostNotFound
	}

	delete(s.posts, id)
	delete(s.postSeq, id)
	for key := range s.reads {
		if key.postID == id {
			delete(s.reads, key)
		}
	}

	s.log.Debug("Successfully deleted post (memory impl)", slog.Int64("id", id))
	return nil
}

func (p *PostRepository) List(ctx context.Context, filters model.PostFilters) ([]*model.Post, error) {
	s := p.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*model.Post, 0, len(s.posts))
	for _, post := range s.posts {
		if filters.AuthorID != nil && post.AuthorID != *filters.AuthorID {
			continue
		}
		result = append(result, copyPost(post))
	}

	sort.Slice(result, func(i, j int) bool {
		ti, tj := result[i].CreatedAt.Time, result[j].CreatedAt.Time
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return s.postSeq[result[i].ID] > s.postSeq[result[j].ID]
	})

	if filters.Offset != nil {
		offset := *filters.Offset
		if offset >= len(result) {
			return []*model.Post{}, nil
		}
		if offset > 0 {
			result = result[offset:]
		}
	}
	if filters.Limit != nil && *filters.Limit >= 0 && *filters.Limit < len(result) {
		result = result[:*filters.Limit]
	}

	s.log.Debug("Retrieved posts in List (memory impl)", slog.Int("count", len(result)))
	return result, nil
}

func copyPost(post *model.Post) *model.Post {
	c := *post
	c.MediaPath = copyString(post.MediaPath)
	return &c
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}
