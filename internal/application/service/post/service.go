package post_service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"feedstack-post-service/internal/custom_errors"
	model "feedstack-post-service/internal/domain/models"
	"feedstack-post-service/internal/domain/policy"
	ports "feedstack-post-service/internal/domain/ports/output"
	media_storage "feedstack-post-service/internal/domain/ports/output/media"
	post_repository "feedstack-post-service/internal/domain/ports/output/post"
	read_repository "feedstack-post-service/internal/domain/ports/output/read"
	user_repository "feedstack-post-service/internal/domain/ports/output/user"
	"feedstack-post-service/internal/validation"

	"github.com/go-playground/validator/v10"
)

const defaultCleanupTimeout = 10 * time.Second

type PostService struct {
	postRepo       post_repository.Repository
	readRepo       read_repository.Repository
	userRepo       user_repository.Repository
	media          media_storage.Storage
	uow            ports.UnitOfWork
	log            ports.Logger
	metrics        ports.MetricsProvider
	validate       *validator.Validate
	cleanupTimeout time.Duration
	cleanups       sync.WaitGroup
}

func NewPostService(
	postRepo post_repository.Repository,
	readRepo read_repository.Repository,
	userRepo user_repository.Repository,
	media media_storage.Storage,
	uow ports.UnitOfWork,
	log ports.Logger,
	metrics ports.MetricsProvider,
	cleanupTimeout time.Duration,
) *PostService {
	if cleanupTimeout <= 0 {
		cleanupTimeout = defaultCleanupTimeout
	}
	return &PostService{
		postRepo:       postRepo,
		readRepo:       readRepo,
		userRepo:       userRepo,
		media:          media,
		uow:            uow,
		log:            log,
		metrics:        metrics,
		validate:       validation.New(),
		cleanupTimeout: cleanupTimeout,
	}
}

// CreatePost stores a post. Uploaded media is removed again when the post
// could not be stored; once the row exists the file belongs to it.
func (s *PostService) CreatePost(ctx context.Context, post *model.CreatePostDTO) (result *model.PostDetailed, err error) {
	var stored bool
	defer func() {
		s.metrics.IncrementPostOperations("create", err == nil)
		if err != nil && !stored && post != nil && post.MediaPath != nil {
			s.removeMediaAsync(*post.MediaPath)
		}
	}()

	if post == nil {
		return nil, fmt.Errorf("%w: empty request", custom_errors.ErrPostValidation)
	}

	post.Title = strings.TrimSpace(post.Title)
	post.Content = strings.TrimSpace(post.Content)
	if err := s.validate.Struct(post); err != nil {
		s.log.Debug("Post validation failed", slog.Int64("author_id", post.AuthorID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %s", custom_errors.ErrPostValidation, validation.Describe(err))
	}

	created, err := s.postRepo.Create(ctx, &model.Post{
		AuthorID:  post.AuthorID,
		Title:     post.Title,
		Content:   post.Content,
		MediaPath: post.MediaPath,
	})
	if err != nil {
		switch {
		case errors.Is(err, custom_errors.ErrUserNotFound):
			s.log.Debug("Author not found", slog.Int64("author_id", post.AuthorID))
			return nil, custom_errors.ErrUserNotFound
		default:
			s.log.Error("Failed to create post", slog.Int64("author_id", post.AuthorID), slog.String("error", err.Error()))
			return nil, custom_errors.ErrDatabaseQuery
		}
	}

	stored = true

	detailed, err := s.detail(ctx, created)
	if err != nil {
		s.log.Error("Post stored but author lookup failed", slog.Int64("post_id", created.ID), slog.String("error", err.Error()))
		return nil, err
	}

	s.log.Info("Post created", slog.Int64("post_id", created.ID), slog.Int64("author_id", created.AuthorID))
	return detailed, nil
}

func (s *PostService) GetPostByID(ctx context.Context, id int64) (*model.PostDetailed, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, custom_errors.ErrPostNotFound):
			s.log.Debug("Post not found", slog.Int64("post_id", id))
			return nil, custom_errors.ErrPostNotFound
		default:
			s.log.Error("Failed to get post by id", slog.Int64("post_id", id), slog.String("error", err.Error()))
			return nil, custom_errors.ErrDatabaseQuery
		}
	}

	return s.detail(ctx, post)
}

// ListPosts returns every post matching filters, newest first, each annotated
// with the viewer's read state. Posts whose author is gone are listed under
// model.DeletedAuthorName.
func (s *PostService) ListPosts(ctx context.Context, viewerID int64, filters *model.PostFilters) (result []*model.FeedItem, err error) {
	defer func() { s.metrics.IncrementPostOperations("list", err == nil) }()

	if filters == nil {
		filters = &model.PostFilters{}
	}
	if (filters.Limit != nil && *filters.Limit < 0) || (filters.Offset != nil && *filters.Offset < 0) {
		return nil, fmt.Errorf("%w: limit and offset must not be negative", custom_errors.ErrInvalidInput)
	}

	posts, err := s.postRepo.List(ctx, *filters)
	if err != nil {
		s.log.Error("Failed to list posts", slog.String("error", err.Error()))
		return nil, custom_errors.ErrDatabaseQuery
	}
	if len(posts) == 0 {
		return []*model.FeedItem{}, nil
	}

	postIDs := make([]int64, 0, len(posts))
	authorIDs := make([]int64, 0, len(posts))
	seen := make(map[int64]struct{}, len(posts))
	for _, post := range posts {
		postIDs = append(postIDs, post.ID)
		if !post.HasAuthor() {
			continue
		}
		if _, ok := seen[post.AuthorID]; !ok {
			seen[post.AuthorID] = struct{}{}
			authorIDs = append(authorIDs, post.AuthorID)
		}
	}

	authors, err := s.userRepo.GetByIDs(ctx, authorIDs)
	if err != nil {
		s.log.Error("Failed to resolve post authors", slog.Int("count", len(authorIDs)), slog.String("error", err.Error()))
		return nil, custom_errors.ErrDatabaseQuery
	}

	read, err := s.readRepo.ReadPostIDs(ctx, viewerID, postIDs)
	if err != nil {
		s.log.Error("Failed to load read markers", slog.Int64("user_id", viewerID), slog.String("error", err.Error()))
		return nil, custom_errors.ErrDatabaseQuery
	}

	result = make([]*model.FeedItem, 0, len(posts))
	for _, post := range posts {
		result = append(result, &model.FeedItem{
			Post:       post,
			AuthorName: authorName(authors[post.AuthorID]),
			IsRead:     read[post.ID],
		})
	}

	s.log.Debug("Listed posts", slog.Int64("user_id", viewerID), slog.Int("count", len(result)))
	return result, nil
}

// DeletePost removes a post owned by userID together with its read markers.
// Existence is checked before ownership. The media file is removed in the
// background once the transaction has committed.
func (s *PostService) DeletePost(ctx context.Context, userID int64, id int64) (err error) {
	defer func() { s.metrics.IncrementPostOperations("delete", err == nil) }()

	tx, err := s.uow.Begin(ctx)
	if err != nil {
		s.log.Error("Failed to start transaction", slog.String("error", err.Error()))
		return custom_errors.ErrDatabaseQuery
	}

	var txCommitted bool
	defer func() {
		if !txCommitted && tx != nil {
			rollbackErr := tx.Rollback(ctx)
			if rollbackErr != nil {
				if !strings.Contains(rollbackErr.Error(), "tx is closed") && !strings.Contains(rollbackErr.Error(), "commit unexpectedly resulted in rollback") {
					s.log.Error("Failed to rollback transaction", slog.String("error", rollbackErr.Error()))
				} else {
					s.log.Debug("Transaction already closed during rollback", slog.String("error", rollbackErr.Error()))
				}
			}
		}
	}()

	postRepo := tx.PostRepository()
	readRepo := tx.ReadRepository()

	post, err := postRepo.GetByID(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, custom_errors.ErrPostNotFound):
			s.log.Debug("Post not found for deletion", slog.Int64("post_id", id))
			return custom_errors.ErrPostNotFound
		default:
			s.log.Error("Failed to get post for deletion", slog.Int64("post_id", id), slog.String("error", err.Error()))
			return custom_errors.ErrDatabaseQuery
		}
	}

	if err := policy.CanDeletePost(post, userID); err != nil {
		s.log.Debug("User is not the author of the post", slog.Int64("post_id", id), slog.Int64("user_id", userID))
		return err
	}

	if err := readRepo.DeleteByPost(ctx, id); err != nil {
		s.log.Error("Failed to delete read markers", slog.Int64("post_id", id), slog.String("error", err.Error()))
		return custom_errors.ErrDatabaseQuery
	}

	if err := postRepo.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, custom_errors.ErrPostNotFound):
			s.log.Debug("Post deleted concurrently", slog.Int64("post_id", id))
			return custom_errors.ErrPostNotFound
		default:
			s.log.Error("Failed to delete post", slog.Int64("post_id", id), slog.String("error", err.Error()))
			return custom_errors.ErrDatabaseQuery
		}
	}

	if err := tx.Commit(ctx); err != nil {
		s.log.Error("Failed to commit transaction", slog.Int64("post_id", id), slog.String("error", err.Error()))
		return custom_errors.ErrDatabaseQuery
	}
	txCommitted = true

	if post.HasMedia() {
		s.removeMediaAsync(*post.MediaPath)
	}

	s.log.Info("Post deleted", slog.Int64("post_id", id), slog.Int64("user_id", userID))
	return nil
}

func (s *PostService) MarkRead(ctx context.Context, userID int64, postID int64) (err error) {
	defer func() { s.metrics.IncrementReadOperations("mark_read", err == nil) }()

	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		switch {
		case errors.Is(err, custom_errors.ErrPostNotFound):
			s.log.Debug("Post not found for mark read", slog.Int64("post_id", postID))
			return custom_errors.ErrPostNotFound
		default:
			s.log.Error("Failed to get post for mark read", slog.Int64("post_id", postID), slog.String("error", err.Error()))
			return custom_errors.ErrDatabaseQuery
		}
	}

	if _, err := s.readRepo.Upsert(ctx, userID, postID); err != nil {
		switch {
		case errors.Is(err, custom_errors.ErrPostNotFound):
			s.log.Debug("Post deleted before mark read", slog.Int64("post_id", postID))
			return custom_errors.ErrPostNotFound
		case errors.Is(err, custom_errors.ErrUserNotFound):
			s.log.Debug("Reader account no longer exists", slog.Int64("user_id", userID))
			return custom_errors.ErrUserNotFound
		default:
			s.log.Error("Failed to mark post read", slog.Int64("post_id", postID), slog.Int64("user_id", userID), slog.String("error", err.Error()))
			return custom_errors.ErrDatabaseQuery
		}
	}

	s.log.Debug("Post marked read", slog.Int64("post_id", postID), slog.Int64("user_id", userID))
	return nil
}

// MarkUnread clears the viewer's read marker. It succeeds when there is no
// marker or no post.
func (s *PostService) MarkUnread(ctx context.Context, userID int64, postID int64) (err error) {
	defer func() { s.metrics.IncrementReadOperations("mark_unread", err == nil) }()

	marker, err := s.readRepo.Get(ctx, userID, postID)
	if err != nil {
		switch {
		case errors.Is(err, custom_errors.ErrReadMarkerNotFound):
			s.log.Debug("Post already unread", slog.Int64("post_id", postID), slog.Int64("user_id", userID))
			return nil
		default:
			s.log.Error("Failed to get read marker", slog.Int64("post_id", postID), slog.Int64("user_id", userID), slog.String("error", err.Error()))
			return custom_errors.ErrDatabaseQuery
		}
	}

	if err := s.readRepo.Delete(ctx, userID, postID); err != nil {
		s.log.Error("Failed to mark post unread", slog.Int64("post_id", postID), slog.Int64("user_id", userID), slog.String("error", err.Error()))
		return custom_errors.ErrDatabaseQuery
	}

	s.log.Debug("Post marked unread",
		slog.Int64("post_id", postID),
		slog.Int64("user_id", userID),
		slog.Time("read_at", marker.ReadAt.Time))
	return nil
}

// Wait blocks until scheduled media removals have finished.
func (s *PostService) Wait() {
	s.cleanups.Wait()
}

func (s *PostService) detail(ctx context.Context, post *model.Post) (*model.PostDetailed, error) {
	detailed := &model.PostDetailed{Post: post, AuthorName: model.DeletedAuthorName}
	if !post.HasAuthor() {
		return detailed, nil
	}

	author, err := s.userRepo.GetByID(ctx, post.AuthorID)
	if err != nil {
		switch {
		case errors.Is(err, custom_errors.ErrUserNotFound):
			s.log.Debug("Author no longer exists", slog.Int64("post_id", post.ID), slog.Int64("author_id", post.AuthorID))
			return detailed, nil
		default:
			s.log.Error("Failed to get author", slog.Int64("author_id", post.AuthorID), slog.String("error", err.Error()))
			return nil, custom_errors.ErrDatabaseQuery
		}
	}

	detailed.Author = author
	detailed.AuthorName = author.Username
	return detailed, nil
}

func (s *PostService) removeMediaAsync(path string) {
	if s.media == nil || path == "" {
		return
	}

	s.cleanups.Add(1)
	go func() {
		defer s.cleanups.Done()

		ctx, cancel := context.WithTimeout(context.Background(), s.cleanupTimeout)
		defer cancel()

		if err := s.media.Remove(ctx, path); err != nil {
			s.metrics.IncrementMediaOperations("cleanup", false)
			s.log.Error("Failed to remove post media", slog.String("path", path), slog.String("error", err.Error()))
			return
		}
		s.metrics.IncrementMediaOperations("cleanup", true)
	}()
}

func authorName(author *model.User) string {
	if author == nil {
		return model.DeletedAuthorName
	}
	return author.Username
}
