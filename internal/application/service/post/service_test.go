package post_service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"feedstack-post-service/internal/custom_errors"
	model "feedstack-post-service/internal/domain/models"
	"feedstack-post-service/internal/infrastructure/logger"
	"feedstack-post-service/internal/infrastructure/outbound/metrics/prometheus"
	media_storage_mock "feedstack-post-service/mocks/media"
	post_repository_mock "feedstack-post-service/mocks/post"
	postgres_mock "feedstack-post-service/mocks/postgres"
	read_repository_mock "feedstack-post-service/mocks/read"
	user_repository_mock "feedstack-post-service/mocks/user"
)

type serviceMocks struct {
	postRepo *post_repository_mock.Repository
	readRepo *read_repository_mock.Repository
	userRepo *user_repository_mock.Repository
	media    *media_storage_mock.Storage
	uow      *postgres_mock.UnitOfWork
	tx       *postgres_mock.Transaction
}

func newServiceMocks() *serviceMocks {
	return &serviceMocks{
		postRepo: new(post_repository_mock.Repository),
		readRepo: new(read_repository_mock.Repository),
		userRepo: new(user_repository_mock.Repository),
		media:    new(media_storage_mock.Storage),
		uow:      new(postgres_mock.UnitOfWork),
		tx:       new(postgres_mock.Transaction),
	}
}

func (m *serviceMocks) service() *PostService {
	return NewPostService(m.postRepo, m.readRepo, m.userRepo, m.media, m.uow, logger.New("test"), prometheus.NewPrometheusMetricsProvider(), time.Second)
}

func (m *serviceMocks) assertExpectations(t *testing.T) {
	m.postRepo.AssertExpectations(t)
	m.readRepo.AssertExpectations(t)
	m.userRepo.AssertExpectations(t)
	m.media.AssertExpectations(t)
	m.uow.AssertExpectations(t)
	m.tx.AssertExpectations(t)
}

func strPtr(s string) *string { return &s }

func TestPostService_CreatePost(t *testing.T) {
	now := pgtype.Timestamptz{Time: time.Now(), Valid: true}
	author := &model.User{ID: 1, Username: "alice"}

	tests := []struct {
		name        string
		mocks       func(m *serviceMocks)
		dto         *model.CreatePostDTO
		want        *model.PostDetailed
		wantErrType error
		keepsMedia  bool
	}{
		{
			name: "Success",
			mocks: func(m *serviceMocks) {
				m.postRepo.On("Create", mock.Anything, &model.Post{AuthorID: 1, Title: "Hello", Content: "World"}).
					Return(&model.Post{ID: 7, AuthorID: 1, Title: "Hello", Content: "World", CreatedAt: now}, nil)
				m.userRepo.On("GetByID", mock.Anything, int64(1)).Return(author, nil)
			},
			dto: &model.CreatePostDTO{AuthorID: 1, Title: "  Hello ", Content: "World\n"},
			want: &model.PostDetailed{
				Post:       &model.Post{ID: 7, AuthorID: 1, Title: "Hello", Content: "World", CreatedAt: now},
				Author:     author,
				AuthorName: "alice",
			},
		},
		{
			name:        "Blank title",
			dto:         &model.CreatePostDTO{AuthorID: 1, Title: "   ", Content: "World"},
			wantErrType: custom_errors.ErrPostValidation,
		},
		{
			name:        "Missing content",
			dto:         &model.CreatePostDTO{AuthorID: 1, Title: "Hello"},
			wantErrType: custom_errors.ErrPostValidation,
		},
		{
			name: "Validation failure removes uploaded media",
			mocks: func(m *serviceMocks) {
				m.media.On("Remove", mock.Anything, "uploads/media-1-a.png").Return(nil)
			},
			dto:         &model.CreatePostDTO{AuthorID: 1, Title: "Hello", MediaPath: strPtr("uploads/media-1-a.png")},
			wantErrType: custom_errors.ErrPostValidation,
		},
		{
			name: "Unknown author",
			mocks: func(m *serviceMocks) {
				m.postRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.Post")).Return(nil, custom_errors.ErrUserNotFound)
			},
			dto:         &model.CreatePostDTO{AuthorID: 1, Title: "Hello", Content: "World"},
			wantErrType: custom_errors.ErrUserNotFound,
		},
		{
			name: "Storage failure removes uploaded media",
			mocks: func(m *serviceMocks) {
				m.postRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.Post")).Return(nil, errors.New("connection reset"))
				m.media.On("Remove", mock.Anything, "uploads/media-1-a.png").Return(nil)
			},
			dto:         &model.CreatePostDTO{AuthorID: 1, Title: "Hello", Content: "World", MediaPath: strPtr("uploads/media-1-a.png")},
			wantErrType: custom_errors.ErrDatabaseQuery,
		},
		{
			name: "Author lookup failure keeps media of stored post",
			mocks: func(m *serviceMocks) {
				m.postRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.Post")).
					Return(&model.Post{ID: 42, AuthorID: 1, Title: "Hello", Content: "World", MediaPath: strPtr("uploads/media-x.png"), CreatedAt: now}, nil)
				m.userRepo.On("GetByID", mock.Anything, int64(1)).Return(nil, custom_errors.ErrDatabaseQuery)
			},
			dto:         &model.CreatePostDTO{AuthorID: 1, Title: "Hello", Content: "World", MediaPath: strPtr("uploads/media-x.png")},
			wantErrType: custom_errors.ErrDatabaseQuery,
			keepsMedia:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newServiceMocks()
			if tt.mocks != nil {
				tt.mocks(m)
			}

			s := m.service()
			got, err := s.CreatePost(context.Background(), tt.dto)
			s.Wait()

			if tt.wantErrType != nil {
				assert.True(t, errors.Is(err, tt.wantErrType), "expected %v, got %v", tt.wantErrType, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
			if tt.keepsMedia {
				m.media.AssertNotCalled(t, "Remove", mock.Anything, mock.Anything)
			}
			m.assertExpectations(t)
		})
	}
}

func TestPostService_GetPostByID(t *testing.T) {
	tests := []struct {
		name        string
		mocks       func(m *serviceMocks)
		want        *model.PostDetailed
		wantErrType error
	}{
		{
			name: "Success",
			mocks: func(m *serviceMocks) {
				m.postRepo.On("GetByID", mock.Anything, int64(5)).Return(&model.Post{ID: 5, AuthorID: 2}, nil)
				m.userRepo.On("GetByID", mock.Anything, int64(2)).Return(&model.User{ID: 2, Username: "bob"}, nil)
			},
			want: &model.PostDetailed{Post: &model.Post{ID: 5, AuthorID: 2}, Author: &model.User{ID: 2, Username: "bob"}, AuthorName: "bob"},
		},
		{
			name: "Author deleted",
			mocks: func(m *serviceMocks) {
				m.postRepo.On("GetByID", mock.Anything, int64(5)).Return(&model.Post{ID: 5}, nil)
			},
			want: &model.PostDetailed{Post: &model.Post{ID: 5}, AuthorName: model.DeletedAuthorName},
		},
		{
			name: "Not found",
			mocks: func(m *serviceMocks) {
				m.postRepo.On("GetByID", mock.Anything, int64(5)).Return(nil, custom_errors.ErrPostNotFound)
			},
			wantErrType: custom_errors.ErrPostNotFound,
		},
		{
			name: "Database error",
			mocks: func(m *serviceMocks) {
				m.postRepo.On("GetByID", mock.Anything, int64(5)).Return(nil, errors.New("boom"))
			},
			wantErrType: custom_errors.ErrDatabaseQuery,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newServiceMocks()
			tt.mocks(m)

			got, err := m.service().GetPostByID(context.Background(), 5)

			if tt.wantErrType != nil {
				assert.ErrorIs(t, err, tt.wantErrType)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
			m.assertExpectations(t)
		})
	}
}

func TestPostService_ListPosts(t *testing.T) {
	posts := []*model.Post{
		{ID: 3, AuthorID: 1, Title: "c"},
		{ID: 2, AuthorID: 0, Title: "b"},
		{ID: 1, AuthorID: 1, Title: "a"},
	}

	t.Run("Annotates read state and authors", func(t *testing.T) {
		m := newServiceMocks()
		m.postRepo.On("List", mock.Anything, model.PostFilters{}).Return(posts, nil)
		m.userRepo.On("GetByIDs", mock.Anything, []int64{1}).Return(map[int64]*model.User{1: {ID: 1, Username: "alice"}}, nil)
		m.readRepo.On("ReadPostIDs", mock.Anything, int64(9), []int64{3, 2, 1}).Return(map[int64]bool{2: true}, nil)

		got, err := m.service().ListPosts(context.Background(), 9, nil)

		assert.NoError(t, err)
		assert.Equal(t, []*model.FeedItem{
			{Post: posts[0], AuthorName: "alice", IsRead: false},
			{Post: posts[1], AuthorName: model.DeletedAuthorName, IsRead: true},
			{Post: posts[2], AuthorName: "alice", IsRead: false},
		}, got)
		m.assertExpectations(t)
	})

	t.Run("Empty list", func(t *testing.T) {
		m := newServiceMocks()
		m.postRepo.On("List", mock.Anything, model.PostFilters{}).Return([]*model.Post{}, nil)

		got, err := m.service().ListPosts(context.Background(), 9, &model.PostFilters{})

		assert.NoError(t, err)
		assert.Empty(t, got)
		assert.NotNil(t, got)
		m.assertExpectations(t)
	})

	t.Run("Negative limit", func(t *testing.T) {
		m := newServiceMocks()
		limit := -1

		_, err := m.service().ListPosts(context.Background(), 9, &model.PostFilters{Limit: &limit})

		assert.ErrorIs(t, err, custom_errors.ErrInvalidInput)
		m.assertExpectations(t)
	})

	t.Run("Read markers failure", func(t *testing.T) {
		m := newServiceMocks()
		m.postRepo.On("List", mock.Anything, model.PostFilters{}).Return(posts, nil)
		m.userRepo.On("GetByIDs", mock.Anything, []int64{1}).Return(map[int64]*model.User{}, nil)
		m.readRepo.On("ReadPostIDs", mock.Anything, int64(9), []int64{3, 2, 1}).Return(nil, custom_errors.ErrDatabaseQuery)

		_, err := m.service().ListPosts(context.Background(), 9, nil)

		assert.ErrorIs(t, err, custom_errors.ErrDatabaseQuery)
		m.assertExpectations(t)
	})
}

func TestPostService_DeletePost(t *testing.T) {
	tests := []struct {
		name        string
		userID      int64
		mocks       func(m *serviceMocks)
		wantErrType error
	}{
		{
			name:   "Success",
			userID: 1,
			mocks: func(m *serviceMocks) {
				m.uow.On("Begin", mock.Anything).Return(m.tx, nil)
				m.tx.On("PostRepository").Return(m.postRepo)
				m.tx.On("ReadRepository").Return(m.readRepo)
				m.postRepo.On("GetByID", mock.Anything, int64(10)).Return(&model.Post{ID: 10, AuthorID: 1}, nil)
				m.readRepo.On("DeleteByPost", mock.Anything, int64(10)).Return(nil)
				m.postRepo.On("Delete", mock.Anything, int64(10)).Return(nil)
				m.tx.On("Commit", mock.Anything).Return(nil)
			},
		},
		{
			name:   "Success removes media after commit",
			userID: 1,
			mocks: func(m *serviceMocks) {
				m.uow.On("Begin", mock.Anything).Return(m.tx, nil)
				m.tx.On("PostRepository").Return(m.postRepo)
				m.tx.On("ReadRepository").Return(m.readRepo)
				m.postRepo.On("GetByID", mock.Anything, int64(10)).Return(&model.Post{ID: 10, AuthorID: 1, MediaPath: strPtr("uploads/x.png")}, nil)
				m.readRepo.On("DeleteByPost", mock.Anything, int64(10)).Return(nil)
				m.postRepo.On("Delete", mock.Anything, int64(10)).Return(nil)
				m.tx.On("Commit", mock.Anything).Return(nil)
				m.media.On("Remove", mock.Anything, "uploads/x.png").Return(nil)
			},
		},
		{
			name:   "Media removal failure does not fail the delete",
			userID: 1,
			mocks: func(m *serviceMocks) {
				m.uow.On("Begin", mock.Anything).Return(m.tx, nil)
				m.tx.On("PostRepository").Return(m.postRepo)
				m.tx.On("ReadRepository").Return(m.readRepo)
				m.postRepo.On("GetByID", mock.Anything, int64(10)).Return(&model.Post{ID: 10, AuthorID: 1, MediaPath: strPtr("uploads/x.png")}, nil)
				m.readRepo.On("DeleteByPost", mock.Anything, int64(10)).Return(nil)
				m.postRepo.On("Delete", mock.Anything, int64(10)).Return(nil)
				m.tx.On("Commit", mock.Anything).Return(nil)
				m.media.On("Remove", mock.Anything, "uploads/x.png").Return(custom_errors.ErrMediaRemoveFailed)
			},
		},
		{
			name:   "Post not found",
			userID: 1,
			mocks: func(m *serviceMocks) {
				m.uow.On("Begin", mock.Anything).Return(m.tx, nil)
				m.tx.On("PostRepository").Return(m.postRepo)
				m.tx.On("ReadRepository").Return(m.readRepo)
				m.postRepo.On("GetByID", mock.Anything, int64(10)).Return(nil, custom_errors.ErrPostNotFound)
				m.tx.On("Rollback", mock.Anything).Return(nil)
			},
			wantErrType: custom_errors.ErrPostNotFound,
		},
		{
			name:   "Not the author",
			userID: 2,
			mocks: func(m *serviceMocks) {
				m.uow.On("Begin", mock.Anything).Return(m.tx, nil)
				m.tx.On("PostRepository").Return(m.postRepo)
				m.tx.On("ReadRepository").Return(m.readRepo)
				m.postRepo.On("GetByID", mock.Anything, int64(10)).Return(&model.Post{ID: 10, AuthorID: 1, MediaPath: strPtr("uploads/x.png")}, nil)
				m.tx.On("Rollback", mock.Anything).Return(nil)
			},
			wantErrType: custom_errors.ErrForbidden,
		},
		{
			name:   "Concurrent delete wins",
			userID: 1,
			mocks: func(m *serviceMocks) {
				m.uow.On("Begin", mock.Anything).Return(m.tx, nil)
				m.tx.On("PostRepository").Return(m.postRepo)
				m.tx.On("ReadRepository").Return(m.readRepo)
				m.postRepo.On("GetByID", mock.Anything, int64(10)).Return(&model.Post{ID: 10, AuthorID: 1}, nil)
				m.readRepo.On("DeleteByPost", mock.Anything, int64(10)).Return(nil)
				m.postRepo.On("Delete", mock.Anything, int64(10)).Return(custom_errors.ErrPostNotFound)
				m.tx.On("Rollback", mock.Anything).Return(nil)
			},
			wantErrType: custom_errors.ErrPostNotFound,
		},
		{
			name:   "Read markers failure rolls back",
			userID: 1,
			mocks: func(m *serviceMocks) {
				m.uow.On("Begin", mock.Anything).Return(m.tx, nil)
				m.tx.On("PostRepository").Return(m.postRepo)
				m.tx.On("ReadRepository").Return(m.readRepo)
				m.postRepo.On("GetByID", mock.Anything, int64(10)).Return(&model.Post{ID: 10, AuthorID: 1}, nil)
				m.readRepo.On("DeleteByPost", mock.Anything, int64(10)).Return(custom_errors.ErrDatabaseQuery)
				m.tx.On("Rollback", mock.Anything).Return(nil)
			},
			wantErrType: custom_errors.ErrDatabaseQuery,
		},
		{
			name:   "Error beginning transaction",
			userID: 1,
			mocks: func(m *serviceMocks) {
				m.uow.On("Begin", mock.Anything).Return(nil, errors.New("pool closed"))
			},
			wantErrType: custom_errors.ErrDatabaseQuery,
		},
		{
			name:   "Error committing transaction",
			userID: 1,
			mocks: func(m *serviceMocks) {
				m.uow.On("Begin", mock.Anything).Return(m.tx, nil)
				m.tx.On("PostRepository").Return(m.postRepo)
				m.tx.On("ReadRepository").Return(m.readRepo)
				m.postRepo.On("GetByID", mock.Anything, int64(10)).Return(&model.Post{ID: 10, AuthorID: 1, MediaPath: strPtr("uploads/x.png")}, nil)
				m.readRepo.On("DeleteByPost", mock.Anything, int64(10)).Return(nil)
				m.postRepo.On("Delete", mock.Anything, int64(10)).Return(nil)
				m.tx.On("Commit", mock.Anything).Return(errors.New("serialization failure"))
				m.tx.On("Rollback", mock.Anything).Return(errors.New("tx is closed"))
			},
			wantErrType: custom_errors.ErrDatabaseQuery,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newServiceMocks()
			tt.mocks(m)

			s := m.service()
			err := s.DeletePost(context.Background(), tt.userID, 10)
			s.Wait()

			if tt.wantErrType != nil {
				assert.ErrorIs(t, err, tt.wantErrType)
			} else {
				assert.NoError(t, err)
			}
			m.assertExpectations(t)
		})
	}
}

func TestPostService_MarkRead(t *testing.T) {
	tests := []struct {
		name        string
		mocks       func(m *serviceMocks)
		wantErrType error
	}{
		{
			name: "Success",
			mocks: func(m *serviceMocks) {
				m.postRepo.On("GetByID", mock.Anything, int64(4)).Return(&model.Post{ID: 4}, nil)
				m.readRepo.On("Upsert", mock.Anything, int64(1), int64(4)).Return(&model.ReadMarker{UserID: 1, PostID: 4}, nil)
			},
		},
		{
			name: "Post not found",
			mocks: func(m *serviceMocks) {
				m.postRepo.On("GetByID", mock.Anything, int64(4)).Return(nil, custom_errors.ErrPostNotFound)
			},
			wantErrType: custom_errors.ErrPostNotFound,
		},
		{
			name: "Post deleted between check and upsert",
			mocks: func(m *serviceMocks) {
				m.postRepo.On("GetByID", mock.Anything, int64(4)).Return(&model.Post{ID: 4}, nil)
				m.readRepo.On("Upsert", mock.Anything, int64(1), int64(4)).Return(nil, custom_errors.ErrPostNotFound)
			},
			wantErrType: custom_errors.ErrPostNotFound,
		},
		{
			name: "Database error",
			mocks: func(m *serviceMocks) {
				m.postRepo.On("GetByID", mock.Anything, int64(4)).Return(&model.Post{ID: 4}, nil)
				m.readRepo.On("Upsert", mock.Anything, int64(1), int64(4)).Return(nil, errors.New("boom"))
			},
			wantErrType: custom_errors.ErrDatabaseQuery,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newServiceMocks()
			tt.mocks(m)

			err := m.service().MarkRead(context.Background(), 1, 4)

			if tt.wantErrType != nil {
				assert.ErrorIs(t, err, tt.wantErrType)
			} else {
				assert.NoError(t, err)
			}
			m.assertExpectations(t)
		})
	}
}

func TestPostService_MarkUnread(t *testing.T) {
	marker := &model.ReadMarker{UserID: 1, PostID: 4, ReadAt: pgtype.Timestamptz{Time: time.Now(), Valid: true}}

	tests := []struct {
		name        string
		mocks       func(m *serviceMocks)
		wantErrType error
		skipsDelete bool
	}{
		{
			name: "Clears existing marker",
			mocks: func(m *serviceMocks) {
				m.readRepo.On("Get", mock.Anything, int64(1), int64(4)).Return(marker, nil)
				m.readRepo.On("Delete", mock.Anything, int64(1), int64(4)).Return(nil)
			},
		},
		{
			name: "No marker is a no-op",
			mocks: func(m *serviceMocks) {
				m.readRepo.On("Get", mock.Anything, int64(1), int64(4)).Return(nil, custom_errors.ErrReadMarkerNotFound)
			},
			skipsDelete: true,
		},
		{
			name: "Lookup failure",
			mocks: func(m *serviceMocks) {
				m.readRepo.On("Get", mock.Anything, int64(1), int64(4)).Return(nil, errors.New("boom"))
			},
			wantErrType: custom_errors.ErrDatabaseQuery,
		},
		{
			name: "Delete failure",
			mocks: func(m *serviceMocks) {
				m.readRepo.On("Get", mock.Anything, int64(1), int64(4)).Return(marker, nil)
				m.readRepo.On("Delete", mock.Anything, int64(1), int64(4)).Return(errors.New("boom"))
			},
			wantErrType: custom_errors.ErrDatabaseQuery,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newServiceMocks()
			tt.mocks(m)

			err := m.service().MarkUnread(context.Background(), 1, 4)

			if tt.wantErrType != nil {
				assert.ErrorIs(t, err, tt.wantErrType)
			} else {
				assert.NoError(t, err)
			}
			if tt.skipsDelete {
				m.readRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
			}
			m.assertExpectations(t)
		})
	}
}
