package post_service_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	post_service "feedstack-post-service/internal/application/service/post"
	"feedstack-post-service/internal/custom_errors"
	model "feedstack-post-service/internal/domain/models"
	"feedstack-post-service/internal/infrastructure/logger"
	"feedstack-post-service/internal/infrastructure/outbound/metrics/prometheus"
	"feedstack-post-service/internal/infrastructure/outbound/repository/memory"
	"feedstack-post-service/internal/infrastructure/outbound/storage/filesystem"
)

type feedEnv struct {
	store   *memory.Store
	storage *filesystem.Storage
	svc     *post_service.PostService
}

func setupFeed(t *testing.T) *feedEnv {
	log := logger.New("test")
	metrics := prometheus.NewPrometheusMetricsProvider()
	store := memory.NewStore(log)

	storage, err := filesystem.NewStorage(t.TempDir(), 1<<20, log, metrics)
	require.NoError(t, err)

	svc := post_service.NewPostService(
		store.Posts(),
		store.Reads(),
		store.Users(),
		storage,
		memory.NewUnitOfWork(store),
		log,
		metrics,
		time.Second,
	)
	return &feedEnv{store: store, storage: storage, svc: svc}
}

func (e *feedEnv) user(t *testing.T, name string) *model.User {
	u, err := e.store.Users().Create(context.Background(), &model.User{Username: name, Email: name + "@example.com", PasswordHash: "x"})
	require.NoError(t, err)
	return u
}

func (e *feedEnv) post(t *testing.T, author *model.User, title, content string) *model.Post {
	created, err := e.svc.CreatePost(context.Background(), &model.CreatePostDTO{AuthorID: author.ID, Title: title, Content: content})
	require.NoError(t, err)
	return created.Post
}

func feedState(t *testing.T, svc *post_service.PostService, viewer int64) map[int64]bool {
	items, err := svc.ListPosts(context.Background(), viewer, nil)
	require.NoError(t, err)
	state := make(map[int64]bool, len(items))
	for _, item := range items {
		state[item.Post.ID] = item.IsRead
	}
	return state
}

func TestFeed_CreateThenGet(t *testing.T) {
	env := setupFeed(t)
	alice := env.user(t, "alice")

	created, err := env.svc.CreatePost(context.Background(), &model.CreatePostDTO{AuthorID: alice.ID, Title: "Hello", Content: "World"})
	require.NoError(t, err)
	assert.Equal(t, "alice", created.AuthorName)

	got, err := env.svc.GetPostByID(context.Background(), created.Post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hello", got.Post.Title)
	assert.Equal(t, "World", got.Post.Content)
	assert.NotZero(t, got.Post.ID)
	assert.True(t, got.Post.CreatedAt.Valid)
}

func TestFeed_MarkReadTwiceKeepsOneMarker(t *testing.T) {
	env := setupFeed(t)
	alice := env.user(t, "alice")
	p := env.post(t, alice, "Hello", "World")
	ctx := context.Background()

	t0 := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	env.store.SetClock(func() time.Time { return t0 })
	require.NoError(t, env.svc.MarkRead(ctx, alice.ID, p.ID))

	env.store.SetClock(func() time.Time { return t0.Add(time.Minute) })
	require.NoError(t, env.svc.MarkRead(ctx, alice.ID, p.ID))

	marker, err := env.store.Reads().Get(ctx, alice.ID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, t0.Add(time.Minute), marker.ReadAt.Time)

	read, err := env.store.Reads().ReadPostIDs(ctx, alice.ID, []int64{p.ID})
	require.NoError(t, err)
	assert.Len(t, read, 1)
	assert.True(t, feedState(t, env.svc, alice.ID)[p.ID])
}

func TestFeed_ConcurrentMarkReadKeepsOneMarker(t *testing.T) {
	env := setupFeed(t)
	alice := env.user(t, "alice")
	bob := env.user(t, "bob")
	p := env.post(t, alice, "Hello", "World")
	ctx := context.Background()

	const readers = 16
	errs := make(chan error, readers)
	var wg sync.WaitGroup
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- env.svc.MarkRead(ctx, bob.ID, p.ID)
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	read, err := env.store.Reads().ReadPostIDs(ctx, bob.ID, []int64{p.ID})
	require.NoError(t, err)
	assert.Len(t, read, 1)
	assert.True(t, feedState(t, env.svc, bob.ID)[p.ID])
	assert.False(t, feedState(t, env.svc, alice.ID)[p.ID])

	require.NoError(t, env.svc.MarkUnread(ctx, bob.ID, p.ID))
	assert.False(t, feedState(t, env.svc, bob.ID)[p.ID])
}

func TestFeed_MarkUnread(t *testing.T) {
	env := setupFeed(t)
	alice := env.user(t, "alice")
	p := env.post(t, alice, "Hello", "World")
	ctx := context.Background()

	require.NoError(t, env.svc.MarkRead(ctx, alice.ID, p.ID))
	require.NoError(t, env.svc.MarkUnread(ctx, alice.ID, p.ID))
	assert.False(t, feedState(t, env.svc, alice.ID)[p.ID])

	t.Run("never read is a no-op", func(t *testing.T) {
		require.NoError(t, env.svc.MarkUnread(ctx, alice.ID, p.ID))
		_, err := env.store.Reads().Get(ctx, alice.ID, p.ID)
		assert.ErrorIs(t, err, custom_errors.ErrReadMarkerNotFound)
	})

	t.Run("missing post is a no-op", func(t *testing.T) {
		assert.NoError(t, env.svc.MarkUnread(ctx, alice.ID, 999))
	})
}

func TestFeed_MarkReadMissingPost(t *testing.T) {
	env := setupFeed(t)
	alice := env.user(t, "alice")

	err := env.svc.MarkRead(context.Background(), alice.ID, 999)
	assert.ErrorIs(t, err, custom_errors.ErrPostNotFound)
}

func TestFeed_DeleteOwnership(t *testing.T) {
	env := setupFeed(t)
	alice := env.user(t, "alice")
	bob := env.user(t, "bob")
	ctx := context.Background()

	p := env.post(t, alice, "Hello", "World")

	err := env.svc.DeletePost(ctx, bob.ID, p.ID)
	assert.ErrorIs(t, err, custom_errors.ErrForbidden)
	_, err = env.svc.GetPostByID(ctx, p.ID)
	assert.NoError(t, err, "post survives a rejected delete")

	require.NoError(t, env.svc.DeletePost(ctx, alice.ID, p.ID))
	_, err = env.svc.GetPostByID(ctx, p.ID)
	assert.ErrorIs(t, err, custom_errors.ErrPostNotFound)

	t.Run("missing post is not found for anyone", func(t *testing.T) {
		assert.ErrorIs(t, env.svc.DeletePost(ctx, bob.ID, p.ID), custom_errors.ErrPostNotFound)
		assert.ErrorIs(t, env.svc.DeletePost(ctx, alice.ID, 12345), custom_errors.ErrPostNotFound)
	})
}

func TestFeed_ReadStateIsPerViewer(t *testing.T) {
	env := setupFeed(t)
	alice := env.user(t, "alice")
	bob := env.user(t, "bob")
	ctx := context.Background()

	p := env.post(t, alice, "Hello", "World")

	assert.Equal(t, map[int64]bool{p.ID: false}, feedState(t, env.svc, bob.ID))

	require.NoError(t, env.svc.MarkRead(ctx, bob.ID, p.ID))

	assert.Equal(t, map[int64]bool{p.ID: true}, feedState(t, env.svc, bob.ID))
	assert.Equal(t, map[int64]bool{p.ID: false}, feedState(t, env.svc, alice.ID))
}

func TestFeed_NewestFirst(t *testing.T) {
	env := setupFeed(t)
	alice := env.user(t, "alice")

	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	var ids []int64
	for i := 0; i < 3; i++ {
		at := base.Add(time.Duration(i) * time.Minute)
		env.store.SetClock(func() time.Time { return at })
		ids = append(ids, env.post(t, alice, "t", "c").ID)
	}

	items, err := env.svc.ListPosts(context.Background(), alice.ID, nil)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, []int64{ids[2], ids[1], ids[0]}, []int64{items[0].Post.ID, items[1].Post.ID, items[2].Post.ID})
}

func TestFeed_DeletedAuthorShowsPlaceholder(t *testing.T) {
	env := setupFeed(t)
	alice := env.user(t, "alice")
	bob := env.user(t, "bob")
	ctx := context.Background()

	p := env.post(t, alice, "Hello", "World")
	require.NoError(t, env.svc.MarkRead(ctx, bob.ID, p.ID))
	require.NoError(t, env.store.Users().Delete(ctx, alice.ID))

	items, err := env.svc.ListPosts(ctx, bob.ID, nil)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, model.DeletedAuthorName, items[0].AuthorName)
	assert.True(t, items[0].IsRead)

	detailed, err := env.svc.GetPostByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, detailed.Author)
	assert.Equal(t, model.DeletedAuthorName, detailed.AuthorName)

	assert.ErrorIs(t, env.svc.DeletePost(ctx, alice.ID, p.ID), custom_errors.ErrForbidden)
}

func TestFeed_DeleteRemovesMedia(t *testing.T) {
	env := setupFeed(t)
	alice := env.user(t, "alice")
	ctx := context.Background()

	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")
	stored, err := env.storage.Save(ctx, "cat.png", bytes.NewReader(png))
	require.NoError(t, err)
	onDisk := filepath.Join(env.storage.Dir(), filepath.Base(stored))

	created, err := env.svc.CreatePost(ctx, &model.CreatePostDTO{AuthorID: alice.ID, Title: "Cat", Content: "Look", MediaPath: &stored})
	require.NoError(t, err)
	require.FileExists(t, onDisk)

	require.NoError(t, env.svc.DeletePost(ctx, alice.ID, created.Post.ID))
	env.svc.Wait()

	_, err = env.svc.GetPostByID(ctx, created.Post.ID)
	assert.ErrorIs(t, err, custom_errors.ErrPostNotFound)
	_, err = os.Stat(onDisk)
	assert.True(t, os.IsNotExist(err))
}

func TestFeed_CreateValidation(t *testing.T) {
	env := setupFeed(t)
	alice := env.user(t, "alice")

	tests := []struct {
		name string
		dto  *model.CreatePostDTO
	}{
		{name: "empty title", dto: &model.CreatePostDTO{AuthorID: alice.ID, Content: "c"}},
		{name: "blank content", dto: &model.CreatePostDTO{AuthorID: alice.ID, Title: "t", Content: " \t "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.CreatePost(context.Background(), tt.dto)
			assert.ErrorIs(t, err, custom_errors.ErrPostValidation)
		})
	}

	items, err := env.svc.ListPosts(context.Background(), alice.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, items)
}
