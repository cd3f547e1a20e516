package post_repository_postgres

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"feedstack-post-service/internal/custom_errors"
	model "feedstack-post-service/internal/domain/models"
	ports "feedstack-post-service/internal/domain/ports/output"
	"feedstack-post-service/internal/infrastructure/outbound/repository/postgres/db"

	"github.com/jackc/pgx/v5"
)

const postColumns = `p.id, COALESCE(p.author_id, 0), p.title, p.content, p.media_path, p.created_at`

type PostRepository struct {
	log     ports.Logger
	db      db.PgDB
	metrics ports.MetricsProvider
}

func NewPostRepository(db db.PgDB, log ports.Logger, metrics ports.MetricsProvider) *PostRepository {
	return &PostRepository{db: db, log: log, metrics: metrics}
}

func (p *PostRepository) Create(ctx context.Context, post *model.Post) (*model.Post, error) {
	start := time.Now()
	p.log.Debug("Creating new post", slog.Int64("author_id", post.AuthorID), slog.String("title", post.Title))

	args := pgx.NamedArgs{
		"author_id":  post.AuthorID,
		"title":      post.Title,
		"content":    post.Content,
		"media_path": post.MediaPath,
	}

	query := `
		INSERT INTO posts AS p (author_id, title, content, media_path)
		VALUES (@author_id, @title, @content, @media_path)
		RETURNING ` + postColumns

	var createdPost model.Post
	err := scanPost(p.db.QueryRow(ctx, query, args), &createdPost)
	if err != nil {
		p.record("post_create", start, false)
		if constraint, ok := db.ForeignKeyViolation(err); ok {
			p.log.Debug("Author does not exist", slog.Int64("author_id", post.AuthorID), slog.String("constraint", constraint))
			return nil, custom_errors.ErrUserNotFound
		}
		p.log.Error("Error creating post", slog.String("error", err.Error()))
		return nil, custom_errors.ErrDatabaseQuery
	}

	p.record("post_create", start, true)
	p.log.Debug("Successfully created post", slog.Int64("id", createdPost.ID), slog.Int64("author_id", createdPost.AuthorID))
	return &createdPost, nil
}

func (p *PostRepository) GetByID(ctx context.Context, id int64) (*model.Post, error) {
	start := time.Now()
	p.log.Debug("Getting post by ID", slog.Int64("id", id))

	args := pgx.NamedArgs{"id": id}
	query := `SELECT ` + postColumns + ` FROM posts p WHERE p.id = @id`

	post := &model.Post{}
	err := scanPost(p.db.QueryRow(ctx, query, args), post)
	if err != nil {
		p.record("post_get_by_id", start, false)
		if errors.Is(err, pgx.ErrNoRows) {
			p.log.Debug("Post not found by id", slog.Int64("id", id))
			return nil, custom_errors.ErrPostNotFound
		}
		p.log.Error("Error getting post by id", slog.Int64("id", id), slog.String("error", err.Error()))
		return nil, custom_errors.ErrDatabaseQuery
	}

	p.record("post_get_by_id", start, true)
	p.log.Debug("Successfully retrieved post by ID", slog.Int64("id", post.ID), slog.Int64("author_id", post.AuthorID))
	return post, nil
}

func (p *PostRepository) Delete(ctx context.Context, id int64) error {
	start := time.Now()
	p.log.Debug("Deleting post", slog.Int64("id", id))

	args := pgx.NamedArgs{"id": id}
	query := `DELETE FROM posts WHERE id = @id`
	result, err := p.db.Exec(ctx, query, args)
	if err != nil {
		p.record("post_delete", start, false)
		p.log.Error("Error deleting post", slog.Int64("id", id), slog.String("error", err.Error()))
		return custom_errors.ErrDatabaseQuery
	}
	if result.RowsAffected() == 0 {
		p.record("post_delete", start, false)
		p.log.Debug("Post not found during deletion", slog.Int64("id", id))
		return custom_errors.ErrPostNotFound
	}

	p.record("post_delete", start, true)
	p.log.Debug("Successfully deleted post", slog.Int64("id", id))
	return nil
}

// List returns posts newest first. The id tie breaker keeps the order stable
// for posts created within the same timestamp tick.
func (p *PostRepository) List(ctx context.Context, filters model.PostFilters) ([]*model.Post, error) {
	start := time.Now()
	p.log.Debug("Listing posts with filters",
		slog.Any("author_id", filters.AuthorID),
		slog.Any("limit", filters.Limit),
		slog.Any("offset", filters.Offset))

	args := pgx.NamedArgs{}
	query := `SELECT ` + postColumns + ` FROM posts p`

	whereClauses := []string{}
	if filters.AuthorID != nil {
		whereClauses = append(whereClauses, "p.author_id = @author_id")
		args["author_id"] = *filters.AuthorID
	}
	if len(whereClauses) > 0 {
		query += " WHERE " + strings.Join(whereClauses, " AND ")
	}

	query += " ORDER BY p.created_at DESC, p.id DESC"

	if filters.Limit != nil {
		query += " LIMIT @limit"
		args["limit"] = *filters.Limit
	}
	if filters.Offset != nil {
		query += " OFFSET @offset"
		args["offset"] = *filters.Offset
	}

	p.log.Debug("Executing list query", slog.String("query", query))
	rows, err := p.db.Query(ctx, query, args)
	if err != nil {
		p.record("post_list", start, false)
		p.log.Error("Error listing posts", slog.String("error", err.Error()))
		return nil, custom_errors.ErrDatabaseQuery
	}
	defer rows.Close()

	posts := make([]*model.Post, 0)
	for rows.Next() {
		var post model.Post
		if err := scanPost(rows, &post); err != nil {
			p.record("post_list", start, false)
			p.log.Error("Error scanning post during List", slog.String("error", err.Error()))
			return nil, custom_errors.ErrDatabaseQuery
		}
		posts = append(posts, &post)
	}

	if err = rows.Err(); err != nil {
		p.record("post_list", start, false)
		p.log.Error("Error iterating rows during List", slog.String("error", err.Error()))
		return nil, custom_errors.ErrDatabaseQuery
	}

	p.record("post_list", start, true)
	p.log.Debug("Retrieved posts in List", slog.Int("count", len(posts)))
	return posts, nil
}

func (p *PostRepository) record(queryType string, start time.Time, success bool) {
	p.metrics.IncrementDatabaseQueries(queryType, success)
	p.metrics.RecordDatabaseQueryDuration(queryType, time.Since(start))
}

func scanPost(row pgx.Row, post *model.Post) error {
	return row.Scan(
		&post.ID,
		&post.AuthorID,
		&post.Title,
		&post.Content,
		&post.MediaPath,
		&post.CreatedAt,
	)
}
