package read_repository_postgres

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"feedstack-post-service/internal/custom_errors"
	model "feedstack-post-service/internal/domain/models"
	ports "feedstack-post-service/internal/domain/ports/output"
	"feedstack-post-service/internal/infrastructure/outbound/repository/postgres/db"

	"github.com/jackc/pgx/v5"
)

const userForeignKey = "post_reads_user_id_fkey"

type ReadRepository struct {
	log     ports.Logger
	db      db.PgDB
	metrics ports.MetricsProvider
}

func NewReadRepository(db db.PgDB, log ports.Logger, metrics ports.MetricsProvider) *ReadRepository {
	return &ReadRepository{db: db, log: log, metrics: metrics}
}

func (r *ReadRepository) Upsert(ctx context.Context, userID, postID int64) (*model.ReadMarker, error) {
	start := time.Now()
	r.log.Debug("Upserting read marker", slog.Int64("user_id", userID), slog.Int64("post_id", postID))

	args := pgx.NamedArgs{
		"user_id": userID,
		"post_id": postID,
	}
	query := `
		INSERT INTO post_reads (user_id, post_id, read_at)
		VALUES (@user_id, @post_id, now())
		ON CONFLICT (user_id, post_id) DO UPDATE SET read_at = EXCLUDED.read_at
		RETURNING user_id, post_id, read_at`

	var marker model.ReadMarker
	err := r.db.QueryRow(ctx, query, args).Scan(&marker.UserID, &marker.PostID, &marker.ReadAt)
	if err != nil {
		r.record("read_upsert", start, false)
		if constraint, ok := db.ForeignKeyViolation(err); ok {
			r.log.Debug("Read marker references a missing row",
				slog.Int64("user_id", userID),
				slog.Int64("post_id", postID),
				slog.String("constraint", constraint))
			if constraint == userForeignKey {
				return nil, custom_errors.ErrUserNotFound
			}
			return nil, custom_errors.ErrPostNotFound
		}
		r.log.Error("Error upserting read marker",
			slog.Int64("user_id", userID),
			slog.Int64("post_id", postID),
			slog.String("error", err.Error()))
		return nil, custom_errors.ErrDatabaseQuery
	}

	r.record("read_upsert", start, true)
	return &marker, nil
}

func (r *ReadRepository) Get(ctx context.Context, userID, postID int64) (*model.ReadMarker, error) {
	start := time.Now()

	args := pgx.NamedArgs{
		"user_id": userID,
		"post_id": postID,
	}
	query := `SELECT user_id, post_id, read_at FROM post_reads WHERE user_id = @user_id AND post_id = @post_id`

	var marker model.ReadMarker
	err := r.db.QueryRow(ctx, query, args).Scan(&marker.UserID, &marker.PostID, &marker.ReadAt)
	if err != nil {
		r.record("read_get", start, false)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, custom_errors.ErrReadMarkerNotFound
		}
		r.log.Error("Error getting read marker",
			slog.Int64("user_id", userID),
			slog.Int64("post_id", postID),
			slog.String("error", err.Error()))
		return nil, custom_errors.ErrDatabaseQuery
	}

	r.record("read_get", start, true)
	return &marker, nil
}

// Delete removes the marker. A missing marker is not an error.
func (r *ReadRepository) Delete(ctx context.Context, userID, postID int64) error {
	start := time.Now()
	r.log.Debug("Deleting read marker", slog.Int64("user_id", userID), slog.Int64("post_id", postID))

	args := pgx.NamedArgs{
		"user_id": userID,
		"post_id": postID,
	}
	query := `DELETE FROM post_reads WHERE user_id = @user_id AND post_id = @post_id`
	result, err := r.db.Exec(ctx, query, args)
	if err != nil {
		r.record("read_delete", start, false)
		r.log.Error("Error deleting read marker",
			slog.Int64("user_id", userID),
			slog.Int64("post_id", postID),
			slog.String("error", err.Error()))
		return custom_errors.ErrDatabaseQuery
	}

	r.record("read_delete", start, true)
	r.log.Debug("Read marker deleted", slog.Int64("rows", result.RowsAffected()))
	return nil
}

func (r *ReadRepository) DeleteByPost(ctx context.Context, postID int64) error {
	start := time.Now()
	r.log.Debug("Deleting read markers of post", slog.Int64("post_id", postID))

	args := pgx.NamedArgs{"post_id": postID}
	query := `DELETE FROM post_reads WHERE post_id = @post_id`
	result, err := r.db.Exec(ctx, query, args)
	if err != nil {
		r.record("read_delete_by_post", start, false)
		r.log.Error("Error deleting read markers of post", slog.Int64("post_id", postID), slog.String("error", err.Error()))
		return custom_errors.ErrDatabaseQuery
	}

	r.record("read_delete_by_post", start, true)
	r.log.Debug("Read markers of post deleted", slog.Int64("post_id", postID), slog.Int64("rows", result.RowsAffected()))
	return nil
}

// ReadPostIDs reports which of postIDs the user has read. Posts without a
// marker are absent from the result.
func (r *ReadRepository) ReadPostIDs(ctx context.Context, userID int64, postIDs []int64) (map[int64]bool, error) {
	result := make(map[int64]bool, len(postIDs))
	if len(postIDs) == 0 {
		return result, nil
	}

	start := time.Now()
	args := pgx.NamedArgs{
		"user_id":  userID,
		"post_ids": postIDs,
	}
	query := `SELECT post_id FROM post_reads WHERE user_id = @user_id AND post_id = ANY(@post_ids)`

	rows, err := r.db.Query(ctx, query, args)
	if err != nil {
		r.record("read_post_ids", start, false)
		r.log.Error("Error querying read post ids", slog.Int64("user_id", userID), slog.String("error", err.Error()))
		return nil, custom_errors.ErrDatabaseQuery
	}
	defer rows.Close()

	for rows.Next() {
		var postID int64
		if err := rows.Scan(&postID); err != nil {
			r.record("read_post_ids", start, false)
			r.log.Error("Error scanning read post id", slog.String("error", err.Error()))
			return nil, custom_errors.ErrDatabaseQuery
		}
		result[postID] = true
	}
	if err := rows.Err(); err != nil {
		r.record("read_post_ids", start, false)
		r.log.Error("Error iterating read post ids", slog.String("error", err.Error()))
		return nil, custom_errors.ErrDatabaseQuery
	}

	r.record("read_post_ids", start, true)
	return result, nil
}

func (r *ReadRepository) record(queryType string, start time.Time, success bool) {
	r.metrics.IncrementDatabaseQueries(queryType, success)
	r.metrics.RecordDatabaseQueryDuration(queryType, time.Since(start))
}
