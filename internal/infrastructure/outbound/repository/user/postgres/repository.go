package user_repository_postgres

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

const userColumns = `id, username, email, password_hash, created_at`

type UserRepository struct {
	log     ports.Logger
	db      db.PgDB
	metrics ports.MetricsProvider
}

func NewUserRepository(db db.PgDB, log ports.Logger, metrics ports.MetricsProvider) *UserRepository {
	return &UserRepository{db: db, log: log, metrics: metrics}
}

// Create stores the user with a lower-cased email.
func (u *UserRepository) Create(ctx context.Context, user *model.User) (*model.User, error) {
	start := time.Now()
	u.log.Debug("Creating user", slog.String("username", user.Username))

	args := pgx.NamedArgs{
		"username":      user.Username,
		"email":         strings.ToLower(user.Email),
		"password_hash": user.PasswordHash,
	}
	query := `
		INSERT INTO users (username, email, password_hash)
		VALUES (@username, @email, @password_hash)
		RETURNING ` + userColumns

	var created model.User
	err := scanUser(u.db.QueryRow(ctx, query, args), &created)
	if err != nil {
		u.record("user_create", start, false)
		if db.IsUniqueViolation(err) {
			u.log.Debug("Email already registered", slog.String("email", user.Email))
			return nil, custom_errors.ErrEmailTaken
		}
		u.log.Error("Error creating user", slog.String("error", err.Error()))
		return nil, custom_errors.ErrDatabaseQuery
	}

	u.record("user_create", start, true)
	u.log.Debug("User created", slog.Int64("id", created.ID))
	return &created, nil
}

func (u *UserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	start := time.Now()

	args := pgx.NamedArgs{"id": id}
	query := `SELECT ` + userColumns + ` FROM users WHERE id = @id`

	var user model.User
	err := scanUser(u.db.QueryRow(ctx, query, args), &user)
	if err != nil {
		u.record("user_get_by_id", start, false)
		if errors.Is(err, pgx.ErrNoRows) {
			u.log.Debug("User not found by id", slog.Int64("id", id))
			return nil, custom_errors.ErrUserNotFound
		}
		u.log.Error("Error getting user by id", slog.Int64("id", id), slog.String("error", err.Error()))
		return nil, custom_errors.ErrDatabaseQuery
	}

	u.record("user_get_by_id", start, true)
	return &user, nil
}

func (u *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	start := time.Now()

	args := pgx.NamedArgs{"email": strings.ToLower(email)}
	query := `SELECT ` + userColumns + ` FROM users WHERE email = @email`

	var user model.User
	err := scanUser(u.db.QueryRow(ctx, query, args), &user)
	if err != nil {
		u.record("user_get_by_email", start, false)
		if errors.Is(err, pgx.ErrNoRows) {
			u.log.Debug("User not found by email")
			return nil, custom_errors.ErrUserNotFound
		}
		u.log.Error("Error getting user by email", slog.String("error", err.Error()))
		return nil, custom_errors.ErrDatabaseQuery
	}

	u.record("user_get_by_email", start, true)
	return &user, nil
}

// GetByIDs resolves many users in one query. Unknown ids are absent from the
// result.
func (u *UserRepository) GetByIDs(ctx context.Context, ids []int64) (map[int64]*model.User, error) {
	result := make(map[int64]*model.User, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	start := time.Now()
	args := pgx.NamedArgs{"ids": ids}
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ANY(@ids)`

	rows, err := u.db.Query(ctx, query, args)
	if err != nil {
		u.record("user_get_by_ids", start, false)
		u.log.Error("Error getting users by ids", slog.String("error", err.Error()))
		return nil, custom_errors.ErrDatabaseQuery
	}
	defer rows.Close()

	for rows.Next() {
		var user model.User
		if err := scanUser(rows, &user); err != nil {
			u.record("user_get_by_ids", start, false)
			u.log.Error("Error scanning user", slog.String("error", err.Error()))
			return nil, custom_errors.ErrDatabaseQuery
		}
		result[user.ID] = &user
	}
	if err := rows.Err(); err != nil {
		u.record("user_get_by_ids", start, false)
		u.log.Error("Error iterating users", slog.String("error", err.Error()))
		return nil, custom_errors.ErrDatabaseQuery
	}

	u.record("user_get_by_ids", start, true)
	return result, nil
}

func (u *UserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	start := time.Now()
	u.log.Debug("Updating password", slog.Int64("id", id))

	args := pgx.NamedArgs{
		"id":            id,
		"password_hash": passwordHash,
	}
	query := `UPDATE users SET password_hash = @password_hash WHERE id = @id`
	result, err := u.db.Exec(ctx, query, args)
	if err != nil {
		u.record("user_update_password", start, false)
		u.log.Error("Error updating password", slog.Int64("id", id), slog.String("error", err.Error()))
		return custom_errors.ErrDatabaseQuery
	}
	if result.RowsAffected() == 0 {
		u.record("user_update_password", start, false)
		return custom_errors.ErrUserNotFound
	}

	u.record("user_update_password", start, true)
	return nil
}

// Delete removes the account. Read markers cascade, posts keep a NULL author.
func (u *UserRepository) Delete(ctx context.Context, id int64) error {
	start := time.Now()
	u.log.Debug("Deleting user", slog.Int64("id", id))

	args := pgx.NamedArgs{"id": id}
	query := `DELETE FROM users WHERE id = @id`
	result, err := u.db.Exec(ctx, query, args)
	if err != nil {
		u.record("user_delete", start, false)
		u.log.Error("Error deleting user", slog.Int64("id", id), slog.String("error", err.Error()))
		return custom_errors.ErrDatabaseQuery
	}
	if result.RowsAffected() == 0 {
		u.record("user_delete", start, false)
		u.log.Debug("User not found during deletion", slog.Int64("id", id))
		return custom_errors.ErrUserNotFound
	}

	u.record("user_delete", start, true)
	u.log.Debug("User deleted", slog.Int64("id", id))
	return nil
}

func (u *UserRepository) record(queryType string, start time.Time, success bool) {
	u.metrics.IncrementDatabaseQueries(queryType, success)
	u.metrics.RecordDatabaseQueryDuration(queryType, time.Since(start))
}

func scanUser(row pgx.Row, user *model.User) error {
	return row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt)
}
