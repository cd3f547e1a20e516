package postgres

import (
	"context"
	"fmt"

	ports "feedstack-post-service/internal/domain/ports/output"
	post_repository "feedstack-post-service/internal/domain/ports/output/post"
	read_repository "feedstack-post-service/internal/domain/ports/output/read"
	post_repository_postgres "feedstack-post-service/internal/infrastructure/outbound/repository/post/postgres"
	read_repository_postgres "feedstack-post-service/internal/infrastructure/outbound/repository/read/postgres"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresUnitOfWork struct {
	pool    *pgxpool.Pool
	log     ports.Logger
	metrics ports.MetricsProvider
}

func NewPostgresUOW(pool *pgxpool.Pool, log ports.Logger, metrics ports.MetricsProvider) ports.UnitOfWork {
	return &PostgresUnitOfWork{pool: pool, log: log, metrics: metrics}
}

func (uow *PostgresUnitOfWork) Begin(ctx context.Context) (ports.Transaction, error) {
	tx, err := uow.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("error beginning transaction: %w", err)
	}
	return &PostgresTransaction{tx: tx, log: uow.log, metrics: uow.metrics}, nil
}

type PostgresTransaction struct {
	tx      pgx.Tx
	log     ports.Logger
	metrics ports.MetricsProvider
}

func (t *PostgresTransaction) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

func (t *PostgresTransaction) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}

func (t *PostgresTransaction) PostRepository() post_repository.Repository {
	return post_repository_postgres.NewPostRepository(t.tx, t.log, t.metrics)
}

func (t *PostgresTransaction) ReadRepository() read_repository.Repository {
	return read_repository_postgres.NewReadRepository(t.tx, t.log, t.metrics)
}
