package ports

import (
	"context"

	post_repository "feedstack-post-service/internal/domain/ports/output/post"
	read_repository "feedstack-post-service/internal/domain/ports/output/read"
)

//go:generate mockery --name UnitOfWork --dir . --output ../../../../mocks/postgres --outpkg mocks --filename UnitsOfWork.go
type UnitOfWork interface {
	Begin(ctx context.Context) (Transaction, error)
}

//go:generate mockery --name Transaction --dir . --output ../../../../mocks/postgres --outpkg mocks --filename Transaction.go
type Transaction interface {
	PostRepository() post_repository.Repository
	ReadRepository() read_repository.Repository
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}
