package memory

import (
	"context"
	"errors"

	ports "feedstack-post-service/internal/domain/ports/output"
	post_repository "feedstack-post-service/internal/domain/ports/output/post"
	read_repository "feedstack-post-service/internal/domain/ports/output/read"
)

var errTxClosed = errors.New("tx is closed")

type UnitOfWork struct {
	store *Store
}

func NewUnitOfWork(store *Store) ports.UnitOfWork {
	return &UnitOfWork{store: store}
}

func (u *UnitOfWork) Begin(ctx context.Context) (ports.Transaction, error) {
	return &Transaction{store: u.store}, nil
}

// Transaction applies writes immediately. Rollback only closes it, so callers
// must keep the failing step before any write they cannot tolerate.
type Transaction struct {
	store  *Store
	closed bool
}

func (t *Transaction) PostRepository() post_repository.Repository {
	return t.store.Posts()
}

func (t *Transaction) ReadRepository() read_repository.Repository {
	return t.store.Reads()
}

func (t *Transaction) Commit(ctx context.Context) error {
	if t.closed {
		return errTxClosed
	}
	t.closed = true
	return nil
}

func (t *Transaction) Rollback(ctx context.Context) error {
	if t.closed {
		return errTxClosed
	}
	t.closed = true
	return nil
}
