package media_storage

import (
	"context"
	"io"
)

// Storage keeps uploaded media files. Paths are relative and safe to persist
// alongside the post.
//
//go:generate mockery --name Storage --dir . --output ../../../../../mocks/media --outpkg mocks --filename MediaStorage.go
type Storage interface {
	Save(ctx context.Context, originalName string, r io.Reader) (string, error)
	Remove(ctx context.Context, path string) error
}
