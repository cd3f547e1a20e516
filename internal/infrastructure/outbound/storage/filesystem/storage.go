package filesystem

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"feedstack-post-service/internal/custom_errors"
	ports "feedstack-post-service/internal/domain/ports/output"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// PublicPrefix is the URL path uploaded files are served under. Stored paths
// start with it.
const PublicPrefix = "uploads"

const sniffSize = 3072

// maxNameBytes caps the original name part so "media-<uuid>-<name>" stays
// under the 255 byte file name limit of common filesystems.
const maxNameBytes = 200

// maxExtBytes is the longest extension kept when a name is shortened.
const maxExtBytes = 16

var allowedTypes = []string{"image/", "video/", "audio/"}

type Storage struct {
	dir     string
	maxSize int64
	log     ports.Logger
	metrics ports.MetricsProvider
}

func NewStorage(dir string, maxSize int64, log ports.Logger, metrics ports.MetricsProvider) (*Storage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Storage{dir: dir, maxSize: maxSize, log: log, metrics: metrics}, nil
}

func (s *Storage) Dir() string {
	return s.dir
}

// Save sniffs the content type, then writes the file under a unique name. The
// returned path is relative and starts with PublicPrefix.
func (s *Storage) Save(ctx context.Context, originalName string, r io.Reader) (string, error) {
	head := make([]byte, sniffSize)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		s.metrics.IncrementMediaOperations("save", false)
		s.log.Error("Failed to read upload", slog.String("error", err.Error()))
		return "", custom_errors.ErrMediaSaveFailed
	}
	head = head[:n]

	mtype := mimetype.Detect(head)
	if !isAllowed(mtype) {
		s.metrics.IncrementMediaOperations("save", false)
		s.log.Debug("Rejected upload", slog.String("mime", mtype.String()), slog.String("name", originalName))
		return "", fmt.Errorf("%w: %s", custom_errors.ErrUnsupportedMedia, mtype.String())
	}

	name := fmt.Sprintf("media-%s-%s", uuid.NewString(), sanitizeFilename(originalName))
	dest := filepath.Join(s.dir, name)

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		s.metrics.IncrementMediaOperations("save", false)
		s.log.Error("Failed to create media file", slog.String("path", dest), slog.String("error", err.Error()))
		return "", custom_errors.ErrMediaSaveFailed
	}

	src := io.MultiReader(bytes.NewReader(head), r)
	written, err := io.Copy(out, io.LimitReader(src, s.maxSize+1))
	closeErr := out.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil && written > s.maxSize {
		err = custom_errors.ErrMediaTooLarge
	}
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		_ = os.Remove(dest)
		s.metrics.IncrementMediaOperations("save", false)
		if errors.Is(err, custom_errors.ErrMediaTooLarge) {
			s.log.Debug("Upload exceeds size limit", slog.Int64("max_size", s.maxSize))
			return "", err
		}
		s.log.Error("Failed to write media file", slog.String("path", dest), slog.String("error", err.Error()))
		return "", custom_errors.ErrMediaSaveFailed
	}

	s.metrics.IncrementMediaOperations("save", true)
	s.log.Debug("Media saved", slog.String("name", name), slog.String("mime", mtype.String()), slog.Int64("size", written))
	return path.Join(PublicPrefix, name), nil
}

// Remove deletes a stored file. Removing a file that is already gone succeeds.
func (s *Storage) Remove(ctx context.Context, stored string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	name := filepath.Base(filepath.FromSlash(stored))
	if name == "." || name == string(filepath.Separator) || name == ".." {
		return fmt.Errorf("%w: invalid path %q", custom_errors.ErrMediaRemoveFailed, stored)
	}

	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.metrics.IncrementMediaOperations("remove", false)
		s.log.Error("Failed to remove media file", slog.String("name", name), slog.String("error", err.Error()))
		return fmt.Errorf("%w: %v", custom_errors.ErrMediaRemoveFailed, err)
	}

	s.metrics.IncrementMediaOperations("remove", true)
	s.log.Debug("Media removed", slog.String("name", name))
	return nil
}

func isAllowed(mtype *mimetype.MIME) bool {
	for m := mtype; m != nil; m = m.Parent() {
		for _, prefix := range allowedTypes {
			if strings.HasPrefix(m.String(), prefix) {
				return true
			}
		}
	}
	return false
}

func sanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\' || r == 0:
			return -1
		case r == ' ':
			return '_'
		}
		return r
	}, name)

	if name == "" || name == "." || name == ".." {
		name = "unnamed"
	}
	return truncateName(name)
}

func truncateName(name string) string {
	if len(name) <= maxNameBytes {
		return name
	}

	ext := filepath.Ext(name)
	if len(ext) > maxExtBytes || !utf8.ValidString(ext) {
		ext = ""
	}
	base := strings.TrimSuffix(name, ext)

	limit := maxNameBytes - len(ext)
	for limit > 0 && !utf8.RuneStart(base[limit]) {
		limit--
	}
	return base[:limit] + ext
}
