package filesystem

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feedstack-post-service/internal/custom_errors"
	"feedstack-post-service/internal/infrastructure/logger"
	"feedstack-post-service/internal/infrastructure/outbound/metrics/prometheus"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func newTestStorage(t *testing.T, maxSize int64) *Storage {
	s, err := NewStorage(t.TempDir(), maxSize, logger.New("test"), prometheus.NewPrometheusMetricsProvider())
	require.NoError(t, err)
	return s
}

func TestStorage_Save(t *testing.T) {
	tests := []struct {
		name     string
		fileName string
		content  []byte
		maxSize  int64
		wantErr  error
	}{
		{
			name:     "png image",
			fileName: "cat.png",
			content:  pngHeader,
			maxSize:  1 << 20,
		},
		{
			name:     "plain text rejected",
			fileName: "notes.png",
			content:  []byte("just some text pretending to be an image"),
			maxSize:  1 << 20,
			wantErr:  custom_errors.ErrUnsupportedMedia,
		},
		{
			name:     "too large",
			fileName: "big.png",
			content:  append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0}, 64)...),
			maxSize:  32,
			wantErr:  custom_errors.ErrMediaTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStorage(t, tt.maxSize)

			stored, err := s.Save(context.Background(), tt.fileName, bytes.NewReader(tt.content))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, stored)
				entries, readErr := os.ReadDir(s.Dir())
				require.NoError(t, readErr)
				assert.Empty(t, entries, "rejected upload must not leave a file behind")
				return
			}

			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(stored, PublicPrefix+"/media-"))
			assert.True(t, strings.HasSuffix(stored, "-"+tt.fileName))

			written, err := os.ReadFile(filepath.Join(s.Dir(), filepath.Base(stored)))
			require.NoError(t, err)
			assert.Equal(t, tt.content, written)
		})
	}
}

func TestStorage_Remove(t *testing.T) {
	s := newTestStorage(t, 1<<20)
	ctx := context.Background()

	stored, err := s.Save(ctx, "cat.png", bytes.NewReader(pngHeader))
	require.NoError(t, err)

	require.NoError(t, s.Remove(ctx, stored))
	_, err = os.Stat(filepath.Join(s.Dir(), filepath.Base(stored)))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, s.Remove(ctx, stored), "removing a missing file succeeds")
}

func TestStorage_RemoveStaysInsideDir(t *testing.T) {
	outside := filepath.Join(t.TempDir(), "keep.txt")
	require.NoError(t, os.WriteFile(outside, []byte("x"), 0o644))

	s := newTestStorage(t, 1<<20)
	require.NoError(t, s.Remove(context.Background(), "uploads/../../"+filepath.Base(outside)))

	_, err := os.Stat(outside)
	assert.NoError(t, err)
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "photo.jpg", want: "photo.jpg"},
		{in: "../../etc/passwd", want: "passwd"},
		{in: `C:\Users\me\song.mp3`, want: "song.mp3"},
		{in: "my holiday.mp4", want: "my_holiday.mp4"},
		{in: "", want: "unnamed"},
		{in: "..", want: "unnamed"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitizeFilename(tt.in))
		})
	}
}

func TestStorage_SaveLongName(t *testing.T) {
	s := newTestStorage(t, 1<<20)

	stored, err := s.Save(context.Background(), strings.Repeat("a", 300)+".png", bytes.NewReader(pngHeader))
	require.NoError(t, err)

	name := filepath.Base(stored)
	assert.LessOrEqual(t, len(name), 255)
	assert.True(t, strings.HasSuffix(name, ".png"))
	assert.FileExists(t, filepath.Join(s.Dir(), name))
}

func TestTruncateName(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantLen int
		wantExt string
	}{
		{name: "short name untouched", in: "photo.jpg", wantLen: len("photo.jpg"), wantExt: ".jpg"},
		{name: "long name keeps extension", in: strings.Repeat("b", 400) + ".mp4", wantLen: maxNameBytes, wantExt: ".mp4"},
		{name: "long extension dropped", in: "clip." + strings.Repeat("x", 300), wantLen: maxNameBytes},
		{name: "multibyte cut on rune boundary", in: strings.Repeat("é", 150) + ".png", wantExt: ".png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncateName(tt.in)
			assert.LessOrEqual(t, len(got), maxNameBytes)
			assert.True(t, utf8.ValidString(got))
			if tt.wantLen > 0 {
				assert.Len(t, got, tt.wantLen)
			}
			if tt.wantExt != "" {
				assert.True(t, strings.HasSuffix(got, tt.wantExt), got)
			}
		})
	}
}
