package docs

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/cloo-solutions/dokrag/internal/storage"
)

const archivePrefix = "raw/"

// readSource loads OCR text from a local file or an s3://bucket/key object.
func readSource(ctx context.Context, rt Runtime, source string) (string, error) {
	if storage.IsS3URI(source) {
		store, err := rt.Store(ctx)
		if err != nil {
			return "", err
		}
		return store.GetTextURI(ctx, source)
	}

	info, err := os.Stat(source)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", source, err)
	}
	if info.Size() > storage.MaxTextSize {
		return "", fmt.Errorf("read %s: %w", source, storage.ErrTooLarge)
	}
	data, err := os.ReadFile(source)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", source, err)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("read %s: %w", source, storage.ErrNotUTF8)
	}
	return string(data), nil
}

// sourceFilename is the display file name of a source.
func sourceFilename(source string) string {
	if storage.IsS3URI(source) {
		return path.Base(source)
	}
	return filepath.Base(source)
}

// defaultSourceKey identifies a document across re-ingestions: the object
// URI for s3 sources, the file name for local files.
func defaultSourceKey(source string) string {
	if storage.IsS3URI(source) {
		return source
	}
	return filepath.Base(source)
}

// archiveKey places raw text under raw/ in the archive bucket.
func archiveKey(sourceKey string) string {
	key := strings.TrimPrefix(sourceKey, "s3://")
	key = strings.TrimLeft(filepath.ToSlash(key), "/")
	if !strings.HasSuffix(key, ".txt") {
		key += ".txt"
	}
	return archivePrefix + key
}
