package profileinator

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Storage is an interface for archiving generated variants. Implementations
// can wrap existing storage clients (local disk, GCS, S3, etc.) with this
// interface. Archiving is always best-effort: a storage failure never affects
// the response returned to the client.
type Storage interface {
	// SaveFile saves image data to storage and returns a locator for it
	// (a path or public URL). The path should include the full object path
	// (e.g., "variants/20260831T120000_abcd/2.png").
	SaveFile(ctx context.Context, data []byte, path string, contentType string) (string, error)
}

// StorageResult contains information about a saved variant.
type StorageResult struct {
	// URL is the locator where the image can be accessed
	URL string

	// Path is the storage path/key where the image was saved
	Path string

	// Size is the number of bytes saved
	Size int
}

// SaveVariants archives all non-empty variants under basePath, with paths
// like {basePath}/{index}.{extension}. Failed slots are skipped.
func SaveVariants(ctx context.Context, storage Storage, variants []Variant, basePath string) ([]StorageResult, error) {
	if storage == nil {
		return nil, ErrStorageNotConfigured
	}

	results := make([]StorageResult, 0, len(variants))
	for _, v := range variants {
		if v.Failed() {
			continue
		}

		path := basePath + "/" + strconv.Itoa(v.Index) + "." + extensionFromMIME(v.MIMEType)
		url, err := storage.SaveFile(ctx, v.Data, path, v.MIMEType)
		if err != nil {
			return results, err
		}

		results = append(results, StorageResult{
			URL:  url,
			Path: path,
			Size: len(v.Data),
		})
	}

	return results, nil
}

// GetMIMEType guesses an image MIME type from a file path.
func GetMIMEType(filePath string) string {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	default:
		return "image/png"
	}
}

// extensionFromMIME returns a file extension for common image MIME types.
func extensionFromMIME(mime string) string {
	switch mime {
	case "image/png":
		return "png"
	case "image/jpeg":
		return "jpg"
	case "image/webp":
		return "webp"
	case "image/gif":
		return "gif"
	default:
		return "png"
	}
}

// LocalStorage archives variants under a base directory on local disk.
type LocalStorage struct {
	baseDir string
}

// Ensure LocalStorage implements Storage.
var _ Storage = (*LocalStorage)(nil)

// NewLocalStorage creates a LocalStorage rooted at baseDir, creating the
// directory if needed.
func NewLocalStorage(baseDir string) (*LocalStorage, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("base directory is required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}
	return &LocalStorage{baseDir: baseDir}, nil
}

// SaveFile writes data to baseDir/path and returns the absolute file path.
func (s *LocalStorage) SaveFile(_ context.Context, data []byte, path string, _ string) (string, error) {
	full := filepath.Join(s.baseDir, filepath.FromSlash(path))

	// Refuse paths that escape the base directory.
	if rel, err := filepath.Rel(s.baseDir, full); err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("path %q escapes archive directory", path)
	}

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return full, nil
}

// Prune removes archived files older than maxAge and returns how many files
// were removed. Empty directories left behind are removed as well.
func (s *LocalStorage) Prune(maxAge time.Duration) (int, error) {
	cutoff := time.Now().Add(-maxAge)
	removed := 0

	err := filepath.WalkDir(s.baseDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(path); err != nil {
				return err
			}
			removed++
		}
		return nil
	})
	if err != nil {
		return removed, fmt.Errorf("prune walk failed: %w", err)
	}

	s.removeEmptyDirs()
	return removed, nil
}

func (s *LocalStorage) removeEmptyDirs() {
	// Best-effort: a directory that still has children simply fails to remove.
	_ = filepath.WalkDir(s.baseDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() || path == s.baseDir {
			return err
		}
		if os.Remove(path) == nil {
			return fs.SkipDir
		}
		return nil
	})
}
