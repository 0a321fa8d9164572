package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// LocalStorage persists files on disk under a base directory.
type LocalStorage struct {
	baseDir string
}

// NewLocalStorage ensures the base directory exists and returns a handle.
func NewLocalStorage(baseDir string) (*LocalStorage, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("storage directory required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	return &LocalStorage{baseDir: baseDir}, nil
}

// Dir returns the base directory.
func (s *LocalStorage) Dir() string {
	return s.baseDir
}

// Save writes the given bytes to the relative path under the base dir.
func (s *LocalStorage) Save(name string, data []byte) (string, error) {
	rel, path, err := s.resolve(name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("prepare storage directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return rel, nil
}

// SaveStream copies from reader into the target path. Partial files are removed on failure.
func (s *LocalStorage) SaveStream(name string, r io.Reader) (string, error) {
	rel, path, err := s.resolve(name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("prepare storage directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	if _, err := io.Copy(file, r); err != nil {
		_ = file.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("write stream: %w", err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("close file: %w", err)
	}
	return rel, nil
}

// Open returns a read-only handle for the stored file.
func (s *LocalStorage) Open(name string) (*os.File, error) {
	_, path, err := s.resolve(name)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	return file, nil
}

// CleanupOlderThan removes files older than the provided TTL and returns deleted names.
func (s *LocalStorage) CleanupOlderThan(ttl time.Duration) ([]string, error) {
	cutoff := time.Now().Add(-ttl)
	deleted := make([]string, 0)
	err := filepath.WalkDir(s.baseDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if info.ModTime().After(cutoff) {
			return nil
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return err
		}
		rel, err := filepath.Rel(s.baseDir, path)
		if err != nil {
			rel = path
		}
		deleted = append(deleted, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("cleanup %s: %w", s.baseDir, err)
	}
	return deleted, nil
}

// resolve keeps every name inside the base directory.
func (s *LocalStorage) resolve(name string) (string, string, error) {
	clean := filepath.Clean("/" + filepath.ToSlash(name))
	if clean == "/" {
		return "", "", fmt.Errorf("invalid file name %q", name)
	}
	rel := strings.TrimPrefix(clean, "/")
	return rel, filepath.Join(s.baseDir, rel), nil
}

// LocalBucket is the development object store: files on disk served under a public base URL.
type LocalBucket struct {
	files         *LocalStorage
	publicBaseURL string
}

// NewLocalBucket wraps a LocalStorage as an ObjectStore.
func NewLocalBucket(files *LocalStorage, publicBaseURL string) *LocalBucket {
	return &LocalBucket{files: files, publicBaseURL: strings.TrimRight(publicBaseURL, "/")}
}

// Upload stores the object and returns its public URL.
func (b *LocalBucket) Upload(ctx context.Context, obj Object) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	name, err := b.files.SaveStream(obj.Name, obj.Body)
	if err != nil {
		return "", err
	}
	return b.publicBaseURL + "/" + name, nil
}
