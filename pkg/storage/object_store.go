package storage

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Object is a file handed to an ObjectStore.
type Object struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// ObjectStore uploads files and returns their public URL.
type ObjectStore interface {
	Upload(ctx context.Context, obj Object) (string, error)
}

// GenerateName returns a collision-free object name keeping the original extension.
func GenerateName(prefix, original string) string {
	ext := strings.ToLower(filepath.Ext(original))
	if len(ext) > 10 {
		ext = ""
	}
	name := uuid.NewString() + ext
	if prefix == "" {
		return name
	}
	return strings.Trim(prefix, "/") + "/" + name
}
