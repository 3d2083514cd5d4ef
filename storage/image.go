// Package storage uploads and deletes menu item images.
package storage

import (
	"context"
	"io"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// ImageStore stores image bytes and hands back a public URL.
type ImageStore interface {
	Upload(ctx context.Context, name, contentType string, body io.Reader) (string, error)
	// Delete removes the object behind a URL previously returned by Upload.
	Delete(ctx context.Context, url string) error
}

// objectName builds a collision-free file name keeping a sensible extension.
func objectName(contentType string) string {
	ext := ""
	if m := mimetype.Lookup(contentType); m != nil {
		ext = m.Extension()
	}
	return uuid.NewString() + ext
}
