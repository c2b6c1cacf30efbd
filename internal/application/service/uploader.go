package service

import (
	"context"
	"io"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
)

// Uploader stores images (profile pictures, resume photos, course thumbnails).
type Uploader interface {
	Upload(ctx context.Context, file io.Reader, folder string, publicID string) (string, error)
	Delete(ctx context.Context, publicID string) error
	GetClient() *cloudinary.Cloudinary
}

// VideoObject is an opened lecture video that can be read from any offset.
type VideoObject interface {
	io.ReadSeekCloser
	Size() int64
	ContentType() string
	ModTime() time.Time
}

// VideoStore keeps uploaded lecture videos.
type VideoStore interface {
	Put(ctx context.Context, objectName string, r io.Reader, size int64, contentType string) error
	// Open returns NotFound when the object does not exist.
	Open(ctx context.Context, objectName string) (VideoObject, error)
	Remove(ctx context.Context, objectName string) error
}
