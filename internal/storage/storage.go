package storage

import (
	"context"
	"io"
	"time"
)

// Uploader writes an object and returns its stored path. Objects stay private.
type Uploader interface {
	Upload(ctx context.Context, objectName string, contentType string, r io.Reader) (storedPath string, err error)
}

// Signer hands out short-lived read URLs for private objects.
type Signer interface {
	SignedGetURL(ctx context.Context, objectName string, ttl time.Duration) (string, error)
}

type ObjectStore interface {
	Uploader
	Signer
}

var _ ObjectStore = (*GCSStore)(nil)
