package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no blob exists under the given locator.
var ErrNotFound = errors.New("blob not found")

// Object is a stored blob together with the metadata recorded at upload.
type Object struct {
	Data         []byte
	ContentType  string
	OriginalName string
	Size         int64
}

// BlobStore stores raw file bytes under opaque, caller-generated locators.
// Delete is idempotent: removing a locator that does not exist is not an
// error, so a retried cleanup never fails.
type BlobStore interface {
	Put(ctx context.Context, blobName, contentType, originalName string, data []byte) error
	Get(ctx context.Context, blobName string) (*Object, error)
	Delete(ctx context.Context, blobName string) error
}

// URLSigner is implemented by backends that can hand out time-limited
// download URLs instead of streaming bytes through the API server.
type URLSigner interface {
	SignedURL(ctx context.Context, blobName string, ttl time.Duration) (string, error)
}
