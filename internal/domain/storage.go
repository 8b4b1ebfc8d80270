package domain

import (
	"context"
	"io"
)

// Binary media storage (S3/MinIO). Keys are content-addressed so a
// re-uploaded photo lands on the same object.
type MediaPutResult struct {
	StorageKey string
	Size       int64
	SHA256     []byte
}

type MediaStorage interface {
	Put(ctx context.Context, r io.Reader, hintName string, mime string) (MediaPutResult, error)
	// Streaming read for serving; rangeHeader is the raw "bytes=START-END"
	// value (empty for a full read).
	Get(
		ctx context.Context,
		storageKey string,
		rangeHeader string,
	) (rc io.ReadCloser, contentLen int64, contentRange, contentType, etag string, err error)
	Delete(ctx context.Context, storageKey string) error
	Ping(ctx context.Context) error
}
