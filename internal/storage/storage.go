package storage

import (
	"context"
	"io"
	"time"
)

type Uploader interface {
	Upload(ctx context.Context, objectName string, contentType string, r io.Reader) (storedPath string, err error)
}

type Signer interface {
	SignedGetURL(ctx context.Context, objectName string, ttl time.Duration) (string, error)
}

// Presigner issues time-limited PUT destinations so clients transfer raw
// blobs straight to the bucket instead of routing bytes through the API
// server.
type Presigner interface {
	SignedPutURL(ctx context.Context, objectName string, contentType string, ttl time.Duration) (string, error)
}
