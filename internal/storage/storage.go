package storage

import (
	"context"
	"io"
)

// Package storage contains the audio blob storage abstraction. The default
// implementation keeps recordings on the local filesystem; an S3-compatible
// implementation is available for hosted deployments without a persistent disk.

// BlobStore persists committed audio recordings keyed by their dataset
// filename. A name handed to Put must never be reused; implementations rely
// on the caller for uniqueness.
type BlobStore interface {
	// Put stores exactly size bytes from r under name. The blob must only
	// become visible under name once fully written: a failure mid-write must
	// not leave a partial blob that could be mistaken for a committed one.
	Put(ctx context.Context, name string, r io.Reader, size int64) error
	// Get returns the blob's content as a streaming reader and its size.
	Get(ctx context.Context, name string) (io.ReadCloser, int64, error)
	// Delete removes the blob. Used to roll back a commit whose metadata
	// append failed.
	Delete(ctx context.Context, name string) error
}
