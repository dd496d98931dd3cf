package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key does not exist. Callers that
// treat absence as "use default" must check for it with errors.Is.
var ErrNotFound = errors.New("object not found")

// ObjectStorage defines the blob store operations the pipeline relies on:
// whole-object reads and writes plus prefix listing and copy/delete for
// archiving. Writes replace the whole object, so a Get never observes a
// partially written value.
type ObjectStorage interface {
	// Get returns the full contents of an object, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put writes an object in one operation, overwriting any previous value.
	Put(ctx context.Context, key string, data []byte, contentType string) error

	// List returns all keys under the given prefix, in lexical order.
	List(ctx context.Context, prefix string) ([]string, error)

	// Copy duplicates an object to a new key within the same bucket.
	Copy(ctx context.Context, srcKey, dstKey string) error

	// Delete removes an object. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
