// Package storage defines the object-storage boundary for archived
// packages. The store treats archives as opaque blobs addressed by key;
// it has no crypto awareness.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ArchiveStore is the put/get/delete surface the package service
// depends on.
type ArchiveStore interface {
	Put(ctx context.Context, key string, blob []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error

	// PresignGet returns a temporary URL from which the blob can be
	// fetched directly, bypassing the API server.
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// RandomStorageKey produces a date-partitioned object key for a new
// archive.
func RandomStorageKey() string {
	d := time.Now()
	return fmt.Sprintf("packages/%d/%02d/%02d/%v", d.Year(), int(d.Month()), d.Day(), uuid.New())
}
