// Package history records sent and received packages in a local SQLite
// database, including the verification outcome of received ones.
package history

import (
	"context"
	"time"
)

const (
	DirectionSent     = "sent"
	DirectionReceived = "received"
)

// Record is one history entry. For sent packages the verification flags
// are always true.
type Record struct {
	ID             int64
	Direction      string
	PackageID      string
	Counterparty   string
	Filename       string
	Size           int64
	MimeType       string
	HashValid      bool
	SignatureValid bool
	Verified       bool
	CreatedAt      time.Time
}

type Repository interface {
	Add(ctx context.Context, rec *Record) error
	List(ctx context.Context) ([]*Record, error)
}
