package models

import "time"

// Package describes one stored secure package: bookkeeping metadata
// about an archived manifest blob in object storage. The schema
// deliberately has no column for key material or manifest content.
type Package struct {
	ID          string
	SenderID    string
	RecipientID string

	// StorageKey is the object-storage key (path) of the archive blob.
	StorageKey string

	// OriginalFilename, Size and MimeType mirror the envelope metadata
	// so recipients can list packages without downloading them.
	OriginalFilename string
	Size             int64
	MimeType         string

	CreatedAt time.Time
}
