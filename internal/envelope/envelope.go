// Package envelope implements the secure package protocol: building a
// self-describing encrypted envelope from a plaintext file and a pair of
// RSA keys, opening it back into verified plaintext, and the canonical
// manifest wire codec shared by both directions.
//
// Every Build or Open call is self-contained: it generates or consumes
// its own session key and touches no shared state, so any number of
// calls may run concurrently without coordination.
package envelope

import (
	"time"

	"github.com/sealdrop/sealdrop/internal/cryptox"
)

// Version is the protocol version tag stamped into every envelope built
// by this package.
const Version = "1.0"

// Metadata describes the original file, carried alongside the
// ciphertext so the recipient can restore it faithfully.
type Metadata struct {
	OriginalFilename string
	OriginalSize     int64
	MimeType         string
	Timestamp        time.Time
}

// Envelope is the transportable unit of the protocol. It is immutable
// once built: any field change invalidates the hash or signature checks
// downstream.
type Envelope struct {
	Version             string
	EncryptedFile       cryptox.SymmetricCiphertext
	EncryptedSessionKey []byte

	// FileHash is the SHA-256 hex digest of the ORIGINAL plaintext,
	// computed before encryption so it certifies plaintext integrity.
	FileHash string

	// Signature is an RSA-PSS signature over FileHash by the sender.
	Signature []byte

	// UploaderPublicKey is the sender's public key, embedded so the
	// recipient can verify without an out-of-band key fetch.
	UploaderPublicKey string

	Metadata Metadata
}

// VerificationResult reports the outcome of the non-fatal authenticity
// checks performed while opening an envelope. It is never persisted as
// part of the envelope.
type VerificationResult struct {
	HashValid      bool
	SignatureValid bool

	// Verified is true only when both checks passed.
	Verified bool
}
