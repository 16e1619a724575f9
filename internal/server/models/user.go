// Package models defines server-side data models persisted in the
// database. None of them ever carries private key or session key
// material; wrapped keys live only inside archived manifests in object
// storage.
package models

import "time"

// User is a registered account. PublicKey is the PEM-encoded public
// half the user registered so senders can address packages to them;
// the private half never leaves the client.
type User struct {
	ID           string
	UserName     string
	PasswordHash []byte
	Salt         []byte
	PublicKey    string
	Fingerprint  string
	CreatedAt    time.Time
}
