// Package keyring manages the client's locally stored RSA key pairs.
// Private keys are written with owner-only permissions and never leave
// the keys directory.
package keyring

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sealdrop/sealdrop/internal/cryptox"
	"github.com/sealdrop/sealdrop/internal/filex"
)

const (
	privateSuffix = ".key.pem"
	publicSuffix  = ".pub.pem"
)

// ErrKeyNotFound is returned when no pair with the requested name exists.
var ErrKeyNotFound = errors.New("key pair not found")

// Entry describes one stored key pair.
type Entry struct {
	Name        string
	Fingerprint string
}

// Keyring stores PEM key pairs under a single directory, one pair per
// name: <name>.key.pem (private, 0600) and <name>.pub.pem.
type Keyring struct {
	dir string
}

// New ensures dir exists (owner-only) and returns a Keyring over it.
func New(dir string) (*Keyring, error) {
	d, err := filex.EnsureDir(dir)
	if err != nil {
		return nil, err
	}
	return &Keyring{dir: d}, nil
}

// Generate creates a fresh 2048-bit pair and stores it under name.
// An existing pair with the same name is never overwritten.
func (k *Keyring) Generate(name string) (*cryptox.KeyPair, error) {
	if _, err := os.Stat(k.privatePath(name)); err == nil {
		return nil, fmt.Errorf("key pair %q already exists", name)
	}

	pair, err := cryptox.GenerateKeyPair()
	if err != nil {
		return nil, fmt.Errorf("generating key pair: %w", err)
	}
	if err := k.Save(name, pair); err != nil {
		return nil, err
	}
	return pair, nil
}

// Save writes the pair to disk. The private key file is 0600.
func (k *Keyring) Save(name string, pair *cryptox.KeyPair) error {
	if err := os.WriteFile(k.privatePath(name), []byte(pair.PrivateKey), 0o600); err != nil {
		return fmt.Errorf("writing private key: %w", err)
	}
	if err := os.WriteFile(k.publicPath(name), []byte(pair.PublicKey), 0o644); err != nil {
		return fmt.Errorf("writing public key: %w", err)
	}
	return nil
}

// Load reads the pair stored under name.
func (k *Keyring) Load(name string) (*cryptox.KeyPair, error) {
	priv, err := os.ReadFile(k.privatePath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("reading private key: %w", err)
	}

	pub, err := os.ReadFile(k.publicPath(name))
	if err != nil {
		// public half can always be rebuilt from the private one
		p, derr := cryptox.PublicKeyFromPrivate(string(priv))
		if derr != nil {
			return nil, fmt.Errorf("reading public key: %w", err)
		}
		pub = []byte(p)
	}

	pair := &cryptox.KeyPair{PrivateKey: string(priv), PublicKey: string(pub)}
	if _, err := cryptox.ParsePrivateKey(pair.PrivateKey); err != nil {
		return nil, fmt.Errorf("key pair %q: %w", name, err)
	}
	return pair, nil
}

// List returns the stored pairs with their public key fingerprints.
func (k *Keyring) List() ([]Entry, error) {
	matches, err := filepath.Glob(filepath.Join(k.dir, "*"+privateSuffix))
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(matches))
	for _, m := range matches {
		name := strings.TrimSuffix(filepath.Base(m), privateSuffix)
		pair, err := k.Load(name)
		if err != nil {
			continue
		}
		entries = append(entries, Entry{Name: name, Fingerprint: cryptox.Fingerprint(pair.PublicKey)})
	}
	return entries, nil
}

func (k *Keyring) privatePath(name string) string {
	return filepath.Join(k.dir, name+privateSuffix)
}

func (k *Keyring) publicPath(name string) string {
	return filepath.Join(k.dir, name+publicSuffix)
}
