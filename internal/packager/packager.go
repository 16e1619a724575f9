// Package packager bundles a serialized manifest into a single
// transportable zip archive, together with a short human-readable note.
// The archive carries no cryptographic semantics and performs no
// validation; that is the manifest codec's job.
package packager

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
)

const (
	// ManifestEntryName is the archive entry holding the manifest.
	ManifestEntryName = "manifest.json"

	readmeEntryName = "README.txt"

	readmeText = `This archive contains an encrypted SealDrop package.

The manifest.json entry holds the encrypted file, the wrapped session
key, the sender's public key and the integrity signature. It can only
be opened with the intended recipient's private key, using a SealDrop
client.
`
)

// DefaultMaxManifestSize bounds how far a manifest entry may inflate.
// A manifest carries the payload as base64, so it runs larger than the
// original file but never by orders of magnitude.
const DefaultMaxManifestSize = 256 << 20

var (
	// ErrManifestNotFound is returned by Unpack when the archive does
	// not contain a manifest entry.
	ErrManifestNotFound = errors.New("manifest not found in archive")

	// ErrManifestTooLarge is returned when the manifest entry would
	// inflate past the size limit.
	ErrManifestTooLarge = errors.New("manifest exceeds size limit")
)

// Pack wraps serialized manifest text into a compressed archive.
func Pack(manifest []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	entry, err := w.Create(ManifestEntryName)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", ManifestEntryName, err)
	}
	if _, err := entry.Write(manifest); err != nil {
		return nil, fmt.Errorf("write %s: %w", ManifestEntryName, err)
	}

	entry, err = w.Create(readmeEntryName)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", readmeEntryName, err)
	}
	if _, err := entry.Write([]byte(readmeText)); err != nil {
		return nil, fmt.Errorf("write %s: %w", readmeEntryName, err)
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("finalize archive: %w", err)
	}
	return buf.Bytes(), nil
}

// Unpack extracts the manifest text from an archive produced by Pack,
// refusing entries that inflate past DefaultMaxManifestSize.
func Unpack(archive []byte) ([]byte, error) {
	return UnpackLimit(archive, DefaultMaxManifestSize)
}

// UnpackLimit is Unpack with an explicit inflation cap. The declared
// entry size is checked first; the read itself is capped too, so a
// header lying about its size cannot bypass the limit.
func UnpackLimit(archive []byte, maxManifest int64) ([]byte, error) {
	r, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}

	for _, f := range r.File {
		if f.Name != ManifestEntryName {
			continue
		}
		if f.UncompressedSize64 > uint64(maxManifest) {
			return nil, ErrManifestTooLarge
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", ManifestEntryName, err)
		}
		defer rc.Close()

		manifest, err := io.ReadAll(io.LimitReader(rc, maxManifest+1))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", ManifestEntryName, err)
		}
		if int64(len(manifest)) > maxManifest {
			return nil, ErrManifestTooLarge
		}
		return manifest, nil
	}

	return nil, ErrManifestNotFound
}
