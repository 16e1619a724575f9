package packager

import (
	"archive/zip"
	"bytes"
	"errors"
	"testing"
)

func TestPackUnpack_RoundTrip(t *testing.T) {
	manifest := []byte(`{"version":"1.0"}`)

	archive, err := Pack(manifest)
	if err != nil {
		t.Fatalf("pack: %v", err)
	}

	got, err := Unpack(archive)
	if err != nil {
		t.Fatalf("unpack: %v", err)
	}
	if !bytes.Equal(got, manifest) {
		t.Fatalf("manifest mismatch: %q != %q", got, manifest)
	}
}

func TestPack_ContainsReadme(t *testing.T) {
	archive, err := Pack([]byte("{}"))
	if err != nil {
		t.Fatalf("pack: %v", err)
	}

	r, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}

	names := make(map[string]bool, len(r.File))
	for _, f := range r.File {
		names[f.Name] = true
	}
	if !names[ManifestEntryName] {
		t.Fatalf("archive must contain %s", ManifestEntryName)
	}
	if !names["README.txt"] {
		t.Fatalf("archive must contain README.txt")
	}
}

func TestUnpack_ManifestMissing(t *testing.T) {
	// Well-formed zip without the expected entry.
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	entry, err := w.Create("other.txt")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := entry.Write([]byte("nothing to see")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	_, err = Unpack(buf.Bytes())
	if !errors.Is(err, ErrManifestNotFound) {
		t.Fatalf("expected ErrManifestNotFound, got %v", err)
	}
}

func TestUnpackLimit_RefusesOversizedManifest(t *testing.T) {
	// Highly compressible payload: a tiny archive that would inflate far
	// past the cap if the limit were not enforced.
	manifest := bytes.Repeat([]byte{'a'}, 1<<20)
	archive, err := Pack(manifest)
	if err != nil {
		t.Fatalf("pack: %v", err)
	}

	_, err = UnpackLimit(archive, 64<<10)
	if !errors.Is(err, ErrManifestTooLarge) {
		t.Fatalf("expected ErrManifestTooLarge, got %v", err)
	}
}

func TestUnpackLimit_AllowsManifestAtLimit(t *testing.T) {
	manifest := bytes.Repeat([]byte{'a'}, 64<<10)
	archive, err := Pack(manifest)
	if err != nil {
		t.Fatalf("pack: %v", err)
	}

	got, err := UnpackLimit(archive, 64<<10)
	if err != nil {
		t.Fatalf("unpack: %v", err)
	}
	if !bytes.Equal(got, manifest) {
		t.Fatalf("manifest mismatch after capped read")
	}
}

func TestUnpack_NotAnArchive(t *testing.T) {
	if _, err := Unpack([]byte("definitely not a zip")); err == nil {
		t.Fatalf("expected error for non-archive input")
	}
}

func TestUnpack_EmptyManifest(t *testing.T) {
	archive, err := Pack(nil)
	if err != nil {
		t.Fatalf("pack: %v", err)
	}
	got, err := Unpack(archive)
	if err != nil {
		t.Fatalf("unpack: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty manifest, got %d bytes", len(got))
	}
}
