package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/sealdrop/sealdrop/internal/client/repositories/history"
	"github.com/sealdrop/sealdrop/internal/client/transport"
	"github.com/sealdrop/sealdrop/internal/cryptox"
)

var (
	pairsOnce sync.Once
	senderKP  *cryptox.KeyPair
	bobKP     *cryptox.KeyPair
)

func testPairs(t *testing.T) (sender, recipient *cryptox.KeyPair) {
	t.Helper()
	pairsOnce.Do(func() {
		var err error
		if senderKP, err = cryptox.GenerateKeyPair(); err != nil {
			panic(err)
		}
		if bobKP, err = cryptox.GenerateKeyPair(); err != nil {
			panic(err)
		}
	})
	return senderKP, bobKP
}

type fakeAPI struct {
	keyOut *transport.PublicKeyResult
	keyErr error

	uploadedArchive []byte
	uploadedTo      string
	uploadOut       *transport.PackageInfo
	uploadErr       error

	listOut []transport.PackageInfo

	archiveOut []byte
	archiveErr error

	presignOut string
	presignErr error

	deletedID string
}

func (f *fakeAPI) GetPublicKey(ctx context.Context, username string) (*transport.PublicKeyResult, error) {
	return f.keyOut, f.keyErr
}
func (f *fakeAPI) UploadPackage(ctx context.Context, recipient string, archive []byte, filename, mimeType string, size int64) (*transport.PackageInfo, error) {
	f.uploadedTo, f.uploadedArchive = recipient, archive
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	if f.uploadOut != nil {
		return f.uploadOut, nil
	}
	return &transport.PackageInfo{ID: "p1", OriginalFilename: filename, Size: size, MimeType: mimeType}, nil
}
func (f *fakeAPI) ListPackages(ctx context.Context) ([]transport.PackageInfo, error) {
	return f.listOut, nil
}
func (f *fakeAPI) DownloadArchive(ctx context.Context, packageID string) ([]byte, error) {
	return f.archiveOut, f.archiveErr
}
func (f *fakeAPI) PresignURL(ctx context.Context, packageID string) (string, error) {
	return f.presignOut, f.presignErr
}
func (f *fakeAPI) DeletePackage(ctx context.Context, packageID string) error {
	f.deletedID = packageID
	return nil
}

type memHistory struct {
	recs []*history.Record
}

func (m *memHistory) Add(ctx context.Context, rec *history.Record) error {
	m.recs = append(m.recs, rec)
	return nil
}
func (m *memHistory) List(ctx context.Context) ([]*history.Record, error) {
	out := make([]*history.Record, len(m.recs))
	for i := range m.recs {
		out[len(m.recs)-1-i] = m.recs[i]
	}
	return out, nil
}

func writeTempFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestSendThenFetch_RoundTrip(t *testing.T) {
	sender, recipient := testPairs(t)
	content := []byte("attack at dawn")

	api := &fakeAPI{
		keyOut: &transport.PublicKeyResult{
			Username:    "bob",
			PublicKey:   recipient.PublicKey,
			Fingerprint: cryptox.Fingerprint(recipient.PublicKey),
		},
	}
	hist := &memHistory{}
	downloadDir := filepath.Join(t.TempDir(), "downloads")
	s := NewPackageService(api, hist, downloadDir)

	path := writeTempFile(t, "secret.txt", content)
	sent, err := s.Send(context.Background(), path, "bob", sender.PrivateKey)
	if err != nil {
		t.Fatalf("Send error: %v", err)
	}
	if sent.PackageID != "p1" || sent.Recipient != "bob" {
		t.Fatalf("unexpected result: %+v", sent)
	}
	if sent.Size != int64(len(content)) {
		t.Fatalf("size: %d", sent.Size)
	}
	if len(api.uploadedArchive) == 0 {
		t.Fatalf("no archive uploaded")
	}

	// the recipient fetches the same archive through the API
	api.archiveOut = api.uploadedArchive
	got, err := s.Fetch(context.Background(), "p1", recipient.PrivateKey, true)
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if !got.Verification.Verified || !got.Verification.HashValid || !got.Verification.SignatureValid {
		t.Fatalf("verification failed: %+v", got.Verification)
	}
	if got.Filename != "secret.txt" {
		t.Fatalf("filename: %q", got.Filename)
	}

	data, err := os.ReadFile(got.Path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != string(content) {
		t.Fatalf("content mismatch: %q", data)
	}

	recs, err := s.History(context.Background())
	if err != nil || len(recs) != 2 {
		t.Fatalf("history: got (%v, %v)", recs, err)
	}
	if recs[0].Direction != history.DirectionReceived || recs[1].Direction != history.DirectionSent {
		t.Fatalf("unexpected history order: %+v", recs)
	}
}

func TestFetch_WrongKeyAborts(t *testing.T) {
	sender, recipient := testPairs(t)

	api := &fakeAPI{
		keyOut: &transport.PublicKeyResult{PublicKey: recipient.PublicKey},
	}
	s := NewPackageService(api, &memHistory{}, filepath.Join(t.TempDir(), "dl"))

	path := writeTempFile(t, "f.txt", []byte("data"))
	if _, err := s.Send(context.Background(), path, "bob", sender.PrivateKey); err != nil {
		t.Fatalf("Send error: %v", err)
	}

	api.archiveOut = api.uploadedArchive

	// the sender's key cannot unwrap a package sealed for the recipient
	_, err := s.Fetch(context.Background(), "p1", sender.PrivateKey, true)
	if !errors.Is(err, cryptox.ErrKeyMismatch) {
		t.Fatalf("want ErrKeyMismatch, got %v", err)
	}
}

func TestFetch_PresignedPath(t *testing.T) {
	sender, recipient := testPairs(t)

	api := &fakeAPI{
		keyOut:     &transport.PublicKeyResult{PublicKey: recipient.PublicKey},
		presignOut: "https://s3.example/signed",
	}
	s := NewPackageService(api, nil, filepath.Join(t.TempDir(), "dl"))

	path := writeTempFile(t, "f.txt", []byte("data"))
	if _, err := s.Send(context.Background(), path, "bob", sender.PrivateKey); err != nil {
		t.Fatalf("Send error: %v", err)
	}

	var requestedURL string
	orig := downloadFromURL
	downloadFromURL = func(url string) ([]byte, error) {
		requestedURL = url
		return api.uploadedArchive, nil
	}
	t.Cleanup(func() { downloadFromURL = orig })

	got, err := s.Fetch(context.Background(), "p1", recipient.PrivateKey, false)
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if requestedURL != "https://s3.example/signed" {
		t.Fatalf("presigned url not used: %q", requestedURL)
	}
	if !got.Verification.Verified {
		t.Fatalf("verification failed: %+v", got.Verification)
	}
}

func TestSend_RecipientKeyError(t *testing.T) {
	api := &fakeAPI{keyErr: errors.New("boom")}
	s := NewPackageService(api, nil, t.TempDir())

	path := writeTempFile(t, "f.txt", []byte("data"))
	sender, _ := testPairs(t)
	if _, err := s.Send(context.Background(), path, "bob", sender.PrivateKey); err == nil {
		t.Fatalf("expected error")
	}
}

func TestFetch_GarbageArchive(t *testing.T) {
	_, recipient := testPairs(t)
	api := &fakeAPI{archiveOut: []byte("not a zip")}
	s := NewPackageService(api, nil, t.TempDir())

	if _, err := s.Fetch(context.Background(), "p1", recipient.PrivateKey, true); err == nil {
		t.Fatalf("expected error")
	}
}

func TestDelete(t *testing.T) {
	api := &fakeAPI{}
	s := NewPackageService(api, nil, t.TempDir())
	if err := s.Delete(context.Background(), "p9"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if api.deletedID != "p9" {
		t.Fatalf("deleted id: %q", api.deletedID)
	}
}

func TestDetectMimeType(t *testing.T) {
	if got := detectMimeType("doc.pdf", nil); got != "application/pdf" {
		t.Fatalf("pdf: %q", got)
	}
	if got := detectMimeType("unknown", []byte("plain text content")); got == "" {
		t.Fatalf("empty mime type for sniffed content")
	}
}
