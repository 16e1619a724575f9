// Package services implements the client-side workflows: sealing and
// sending files, fetching and opening received packages, and recording
// both in the local history.
package services

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/sealdrop/sealdrop/internal/client/repositories/history"
	"github.com/sealdrop/sealdrop/internal/client/transport"
	"github.com/sealdrop/sealdrop/internal/cryptox"
	"github.com/sealdrop/sealdrop/internal/envelope"
	"github.com/sealdrop/sealdrop/internal/netx"
	"github.com/sealdrop/sealdrop/internal/packager"
)

// APIClient is the server surface the package service needs.
type APIClient interface {
	GetPublicKey(ctx context.Context, username string) (*transport.PublicKeyResult, error)
	UploadPackage(ctx context.Context, recipient string, archive []byte, filename, mimeType string, size int64) (*transport.PackageInfo, error)
	ListPackages(ctx context.Context) ([]transport.PackageInfo, error)
	DownloadArchive(ctx context.Context, packageID string) ([]byte, error)
	PresignURL(ctx context.Context, packageID string) (string, error)
	DeletePackage(ctx context.Context, packageID string) error
}

// downloadFromURL is a test seam for presigned downloads.
var downloadFromURL = netx.DownloadFromPresignedURL

// SendResult reports a completed send.
type SendResult struct {
	PackageID   string
	Recipient   string
	Fingerprint string
	Size        int64
}

// FetchResult reports a fetched and opened package.
type FetchResult struct {
	Path         string
	Filename     string
	Verification *envelope.VerificationResult
}

// PackageService seals files into archives before upload and opens
// fetched archives locally. Plaintext and private keys never reach the
// transport layer.
type PackageService struct {
	api         APIClient
	history     history.Repository
	downloadDir string
}

func NewPackageService(api APIClient, hist history.Repository, downloadDir string) *PackageService {
	return &PackageService{api: api, history: hist, downloadDir: downloadDir}
}

// Send seals the file at path for recipient and uploads the archive.
// The recipient's public key is fetched from the server; its fingerprint
// is included in the result so the sender can verify it out of band.
func (s *PackageService) Send(ctx context.Context, path, recipient, senderPrivateKey string) (*SendResult, error) {
	plaintext, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}

	key, err := s.api.GetPublicKey(ctx, recipient)
	if err != nil {
		return nil, fmt.Errorf("fetching recipient key: %w", err)
	}

	filename := filepath.Base(path)
	mimeType := detectMimeType(filename, plaintext)

	env, err := envelope.Build(plaintext, filename, mimeType, senderPrivateKey, key.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("sealing file: %w", err)
	}

	manifest, err := envelope.Serialize(env)
	if err != nil {
		return nil, fmt.Errorf("encoding manifest: %w", err)
	}

	archive, err := packager.Pack(manifest)
	if err != nil {
		return nil, fmt.Errorf("packing archive: %w", err)
	}

	info, err := s.api.UploadPackage(ctx, recipient, archive, filename, mimeType, env.Metadata.OriginalSize)
	if err != nil {
		return nil, fmt.Errorf("uploading package: %w", err)
	}

	if s.history != nil {
		_ = s.history.Add(ctx, &history.Record{
			Direction:      history.DirectionSent,
			PackageID:      info.ID,
			Counterparty:   recipient,
			Filename:       filename,
			Size:           env.Metadata.OriginalSize,
			MimeType:       mimeType,
			HashValid:      true,
			SignatureValid: true,
			Verified:       true,
		})
	}

	return &SendResult{
		PackageID:   info.ID,
		Recipient:   recipient,
		Fingerprint: key.Fingerprint,
		Size:        env.Metadata.OriginalSize,
	}, nil
}

// List returns the packages waiting for the logged-in user.
func (s *PackageService) List(ctx context.Context) ([]transport.PackageInfo, error) {
	return s.api.ListPackages(ctx)
}

// Fetch downloads a package, opens it with the recipient's private key,
// and writes the decrypted file to the download directory. With direct
// set, the archive streams through the API server; otherwise it is
// fetched straight from object storage via a presigned URL.
//
// Decryption failures abort; hash or signature mismatches do not, but
// are reported in the result and recorded in history.
func (s *PackageService) Fetch(ctx context.Context, packageID, recipientPrivateKey string, direct bool) (*FetchResult, error) {
	archive, err := s.download(ctx, packageID, direct)
	if err != nil {
		return nil, err
	}

	manifest, err := packager.Unpack(archive)
	if err != nil {
		return nil, fmt.Errorf("unpacking archive: %w", err)
	}

	env, err := envelope.Deserialize(manifest)
	if err != nil {
		return nil, fmt.Errorf("decoding manifest: %w", err)
	}
	if err := envelope.Validate(env); err != nil {
		return nil, fmt.Errorf("validating manifest: %w", err)
	}

	plaintext, result, err := envelope.Open(env, recipientPrivateKey)
	if err != nil {
		return nil, fmt.Errorf("opening package: %w", err)
	}

	dir, err := ensureDownloadDir(s.downloadDir)
	if err != nil {
		return nil, err
	}
	path := filepath.Join(dir, filepath.Base(env.Metadata.OriginalFilename))
	if err := os.WriteFile(path, plaintext, 0o600); err != nil {
		return nil, fmt.Errorf("writing file: %w", err)
	}

	if s.history != nil {
		_ = s.history.Add(ctx, &history.Record{
			Direction:      history.DirectionReceived,
			PackageID:      packageID,
			Counterparty:   cryptox.Fingerprint(env.UploaderPublicKey),
			Filename:       env.Metadata.OriginalFilename,
			Size:           env.Metadata.OriginalSize,
			MimeType:       env.Metadata.MimeType,
			HashValid:      result.HashValid,
			SignatureValid: result.SignatureValid,
			Verified:       result.Verified,
		})
	}

	return &FetchResult{Path: path, Filename: env.Metadata.OriginalFilename, Verification: result}, nil
}

// PresignURL returns a temporary direct download URL for a package.
func (s *PackageService) PresignURL(ctx context.Context, packageID string) (string, error) {
	return s.api.PresignURL(ctx, packageID)
}

// Delete removes a package from the server.
func (s *PackageService) Delete(ctx context.Context, packageID string) error {
	return s.api.DeletePackage(ctx, packageID)
}

// History returns the local send/receive log, newest first.
func (s *PackageService) History(ctx context.Context) ([]*history.Record, error) {
	if s.history == nil {
		return nil, nil
	}
	return s.history.List(ctx)
}

func (s *PackageService) download(ctx context.Context, packageID string, direct bool) ([]byte, error) {
	if direct {
		blob, err := s.api.DownloadArchive(ctx, packageID)
		if err != nil {
			return nil, fmt.Errorf("downloading archive: %w", err)
		}
		return blob, nil
	}

	url, err := s.api.PresignURL(ctx, packageID)
	if err != nil {
		return nil, fmt.Errorf("requesting download url: %w", err)
	}
	blob, err := downloadFromURL(url)
	if err != nil {
		return nil, fmt.Errorf("downloading archive: %w", err)
	}
	return blob, nil
}

func ensureDownloadDir(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return dir, nil
}

// detectMimeType resolves the mime type from the extension, falling
// back to content sniffing.
func detectMimeType(filename string, data []byte) string {
	if t := mime.TypeByExtension(filepath.Ext(filename)); t != "" {
		return t
	}
	return http.DetectContentType(data)
}
