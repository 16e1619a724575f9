package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sealdrop/sealdrop/internal/common"
	"github.com/sealdrop/sealdrop/internal/dbx"
	"github.com/sealdrop/sealdrop/internal/server/models"
	"github.com/sealdrop/sealdrop/internal/server/repositories/repomanager"
	"github.com/sealdrop/sealdrop/internal/server/storage"
)

// UploadMeta carries the display metadata a sender submits alongside an
// archive. It mirrors the manifest metadata so recipients can list
// packages without downloading them.
type UploadMeta struct {
	OriginalFilename string
	Size             int64
	MimeType         string
}

// PackageService stores and serves sealed package archives. Archives are
// opaque blobs: the service never opens them, and it refuses to persist
// metadata fields that carry PEM key material.
type PackageService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	store       storage.ArchiveStore
	presignTTL  time.Duration
}

func NewPackageService(db *sql.DB, m repomanager.RepositoryManager, store storage.ArchiveStore, presignTTL time.Duration) *PackageService {
	return &PackageService{
		db:          db,
		repomanager: m,
		store:       store,
		presignTTL:  presignTTL,
	}
}

// rejectKeyMaterial guards the metadata boundary: no field headed for the
// relational store may contain a PEM block marker.
func rejectKeyMaterial(fields ...string) error {
	for _, f := range fields {
		if strings.Contains(f, "-----BEGIN") {
			return common.ErrKeyMaterialRejected
		}
	}
	return nil
}

// Upload stores the archive blob and records package metadata for the
// recipient. The blob is written to object storage first; if the metadata
// insert fails the blob is removed again on a best-effort basis.
func (s *PackageService) Upload(ctx context.Context, senderID, recipientName string, archive []byte, meta UploadMeta) (*models.Package, error) {
	if err := rejectKeyMaterial(meta.OriginalFilename, meta.MimeType, recipientName); err != nil {
		return nil, err
	}

	userRepo := s.repomanager.Users(s.db)
	recipient, err := userRepo.GetByLogin(ctx, recipientName)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}

	key := storage.RandomStorageKey()
	if err := s.store.Put(ctx, key, archive); err != nil {
		return nil, fmt.Errorf("error storing archive: %w", err)
	}

	pkg := &models.Package{
		ID:               uuid.NewString(),
		SenderID:         senderID,
		RecipientID:      recipient.ID,
		StorageKey:       key,
		OriginalFilename: meta.OriginalFilename,
		Size:             meta.Size,
		MimeType:         meta.MimeType,
	}

	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return s.repomanager.Packages(tx).Create(ctx, pkg)
	}); err != nil {
		// metadata insert failed, do not leave an orphaned blob behind
		_ = s.store.Delete(ctx, key)
		return nil, fmt.Errorf("error saving package: %w", err)
	}

	return pkg, nil
}

// List returns the packages addressed to userID, newest first.
func (s *PackageService) List(ctx context.Context, userID string) ([]*models.Package, error) {
	repo := s.repomanager.Packages(s.db)
	pkgs, err := repo.ListByRecipient(ctx, userID)
	if err != nil {
		return nil, common.ErrorInternal
	}
	return pkgs, nil
}

// Download returns the package metadata plus the archive blob. Only the
// sender or the recipient may download.
func (s *PackageService) Download(ctx context.Context, userID, packageID string) (*models.Package, []byte, error) {
	pkg, err := s.authorized(ctx, userID, packageID)
	if err != nil {
		return nil, nil, err
	}
	blob, err := s.store.Get(ctx, pkg.StorageKey)
	if err != nil {
		return nil, nil, fmt.Errorf("error fetching archive: %w", err)
	}
	return pkg, blob, nil
}

// PresignURL returns a temporary direct-download URL for the archive blob,
// letting the recipient fetch it without streaming through the API server.
func (s *PackageService) PresignURL(ctx context.Context, userID, packageID string) (string, error) {
	pkg, err := s.authorized(ctx, userID, packageID)
	if err != nil {
		return "", err
	}
	url, err := s.store.PresignGet(ctx, pkg.StorageKey, s.presignTTL)
	if err != nil {
		return "", fmt.Errorf("error presigning url: %w", err)
	}
	return url, nil
}

// Delete removes the metadata row and the archive blob. The row goes
// first; a leftover blob is preferable to a dangling row pointing at
// nothing.
func (s *PackageService) Delete(ctx context.Context, userID, packageID string) error {
	pkg, err := s.authorized(ctx, userID, packageID)
	if err != nil {
		return err
	}
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return s.repomanager.Packages(tx).Delete(ctx, pkg.ID)
	}); err != nil {
		return fmt.Errorf("error deleting package: %w", err)
	}
	if err := s.store.Delete(ctx, pkg.StorageKey); err != nil {
		return fmt.Errorf("error deleting archive: %w", err)
	}
	return nil
}

// authorized loads the package and checks userID is its sender or
// recipient.
func (s *PackageService) authorized(ctx context.Context, userID, packageID string) (*models.Package, error) {
	repo := s.repomanager.Packages(s.db)
	pkg, err := repo.GetByID(ctx, packageID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}
	if pkg.SenderID != userID && pkg.RecipientID != userID {
		return nil, common.ErrorUnauthorized
	}
	return pkg, nil
}
