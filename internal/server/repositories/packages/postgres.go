// Package packages provides a PostgreSQL-backed repository for secure
// package bookkeeping rows. The rows reference archive blobs in object
// storage by key; they never contain manifest or key material.
package packages

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sealdrop/sealdrop/internal/common"
	"github.com/sealdrop/sealdrop/internal/dbx"
	"github.com/sealdrop/sealdrop/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX (satisfied by
// *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, pkg *models.Package) error {
	query := `
		INSERT INTO packages (id, sender_id, recipient_id, storage_key, original_filename, size, mime_type)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		pkg.ID, pkg.SenderID, pkg.RecipientID, pkg.StorageKey,
		pkg.OriginalFilename, pkg.Size, pkg.MimeType).Scan(&pkg.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Package, error) {
	query := `
		SELECT id, sender_id, recipient_id, storage_key, original_filename, size, mime_type, created_at
		FROM packages
		WHERE id = $1
	`
	pkg := &models.Package{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&pkg.ID, &pkg.SenderID, &pkg.RecipientID, &pkg.StorageKey,
		&pkg.OriginalFilename, &pkg.Size, &pkg.MimeType, &pkg.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return pkg, nil
}

func (r *PostgresRepository) ListByRecipient(ctx context.Context, recipientID string) ([]*models.Package, error) {
	query := `
		SELECT id, sender_id, recipient_id, storage_key, original_filename, size, mime_type, created_at
		FROM packages
		WHERE recipient_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, recipientID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Package
	for rows.Next() {
		pkg := &models.Package{}
		if err := rows.Scan(
			&pkg.ID, &pkg.SenderID, &pkg.RecipientID, &pkg.StorageKey,
			&pkg.OriginalFilename, &pkg.Size, &pkg.MimeType, &pkg.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, pkg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := `
		DELETE FROM packages
		WHERE id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
