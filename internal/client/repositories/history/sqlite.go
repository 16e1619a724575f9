package history

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/sealdrop/sealdrop/internal/client/migrations"
	"github.com/sealdrop/sealdrop/internal/dbx"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// Open opens (creating if needed) the history database at dsn and runs
// migrations.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := runMigrations(ctx, db); err != nil {
		return nil, err
	}
	return db, nil
}

func runMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		log.Fatal("failed to set goose dialect:", err)
	}

	return goose.UpContext(ctx, db, ".")
}

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Add(ctx context.Context, rec *Record) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO history (direction, package_id, counterparty, filename, size, mime_type, hash_valid, signature_valid, verified)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.Direction, rec.PackageID, rec.Counterparty, rec.Filename, rec.Size, rec.MimeType, rec.HashValid, rec.SignatureValid, rec.Verified)
	if err != nil {
		return fmt.Errorf("failed to add history record: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]*Record, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, direction, package_id, counterparty, filename, size, mime_type, hash_valid, signature_valid, verified, created_at
		FROM history ORDER BY id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer rows.Close()

	var result []*Record
	for rows.Next() {
		rec := &Record{}
		if err := rows.Scan(&rec.ID, &rec.Direction, &rec.PackageID, &rec.Counterparty, &rec.Filename,
			&rec.Size, &rec.MimeType, &rec.HashValid, &rec.SignatureValid, &rec.Verified, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		result = append(result, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate history rows: %w", err)
	}

	return result, nil
}
