package packages

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sealdrop/sealdrop/internal/common"
	"github.com/sealdrop/sealdrop/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func samplePackage() *models.Package {
	return &models.Package{
		ID:               "p-1",
		SenderID:         "u-sender",
		RecipientID:      "u-recipient",
		StorageKey:       "packages/2026/08/26/abc",
		OriginalFilename: "report.pdf",
		Size:             1024,
		MimeType:         "application/pdf",
	}
}

func TestCreate(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	pkg := samplePackage()
	now := time.Now()
	mock.ExpectQuery(`INSERT\s+INTO\s+packages.*RETURNING\s+created_at`).
		WithArgs(pkg.ID, pkg.SenderID, pkg.RecipientID, pkg.StorageKey,
			pkg.OriginalFilename, pkg.Size, pkg.MimeType).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(now))

	if err := repo.Create(context.Background(), pkg); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if !pkg.CreatedAt.Equal(now) {
		t.Fatalf("CreatedAt not populated from insert: %v", pkg.CreatedAt)
	}
}

func TestGetByID_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "sender_id", "recipient_id", "storage_key", "original_filename", "size", "mime_type", "created_at"}).
		AddRow("p-1", "u-sender", "u-recipient", "packages/x", "report.pdf", int64(1024), "application/pdf", now)
	mock.ExpectQuery(`SELECT\s+id,\s*sender_id,.*FROM\s+packages\s+WHERE\s+id`).
		WithArgs("p-1").
		WillReturnRows(rows)

	got, err := repo.GetByID(context.Background(), "p-1")
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if got.RecipientID != "u-recipient" || got.Size != 1024 {
		t.Fatalf("unexpected package: %+v", got)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT\s+id,\s*sender_id,.*FROM\s+packages\s+WHERE\s+id`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestListByRecipient(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "sender_id", "recipient_id", "storage_key", "original_filename", "size", "mime_type", "created_at"}).
		AddRow("p-2", "u-sender", "u-recipient", "packages/y", "b.txt", int64(2), "text/plain", now).
		AddRow("p-1", "u-sender", "u-recipient", "packages/x", "a.txt", int64(1), "text/plain", now.Add(-time.Hour))
	mock.ExpectQuery(`SELECT\s+id,\s*sender_id,.*FROM\s+packages\s+WHERE\s+recipient_id`).
		WithArgs("u-recipient").
		WillReturnRows(rows)

	got, err := repo.ListByRecipient(context.Background(), "u-recipient")
	if err != nil {
		t.Fatalf("ListByRecipient error: %v", err)
	}
	if len(got) != 2 || got[0].ID != "p-2" {
		t.Fatalf("unexpected list: %+v", got)
	}
}

func TestListByRecipient_Empty(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "sender_id", "recipient_id", "storage_key", "original_filename", "size", "mime_type", "created_at"})
	mock.ExpectQuery(`SELECT\s+id,\s*sender_id,.*FROM\s+packages\s+WHERE\s+recipient_id`).
		WithArgs("nobody").
		WillReturnRows(rows)

	got, err := repo.ListByRecipient(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("ListByRecipient error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty list, got %+v", got)
	}
}

func TestDelete(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`DELETE\s+FROM\s+packages`).
		WithArgs("p-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Delete(context.Background(), "p-1"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
}
