package packages

import (
	"context"

	"github.com/sealdrop/sealdrop/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, pkg *models.Package) error
	GetByID(ctx context.Context, id string) (*models.Package, error)
	ListByRecipient(ctx context.Context, recipientID string) ([]*models.Package, error)
	Delete(ctx context.Context, id string) error
}
