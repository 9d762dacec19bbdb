// Package users provides persistence for account records.
package users

import (
	"context"

	"github.com/mkarpis/accountd/internal/server/models"
)

// Repository is the keyed-record surface the account service consumes:
// insert, lookup by id or email, full-record save, delete by id.
// Lookups return common.ErrorNotFound when no record matches.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) (*models.User, error)
	Delete(ctx context.Context, id string) error
}
