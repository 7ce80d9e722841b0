// Package users is the credential store: persistence of user accounts keyed
// by id and by unique email.
package users

import (
	"context"

	"github.com/dmitrijs2005/gophprofile/internal/server/models"
)

// Repository looks users up by exact (case-sensitive) email or id and
// inserts new ones. Lookups of absent users return common.ErrorNotFound;
// inserting a duplicate email returns common.ErrUserAlreadyExists.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
}
