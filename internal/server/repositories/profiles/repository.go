// Package profiles persists the one-to-one user profiles.
package profiles

import (
	"context"

	"github.com/dmitrijs2005/gophprofile/internal/server/models"
)

// Repository stores profiles. Lookups of absent profiles return
// common.ErrorNotFound. Create and Update translate unique violations:
// a taken username becomes common.ErrUsernameTaken, a second profile for the
// same user becomes common.ErrProfileAlreadyExists.
type Repository interface {
	Create(ctx context.Context, p *models.Profile) (*models.Profile, error)
	GetByUserID(ctx context.Context, userID string) (*models.Profile, error)
	GetByUsername(ctx context.Context, username string) (*models.Profile, error)
	Update(ctx context.Context, p *models.Profile) error
}
