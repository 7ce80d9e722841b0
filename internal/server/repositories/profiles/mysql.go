package profiles

import (
	"context"

	"github.com/dmitrijs2005/gophprofile/internal/dbx"
	"github.com/dmitrijs2005/gophprofile/internal/server/models"
)

type MySQLRepository struct {
	db dbx.DBTX
}

func NewMySQLRepository(db dbx.DBTX) *MySQLRepository {
	return &MySQLRepository{db: db}
}

func (r *MySQLRepository) Create(ctx context.Context, p *models.Profile) (*models.Profile, error) {
	query := `INSERT INTO profiles (` + profileColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.UserID, p.Username, p.FirstName, p.LastName, p.BirthDate,
		string(p.Gender), nullableStatus(p.Status), p.AvatarUploaded, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return nil, writeError(err)
	}
	return p, nil
}

func (r *MySQLRepository) GetByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE user_id = ?`
	return scanProfile(r.db.QueryRowContext(ctx, query, userID))
}

func (r *MySQLRepository) GetByUsername(ctx context.Context, username string) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE username = ?`
	return scanProfile(r.db.QueryRowContext(ctx, query, username))
}

// Update relies on the DSN flag clientFoundRows so an unchanged row still
// counts as affected.
func (r *MySQLRepository) Update(ctx context.Context, p *models.Profile) error {
	query := `UPDATE profiles
		SET username = ?, first_name = ?, last_name = ?, birth_date = ?, gender = ?,
		    status = ?, avatar_uploaded = ?, updated_at = ?
		WHERE user_id = ?`

	res, err := r.db.ExecContext(ctx, query,
		p.Username, p.FirstName, p.LastName, p.BirthDate, string(p.Gender),
		nullableStatus(p.Status), p.AvatarUploaded, p.UpdatedAt, p.UserID)
	if err != nil {
		return writeError(err)
	}
	return checkAffected(res)
}
