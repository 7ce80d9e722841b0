package profiles

import (
	"context"

	"github.com/dmitrijs2005/gophprofile/internal/dbx"
	"github.com/dmitrijs2005/gophprofile/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, p *models.Profile) (*models.Profile, error) {
	query :=
		`INSERT INTO profiles (` + profileColumns + `)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 `

	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.UserID, p.Username, p.FirstName, p.LastName, p.BirthDate,
		string(p.Gender), nullableStatus(p.Status), p.AvatarUploaded, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return nil, writeError(err)
	}
	return p, nil
}

func (r *PostgresRepository) GetByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	query :=
		`SELECT ` + profileColumns + ` FROM profiles
		 WHERE user_id = $1
		 `
	return scanProfile(r.db.QueryRowContext(ctx, query, userID))
}

func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*models.Profile, error) {
	query :=
		`SELECT ` + profileColumns + ` FROM profiles
		 WHERE username = $1
		 `
	return scanProfile(r.db.QueryRowContext(ctx, query, username))
}

func (r *PostgresRepository) Update(ctx context.Context, p *models.Profile) error {
	query :=
		`UPDATE profiles
		 SET username = $1, first_name = $2, last_name = $3, birth_date = $4, gender = $5,
		     status = $6, avatar_uploaded = $7, updated_at = $8
		 WHERE user_id = $9
		 `

	res, err := r.db.ExecContext(ctx, query,
		p.Username, p.FirstName, p.LastName, p.BirthDate, string(p.Gender),
		nullableStatus(p.Status), p.AvatarUploaded, p.UpdatedAt, p.UserID)
	if err != nil {
		return writeError(err)
	}
	return checkAffected(res)
}
