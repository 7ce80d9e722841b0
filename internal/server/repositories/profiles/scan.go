package profiles

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophprofile/internal/common"
	"github.com/dmitrijs2005/gophprofile/internal/dbx"
	"github.com/dmitrijs2005/gophprofile/internal/server/models"
)

const profileColumns = `id, user_id, username, first_name, last_name, birth_date, gender, status, avatar_uploaded, created_at, updated_at`

func scanProfile(row *sql.Row) (*models.Profile, error) {
	p := &models.Profile{}
	var gender string
	var status sql.NullString

	err := row.Scan(&p.ID, &p.UserID, &p.Username, &p.FirstName, &p.LastName,
		&p.BirthDate, &gender, &status, &p.AvatarUploaded, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	p.Gender = models.Gender(gender)
	if status.Valid {
		p.Status = &status.String
	}
	return p, nil
}

func nullableStatus(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func writeError(err error) error {
	if dbx.IsUniqueViolation(err) {
		if strings.Contains(dbx.ConstraintName(err), "username") {
			return common.ErrUsernameTaken
		}
		return common.ErrProfileAlreadyExists
	}
	return fmt.Errorf("db error: %w", err)
}

func checkAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
