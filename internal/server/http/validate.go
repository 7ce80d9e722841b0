package http

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/gophprofile/internal/common"
	"github.com/dmitrijs2005/gophprofile/internal/server/models"
)

const (
	maxUsernameLen = 32
	maxNameLen     = 16
	maxStatusLen   = 256
)

// fieldErrors collects per-field problems of one request body.
type fieldErrors []string

func (f *fieldErrors) add(field, msg string) {
	*f = append(*f, field+": "+msg)
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", common.ErrValidation, strings.Join(f, "; "))
}

func (f *fieldErrors) length(field, v string, lo, hi int) {
	n := utf8.RuneCountInString(v)
	if n < lo || n > hi {
		f.add(field, fmt.Sprintf("length must be between %d and %d", lo, hi))
	}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r credentialsRequest) validate() error {
	var f fieldErrors
	if r.Email == "" {
		f.add("email", "field required")
	} else if !common.IsValidEmail(r.Email) {
		f.add("email", "value is not a valid email address")
	}
	if r.Password == "" {
		f.add("password", "field required")
	}
	return f.err()
}

type refreshRequest struct {
	Token string `json:"token"`
}

func (r refreshRequest) validate() error {
	var f fieldErrors
	if r.Token == "" {
		f.add("token", "field required")
	}
	return f.err()
}

// profileRequest is the body of both profile create and update. For create
// every field but status is required; for update every field is optional.
type profileRequest struct {
	Username  *string `json:"username"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	BirthDate *string `json:"birth_date"`
	Gender    *string `json:"gender"`
	Status    *string `json:"status"`
}

func (r profileRequest) toUpdate(required bool) (models.ProfileUpdate, error) {
	var (
		f   fieldErrors
		upd models.ProfileUpdate
	)

	str := func(field string, v *string, max int) *string {
		if v == nil {
			if required {
				f.add(field, "field required")
			}
			return nil
		}
		f.length(field, *v, 1, max)
		return v
	}

	upd.Username = str("username", r.Username, maxUsernameLen)
	upd.FirstName = str("first_name", r.FirstName, maxNameLen)
	upd.LastName = str("last_name", r.LastName, maxNameLen)

	if r.BirthDate == nil {
		if required {
			f.add("birth_date", "field required")
		}
	} else if d, err := time.Parse(models.DateLayout, *r.BirthDate); err != nil {
		f.add("birth_date", "must be a date in YYYY-MM-DD format")
	} else {
		upd.BirthDate = &d
	}

	if r.Gender == nil {
		if required {
			f.add("gender", "field required")
		}
	} else if g := models.Gender(*r.Gender); !g.Valid() {
		f.add("gender", "must be one of Male, Female")
	} else {
		upd.Gender = &g
	}

	if r.Status != nil {
		f.length("status", *r.Status, 0, maxStatusLen)
		upd.Status = r.Status
	}

	return upd, f.err()
}

func (r profileRequest) toInput() (models.ProfileInput, error) {
	upd, err := r.toUpdate(true)
	if err != nil {
		return models.ProfileInput{}, err
	}
	return models.ProfileInput{
		Username:  *upd.Username,
		FirstName: *upd.FirstName,
		LastName:  *upd.LastName,
		BirthDate: *upd.BirthDate,
		Gender:    *upd.Gender,
		Status:    upd.Status,
	}, nil
}
