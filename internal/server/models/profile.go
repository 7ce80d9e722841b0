package models

import "time"

type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
)

func (g Gender) Valid() bool {
	return g == GenderMale || g == GenderFemale
}

// DateLayout is the wire and storage format of Profile.BirthDate.
const DateLayout = "2006-01-02"

type Profile struct {
	ID             string
	UserID         string
	Username       string
	FirstName      string
	LastName       string
	BirthDate      time.Time
	Gender         Gender
	Status         *string
	AvatarUploaded bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ProfileInput carries the fields required to create a profile.
type ProfileInput struct {
	Username  string
	FirstName string
	LastName  string
	BirthDate time.Time
	Gender    Gender
	Status    *string
}

// ProfileUpdate is a partial update: nil fields are left unchanged.
type ProfileUpdate struct {
	Username  *string
	FirstName *string
	LastName  *string
	BirthDate *time.Time
	Gender    *Gender
	Status    *string
}

func (u ProfileUpdate) IsEmpty() bool {
	return u.Username == nil && u.FirstName == nil && u.LastName == nil &&
		u.BirthDate == nil && u.Gender == nil && u.Status == nil
}

// Apply copies the non-nil fields of u onto p.
func (u ProfileUpdate) Apply(p *Profile) {
	if u.Username != nil {
		p.Username = *u.Username
	}
	if u.FirstName != nil {
		p.FirstName = *u.FirstName
	}
	if u.LastName != nil {
		p.LastName = *u.LastName
	}
	if u.BirthDate != nil {
		p.BirthDate = *u.BirthDate
	}
	if u.Gender != nil {
		p.Gender = *u.Gender
	}
	if u.Status != nil {
		s := *u.Status
		p.Status = &s
	}
}
