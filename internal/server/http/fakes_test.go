package http

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophprofile/internal/common"
	"github.com/dmitrijs2005/gophprofile/internal/server/models"
	"github.com/dmitrijs2005/gophprofile/internal/server/services"
)

// fakeAuth keeps users in memory; tokens are "access:<id>" / "refresh:<id>".
type fakeAuth struct {
	mu       sync.Mutex
	users    map[string]*models.User // by email
	next     int
	forceErr error
}

func newFakeAuth() *fakeAuth {
	return &fakeAuth{users: map[string]*models.User{}}
}

func (f *fakeAuth) Register(_ context.Context, email, password string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.forceErr != nil {
		return nil, f.forceErr
	}
	if _, ok := f.users[email]; ok {
		return nil, common.ErrUserAlreadyExists
	}
	f.next++
	u := &models.User{ID: "u" + string(rune('0'+f.next)), Email: email, PasswordHash: "hash:" + password}
	f.users[email] = u
	return u, nil
}

func (f *fakeAuth) Login(_ context.Context, email, password string) (*models.TokenPair, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[email]
	if !ok || u.PasswordHash != "hash:"+password {
		return nil, common.ErrInvalidCredentials
	}
	return &models.TokenPair{AccessToken: "access:" + u.ID, RefreshToken: "refresh:" + u.ID}, nil
}

func (f *fakeAuth) Refresh(_ context.Context, token string) (string, error) {
	if len(token) > 8 && token[:8] == "refresh:" {
		return "access:" + token[8:], nil
	}
	return "", common.ErrInvalidToken
}

func (f *fakeAuth) CurrentUser(_ context.Context, token string) (*models.CurrentUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(token) <= 7 || token[:7] != "access:" {
		return nil, common.ErrInvalidToken
	}
	id := token[7:]
	for _, u := range f.users {
		if u.ID == id {
			return &models.CurrentUser{ID: u.ID, Email: u.Email}, nil
		}
	}
	return nil, common.ErrUserDoesNotExist
}

type fakeProfiles struct {
	mu       sync.Mutex
	byUser   map[string]*models.Profile
	uploaded map[string]bool
}

func newFakeProfiles() *fakeProfiles {
	return &fakeProfiles{byUser: map[string]*models.Profile{}, uploaded: map[string]bool{}}
}

func (f *fakeProfiles) Create(_ context.Context, user *models.CurrentUser, in models.ProfileInput) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byUser[user.ID]; ok {
		return nil, common.ErrProfileAlreadyExists
	}
	for _, p := range f.byUser {
		if p.Username == in.Username {
			return nil, common.ErrUsernameTaken
		}
	}
	p := &models.Profile{
		ID: "p-" + user.ID, UserID: user.ID, Username: in.Username, FirstName: in.FirstName,
		LastName: in.LastName, BirthDate: in.BirthDate, Gender: in.Gender, Status: in.Status,
	}
	f.byUser[user.ID] = p
	return p, nil
}

func (f *fakeProfiles) GetMine(_ context.Context, user *models.CurrentUser) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byUser[user.ID]
	if !ok {
		return nil, common.ErrProfileDoesNotExist
	}
	return p, nil
}

func (f *fakeProfiles) GetByUsername(_ context.Context, username string) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.byUser {
		if p.Username == username {
			return p, nil
		}
	}
	return nil, common.ErrProfileDoesNotExist
}

func (f *fakeProfiles) Update(_ context.Context, user *models.CurrentUser, upd models.ProfileUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if upd.IsEmpty() {
		return common.ErrEmptyUpdate
	}
	p, ok := f.byUser[user.ID]
	if !ok {
		return common.ErrProfileDoesNotExist
	}
	upd.Apply(p)
	return nil
}

func (f *fakeProfiles) AvatarUploadURL(_ context.Context, user *models.CurrentUser) (*services.AvatarUpload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byUser[user.ID]; !ok {
		return nil, common.ErrProfileDoesNotExist
	}
	return &services.AvatarUpload{URL: "https://s3.local/put/avatars/" + user.ID, ExpiresIn: 15 * time.Minute}, nil
}

func (f *fakeProfiles) ConfirmAvatar(_ context.Context, user *models.CurrentUser) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byUser[user.ID]
	if !ok {
		return common.ErrProfileDoesNotExist
	}
	if !f.uploaded[user.ID] {
		return common.ErrAvatarNotUploaded
	}
	p.AvatarUploaded = true
	return nil
}

func (f *fakeProfiles) AvatarURL(_ context.Context, p *models.Profile) string {
	if !p.AvatarUploaded {
		return ""
	}
	return "https://s3.local/get/avatars/" + p.UserID
}
