package services

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gophprofile/internal/common"
	"github.com/dmitrijs2005/gophprofile/internal/dbx"
	"github.com/dmitrijs2005/gophprofile/internal/server/events"
	"github.com/dmitrijs2005/gophprofile/internal/server/models"
	"github.com/dmitrijs2005/gophprofile/internal/server/repositories/profiles"
	"github.com/dmitrijs2005/gophprofile/internal/server/repositories/users"
)

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

// --- users ---

type fakeUsersRepo struct {
	mu     sync.Mutex
	byID   map[string]*models.User
	getErr error
	// createErr is returned by Create instead of inserting
	createErr error
	creates   int
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{byID: map[string]*models.User{}}
}

func (f *fakeUsersRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	if f.createErr != nil {
		return nil, f.createErr
	}
	for _, existing := range f.byID {
		if existing.Email == u.Email {
			return nil, common.ErrUserAlreadyExists
		}
	}
	cp := *u
	f.byID[u.ID] = &cp
	return u, nil
}

func (f *fakeUsersRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, u := range f.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

// --- profiles ---

type fakeProfilesRepo struct {
	mu        sync.Mutex
	byUser    map[string]*models.Profile
	getErr    error
	createErr error
	updateErr error
	updates   int
}

func newFakeProfilesRepo() *fakeProfilesRepo {
	return &fakeProfilesRepo{byUser: map[string]*models.Profile{}}
}

func (f *fakeProfilesRepo) Create(_ context.Context, p *models.Profile) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	cp := *p
	f.byUser[p.UserID] = &cp
	return p, nil
}

func (f *fakeProfilesRepo) GetByUserID(_ context.Context, userID string) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	p, ok := f.byUser[userID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProfilesRepo) GetByUsername(_ context.Context, username string) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, p := range f.byUser {
		if p.Username == username {
			cp := *p
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeProfilesRepo) Update(_ context.Context, p *models.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates++
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.byUser[p.UserID]; !ok {
		return common.ErrorNotFound
	}
	cp := *p
	f.byUser[p.UserID] = &cp
	return nil
}

// --- manager ---

type fakeRepoManager struct {
	users    *fakeUsersRepo
	profiles *fakeProfilesRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{users: newFakeUsersRepo(), profiles: newFakeProfilesRepo()}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository              { return m.users }
func (m *fakeRepoManager) Profiles(dbx.DBTX) profiles.Repository        { return m.profiles }

// --- collaborators ---

type fakePublisher struct {
	mu     sync.Mutex
	events []events.UserRegistered
	err    error
}

func (p *fakePublisher) PublishUserRegistered(_ context.Context, e events.UserRegistered) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, e)
	return nil
}

func (p *fakePublisher) Close() error { return nil }

type fakeCache struct {
	mu          sync.Mutex
	items       map[string]*models.Profile
	gets        int
	invalidated []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{items: map[string]*models.Profile{}}
}

func (c *fakeCache) Get(_ context.Context, username string) (*models.Profile, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	p, ok := c.items[username]
	return p, ok
}

func (c *fakeCache) Set(_ context.Context, p *models.Profile) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[p.Username] = p
}

func (c *fakeCache) Invalidate(_ context.Context, usernames ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, u := range usernames {
		delete(c.items, u)
		c.invalidated = append(c.invalidated, u)
	}
}

type fakeAvatars struct {
	exists    bool
	existsErr error
	putErr    error
	getErr    error
	lastKey   string
}

func (a *fakeAvatars) PresignPut(_ context.Context, key string) (string, error) {
	a.lastKey = key
	if a.putErr != nil {
		return "", a.putErr
	}
	return "https://s3.local/put/" + key, nil
}

func (a *fakeAvatars) PresignGet(_ context.Context, key string) (string, error) {
	a.lastKey = key
	if a.getErr != nil {
		return "", a.getErr
	}
	return "https://s3.local/get/" + key, nil
}

func (a *fakeAvatars) Exists(_ context.Context, key string) (bool, error) {
	a.lastKey = key
	return a.exists, a.existsErr
}

func (a *fakeAvatars) Validity() time.Duration { return 15 * time.Minute }
