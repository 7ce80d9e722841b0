package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophprofile/internal/common"
	"github.com/dmitrijs2005/gophprofile/internal/dbx"
	"github.com/dmitrijs2005/gophprofile/internal/logging"
	"github.com/dmitrijs2005/gophprofile/internal/server/cache"
	"github.com/dmitrijs2005/gophprofile/internal/server/models"
	"github.com/dmitrijs2005/gophprofile/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophprofile/internal/server/storage"
	"github.com/google/uuid"
)

// ProfileService manages the profile owned by an authenticated user and
// public lookups by username.
type ProfileService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	cache       cache.ProfileCache
	avatars     storage.AvatarStore
	logger      logging.Logger
	now         func() time.Time
}

// AvatarUpload is a presigned PUT the client uses to upload its avatar.
type AvatarUpload struct {
	URL       string
	ExpiresIn time.Duration
}

func NewProfileService(db *sql.DB, m repomanager.RepositoryManager, c cache.ProfileCache,
	avatars storage.AvatarStore, l logging.Logger) *ProfileService {
	return &ProfileService{
		db:          db,
		repomanager: m,
		cache:       c,
		avatars:     avatars,
		logger:      l,
		now:         time.Now,
	}
}

// Create stores the first and only profile of user.
func (s *ProfileService) Create(ctx context.Context, user *models.CurrentUser, in models.ProfileInput) (*models.Profile, error) {
	var created *models.Profile

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Profiles(tx)

		if _, err := repo.GetByUserID(ctx, user.ID); err == nil {
			return common.ErrProfileAlreadyExists
		} else if !errors.Is(err, common.ErrorNotFound) {
			return fmt.Errorf("error searching profile: %w", err)
		}

		if _, err := repo.GetByUsername(ctx, in.Username); err == nil {
			return common.ErrUsernameTaken
		} else if !errors.Is(err, common.ErrorNotFound) {
			return fmt.Errorf("error searching profile: %w", err)
		}

		now := s.now().UTC()
		p := &models.Profile{
			ID:        uuid.NewString(),
			UserID:    user.ID,
			Username:  in.Username,
			FirstName: in.FirstName,
			LastName:  in.LastName,
			BirthDate: in.BirthDate,
			Gender:    in.Gender,
			Status:    in.Status,
			CreatedAt: now,
			UpdatedAt: now,
		}

		var err error
		created, err = repo.Create(ctx, p)
		if err != nil {
			if errors.Is(err, common.ErrUsernameTaken) || errors.Is(err, common.ErrProfileAlreadyExists) {
				return err
			}
			return fmt.Errorf("error creating profile: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *ProfileService) GetMine(ctx context.Context, user *models.CurrentUser) (*models.Profile, error) {
	return s.byUserID(ctx, s.db, user.ID)
}

// GetByUsername reads through the profile cache.
func (s *ProfileService) GetByUsername(ctx context.Context, username string) (*models.Profile, error) {
	if p, ok := s.cache.Get(ctx, username); ok {
		return p, nil
	}

	p, err := s.repomanager.Profiles(s.db).GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrProfileDoesNotExist
		}
		return nil, fmt.Errorf("error searching profile: %w", err)
	}

	s.cache.Set(ctx, p)
	return p, nil
}

// Update applies the non-nil fields of upd to the caller's profile.
func (s *ProfileService) Update(ctx context.Context, user *models.CurrentUser, upd models.ProfileUpdate) error {
	if upd.IsEmpty() {
		return common.ErrEmptyUpdate
	}

	var oldName, newName string

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		p, err := s.byUserID(ctx, tx, user.ID)
		if err != nil {
			return err
		}
		oldName = p.Username

		repo := s.repomanager.Profiles(tx)
		if upd.Username != nil && *upd.Username != p.Username {
			if _, err := repo.GetByUsername(ctx, *upd.Username); err == nil {
				return common.ErrUsernameTaken
			} else if !errors.Is(err, common.ErrorNotFound) {
				return fmt.Errorf("error searching profile: %w", err)
			}
		}

		upd.Apply(p)
		p.UpdatedAt = s.now().UTC()
		newName = p.Username

		return s.save(ctx, tx, p)
	})
	if err != nil {
		return err
	}

	s.cache.Invalidate(ctx, oldName, newName)
	return nil
}

// AvatarUploadURL presigns the upload of the caller's avatar.
func (s *ProfileService) AvatarUploadURL(ctx context.Context, user *models.CurrentUser) (*AvatarUpload, error) {
	if _, err := s.byUserID(ctx, s.db, user.ID); err != nil {
		return nil, err
	}

	url, err := s.avatars.PresignPut(ctx, storage.AvatarKey(user.ID))
	if err != nil {
		return nil, fmt.Errorf("error presigning avatar upload: %w", err)
	}
	return &AvatarUpload{URL: url, ExpiresIn: s.avatars.Validity()}, nil
}

// ConfirmAvatar marks the avatar as uploaded once the object is present in
// storage.
func (s *ProfileService) ConfirmAvatar(ctx context.Context, user *models.CurrentUser) error {
	var username string

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		p, err := s.byUserID(ctx, tx, user.ID)
		if err != nil {
			return err
		}

		ok, err := s.avatars.Exists(ctx, storage.AvatarKey(user.ID))
		if err != nil {
			return fmt.Errorf("error checking avatar: %w", err)
		}
		if !ok {
			return common.ErrAvatarNotUploaded
		}

		p.AvatarUploaded = true
		p.UpdatedAt = s.now().UTC()
		username = p.Username

		return s.save(ctx, tx, p)
	})
	if err != nil {
		return err
	}

	s.cache.Invalidate(ctx, username)
	return nil
}

// AvatarURL returns a presigned download link, or "" when no avatar was
// confirmed. Presign failures are logged and yield "".
func (s *ProfileService) AvatarURL(ctx context.Context, p *models.Profile) string {
	if !p.AvatarUploaded {
		return ""
	}
	url, err := s.avatars.PresignGet(ctx, storage.AvatarKey(p.UserID))
	if err != nil {
		s.logger.Warn(ctx, "avatar url not presigned", "user_id", p.UserID, "error", err)
		return ""
	}
	return url
}

func (s *ProfileService) byUserID(ctx context.Context, db dbx.DBTX, userID string) (*models.Profile, error) {
	p, err := s.repomanager.Profiles(db).GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrProfileDoesNotExist
		}
		return nil, fmt.Errorf("error searching profile: %w", err)
	}
	return p, nil
}

func (s *ProfileService) save(ctx context.Context, db dbx.DBTX, p *models.Profile) error {
	err := s.repomanager.Profiles(db).Update(ctx, p)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, common.ErrUsernameTaken):
		return err
	case errors.Is(err, common.ErrorNotFound):
		return common.ErrProfileDoesNotExist
	default:
		return fmt.Errorf("error updating profile: %w", err)
	}
}
