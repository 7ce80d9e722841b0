// Package services contains server-side business logic. This file implements
// AuthService: registration, credential checks, token issuance and refresh,
// and resolution of the caller's identity from an access token.
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
	"github.com/dmitrijs2005/gophprofile/internal/server/auth"
	"github.com/dmitrijs2005/gophprofile/internal/server/config"
	"github.com/dmitrijs2005/gophprofile/internal/server/events"
	"github.com/dmitrijs2005/gophprofile/internal/server/models"
	"github.com/dmitrijs2005/gophprofile/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// IdentityResolver turns an access token into the user it was issued to.
// Transports depend on this rather than on AuthService.
type IdentityResolver interface {
	CurrentUser(ctx context.Context, accessToken string) (*models.CurrentUser, error)
}

type AuthService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	codec                        *auth.TokenCodec
	hasher                       *auth.PasswordHasher
	publisher                    events.Publisher
	logger                       logging.Logger
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
	now                          func() time.Time
}

var _ IdentityResolver = (*AuthService)(nil)

func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, codec *auth.TokenCodec, hasher *auth.PasswordHasher,
	publisher events.Publisher, l logging.Logger, cfg *config.Config) *AuthService {
	return &AuthService{
		db:                           db,
		repomanager:                  m,
		codec:                        codec,
		hasher:                       hasher,
		publisher:                    publisher,
		logger:                       l,
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
		now:                          time.Now,
	}
}

// Register creates an account for email. The existence check and the insert
// share one transaction; a concurrent insert that wins the race surfaces as a
// unique violation and is reported as common.ErrUserAlreadyExists too.
func (s *AuthService) Register(ctx context.Context, email, password string) (*models.User, error) {
	var created *models.User

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		_, err := repo.GetByEmail(ctx, email)
		if err == nil {
			return common.ErrUserAlreadyExists
		}
		if !errors.Is(err, common.ErrorNotFound) {
			return fmt.Errorf("error searching user: %w", err)
		}

		hash, err := s.hasher.Hash(password)
		if err != nil {
			return err
		}

		now := s.now().UTC()
		user := &models.User{
			ID:           uuid.NewString(),
			Email:        email,
			PasswordHash: hash,
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		created, err = repo.Create(ctx, user)
		if err != nil {
			if errors.Is(err, common.ErrUserAlreadyExists) || dbx.IsUniqueViolation(err) {
				return common.ErrUserAlreadyExists
			}
			return fmt.Errorf("error creating user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishRegistered(ctx, created)
	return created, nil
}

func (s *AuthService) publishRegistered(ctx context.Context, u *models.User) {
	err := s.publisher.PublishUserRegistered(ctx, events.UserRegistered{
		UserID:       u.ID,
		Email:        u.Email,
		RegisteredAt: u.CreatedAt,
	})
	if err != nil {
		s.logger.Warn(ctx, "user.registered event not published", "user_id", u.ID, "error", err)
	}
}

// Authenticate checks email and password. Unknown email and wrong password
// both yield common.ErrInvalidCredentials after the same amount of hashing work.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*models.AuthenticatedIdentity, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.hasher.Equalize(password)
			return nil, common.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("error searching user: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, common.ErrInvalidCredentials
	}
	return &models.AuthenticatedIdentity{ID: user.ID}, nil
}

// Login authenticates and returns a fresh token pair.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.TokenPair, error) {
	identity, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s.IssueTokenPair(identity.ID)
}

func (s *AuthService) IssueTokenPair(userID string) (*models.TokenPair, error) {
	access, err := s.codec.IssueAccess(userID, s.accessTokenValidityDuration)
	if err != nil {
		return nil, fmt.Errorf("error issuing access token: %w", err)
	}
	refresh, err := s.codec.IssueRefresh(userID, s.refreshTokenValidityDuration)
	if err != nil {
		return nil, fmt.Errorf("error issuing refresh token: %w", err)
	}
	return &models.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh exchanges a valid refresh token for a new access token with the same
// subject. The refresh token stays usable until it expires.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.codec.Verify(refreshToken, auth.TokenTypeRefresh)
	if err != nil {
		return "", err
	}

	access, err := s.codec.IssueAccess(claims.Subject(), s.accessTokenValidityDuration)
	if err != nil {
		return "", fmt.Errorf("error issuing access token: %w", err)
	}
	return access, nil
}

// CurrentUser resolves an access token to its user. Token problems yield
// common.ErrInvalidToken; a token whose user was removed yields
// common.ErrUserDoesNotExist.
func (s *AuthService) CurrentUser(ctx context.Context, accessToken string) (*models.CurrentUser, error) {
	claims, err := s.codec.Verify(accessToken, auth.TokenTypeAccess)
	if err != nil {
		return nil, err
	}

	id, err := uuid.Parse(claims.Subject())
	if err != nil {
		return nil, common.ErrInvalidToken
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, id.String())
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUserDoesNotExist
		}
		return nil, fmt.Errorf("error searching user: %w", err)
	}
	return &models.CurrentUser{ID: user.ID, Email: user.Email}, nil
}
