package http

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/gophprofile/internal/common"
	"github.com/dmitrijs2005/gophprofile/internal/server/models"
	"github.com/dmitrijs2005/gophprofile/internal/server/services"
	"github.com/labstack/echo/v4"
)

type AuthService interface {
	services.IdentityResolver
	Register(ctx context.Context, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
}

type ProfileService interface {
	Create(ctx context.Context, user *models.CurrentUser, in models.ProfileInput) (*models.Profile, error)
	GetMine(ctx context.Context, user *models.CurrentUser) (*models.Profile, error)
	GetByUsername(ctx context.Context, username string) (*models.Profile, error)
	Update(ctx context.Context, user *models.CurrentUser, upd models.ProfileUpdate) error
	AvatarUploadURL(ctx context.Context, user *models.CurrentUser) (*services.AvatarUpload, error)
	ConfirmAvatar(ctx context.Context, user *models.CurrentUser) error
	AvatarURL(ctx context.Context, p *models.Profile) string
}

type messageResponse struct {
	Msg string `json:"msg"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type avatarUploadResponse struct {
	UploadURL string `json:"upload_url"`
	ExpiresIn int64  `json:"expires_in"`
}

type profileResponse struct {
	Username  string        `json:"username"`
	FirstName string        `json:"first_name"`
	LastName  string        `json:"last_name"`
	BirthDate string        `json:"birth_date"`
	Gender    models.Gender `json:"gender"`
	Status    *string       `json:"status"`
	AvatarURL *string       `json:"avatar_url"`
}

type handlers struct {
	auth     AuthService
	profiles ProfileService
}

// bind decodes the body; malformed JSON is a validation failure.
func bind(c echo.Context, dst any) error {
	if err := (&echo.DefaultBinder{}).BindBody(c, dst); err != nil {
		return common.ErrValidation
	}
	return nil
}

func health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func (h *handlers) register(c echo.Context) error {
	var req credentialsRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := req.validate(); err != nil {
		return err
	}

	if _, err := h.auth.Register(c.Request().Context(), req.Email, req.Password); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, messageResponse{Msg: "User created successfully"})
}

func (h *handlers) login(c echo.Context) error {
	var req credentialsRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := req.validate(); err != nil {
		return err
	}

	pair, err := h.auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pair)
}

func (h *handlers) refresh(c echo.Context) error {
	var req refreshRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := req.validate(); err != nil {
		return err
	}

	token, err := h.auth.Refresh(c.Request().Context(), req.Token)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tokenResponse{Token: token})
}

func (h *handlers) me(c echo.Context) error {
	return c.JSON(http.StatusOK, currentUser(c))
}

func (h *handlers) createProfile(c echo.Context) error {
	var req profileRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	in, err := req.toInput()
	if err != nil {
		return err
	}

	if _, err := h.profiles.Create(c.Request().Context(), currentUser(c), in); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, messageResponse{Msg: "Profile created successfully"})
}

func (h *handlers) myProfile(c echo.Context) error {
	p, err := h.profiles.GetMine(c.Request().Context(), currentUser(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.profileView(c, p))
}

func (h *handlers) profileByUsername(c echo.Context) error {
	p, err := h.profiles.GetByUsername(c.Request().Context(), c.Param("username"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.profileView(c, p))
}

func (h *handlers) updateProfile(c echo.Context) error {
	var req profileRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	upd, err := req.toUpdate(false)
	if err != nil {
		return err
	}

	if err := h.profiles.Update(c.Request().Context(), currentUser(c), upd); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *handlers) avatarUploadURL(c echo.Context) error {
	up, err := h.profiles.AvatarUploadURL(c.Request().Context(), currentUser(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, avatarUploadResponse{
		UploadURL: up.URL,
		ExpiresIn: int64(up.ExpiresIn.Seconds()),
	})
}

func (h *handlers) confirmAvatar(c echo.Context) error {
	if err := h.profiles.ConfirmAvatar(c.Request().Context(), currentUser(c)); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *handlers) profileView(c echo.Context, p *models.Profile) profileResponse {
	r := profileResponse{
		Username:  p.Username,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		BirthDate: p.BirthDate.Format(models.DateLayout),
		Gender:    p.Gender,
		Status:    p.Status,
	}
	if url := h.profiles.AvatarURL(c.Request().Context(), p); url != "" {
		r.AvatarURL = &url
	}
	return r
}
