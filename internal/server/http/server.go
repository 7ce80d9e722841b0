// Package http serves the JSON REST API over echo.
package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophprofile/internal/logging"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	address string
	echo    *echo.Echo
	logger  logging.Logger
}

func NewServer(address string, l logging.Logger, a AuthService, p ProfileService) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		address: address,
		echo:    e,
		logger:  l.With("module", "http_server"),
	}

	e.HTTPErrorHandler = s.errorHandler
	e.Use(middleware.RequestID())
	e.Use(middleware.Recover())
	e.Use(requestLogger(s.logger))

	s.registerRoutes(&handlers{auth: a, profiles: p}, a)
	return s
}

func (s *Server) registerRoutes(h *handlers, a AuthService) {
	s.echo.GET("/healthz", health)

	api := s.echo.Group("/api/v1")
	protected := authenticate(a)

	users := api.Group("/users")
	users.POST("/auth/register", h.register)
	users.POST("/auth/login", h.login)
	users.POST("/auth/refresh", h.refresh)
	users.GET("/me", h.me, protected)

	profile := api.Group("/user/profile", protected)
	profile.POST("", h.createProfile)
	profile.GET("/me", h.myProfile)
	profile.PATCH("/me", h.updateProfile)
	profile.POST("/me/avatar", h.avatarUploadURL)
	profile.POST("/me/avatar/confirm", h.confirmAvatar)
	profile.GET("/:username", h.profileByUsername)
}

func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := s.echo.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "http shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := s.echo.Start(s.address); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
