package http

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophprofile/internal/common"
	"github.com/dmitrijs2005/gophprofile/internal/logging"
	"github.com/dmitrijs2005/gophprofile/internal/server/models"
	"github.com/dmitrijs2005/gophprofile/internal/server/services"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const currentUserKey = "current_user"

var errNotAuthenticated = errors.New("not authenticated")

// authenticate resolves the caller from the Authorization header and stores
// the *models.CurrentUser in the echo context.
func authenticate(resolver services.IdentityResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := common.ExtractToken(c.Request().Header.Get(common.AuthorizationHeaderName))
			if token == "" {
				return fmt.Errorf("%w: %w", common.ErrInvalidToken, errNotAuthenticated)
			}

			user, err := resolver.CurrentUser(c.Request().Context(), token)
			if err != nil {
				return err
			}

			c.Set(currentUserKey, user)
			return next(c)
		}
	}
}

func currentUser(c echo.Context) *models.CurrentUser {
	u, _ := c.Get(currentUserKey).(*models.CurrentUser)
	return u
}

func requestLogger(l logging.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURIPath:   true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			l.Info(context.WithoutCancel(c.Request().Context()), "http request",
				"method", v.Method,
				"path", v.URIPath,
				"status", v.Status,
				"latency", v.Latency.Round(time.Microsecond).String(),
				"request_id", v.RequestID,
			)
			return nil
		},
	})
}
