package http

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/gophprofile/internal/common"
	"github.com/labstack/echo/v4"
)

const internalErrorDetail = "internal server error"

type errorResponse struct {
	Detail string `json:"detail"`
}

// statusFor maps a service error onto an HTTP status. Unknown errors are 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, common.ErrUserAlreadyExists),
		errors.Is(err, common.ErrProfileAlreadyExists),
		errors.Is(err, common.ErrUsernameTaken),
		errors.Is(err, common.ErrEmptyUpdate),
		errors.Is(err, common.ErrAvatarNotUploaded):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrInvalidCredentials),
		errors.Is(err, common.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrUserDoesNotExist),
		errors.Is(err, common.ErrProfileDoesNotExist):
		return http.StatusNotFound
	case errors.Is(err, common.ErrValidation):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// errorHandler renders every error as {"detail": ...}. Messages of
// unclassified errors are logged and replaced.
func (s *Server) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		detail := http.StatusText(he.Code)
		if msg, ok := he.Message.(string); ok {
			detail = msg
		}
		s.writeError(c, he.Code, detail)
		return
	}

	code := statusFor(err)
	detail := err.Error()
	if code == http.StatusInternalServerError {
		s.logger.Error(c.Request().Context(), "request failed",
			"method", c.Request().Method, "path", c.Path(), "error", err)
		detail = internalErrorDetail
	}
	s.writeError(c, code, detail)
}

func (s *Server) writeError(c echo.Context, code int, detail string) {
	var err error
	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, errorResponse{Detail: detail})
	}
	if err != nil {
		s.logger.Warn(c.Request().Context(), "error response not written", "error", err)
	}
}
