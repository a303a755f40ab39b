package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/goliatone/go-intake/pkg/forms"
	"github.com/goliatone/go-intake/pkg/intake"
)

// formsError maps definition lifecycle failures onto HTTP status codes.
func formsError(err error) error {
	var state *forms.StateError
	var publish *forms.PublishError
	var conflict *forms.ConflictError
	switch {
	case errors.Is(err, forms.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.As(err, &state):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.As(err, &publish):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &conflict):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

// intakeError maps submission pipeline failures onto HTTP status codes.
func intakeError(err error) error {
	var format *intake.FormatError
	var state *forms.StateError
	switch {
	case errors.Is(err, intake.ErrNotFound), errors.Is(err, forms.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.As(err, &format):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.As(err, &state):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
