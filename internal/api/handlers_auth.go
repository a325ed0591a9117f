package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/slipstream/helm/internal/auth"
)

type credentialsInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthStatus reports whether initial setup is required.
// GET /api/v1/auth/status
func (s *Server) AuthStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]bool{
		"setupRequired": !s.auth.HasAdmin(),
	})
}

// AuthSetup creates the admin user. Only allowed while none exists.
// POST /api/v1/auth/setup
func (s *Server) AuthSetup(c echo.Context) error {
	if s.auth.HasAdmin() {
		return echo.NewHTTPError(http.StatusConflict, "admin user already configured")
	}

	var input credentialsInput
	if err := c.Bind(&input); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if input.Username == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "username is required")
	}

	if err := s.auth.SetAdmin(input.Username, input.Password); err != nil {
		if errors.Is(err, auth.ErrPasswordRequired) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.NoContent(http.StatusCreated)
}

// Login validates credentials and returns a session token.
// POST /api/v1/auth/login
func (s *Server) Login(c echo.Context) error {
	var input credentialsInput
	if err := c.Bind(&input); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := s.auth.ValidateCredentials(input.Username, input.Password); err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	token, err := s.auth.GenerateToken(input.Username)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]string{"token": token})
}

type preferenceInput struct {
	Value string `json:"value"`
}

// ListPreferences returns all stored UI preferences.
// GET /api/v1/preferences
func (s *Server) ListPreferences(c echo.Context) error {
	prefs, err := s.db.ListPreferences()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, prefs)
}

// SetPreference stores one UI preference.
// PUT /api/v1/preferences/:key
func (s *Server) SetPreference(c echo.Context) error {
	var input preferenceInput
	if err := c.Bind(&input); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := s.db.SetPreference(c.Param("key"), input.Value); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
