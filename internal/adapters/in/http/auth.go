package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

// tokenCookieName carries the session token for browser clients.
// Non-browser clients may send a bearer header instead.
const tokenCookieName = "hytale_panel_token"

const cookieMaxAge = 24 * time.Hour

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token,omitempty"`
}

type authStatusResponse struct {
	Enabled       bool `json:"enabled"`
	Authenticated bool `json:"authenticated"`
}

func (s *Server) handleLogin(c echo.Context) error {
	if !s.auth.IsEnabled() {
		return c.JSON(http.StatusOK, loginResponse{Success: true})
	}

	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return apiError(c, http.StatusBadRequest, errors.New("invalid request body"))
	}

	if !s.auth.ValidatePassword(c.Request().Context(), req.Username, req.Password) {
		return apiError(c, http.StatusUnauthorized, errors.New("invalid credentials"))
	}

	token, err := s.auth.IssueToken(c.Request().Context(), req.Username)
	if err != nil {
		return apiError(c, http.StatusInternalServerError, errors.New("failed to create session"))
	}

	c.SetCookie(&http.Cookie{
		Name:     tokenCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(cookieMaxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return c.JSON(http.StatusOK, loginResponse{Success: true, Token: token})
}

func (s *Server) handleLogout(c echo.Context) error {
	c.SetCookie(&http.Cookie{
		Name:     tokenCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleAuthStatus(c echo.Context) error {
	resp := authStatusResponse{Enabled: s.auth.IsEnabled()}
	if !resp.Enabled {
		resp.Authenticated = true
		return c.JSON(http.StatusOK, resp)
	}

	if token := extractToken(c); token != "" {
		if _, err := s.auth.ValidateToken(c.Request().Context(), token); err == nil {
			resp.Authenticated = true
		}
	}
	return c.JSON(http.StatusOK, resp)
}

// requireAuth guards routes and the websocket upgrade. Auth disabled
// means an open panel, matching a bare local install.
func (s *Server) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !s.auth.IsEnabled() {
			return next(c)
		}

		token := extractToken(c)
		if token == "" {
			return apiError(c, http.StatusUnauthorized, errors.New("authentication required"))
		}

		claims, err := s.auth.ValidateToken(c.Request().Context(), token)
		if err != nil {
			return apiError(c, http.StatusUnauthorized, errors.New("invalid or expired session"))
		}

		c.Set("user", claims.Subject)
		return next(c)
	}
}

func extractToken(c echo.Context) string {
	if header := c.Request().Header.Get(echo.HeaderAuthorization); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return token
		}
	}
	if cookie, err := c.Cookie(tokenCookieName); err == nil {
		return cookie.Value
	}
	return ""
}
