// Package http exposes the panel's HTTP surface: auth routes, the
// server-registry REST API and the websocket endpoint.
package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/bnema/zerowrap"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"hytalepanel/internal/adapters/in/ws"
	"hytalepanel/internal/boundaries/in"
)

// Server wraps the echo instance and its route handlers.
type Server struct {
	echo    *echo.Echo
	addr    string
	auth    in.AuthService
	servers in.ServerService
	wsh     *ws.Handler
	log     zerowrap.Logger
}

// NewServer builds the HTTP server and registers all routes.
func NewServer(addr string, auth in.AuthService, servers in.ServerService, wsh *ws.Handler, log zerowrap.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:    e,
		addr:    addr,
		auth:    auth,
		servers: servers,
		wsh:     wsh,
		log:     log,
	}

	e.Use(middleware.Recover())
	e.Use(requestLogger(log))

	api := e.Group("/api")
	api.POST("/auth/login", s.handleLogin)
	api.POST("/auth/logout", s.handleLogout)
	api.GET("/auth/status", s.handleAuthStatus)

	guarded := api.Group("", s.requireAuth)
	guarded.GET("/servers", s.handleListServers)
	guarded.POST("/servers", s.handleCreateServer)
	guarded.GET("/servers/:id", s.handleGetServer)
	guarded.PUT("/servers/:id", s.handleUpdateServer)
	guarded.DELETE("/servers/:id", s.handleDeleteServer)
	guarded.GET("/servers/:id/compose", s.handleGetCompose)
	guarded.PUT("/servers/:id/compose", s.handleSaveCompose)
	guarded.POST("/servers/:id/compose/regenerate", s.handleRegenerateCompose)

	e.GET("/ws", s.handleWebsocket, s.requireAuth)

	return s
}

// Start runs the server until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.addr).Msg("http server listening")
	err := s.echo.Start(s.addr)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) handleWebsocket(c echo.Context) error {
	return s.wsh.Serve(c.Response(), c.Request())
}

func requestLogger(log zerowrap.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:     true,
		LogStatus:  true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Debug().
				Str("type", "http").
				Str("remote_ip", c.RealIP()).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	})
}

// errorResponse is the error body of every API failure.
type errorResponse struct {
	Error string `json:"error"`
}

func apiError(c echo.Context, status int, err error) error {
	return c.JSON(status, errorResponse{Error: err.Error()})
}
