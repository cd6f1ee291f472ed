package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"hytalepanel/internal/boundaries/in"
	"hytalepanel/internal/domain"
)

func registryStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrServerNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrPortInUse):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleListServers(c echo.Context) error {
	servers, err := s.servers.List(c.Request().Context())
	if err != nil {
		return apiError(c, http.StatusInternalServerError, err)
	}
	return c.JSON(http.StatusOK, servers)
}

func (s *Server) handleCreateServer(c echo.Context) error {
	var params in.CreateServerParams
	if err := c.Bind(&params); err != nil {
		return apiError(c, http.StatusBadRequest, errors.New("invalid request body"))
	}

	server, err := s.servers.Create(c.Request().Context(), params)
	if err != nil {
		return apiError(c, registryStatus(err), err)
	}
	return c.JSON(http.StatusCreated, server)
}

func (s *Server) handleGetServer(c echo.Context) error {
	server, err := s.servers.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return apiError(c, registryStatus(err), err)
	}
	return c.JSON(http.StatusOK, server)
}

func (s *Server) handleUpdateServer(c echo.Context) error {
	var params in.UpdateServerParams
	if err := c.Bind(&params); err != nil {
		return apiError(c, http.StatusBadRequest, errors.New("invalid request body"))
	}

	server, err := s.servers.Update(c.Request().Context(), c.Param("id"), params)
	if err != nil {
		return apiError(c, registryStatus(err), err)
	}
	return c.JSON(http.StatusOK, server)
}

func (s *Server) handleDeleteServer(c echo.Context) error {
	removeData, _ := strconv.ParseBool(c.QueryParam("removeData"))

	if err := s.servers.Delete(c.Request().Context(), c.Param("id"), removeData); err != nil {
		return apiError(c, registryStatus(err), err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

type composeResponse struct {
	Content string `json:"content"`
}

func (s *Server) handleGetCompose(c echo.Context) error {
	content, err := s.servers.GetCompose(c.Request().Context(), c.Param("id"))
	if err != nil {
		return apiError(c, registryStatus(err), err)
	}
	return c.JSON(http.StatusOK, composeResponse{Content: content})
}

func (s *Server) handleSaveCompose(c echo.Context) error {
	var req composeResponse
	if err := c.Bind(&req); err != nil {
		return apiError(c, http.StatusBadRequest, errors.New("invalid request body"))
	}

	if err := s.servers.SaveCompose(c.Request().Context(), c.Param("id"), req.Content); err != nil {
		return apiError(c, registryStatus(err), err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleRegenerateCompose(c echo.Context) error {
	content, err := s.servers.RegenerateCompose(c.Request().Context(), c.Param("id"))
	if err != nil {
		return apiError(c, registryStatus(err), err)
	}
	return c.JSON(http.StatusOK, composeResponse{Content: content})
}
