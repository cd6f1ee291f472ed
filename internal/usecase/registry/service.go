// Package registry implements the server registry use case: CRUD over
// server definitions, UDP port allocation and the compose-driven
// lifecycle of each server's container stack.
package registry

import (
	"context"
	"fmt"
	"time"

	"github.com/bnema/zerowrap"
	"github.com/google/uuid"

	"hytalepanel/internal/boundaries/in"
	"hytalepanel/internal/boundaries/out"
	"hytalepanel/internal/domain"
)

// basePort is the first UDP port tried when none is requested.
const basePort = 5520

// Config holds the registry settings.
type Config struct {
	// Image is the server container image.
	Image string
	// Timezone is injected into each container's environment.
	Timezone string
}

// DefaultConfig returns the registry defaults.
func DefaultConfig() Config {
	return Config{
		Image:    "ketbom/hytale-server:latest",
		Timezone: "UTC",
	}
}

// Service implements the ServerService interface.
type Service struct {
	cfg     Config
	store   out.ServerStore
	compose out.ComposeRunner
	runtime out.ContainerRuntime
	log     zerowrap.Logger
}

// NewService creates a new registry service.
func NewService(
	cfg Config,
	store out.ServerStore,
	compose out.ComposeRunner,
	runtime out.ContainerRuntime,
	log zerowrap.Logger,
) *Service {
	if cfg.Image == "" {
		cfg.Image = DefaultConfig().Image
	}
	if cfg.Timezone == "" {
		cfg.Timezone = DefaultConfig().Timezone
	}
	return &Service{
		cfg:     cfg,
		store:   store,
		compose: compose,
		runtime: runtime,
		log:     log,
	}
}

// List returns all registered servers.
func (s *Service) List(ctx context.Context) ([]domain.Server, error) {
	list, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load server registry: %w", err)
	}
	return list.Servers, nil
}

// Get returns one server by ID.
func (s *Service) Get(ctx context.Context, id string) (*domain.Server, error) {
	list, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load server registry: %w", err)
	}
	for i := range list.Servers {
		if list.Servers[i].ID == id {
			return &list.Servers[i], nil
		}
	}
	return nil, domain.ErrServerNotFound
}

// Create registers a new server, allocates its port, lays out its
// directories and writes its compose file.
func (s *Service) Create(ctx context.Context, params in.CreateServerParams) (*domain.Server, error) {
	ctx = zerowrap.CtxWithFields(ctx, map[string]any{
		zerowrap.FieldLayer:   "usecase",
		zerowrap.FieldUseCase: "CreateServer",
		"name":                params.Name,
	})
	log := zerowrap.FromCtx(ctx)

	if params.Name == "" {
		return nil, fmt.Errorf("server name is required")
	}

	list, err := s.store.Load(ctx)
	if err != nil {
		return nil, log.WrapErr(err, "failed to load server registry")
	}

	port := params.Port
	if port == 0 {
		port = nextFreePort(list.Servers)
	} else if portInUse(list.Servers, port, "") {
		return nil, fmt.Errorf("port %d: %w", port, domain.ErrPortInUse)
	}

	id := uuid.New().String()
	server := domain.Server{
		ID:            id,
		Name:          params.Name,
		Port:          port,
		ContainerName: containerName(id),
		Config:        domain.DefaultServerConfig(),
		CreatedAt:     time.Now().UTC(),
	}
	if params.Config != nil {
		server.Config = mergeConfig(server.Config, *params.Config)
	}

	if err := s.store.EnsureServerDirs(ctx, id); err != nil {
		return nil, log.WrapErr(err, "failed to create server directories")
	}
	if err := s.writeCompose(ctx, server); err != nil {
		return nil, err
	}

	if list.Version == 0 {
		list.Version = 1
	}
	list.Servers = append(list.Servers, server)
	if err := s.store.Save(ctx, list); err != nil {
		return nil, log.WrapErr(err, "failed to save server registry")
	}

	log.Info().
		Str(zerowrap.FieldEntityID, id).
		Int("port", port).
		Msg("server created")

	return &server, nil
}

// Update changes a server's mutable fields and rewrites its compose file.
func (s *Service) Update(ctx context.Context, id string, params in.UpdateServerParams) (*domain.Server, error) {
	ctx = zerowrap.CtxWithFields(ctx, map[string]any{
		zerowrap.FieldLayer:   "usecase",
		zerowrap.FieldUseCase: "UpdateServer",
		zerowrap.FieldEntityID: id,
	})
	log := zerowrap.FromCtx(ctx)

	list, err := s.store.Load(ctx)
	if err != nil {
		return nil, log.WrapErr(err, "failed to load server registry")
	}

	idx := indexOf(list.Servers, id)
	if idx < 0 {
		return nil, domain.ErrServerNotFound
	}
	server := list.Servers[idx]

	if params.Name != "" {
		server.Name = params.Name
	}
	if params.Port != 0 && params.Port != server.Port {
		if portInUse(list.Servers, params.Port, id) {
			return nil, fmt.Errorf("port %d: %w", params.Port, domain.ErrPortInUse)
		}
		server.Port = params.Port
	}
	if params.Config != nil {
		server.Config = mergeConfig(server.Config, *params.Config)
	}

	if err := s.writeCompose(ctx, server); err != nil {
		return nil, err
	}

	list.Servers[idx] = server
	if err := s.store.Save(ctx, list); err != nil {
		return nil, log.WrapErr(err, "failed to save server registry")
	}

	log.Info().Msg("server updated")
	return &server, nil
}

// Delete tears the server's stack down and removes it from the registry.
// Teardown failures are logged and skipped so a half-removed stack never
// wedges the registry.
func (s *Service) Delete(ctx context.Context, id string, removeData bool) error {
	ctx = zerowrap.CtxWithFields(ctx, map[string]any{
		zerowrap.FieldLayer:   "usecase",
		zerowrap.FieldUseCase: "DeleteServer",
		zerowrap.FieldEntityID: id,
	})
	log := zerowrap.FromCtx(ctx)

	list, err := s.store.Load(ctx)
	if err != nil {
		return log.WrapErr(err, "failed to load server registry")
	}

	idx := indexOf(list.Servers, id)
	if idx < 0 {
		return domain.ErrServerNotFound
	}
	server := list.Servers[idx]

	if err := s.runtime.Stop(ctx, server.ContainerName); err != nil {
		log.Warn().Err(err).Msg("failed to stop container during delete")
	}
	if err := s.compose.Down(ctx, id, true); err != nil {
		log.Warn().Err(err).Msg("failed to bring compose stack down during delete")
	}
	if err := s.runtime.Remove(ctx, server.ContainerName, true); err != nil {
		log.Warn().Err(err).Msg("failed to remove container during delete")
	}

	if removeData {
		if err := s.store.RemoveServerDirs(ctx, id); err != nil {
			log.Warn().Err(err).Msg("failed to remove server directories")
		}
	}

	list.Servers = append(list.Servers[:idx], list.Servers[idx+1:]...)
	if err := s.store.Save(ctx, list); err != nil {
		return log.WrapErr(err, "failed to save server registry")
	}

	log.Info().Bool("remove_data", removeData).Msg("server deleted")
	return nil
}

// Start brings the server's compose stack up.
func (s *Service) Start(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.compose.Up(ctx, id); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Stop brings the server's compose stack down, keeping volumes.
func (s *Service) Stop(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.compose.Down(ctx, id, false); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}
	return nil
}

// Restart restarts the server's compose stack.
func (s *Service) Restart(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.compose.Restart(ctx, id); err != nil {
		return fmt.Errorf("failed to restart server: %w", err)
	}
	return nil
}

// GetCompose returns the server's current compose file, which may have
// been hand-edited since generation.
func (s *Service) GetCompose(ctx context.Context, id string) (string, error) {
	content, err := s.store.ReadCompose(ctx, id)
	if err != nil {
		return "", fmt.Errorf("failed to read compose file: %w", err)
	}
	return string(content), nil
}

// SaveCompose replaces the server's compose file verbatim.
func (s *Service) SaveCompose(ctx context.Context, id string, content string) error {
	if err := s.store.WriteCompose(ctx, id, []byte(content)); err != nil {
		return fmt.Errorf("failed to write compose file: %w", err)
	}
	return nil
}

// RegenerateCompose discards hand edits and rewrites the compose file
// from the registry record.
func (s *Service) RegenerateCompose(ctx context.Context, id string) (string, error) {
	server, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if err := s.writeCompose(ctx, *server); err != nil {
		return "", err
	}
	content, err := s.generateCompose(*server)
	if err != nil {
		return "", err
	}
	return string(content), nil
}

func (s *Service) writeCompose(ctx context.Context, server domain.Server) error {
	content, err := s.generateCompose(server)
	if err != nil {
		return err
	}
	if err := s.store.WriteCompose(ctx, server.ID, content); err != nil {
		return fmt.Errorf("failed to write compose file: %w", err)
	}
	return nil
}

// containerName derives the container name from the server ID.
func containerName(id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return "hytale-" + id
}

// nextFreePort returns the lowest port from basePort upward not taken by
// an existing server.
func nextFreePort(servers []domain.Server) int {
	used := make(map[int]bool, len(servers))
	for _, server := range servers {
		used[server.Port] = true
	}
	port := basePort
	for used[port] {
		port++
	}
	return port
}

func portInUse(servers []domain.Server, port int, excludeID string) bool {
	for _, server := range servers {
		if server.ID != excludeID && server.Port == port {
			return true
		}
	}
	return false
}

func indexOf(servers []domain.Server, id string) int {
	for i := range servers {
		if servers[i].ID == id {
			return i
		}
	}
	return -1
}

// mergeConfig overlays the supplied config onto the current one, keeping
// current values for zero-valued fields. AutoDownload, UseG1GC and
// UseMachineID are taken as-is since false is a meaningful setting.
func mergeConfig(current, supplied domain.ServerConfig) domain.ServerConfig {
	merged := supplied
	if merged.JavaXms == "" {
		merged.JavaXms = current.JavaXms
	}
	if merged.JavaXmx == "" {
		merged.JavaXmx = current.JavaXmx
	}
	if merged.BindAddr == "" {
		merged.BindAddr = current.BindAddr
	}
	return merged
}
