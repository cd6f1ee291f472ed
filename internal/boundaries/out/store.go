package out

import (
	"context"

	"hytalepanel/internal/domain"
)

// ServerStore persists the server-registry document and owns the on-disk
// layout of per-server directories. Reads and writes are whole-document;
// the last writer wins.
type ServerStore interface {
	Load(ctx context.Context) (domain.ServerList, error)
	Save(ctx context.Context, list domain.ServerList) error

	// EnsureServerDirs creates the server directory tree (including the
	// data subdirectory mounted into the container).
	EnsureServerDirs(ctx context.Context, serverID string) error

	// RemoveServerDirs deletes a server's directory tree.
	RemoveServerDirs(ctx context.Context, serverID string) error

	// ReadCompose and WriteCompose access the server's docker-compose.yml.
	ReadCompose(ctx context.Context, serverID string) ([]byte, error)
	WriteCompose(ctx context.Context, serverID string, content []byte) error

	// DataPath returns the host path of the server's data directory.
	DataPath(serverID string) string
}

// ComposeRunner drives the compose lifecycle of one server's stack from
// its server directory.
type ComposeRunner interface {
	Up(ctx context.Context, serverID string) error
	Down(ctx context.Context, serverID string, removeVolumes bool) error
	Restart(ctx context.Context, serverID string) error
}
