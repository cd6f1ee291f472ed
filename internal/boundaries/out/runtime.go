// Package out defines output ports (interfaces) for infrastructure.
// These interfaces define the contract between use cases and driven
// adapters (Docker, catalog HTTP API, filesystem stores).
package out

import (
	"context"
	"io"
	"time"

	"hytalepanel/internal/domain"
)

// ContainerRuntime is the container control port. Containers are addressed
// by name; handles are cheap to re-acquire so nothing is cached between
// calls.
type ContainerRuntime interface {
	// Inspect derives the current container state. Containers that do not
	// exist fail with domain.ErrContainerNotFound.
	Inspect(ctx context.Context, name string) (domain.ContainerState, error)

	// Exec runs a shell command inside the container and returns its
	// combined output. A command exceeding the timeout resolves with the
	// partial output collected so far rather than an error.
	Exec(ctx context.Context, name, command string, timeout time.Duration) (string, error)

	// ExecStream starts a shell command with a TTY attached and returns
	// the raw combined output stream. TTY streams carry no multiplexing
	// header.
	ExecStream(ctx context.Context, name, command string) (io.ReadCloser, error)

	// StreamLogs attaches to the container's log stream in follow mode.
	// Each frame is prefixed with the 8-byte stdout/stderr multiplexing
	// header, which the consumer strips.
	StreamLogs(ctx context.Context, name string, tail int) (io.ReadCloser, error)

	// LogHistory returns up to tail historical log lines.
	LogHistory(ctx context.Context, name string, tail int) ([]string, error)

	// GetArchive returns a tar stream of the path inside the container.
	GetArchive(ctx context.Context, name, path string) (io.ReadCloser, error)

	// PutArchive extracts a tar stream at the path inside the container.
	PutArchive(ctx context.Context, name, path string, content io.Reader) error

	// Start, Stop and Restart change the container's run state. A
	// container already in the desired state is treated as success.
	Start(ctx context.Context, name string) error
	Stop(ctx context.Context, name string) error
	Restart(ctx context.Context, name string) error

	// Remove deletes the container, stopping it first when needed. A
	// missing container is treated as success.
	Remove(ctx context.Context, name string, removeVolumes bool) error
}
