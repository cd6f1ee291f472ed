// Package docker implements the container runtime adapter using Docker API.
package docker

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/bnema/zerowrap"
	cerrdefs "github.com/containerd/errdefs"
	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"

	"hytalepanel/internal/domain"
)

// stopTimeoutSeconds is passed to the engine for stop and restart.
const stopTimeoutSeconds = 30

// Runtime implements the ContainerRuntime interface using Docker API.
type Runtime struct {
	client client.APIClient
}

// NewRuntime creates a new Docker runtime instance.
func NewRuntime() (*Runtime, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create Docker client: %w", err)
	}

	return &Runtime{
		client: cli,
	}, nil
}

// NewRuntimeWithClient creates a new Docker runtime instance with a custom client (for testing).
func NewRuntimeWithClient(cli client.APIClient) *Runtime {
	return &Runtime{
		client: cli,
	}
}

// Ping verifies the Docker daemon is reachable.
func (r *Runtime) Ping(ctx context.Context) error {
	if _, err := r.client.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping Docker daemon: %w", err)
	}
	return nil
}

// Version returns the Docker daemon version string.
func (r *Runtime) Version(ctx context.Context) (string, error) {
	version, err := r.client.ServerVersion(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get Docker version: %w", err)
	}
	return version.Version, nil
}

// Inspect returns a container's live state.
func (r *Runtime) Inspect(ctx context.Context, name string) (domain.ContainerState, error) {
	ctx = zerowrap.CtxWithFields(ctx, map[string]any{
		zerowrap.FieldLayer:   "adapter",
		zerowrap.FieldAdapter: "docker",
		zerowrap.FieldAction:  "Inspect",
		"container_name":      name,
	})
	log := zerowrap.FromCtx(ctx)

	resp, err := r.client.ContainerInspect(ctx, name)
	if err != nil {
		if cerrdefs.IsNotFound(err) {
			return domain.ContainerState{}, fmt.Errorf("%w: %s", domain.ErrContainerNotFound, name)
		}
		return domain.ContainerState{}, log.WrapErr(err, "failed to inspect container")
	}

	state := domain.ContainerState{}
	if resp.State != nil {
		state.Running = resp.State.Running
		state.Status = resp.State.Status
		state.StartedAt = resp.State.StartedAt
		state.Health = "unknown"
		if resp.State.Health != nil {
			state.Health = string(resp.State.Health.Status)
		}
	}
	return state, nil
}

// Exec runs a shell command inside the container and returns its
// combined output. A nonzero exit code becomes an error carrying the
// command's stderr.
func (r *Runtime) Exec(ctx context.Context, name, command string, timeout time.Duration) (string, error) {
	ctx = zerowrap.CtxWithFields(ctx, map[string]any{
		zerowrap.FieldLayer:   "adapter",
		zerowrap.FieldAdapter: "docker",
		zerowrap.FieldAction:  "Exec",
		"container_name":      name,
	})
	log := zerowrap.FromCtx(ctx)

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	exec, err := r.client.ContainerExecCreate(ctx, name, container.ExecOptions{
		Cmd:          []string{"sh", "-c", command},
		AttachStdout: true,
		AttachStderr: true,
	})
	if err != nil {
		return "", log.WrapErr(err, "failed to create exec")
	}

	attach, err := r.client.ContainerExecAttach(ctx, exec.ID, container.ExecStartOptions{})
	if err != nil {
		return "", log.WrapErr(err, "failed to attach exec")
	}
	defer attach.Close()

	// Force the read loop to end when the deadline hits.
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			attach.Close()
		case <-done:
		}
	}()

	stdout, stderr, readErr := parseExecOutput(attach.Reader)
	close(done)
	combined := string(stdout) + string(stderr)

	// A timed-out command resolves with whatever it printed so far.
	if ctx.Err() != nil {
		log.Warn().Str("command", command).Msg("exec timed out, returning partial output")
		return combined, nil
	}
	if readErr != nil {
		return combined, log.WrapErr(readErr, "failed to read exec output")
	}

	inspect, err := r.client.ContainerExecInspect(ctx, exec.ID)
	if err != nil {
		return combined, log.WrapErr(err, "failed to inspect exec")
	}
	if inspect.ExitCode != 0 {
		return combined, fmt.Errorf("command exited with code %d: %s", inspect.ExitCode, strings.TrimSpace(string(stderr)))
	}

	return combined, nil
}

// ExecStream runs a shell command with a TTY and returns its raw output
// stream. The TTY collapses stdout and stderr into one unframed stream,
// which is what interactive tools like the downloader expect.
func (r *Runtime) ExecStream(ctx context.Context, name, command string) (io.ReadCloser, error) {
	ctx = zerowrap.CtxWithFields(ctx, map[string]any{
		zerowrap.FieldLayer:   "adapter",
		zerowrap.FieldAdapter: "docker",
		zerowrap.FieldAction:  "ExecStream",
		"container_name":      name,
	})
	log := zerowrap.FromCtx(ctx)

	exec, err := r.client.ContainerExecCreate(ctx, name, container.ExecOptions{
		Cmd:          []string{"sh", "-c", command},
		AttachStdout: true,
		AttachStderr: true,
		Tty:          true,
	})
	if err != nil {
		return nil, log.WrapErr(err, "failed to create exec stream")
	}

	attach, err := r.client.ContainerExecAttach(ctx, exec.ID, container.ExecStartOptions{Tty: true})
	if err != nil {
		return nil, log.WrapErr(err, "failed to attach exec stream")
	}

	return &hijackedStream{resp: attach}, nil
}

// StreamLogs attaches to the container's log stream in follow mode.
func (r *Runtime) StreamLogs(ctx context.Context, name string, tail int) (io.ReadCloser, error) {
	ctx = zerowrap.CtxWithFields(ctx, map[string]any{
		zerowrap.FieldLayer:   "adapter",
		zerowrap.FieldAdapter: "docker",
		zerowrap.FieldAction:  "StreamLogs",
		"container_name":      name,
	})
	log := zerowrap.FromCtx(ctx)

	logs, err := r.client.ContainerLogs(ctx, name, container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Follow:     true,
		Tail:       strconv.Itoa(tail),
	})
	if err != nil {
		return nil, log.WrapErr(err, "failed to stream container logs")
	}

	return logs, nil
}

// LogHistory returns up to tail historical log lines.
func (r *Runtime) LogHistory(ctx context.Context, name string, tail int) ([]string, error) {
	ctx = zerowrap.CtxWithFields(ctx, map[string]any{
		zerowrap.FieldLayer:   "adapter",
		zerowrap.FieldAdapter: "docker",
		zerowrap.FieldAction:  "LogHistory",
		"container_name":      name,
	})
	log := zerowrap.FromCtx(ctx)

	logs, err := r.client.ContainerLogs(ctx, name, container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Tail:       strconv.Itoa(tail),
	})
	if err != nil {
		return nil, log.WrapErr(err, "failed to fetch container logs")
	}
	defer logs.Close()

	stdout, stderr, err := parseExecOutput(logs)
	if err != nil {
		return nil, log.WrapErr(err, "failed to read container logs")
	}

	return splitLogLines(append(stdout, stderr...)), nil
}

// GetArchive returns a tar stream of the path inside the container.
func (r *Runtime) GetArchive(ctx context.Context, name, path string) (io.ReadCloser, error) {
	ctx = zerowrap.CtxWithFields(ctx, map[string]any{
		zerowrap.FieldLayer:   "adapter",
		zerowrap.FieldAdapter: "docker",
		zerowrap.FieldAction:  "GetArchive",
		"container_name":      name,
		"path":                path,
	})
	log := zerowrap.FromCtx(ctx)

	reader, _, err := r.client.CopyFromContainer(ctx, name, path)
	if err != nil {
		if cerrdefs.IsNotFound(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrContainerNotFound, name)
		}
		return nil, log.WrapErr(err, "failed to copy from container")
	}

	return reader, nil
}

// PutArchive extracts a tar stream into a directory inside the container.
func (r *Runtime) PutArchive(ctx context.Context, name, path string, content io.Reader) error {
	ctx = zerowrap.CtxWithFields(ctx, map[string]any{
		zerowrap.FieldLayer:   "adapter",
		zerowrap.FieldAdapter: "docker",
		zerowrap.FieldAction:  "PutArchive",
		"container_name":      name,
		"path":                path,
	})
	log := zerowrap.FromCtx(ctx)

	err := r.client.CopyToContainer(ctx, name, path, content, container.CopyToContainerOptions{})
	if err != nil {
		return log.WrapErr(err, "failed to copy to container")
	}

	return nil
}

// Start starts a container. A container already running is not an error.
func (r *Runtime) Start(ctx context.Context, name string) error {
	ctx = zerowrap.CtxWithFields(ctx, map[string]any{
		zerowrap.FieldLayer:   "adapter",
		zerowrap.FieldAdapter: "docker",
		zerowrap.FieldAction:  "Start",
		"container_name":      name,
	})
	log := zerowrap.FromCtx(ctx)

	err := r.client.ContainerStart(ctx, name, container.StartOptions{})
	if err != nil {
		if cerrdefs.IsNotModified(err) {
			return nil
		}
		return log.WrapErr(err, "failed to start container")
	}

	log.Info().Msg("container started")
	return nil
}

// Stop stops a container. A container already stopped is not an error.
func (r *Runtime) Stop(ctx context.Context, name string) error {
	ctx = zerowrap.CtxWithFields(ctx, map[string]any{
		zerowrap.FieldLayer:   "adapter",
		zerowrap.FieldAdapter: "docker",
		zerowrap.FieldAction:  "Stop",
		"container_name":      name,
	})
	log := zerowrap.FromCtx(ctx)

	timeout := stopTimeoutSeconds
	err := r.client.ContainerStop(ctx, name, container.StopOptions{Timeout: &timeout})
	if err != nil {
		if cerrdefs.IsNotModified(err) {
			return nil
		}
		return log.WrapErr(err, "failed to stop container")
	}

	log.Info().Msg("container stopped")
	return nil
}

// Restart restarts a container.
func (r *Runtime) Restart(ctx context.Context, name string) error {
	ctx = zerowrap.CtxWithFields(ctx, map[string]any{
		zerowrap.FieldLayer:   "adapter",
		zerowrap.FieldAdapter: "docker",
		zerowrap.FieldAction:  "Restart",
		"container_name":      name,
	})
	log := zerowrap.FromCtx(ctx)

	timeout := stopTimeoutSeconds
	err := r.client.ContainerRestart(ctx, name, container.StopOptions{Timeout: &timeout})
	if err != nil {
		return log.WrapErr(err, "failed to restart container")
	}

	log.Info().Msg("container restarted")
	return nil
}

// Remove removes a container. A container already gone is not an error.
func (r *Runtime) Remove(ctx context.Context, name string, force bool) error {
	ctx = zerowrap.CtxWithFields(ctx, map[string]any{
		zerowrap.FieldLayer:   "adapter",
		zerowrap.FieldAdapter: "docker",
		zerowrap.FieldAction:  "Remove",
		"container_name":      name,
		"force":               force,
	})
	log := zerowrap.FromCtx(ctx)

	err := r.client.ContainerRemove(ctx, name, container.RemoveOptions{Force: force})
	if err != nil {
		if cerrdefs.IsNotFound(err) {
			return nil
		}
		return log.WrapErr(err, "failed to remove container")
	}

	log.Info().Msg("container removed")
	return nil
}

// hijackedStream adapts a hijacked exec connection to io.ReadCloser.
type hijackedStream struct {
	resp types.HijackedResponse
}

func (h *hijackedStream) Read(p []byte) (int, error) {
	return h.resp.Reader.Read(p)
}

func (h *hijackedStream) Close() error {
	h.resp.Close()
	return nil
}
