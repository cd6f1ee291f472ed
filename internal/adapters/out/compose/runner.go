// Package compose drives the docker compose CLI for per-server stacks.
package compose

import (
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/bnema/zerowrap"
)

// commandTimeout bounds one compose invocation. Image pulls on first up
// can take a while.
const commandTimeout = 5 * time.Minute

// DirResolver maps a server id to the directory holding its compose file.
type DirResolver interface {
	ServerDir(serverID string) (string, error)
}

// Runner implements the ComposeRunner interface by shelling out to
// "docker compose" inside the server's directory.
type Runner struct {
	dirs DirResolver
	log  zerowrap.Logger
}

// NewRunner creates a compose runner.
func NewRunner(dirs DirResolver, log zerowrap.Logger) *Runner {
	return &Runner{dirs: dirs, log: log}
}

// Up brings the server's stack up detached.
func (r *Runner) Up(ctx context.Context, serverID string) error {
	return r.run(ctx, serverID, "up", "-d")
}

// Down tears the server's stack down, optionally removing its volumes.
func (r *Runner) Down(ctx context.Context, serverID string, removeVolumes bool) error {
	args := []string{"down"}
	if removeVolumes {
		args = append(args, "-v")
	}
	return r.run(ctx, serverID, args...)
}

// Restart restarts the server's stack.
func (r *Runner) Restart(ctx context.Context, serverID string) error {
	return r.run(ctx, serverID, "restart")
}

func (r *Runner) run(ctx context.Context, serverID string, args ...string) error {
	ctx = zerowrap.CtxWithFields(ctx, map[string]any{
		zerowrap.FieldLayer:   "adapter",
		zerowrap.FieldAdapter: "compose",
		zerowrap.FieldAction:  args[0],
		"server_id":           serverID,
	})
	log := zerowrap.FromCtx(ctx)

	dir, err := r.dirs.ServerDir(serverID)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "docker", append([]string{"compose"}, args...)...)
	cmd.Dir = dir

	output, err := cmd.CombinedOutput()
	if err != nil {
		log.Error().Err(err).Str("output", strings.TrimSpace(string(output))).Msg("compose command failed")
		return log.WrapErr(err, "compose "+args[0]+" failed")
	}

	log.Debug().Str("output", strings.TrimSpace(string(output))).Msg("compose command completed")
	return nil
}
