// Package update performs in-place refreshes of the server binaries and
// tracks when they were last synced.
package update

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bnema/zerowrap"

	"hytalepanel/internal/boundaries/in"
	"hytalepanel/internal/boundaries/out"
	"hytalepanel/internal/domain"
	"hytalepanel/pkg/tarkit"
)

const (
	gamePath         = "/opt/hytale"
	metadataPath     = gamePath + "/.update-metadata.json"
	metadataFileName = ".update-metadata.json"

	execTimeout = 30 * time.Second
	// defaultSettle is how long a stopped container gets to release its
	// file handles before the downloader overwrites the binaries.
	defaultSettle = 5 * time.Second
)

// Service implements the UpdateService interface.
type Service struct {
	runtime   out.ContainerRuntime
	downloads in.DownloadService
	files     in.FileService
	settle    time.Duration
	log       zerowrap.Logger
}

// NewService creates a new update service.
func NewService(
	runtime out.ContainerRuntime,
	downloads in.DownloadService,
	files in.FileService,
	log zerowrap.Logger,
) *Service {
	return &Service{
		runtime:   runtime,
		downloads: downloads,
		files:     files,
		settle:    defaultSettle,
		log:       log,
	}
}

// Apply runs stop -> download -> record -> restart, preserving the
// server's prior run state. Download statuses are forwarded as they
// arrive; the returned channel carries the update phases and is closed
// after the terminal one.
func (s *Service) Apply(ctx context.Context, containerName, serverID string, forward func(domain.DownloadStatus)) <-chan domain.UpdateStatus {
	statuses := make(chan domain.UpdateStatus, 8)
	go s.apply(ctx, containerName, serverID, forward, statuses)
	return statuses
}

func (s *Service) apply(ctx context.Context, containerName, serverID string, forward func(domain.DownloadStatus), statuses chan<- domain.UpdateStatus) {
	defer close(statuses)

	ctx = zerowrap.CtxWithFields(ctx, map[string]any{
		zerowrap.FieldLayer:   "usecase",
		zerowrap.FieldUseCase: "ApplyUpdate",
		"container":           containerName,
	})
	log := zerowrap.FromCtx(ctx)

	emit := func(status domain.UpdateStatus) bool {
		status.ServerID = serverID
		select {
		case statuses <- status:
			return true
		case <-ctx.Done():
			return false
		}
	}
	fail := func(err error, msg string) {
		log.Error().Err(err).Msg(msg)
		emit(domain.UpdateStatus{Status: domain.UpdateError, Message: err.Error()})
	}

	state, err := s.runtime.Inspect(ctx, containerName)
	if err != nil {
		fail(err, "failed to inspect container before update")
		return
	}
	wasRunning := state.Running

	if wasRunning {
		if !emit(domain.UpdateStatus{Status: domain.UpdateStopping, Message: "Stopping server..."}) {
			return
		}
		if err := s.runtime.Stop(ctx, containerName); err != nil {
			fail(err, "failed to stop server for update")
			return
		}
		select {
		case <-time.After(s.settle):
		case <-ctx.Done():
			return
		}
	}

	if !emit(domain.UpdateStatus{Status: domain.UpdateDownloading, Message: "Downloading update..."}) {
		return
	}
	for status := range s.downloads.Run(ctx, containerName, serverID) {
		if forward != nil {
			forward(status)
		}
	}

	if err := s.writeMetadata(ctx, containerName); err != nil {
		log.Warn().Err(err).Msg("failed to record update metadata")
	}

	if wasRunning {
		if !emit(domain.UpdateStatus{Status: domain.UpdateRestarting, Message: "Restarting server..."}) {
			return
		}
		if err := s.runtime.Restart(ctx, containerName); err != nil {
			fail(err, "failed to restart server after update")
			return
		}
	}

	log.Info().Msg("update complete")
	emit(domain.UpdateStatus{Status: domain.UpdateComplete, Message: "Update complete!"})
}

// CheckForUpdate combines the persisted metadata with a live readiness
// probe. A missing metadata record reads as "never updated".
func (s *Service) CheckForUpdate(ctx context.Context, serverID, containerName string) (domain.UpdateCheck, error) {
	filesStatus := s.files.CheckServerFiles(ctx, serverID)

	check := domain.UpdateCheck{HasFiles: filesStatus.Ready}

	metadata := s.readMetadata(ctx, containerName)
	if metadata == nil || metadata.LastDownloadAt == nil {
		return check, nil
	}

	check.LastUpdate = metadata.LastDownloadAt
	days := int(time.Since(*metadata.LastDownloadAt).Hours() / 24)
	check.DaysSinceUpdate = &days
	return check, nil
}

// RecordDownload persists fresh binary metadata after a successful
// standalone download. Metadata is non-critical so failures are only
// logged.
func (s *Service) RecordDownload(ctx context.Context, containerName string) {
	if err := s.writeMetadata(ctx, containerName); err != nil {
		s.log.Warn().Err(err).Str("container", containerName).Msg("failed to record download metadata")
	}
}

// readMetadata returns nil when no metadata was recorded yet or the
// record cannot be parsed.
func (s *Service) readMetadata(ctx context.Context, containerName string) *domain.UpdateMetadata {
	output, err := s.runtime.Exec(ctx, containerName,
		fmt.Sprintf("cat %s 2>/dev/null || echo '{}'", metadataPath), execTimeout)
	if err != nil {
		return nil
	}
	trimmed := strings.TrimSpace(output)
	if trimmed == "" || trimmed == "{}" {
		return nil
	}

	var metadata domain.UpdateMetadata
	if err := json.Unmarshal([]byte(trimmed), &metadata); err != nil {
		return nil
	}
	return &metadata
}

func (s *Service) writeMetadata(ctx context.Context, containerName string) error {
	now := time.Now().UTC()
	metadata := domain.UpdateMetadata{LastDownloadAt: &now}
	if size, hash, ok := s.jarInfo(ctx, containerName); ok {
		metadata.JarSize = size
		metadata.JarHash = hash
	}

	content, err := json.MarshalIndent(metadata, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal update metadata: %w", err)
	}

	archive, err := tarkit.PackFile(metadataFileName, content)
	if err != nil {
		return fmt.Errorf("failed to pack update metadata: %w", err)
	}
	if err := s.runtime.PutArchive(ctx, containerName, gamePath, archive); err != nil {
		return fmt.Errorf("failed to write update metadata: %w", err)
	}
	return nil
}

// jarInfo stats and hashes the server jar inside the container.
func (s *Service) jarInfo(ctx context.Context, containerName string) (int64, string, bool) {
	sizeOut, err := s.runtime.Exec(ctx, containerName,
		fmt.Sprintf("stat -c '%%s' %s/HytaleServer.jar 2>/dev/null || echo '0'", gamePath), execTimeout)
	if err != nil {
		return 0, "", false
	}
	size, err := strconv.ParseInt(strings.TrimSpace(sizeOut), 10, 64)
	if err != nil || size == 0 {
		return 0, "", false
	}

	hashOut, err := s.runtime.Exec(ctx, containerName,
		fmt.Sprintf("md5sum %s/HytaleServer.jar 2>/dev/null | cut -d' ' -f1", gamePath), execTimeout)
	if err != nil {
		return 0, "", false
	}
	hash := strings.TrimSpace(hashOut)
	if hash == "" {
		return 0, "", false
	}
	return size, hash, true
}
