// Package download drives the authenticated download of the server
// binaries through the downloader CLI shipped in the container image.
package download

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/bnema/zerowrap"

	"hytalepanel/internal/boundaries/out"
	"hytalepanel/internal/domain"
)

const (
	gamePath = "/opt/hytale"
	// tempDir lives under the game path so the downloader writes to the
	// mounted volume even under x64 emulation on ARM64 hosts.
	tempDir    = gamePath + "/.download-temp"
	zipPath    = tempDir + "/hytale-game.zip"
	markerPath = gamePath + "/.download_attempted"

	execTimeout  = 30 * time.Second
	unzipTimeout = 60 * time.Second
)

// Service implements the DownloadService interface.
type Service struct {
	runtime out.ContainerRuntime
	log     zerowrap.Logger
}

// NewService creates a new download service.
func NewService(runtime out.ContainerRuntime, log zerowrap.Logger) *Service {
	return &Service{runtime: runtime, log: log}
}

// Run starts the downloader CLI and streams its classified output. The
// returned channel is closed after the terminal status: complete when
// the binaries were extracted, done when the run ended without a zip
// (typically an unfinished auth flow), error otherwise.
func (s *Service) Run(ctx context.Context, containerName, serverID string) <-chan domain.DownloadStatus {
	statuses := make(chan domain.DownloadStatus, 16)
	go s.run(ctx, containerName, serverID, statuses)
	return statuses
}

func (s *Service) run(ctx context.Context, containerName, serverID string, statuses chan<- domain.DownloadStatus) {
	defer close(statuses)

	ctx = zerowrap.CtxWithFields(ctx, map[string]any{
		zerowrap.FieldLayer:   "usecase",
		zerowrap.FieldUseCase: "DownloadServerFiles",
		"container":           containerName,
	})
	log := zerowrap.FromCtx(ctx)

	emit := func(status domain.DownloadStatus) bool {
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
		emit(domain.DownloadStatus{Status: domain.DownloadError, Message: err.Error()})
	}

	if !emit(domain.DownloadStatus{Status: domain.DownloadStarting, Message: "Starting download..."}) {
		return
	}

	if _, err := s.runtime.Exec(ctx, containerName, "rm -f "+markerPath, execTimeout); err != nil {
		fail(err, "failed to clear download marker")
		return
	}
	if _, err := s.runtime.Exec(ctx, containerName, "mkdir -p "+tempDir, execTimeout); err != nil {
		fail(err, "failed to create download directory")
		return
	}

	command := fmt.Sprintf("cd %s && hytale-downloader -download-path %s 2>&1", gamePath, zipPath)
	stream, err := s.runtime.ExecStream(ctx, containerName, command)
	if err != nil {
		fail(err, "failed to start downloader")
		return
	}
	defer stream.Close()

	log.Info().Msg("downloader started")

	buf := make([]byte, 4096)
	for {
		n, err := stream.Read(buf)
		if n > 0 {
			if !emit(Classify(string(buf[:n]))) {
				return
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			fail(err, "downloader stream failed")
			return
		}
	}

	s.finish(ctx, containerName, emit)
}

// finish inspects the downloader's outcome and extracts the binaries
// when a zip was produced. Extraction steps tolerate partial archives;
// the readiness probe afterwards is what decides whether the server can
// run.
func (s *Service) finish(ctx context.Context, containerName string, emit func(domain.DownloadStatus) bool) {
	log := zerowrap.FromCtx(ctx)

	// The zip lands on an overlay mount; sync before probing for it.
	if _, err := s.runtime.Exec(ctx, containerName, "sync", execTimeout); err != nil {
		log.Warn().Err(err).Msg("failed to sync filesystem")
	}

	probe, err := s.runtime.Exec(ctx, containerName,
		fmt.Sprintf("ls %s 2>/dev/null || echo 'NO_ZIP'", zipPath), execTimeout)
	if err != nil || strings.Contains(probe, "NO_ZIP") {
		emit(domain.DownloadStatus{
			Status:  domain.DownloadDone,
			Message: "Download finished. Check if authentication was completed.",
		})
		return
	}

	if !emit(domain.DownloadStatus{Status: domain.DownloadExtracting, Message: "Extracting files..."}) {
		return
	}

	steps := []struct {
		command string
		timeout time.Duration
	}{
		{fmt.Sprintf("unzip -o %s -d %s/extract 2>/dev/null || true", zipPath, tempDir), unzipTimeout},
		{fmt.Sprintf(`find %s/extract -name 'HytaleServer.jar' -exec cp {} %s/ \; 2>/dev/null || true`, tempDir, gamePath), execTimeout},
		{fmt.Sprintf(`find %s/extract -name 'Assets.zip' -exec cp {} %s/ \; 2>/dev/null || true`, tempDir, gamePath), execTimeout},
		{"rm -rf " + tempDir, execTimeout},
	}
	for _, step := range steps {
		if _, err := s.runtime.Exec(ctx, containerName, step.command, step.timeout); err != nil {
			log.Warn().Err(err).Str("command", step.command).Msg("extraction step failed")
		}
	}

	log.Info().Msg("download complete")
	emit(domain.DownloadStatus{Status: domain.DownloadComplete, Message: "Download complete!"})
}
