package in

import (
	"context"

	"hytalepanel/internal/domain"
)

// DownloadService drives the authenticated download of server binaries.
type DownloadService interface {
	// Run starts a download and returns its ordered status stream. The
	// channel is closed after the terminal status (complete, done or
	// error). No retries happen automatically; the caller re-invokes on
	// error or done.
	Run(ctx context.Context, containerName, serverID string) <-chan domain.DownloadStatus
}

// UpdateService performs in-place binary refreshes.
type UpdateService interface {
	// Apply runs stop -> download -> record -> restart, preserving the
	// prior running state. Download statuses are forwarded through the
	// callback; the returned channel carries the update phases and is
	// closed after the terminal one.
	Apply(ctx context.Context, containerName, serverID string, forward func(domain.DownloadStatus)) <-chan domain.UpdateStatus

	// CheckForUpdate combines persisted metadata with a live readiness
	// probe. A missing metadata record means "never updated".
	CheckForUpdate(ctx context.Context, serverID, containerName string) (domain.UpdateCheck, error)

	// RecordDownload persists fresh binary metadata after a successful
	// standalone download. Failures are logged, never returned.
	RecordDownload(ctx context.Context, containerName string)
}
