package in

import (
	"context"

	"hytalepanel/internal/domain"
)

// FileService wraps the file operations on a server's data directory.
// All paths are relative to the sandboxed data root; escaping it fails
// with domain.ErrPathTraversal.
type FileService interface {
	List(ctx context.Context, serverID, dirPath string) ([]domain.FileEntry, error)
	Read(ctx context.Context, serverID, filePath string) (string, error)
	Write(ctx context.Context, serverID, filePath, content string) error
	Mkdir(ctx context.Context, serverID, dirPath string) error
	Delete(ctx context.Context, serverID, itemPath string) error
	Rename(ctx context.Context, serverID, oldPath, newPath string) error

	// Backup copies a file aside before an edit and returns the backup's
	// sandbox-relative path.
	Backup(ctx context.Context, serverID, filePath string) (string, error)

	// CheckServerFiles probes whether the server binaries are in place.
	CheckServerFiles(ctx context.Context, serverID string) domain.ServerFiles

	// CheckAuth probes whether downloader credentials are present.
	CheckAuth(ctx context.Context, serverID string) bool

	// WipeData resets the server's runtime data (world, logs, config,
	// caches and downloader markers).
	WipeData(ctx context.Context, serverID string) error
}
