// Package files implements the file operations on a server's data
// directory, including the binary-readiness and downloader-auth probes.
package files

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bnema/zerowrap"

	"hytalepanel/internal/boundaries/out"
	"hytalepanel/internal/domain"
)

// Server binary names probed for readiness.
const (
	JarFileName    = "HytaleServer.jar"
	AssetsFileName = "Assets.zip"
)

// credentialsFileName is written by the downloader CLI after a completed
// device auth flow.
const credentialsFileName = ".hytale-downloader-credentials.json"

// downloadMarkerFileName flags that a download was attempted.
const downloadMarkerFileName = ".download_attempted"

// nowUnixMilli is swapped in tests for deterministic backup suffixes.
var nowUnixMilli = func() int64 { return time.Now().UnixMilli() }

// wipeDirs are recreated empty by WipeData.
var wipeDirs = []string{"universe", "logs", "config", ".cache"}

var editableExtensions = map[string]bool{
	".json": true, ".yaml": true, ".yml": true, ".properties": true,
	".cfg": true, ".conf": true, ".xml": true, ".toml": true, ".ini": true,
	".txt": true, ".md": true, ".log": true, ".lua": true, ".js": true,
	".sh": true, ".bat": true,
}

// Service implements the FileService interface against the host
// filesystem; server data directories are volume-mounted into the
// containers, so host-side operations are visible in-container.
type Service struct {
	store out.ServerStore
	log   zerowrap.Logger
}

// NewService creates a new file service.
func NewService(store out.ServerStore, log zerowrap.Logger) *Service {
	return &Service{store: store, log: log}
}

// resolve maps a sandbox-relative path to a host path, rejecting any
// attempt to escape the server's data directory.
func (s *Service) resolve(serverID, requested string) (string, error) {
	if strings.Contains(requested, "..") {
		return "", domain.ErrPathTraversal
	}

	root := s.store.DataPath(serverID)
	normalized := strings.TrimLeft(filepath.Clean("/"+requested), "/")
	full := filepath.Join(root, normalized)
	if full != root && !strings.HasPrefix(full, root+string(os.PathSeparator)) {
		return "", domain.ErrPathTraversal
	}
	return full, nil
}

// List returns the entries of a directory, directories first.
func (s *Service) List(ctx context.Context, serverID, dirPath string) ([]domain.FileEntry, error) {
	ctx = zerowrap.CtxWithFields(ctx, map[string]any{
		zerowrap.FieldLayer:   "usecase",
		zerowrap.FieldUseCase: "ListFiles",
		"server_id":           serverID,
		"path":                dirPath,
	})
	log := zerowrap.FromCtx(ctx)

	local, err := s.resolve(serverID, dirPath)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(local)
	if err != nil {
		return nil, log.WrapErr(err, "failed to read directory")
	}

	files := make([]domain.FileEntry, 0, len(entries))
	for _, entry := range entries {
		isDir := entry.IsDir()

		var size *int64
		permissions := "-rw-r--r--"
		if isDir {
			permissions = "drwxr-xr-x"
		}
		if info, err := entry.Info(); err == nil {
			if !isDir {
				n := info.Size()
				size = &n
			}
			permissions = info.Mode().Perm().String()
			if isDir {
				permissions = "d" + permissions[1:]
			}
		}

		files = append(files, domain.FileEntry{
			Name:        entry.Name(),
			IsDirectory: isDir,
			Size:        size,
			Permissions: permissions,
			Icon:        iconFor(entry.Name(), isDir),
			Editable:    !isDir && IsEditable(entry.Name()),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		if files[i].IsDirectory != files[j].IsDirectory {
			return files[i].IsDirectory
		}
		return files[i].Name < files[j].Name
	})

	return files, nil
}

// Read returns the content of an editable text file.
func (s *Service) Read(ctx context.Context, serverID, filePath string) (string, error) {
	local, err := s.resolve(serverID, filePath)
	if err != nil {
		return "", err
	}
	if !IsEditable(local) {
		return "", domain.ErrNotEditable
	}

	content, err := os.ReadFile(local)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	return string(content), nil
}

// Write replaces the content of a file, creating it when absent.
func (s *Service) Write(ctx context.Context, serverID, filePath, content string) error {
	local, err := s.resolve(serverID, filePath)
	if err != nil {
		return err
	}
	if err := os.WriteFile(local, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// Mkdir creates a directory and any missing parents.
func (s *Service) Mkdir(ctx context.Context, serverID, dirPath string) error {
	local, err := s.resolve(serverID, dirPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(local, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return nil
}

// Delete removes a file or directory tree. The sandbox root itself is
// protected.
func (s *Service) Delete(ctx context.Context, serverID, itemPath string) error {
	local, err := s.resolve(serverID, itemPath)
	if err != nil {
		return err
	}
	if local == s.store.DataPath(serverID) {
		return domain.ErrProtectedPath
	}
	if err := os.RemoveAll(local); err != nil {
		return fmt.Errorf("failed to delete: %w", err)
	}
	return nil
}

// Rename moves a file or directory within the sandbox.
func (s *Service) Rename(ctx context.Context, serverID, oldPath, newPath string) error {
	localOld, err := s.resolve(serverID, oldPath)
	if err != nil {
		return err
	}
	localNew, err := s.resolve(serverID, newPath)
	if err != nil {
		return err
	}
	if err := os.Rename(localOld, localNew); err != nil {
		return fmt.Errorf("failed to rename: %w", err)
	}
	return nil
}

// Backup copies a file aside with a timestamped suffix before an edit.
func (s *Service) Backup(ctx context.Context, serverID, filePath string) (string, error) {
	local, err := s.resolve(serverID, filePath)
	if err != nil {
		return "", err
	}

	content, err := os.ReadFile(local)
	if err != nil {
		return "", fmt.Errorf("failed to read file for backup: %w", err)
	}

	backup := fmt.Sprintf("%s.backup.%d", local, nowUnixMilli())
	if err := os.WriteFile(backup, content, 0644); err != nil {
		return "", fmt.Errorf("failed to write backup: %w", err)
	}

	rel := strings.TrimPrefix(backup, s.store.DataPath(serverID))
	if rel == "" {
		rel = "/"
	}
	return rel, nil
}

// CheckServerFiles probes whether the server binaries are in place. A
// missing or unreadable data directory reports not ready.
func (s *Service) CheckServerFiles(ctx context.Context, serverID string) domain.ServerFiles {
	entries, err := os.ReadDir(s.store.DataPath(serverID))
	if err != nil {
		return domain.ServerFiles{}
	}

	var status domain.ServerFiles
	for _, entry := range entries {
		switch entry.Name() {
		case JarFileName:
			status.HasJar = true
		case AssetsFileName:
			status.HasAssets = true
		}
	}
	status.Ready = status.HasJar && status.HasAssets
	return status
}

// CheckAuth probes whether downloader credentials with an access token
// are present.
func (s *Service) CheckAuth(ctx context.Context, serverID string) bool {
	content, err := os.ReadFile(filepath.Join(s.store.DataPath(serverID), credentialsFileName))
	if err != nil {
		return false
	}
	return strings.Contains(string(content), "access_token")
}

// WipeData resets a server's runtime data: world, logs, config and cache
// directories are recreated empty; downloader markers and credentials
// are removed.
func (s *Service) WipeData(ctx context.Context, serverID string) error {
	ctx = zerowrap.CtxWithFields(ctx, map[string]any{
		zerowrap.FieldLayer:   "usecase",
		zerowrap.FieldUseCase: "WipeData",
		"server_id":           serverID,
	})
	log := zerowrap.FromCtx(ctx)

	root := s.store.DataPath(serverID)

	for _, dir := range wipeDirs {
		path := filepath.Join(root, dir)
		if err := os.RemoveAll(path); err != nil {
			log.Warn().Err(err).Str("dir", dir).Msg("failed to remove data directory")
			continue
		}
		if err := os.MkdirAll(path, 0755); err != nil {
			log.Warn().Err(err).Str("dir", dir).Msg("failed to recreate data directory")
		}
	}

	for _, name := range []string{downloadMarkerFileName, credentialsFileName} {
		if err := os.Remove(filepath.Join(root, name)); err != nil && !os.IsNotExist(err) {
			log.Warn().Err(err).Str("file", name).Msg("failed to remove marker file")
		}
	}

	log.Info().Msg("server data wiped")
	return nil
}

// IsEditable reports whether the panel's editor may open the file.
func IsEditable(filename string) bool {
	return editableExtensions[strings.ToLower(filepath.Ext(filename))]
}

func iconFor(filename string, isDir bool) string {
	if isDir {
		return "folder"
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jar":
		return "java"
	case ".zip", ".tar", ".gz", ".7z", ".rar":
		return "archive"
	case ".json":
		return "json"
	case ".yaml", ".yml":
		return "yaml"
	case ".properties", ".cfg", ".conf", ".xml", ".toml", ".ini":
		return "config"
	case ".txt", ".md":
		return "text"
	case ".log":
		return "log"
	case ".png", ".jpg", ".jpeg", ".gif", ".webp":
		return "image"
	case ".lua", ".js", ".sh", ".bat":
		return "script"
	case ".dat", ".nbt", ".db", ".ldb":
		return "data"
	case ".ogg", ".mp3", ".wav":
		return "audio"
	default:
		return "file"
	}
}
