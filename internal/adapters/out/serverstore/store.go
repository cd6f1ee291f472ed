// Package serverstore persists the server registry and owns the
// per-server directory layout on the host filesystem.
package serverstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bnema/zerowrap"

	"hytalepanel/internal/domain"
)

const (
	registryFileName = "servers.json"
	composeFileName  = "docker-compose.yml"
	serversDirName   = "servers"
	dataDirName      = "data"
)

// Store implements the ServerStore interface on the local filesystem.
// The registry is one JSON document; per-server directories live under
// <root>/servers/<id> with the compose file and the mounted data dir.
type Store struct {
	rootDir string
	mu      sync.Mutex
	log     zerowrap.Logger
}

// NewStore creates the store and its root directory.
func NewStore(rootDir string, log zerowrap.Logger) (*Store, error) {
	rootDir = expandTilde(rootDir)

	if err := os.MkdirAll(filepath.Join(rootDir, serversDirName), 0750); err != nil {
		return nil, fmt.Errorf("failed to create servers directory: %w", err)
	}

	return &Store{rootDir: rootDir, log: log}, nil
}

// expandTilde replaces a leading "~/" with the user's home directory.
func expandTilde(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path[2:])
	}
	return path
}

// Load reads the registry document. A missing file is an empty registry.
func (s *Store) Load(_ context.Context) (domain.ServerList, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(filepath.Join(s.rootDir, registryFileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.ServerList{Version: 1, Servers: []domain.Server{}}, nil
		}
		return domain.ServerList{}, fmt.Errorf("failed to read server registry: %w", err)
	}

	var list domain.ServerList
	if err := json.Unmarshal(data, &list); err != nil {
		return domain.ServerList{}, fmt.Errorf("failed to parse server registry: %w", err)
	}
	return list, nil
}

// Save writes the registry document atomically.
func (s *Store) Save(_ context.Context, list domain.ServerList) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode server registry: %w", err)
	}

	return writeFileAtomic(filepath.Join(s.rootDir, registryFileName), data, 0600)
}

// EnsureServerDirs creates the server directory and its data subdirectory.
func (s *Store) EnsureServerDirs(_ context.Context, serverID string) error {
	dir, err := s.serverDir(serverID)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Join(dir, dataDirName), 0750); err != nil {
		return fmt.Errorf("failed to create server directories: %w", err)
	}
	return nil
}

// RemoveServerDirs deletes a server's directory tree.
func (s *Store) RemoveServerDirs(_ context.Context, serverID string) error {
	dir, err := s.serverDir(serverID)
	if err != nil {
		return err
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to remove server directories: %w", err)
	}
	return nil
}

// ReadCompose returns the server's compose file.
func (s *Store) ReadCompose(_ context.Context, serverID string) ([]byte, error) {
	dir, err := s.serverDir(serverID)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(dir, composeFileName))
	if err != nil {
		return nil, fmt.Errorf("failed to read compose file: %w", err)
	}
	return data, nil
}

// WriteCompose replaces the server's compose file atomically.
func (s *Store) WriteCompose(_ context.Context, serverID string, content []byte) error {
	dir, err := s.serverDir(serverID)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create server directory: %w", err)
	}
	return writeFileAtomic(filepath.Join(dir, composeFileName), content, 0600)
}

// DataPath returns the host path of the server's data directory.
func (s *Store) DataPath(serverID string) string {
	return filepath.Join(s.rootDir, serversDirName, serverID, dataDirName)
}

// ServerDir returns the host path of the server's directory. The compose
// runner uses it as the working directory of compose invocations.
func (s *Store) ServerDir(serverID string) (string, error) {
	return s.serverDir(serverID)
}

// serverDir validates the id before building a path from it. IDs come
// from our own registry, but they also arrive over the wire.
func (s *Store) serverDir(serverID string) (string, error) {
	if serverID == "" || strings.ContainsAny(serverID, "/\\") || strings.Contains(serverID, "..") {
		return "", fmt.Errorf("invalid server id: %q", serverID)
	}
	return filepath.Join(s.rootDir, serversDirName, serverID), nil
}

func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, perm); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to finalize file: %w", err)
	}
	return nil
}
