package session

import (
	"context"

	"hytalepanel/internal/domain"
)

// ListFiles pushes the directory listing for a sandbox-relative path.
func (s *Service) ListFiles(ctx context.Context, dirPath string) {
	serverID, _ := s.binding()
	if serverID == "" {
		return
	}

	entries, err := s.deps.Files.List(ctx, serverID, dirPath)
	if err != nil {
		s.sink.Emit(domain.EventFilesListResult, filesListPayload{opResult: errResult(err), Path: dirPath})
		return
	}
	s.sink.Emit(domain.EventFilesListResult, filesListPayload{opResult: okResult(), Path: dirPath, Files: entries})
}

// ReadFile pushes a file's content for the editor.
func (s *Service) ReadFile(ctx context.Context, filePath string) {
	serverID, _ := s.binding()
	if serverID == "" {
		return
	}

	content, err := s.deps.Files.Read(ctx, serverID, filePath)
	if err != nil {
		s.sink.Emit(domain.EventFilesReadResult, fileReadPayload{opResult: errResult(err), Path: filePath})
		return
	}
	s.sink.Emit(domain.EventFilesReadResult, fileReadPayload{opResult: okResult(), Path: filePath, Content: content})
}

// SaveFile writes editor content back, optionally keeping a timestamped
// backup of the previous version.
func (s *Service) SaveFile(ctx context.Context, filePath, content string, createBackup bool) {
	serverID, _ := s.binding()
	if serverID == "" {
		return
	}

	var backup string
	if createBackup {
		b, err := s.deps.Files.Backup(ctx, serverID, filePath)
		if err != nil {
			s.sink.Emit(domain.EventFilesSaveResult, fileSavePayload{opResult: errResult(err)})
			return
		}
		backup = b
	}

	if err := s.deps.Files.Write(ctx, serverID, filePath, content); err != nil {
		s.sink.Emit(domain.EventFilesSaveResult, fileSavePayload{opResult: errResult(err)})
		return
	}
	s.sink.Emit(domain.EventFilesSaveResult, fileSavePayload{opResult: okResult(), Backup: backup})
}

// MakeDir creates a directory inside the sandbox.
func (s *Service) MakeDir(ctx context.Context, dirPath string) {
	serverID, _ := s.binding()
	if serverID == "" {
		return
	}
	s.sink.Emit(domain.EventFilesMkdirResult, resultOf(s.deps.Files.Mkdir(ctx, serverID, dirPath)))
}

// DeleteItem removes a file or directory inside the sandbox.
func (s *Service) DeleteItem(ctx context.Context, itemPath string) {
	serverID, _ := s.binding()
	if serverID == "" {
		return
	}
	s.sink.Emit(domain.EventFilesDeleteResult, resultOf(s.deps.Files.Delete(ctx, serverID, itemPath)))
}

// RenameItem renames or moves a sandbox entry.
func (s *Service) RenameItem(ctx context.Context, oldPath, newPath string) {
	serverID, _ := s.binding()
	if serverID == "" {
		return
	}
	s.sink.Emit(domain.EventFilesRenameResult, resultOf(s.deps.Files.Rename(ctx, serverID, oldPath, newPath)))
}
