package in

import (
	"context"

	"hytalepanel/internal/domain"
)

// InstallModParams identify a catalog version to install plus the
// metadata the client already holds about it.
type InstallModParams struct {
	ProjectID string             `json:"projectId"`
	VersionID string             `json:"versionId"`
	Metadata  InstallModMetadata `json:"metadata"`
}

// InstallModMetadata mirrors the catalog fields forwarded by the client.
type InstallModMetadata struct {
	VersionName    string `json:"versionName"`
	ProjectTitle   string `json:"projectTitle"`
	Classification string `json:"classification,omitempty"`
	FileName       string `json:"fileName,omitempty"`
	ProjectIconURL string `json:"projectIconUrl,omitempty"`
	ProjectSlug    string `json:"projectSlug,omitempty"`
}

// UpdateModParams identify an installed mod and the version to move to.
type UpdateModParams struct {
	ModID     string            `json:"modId"`
	VersionID string            `json:"versionId"`
	Metadata  UpdateModMetadata `json:"metadata"`
}

// UpdateModMetadata carries the version fields forwarded by the client.
type UpdateModMetadata struct {
	VersionName string `json:"versionName"`
	FileName    string `json:"fileName,omitempty"`
}

// Session is one client connection's orchestrator. Every method pushes
// its outcome through the session's event sink instead of returning it;
// operations other than Join are no-ops or explicit rejects while no
// server is bound. Methods never panic and never surface collaborator
// errors to the caller.
type Session interface {
	Join(ctx context.Context, serverID string)
	Leave(ctx context.Context)

	SendCommand(ctx context.Context, command string)
	Start(ctx context.Context)
	Stop(ctx context.Context)
	Restart(ctx context.Context)
	Download(ctx context.Context)
	Wipe(ctx context.Context)
	CheckFiles(ctx context.Context)
	FetchMoreLogs(ctx context.Context, currentCount, batchSize int)

	ListFiles(ctx context.Context, dirPath string)
	ReadFile(ctx context.Context, filePath string)
	SaveFile(ctx context.Context, filePath, content string, createBackup bool)
	MakeDir(ctx context.Context, dirPath string)
	DeleteItem(ctx context.Context, itemPath string)
	RenameItem(ctx context.Context, oldPath, newPath string)

	ListMods(ctx context.Context)
	SearchMods(ctx context.Context, params domain.ModSearchParams)
	GetMod(ctx context.Context, projectID string)
	InstallMod(ctx context.Context, params InstallModParams)
	UninstallMod(ctx context.Context, modID string)
	EnableMod(ctx context.Context, modID string)
	DisableMod(ctx context.Context, modID string)
	CheckModConfig(ctx context.Context)
	ModClassifications(ctx context.Context)
	CheckModUpdates(ctx context.Context)
	UpdateMod(ctx context.Context, params UpdateModParams)

	CheckUpdate(ctx context.Context)
	ApplyUpdate(ctx context.Context)

	// Close releases the session: binding, log stream, poll ticker and
	// any deferred reconnect timers. Safe to call more than once.
	Close()
}
