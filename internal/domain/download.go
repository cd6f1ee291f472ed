package domain

import "time"

// DownloadPhase classifies one chunk of downloader CLI output, or a
// terminal state of the download run.
type DownloadPhase string

const (
	DownloadStarting     DownloadPhase = "starting"
	DownloadAuthRequired DownloadPhase = "auth-required"
	DownloadOutput       DownloadPhase = "output"
	DownloadExtracting   DownloadPhase = "extracting"
	DownloadComplete     DownloadPhase = "complete"
	DownloadDone         DownloadPhase = "done"
	DownloadError        DownloadPhase = "error"
)

// DownloadStatus is one event in the ordered status stream of a binary
// download. ServerID lets a client bound to a different server discard it.
type DownloadStatus struct {
	Status   DownloadPhase `json:"status"`
	Message  string        `json:"message"`
	ServerID string        `json:"serverId,omitempty"`
}

// UpdatePhase is one step of an in-place binary refresh.
type UpdatePhase string

const (
	UpdateStopping    UpdatePhase = "stopping"
	UpdateDownloading UpdatePhase = "downloading"
	UpdateRestarting  UpdatePhase = "restarting"
	UpdateComplete    UpdatePhase = "complete"
	UpdateError       UpdatePhase = "error"
)

// UpdateStatus is one event in the update orchestration sequence.
type UpdateStatus struct {
	Status   UpdatePhase `json:"status"`
	Message  string      `json:"message"`
	ServerID string      `json:"serverId,omitempty"`
}

// UpdateMetadata describes the last successful binary sync of a server.
type UpdateMetadata struct {
	LastDownloadAt *time.Time `json:"lastDownloadAt"`
	JarSize        int64      `json:"jarSize"`
	JarHash        string     `json:"jarHash"`
	AssetsSize     int64      `json:"assetsSize"`
}

// UpdateCheck answers "how stale is this install".
type UpdateCheck struct {
	LastUpdate      *time.Time `json:"lastUpdate"`
	DaysSinceUpdate *int       `json:"daysSinceUpdate"`
	HasFiles        bool       `json:"hasFiles"`
}
