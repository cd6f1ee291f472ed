package session

import (
	"time"

	"hytalepanel/internal/domain"
)

// opResult is the common success/error envelope of request-style events.
type opResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

func okResult() opResult {
	return opResult{Success: true}
}

func errResult(err error) opResult {
	return opResult{Success: false, Error: err.Error()}
}

func resultOf(err error) opResult {
	if err != nil {
		return errResult(err)
	}
	return okResult()
}

type joinedPayload struct {
	ServerID string         `json:"serverId"`
	Server   *domain.Server `json:"server"`
}

type joinErrorPayload struct {
	Error string `json:"error"`
}

type commandResultPayload struct {
	Cmd string `json:"cmd"`
	opResult
}

// actionStatusPayload reports lifecycle actions. Status carries the
// "starting" marker; Success is set on the follow-up result.
type actionStatusPayload struct {
	Action  string `json:"action"`
	Status  string `json:"status,omitempty"`
	Success *bool  `json:"success,omitempty"`
	Error   string `json:"error,omitempty"`
}

type logsHistoryPayload struct {
	Logs    []string `json:"logs"`
	Initial bool     `json:"initial"`
	HasMore *bool    `json:"hasMore,omitempty"`
	Error   string   `json:"error,omitempty"`
}

type filesListPayload struct {
	opResult
	Path  string             `json:"path,omitempty"`
	Files []domain.FileEntry `json:"files,omitempty"`
}

type fileReadPayload struct {
	opResult
	Path    string `json:"path,omitempty"`
	Content string `json:"content,omitempty"`
}

type fileSavePayload struct {
	opResult
	Backup string `json:"backup,omitempty"`
}

type modsListPayload struct {
	opResult
	Mods []domain.InstalledMod `json:"mods"`
}

type modSearchPayload struct {
	opResult
	Projects []domain.ModProject `json:"projects"`
	Total    int                 `json:"total"`
	Page     int                 `json:"page"`
	PageSize int                 `json:"pageSize"`
	HasMore  bool                `json:"hasMore"`
}

type modProjectPayload struct {
	opResult
	Project *domain.ModProject `json:"project,omitempty"`
}

type modResultPayload struct {
	opResult
	Mod *domain.InstalledMod `json:"mod,omitempty"`
}

type modStatusPayload struct {
	Status    string `json:"status"`
	ProjectID string `json:"projectId,omitempty"`
	ModID     string `json:"modId,omitempty"`
}

type modConfigPayload struct {
	Configured bool `json:"configured"`
}

type classificationsPayload struct {
	opResult
	Classifications []domain.ModClassification `json:"classifications,omitempty"`
}

type modUpdatesPayload struct {
	opResult
	Updates []domain.ModUpdate `json:"updates"`
}

type updateCheckPayload struct {
	opResult
	LastUpdate      *time.Time `json:"lastUpdate"`
	DaysSinceUpdate *int       `json:"daysSinceUpdate"`
	HasFiles        bool       `json:"hasFiles"`
}
