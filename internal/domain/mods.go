package domain

import "time"

// ProviderLocal marks mods discovered as plain files in the mods directory.
// ProviderModtale marks mods installed from the Modtale catalog.
const (
	ProviderLocal   = "local"
	ProviderModtale = "modtale"
)

// DisabledSuffix is appended to a mod file name to disable it without
// removing it.
const DisabledSuffix = ".disabled"

// InstalledMod is one entry of the per-server mod ledger. Enabled and
// FileExists are recomputed from the mods directory on every list.
type InstalledMod struct {
	ID             string    `json:"id"`
	ProviderID     string    `json:"providerId"`
	ProjectID      string    `json:"projectId,omitempty"`
	ProjectSlug    string    `json:"projectSlug,omitempty"`
	ProjectTitle   string    `json:"projectTitle"`
	ProjectIconURL string    `json:"projectIconUrl,omitempty"`
	VersionID      string    `json:"versionId,omitempty"`
	VersionName    string    `json:"versionName"`
	Classification string    `json:"classification"`
	FileName       string    `json:"fileName"`
	FileSize       int64     `json:"fileSize"`
	Enabled        bool      `json:"enabled"`
	InstalledAt    time.Time `json:"installedAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
	IsLocal        bool      `json:"isLocal,omitempty"`
	FileExists     bool      `json:"fileExists,omitempty"`
}

// ModLedger is the persisted mods.json document kept next to the mods
// directory inside the server container.
type ModLedger struct {
	Version int            `json:"version"`
	Mods    []InstalledMod `json:"mods"`
}

// ModMetadata carries the catalog identity of a mod being installed.
type ModMetadata struct {
	ProviderID     string
	ProjectID      string
	ProjectSlug    string
	ProjectTitle   string
	ProjectIconURL string
	VersionID      string
	VersionName    string
	Classification string
	FileName       string
}

// ModVersion is one published version of a catalog project.
type ModVersion struct {
	ID          string `json:"id"`
	Version     string `json:"version"`
	Downloads   int64  `json:"downloads"`
	GameVersion string `json:"gameVersion,omitempty"`
	ReleaseDate string `json:"releaseDate,omitempty"`
	FileSize    int64  `json:"fileSize"`
	FileName    string `json:"fileName"`
}

// ModProject is a catalog project with its version history.
type ModProject struct {
	ID             string       `json:"id"`
	Slug           string       `json:"slug"`
	Title          string       `json:"title"`
	Description    string       `json:"description,omitempty"`
	Classification string       `json:"classification"`
	Author         string       `json:"author,omitempty"`
	Downloads      int64        `json:"downloads"`
	IconURL        string       `json:"iconUrl,omitempty"`
	Versions       []ModVersion `json:"versions,omitempty"`
	LatestVersion  *ModVersion  `json:"latestVersion,omitempty"`
}

// ModSearchParams are the catalog search inputs.
type ModSearchParams struct {
	Query          string `json:"query,omitempty"`
	Classification string `json:"classification,omitempty"`
	Page           int    `json:"page,omitempty"`
	PageSize       int    `json:"pageSize,omitempty"`
	SortBy         string `json:"sortBy,omitempty"`
}

// ModSearchResult is one page of catalog search results.
type ModSearchResult struct {
	Projects []ModProject `json:"projects"`
	Total    int          `json:"total"`
	Page     int          `json:"page"`
	PageSize int          `json:"pageSize"`
	HasMore  bool         `json:"hasMore"`
}

// ModClassification is one catalog content category.
type ModClassification struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ModUpdate reports a newer catalog version for an installed mod.
type ModUpdate struct {
	ModID           string `json:"modId"`
	ProjectID       string `json:"projectId"`
	ProjectTitle    string `json:"projectTitle"`
	CurrentVersion  string `json:"currentVersion"`
	LatestVersion   string `json:"latestVersion"`
	LatestVersionID string `json:"latestVersionId"`
	LatestFileName  string `json:"latestFileName,omitempty"`
}
