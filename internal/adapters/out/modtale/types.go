package modtale

import (
	"encoding/json"

	"hytalepanel/internal/domain"
)

// The API is inconsistent about field names across endpoints, so the
// wire types carry both spellings and the mappers pick whichever is set.

// flexID accepts both string and numeric ids.
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexID(n.String())
	return nil
}

type searchResponse struct {
	Content       []apiProject `json:"content"`
	TotalElements int          `json:"totalElements"`
	Number        int          `json:"number"`
	Size          int          `json:"size"`
	Last          bool         `json:"last"`
}

type apiVersion struct {
	ID            flexID      `json:"id"`
	Version       string      `json:"version"`
	VersionNumber string      `json:"versionNumber"`
	DownloadCount int64       `json:"downloadCount"`
	Downloads     int64       `json:"downloads"`
	GameVersion   string      `json:"gameVersion"`
	GameVersions  []string    `json:"gameVersions"`
	CreatedAt     string      `json:"createdAt"`
	ReleaseDate   string      `json:"releaseDate"`
	FileSize      int64       `json:"fileSize"`
	Size          int64       `json:"size"`
	FileName      string      `json:"fileName"`
	File          string      `json:"file"`
}

type apiAuthor struct {
	DisplayName string `json:"displayName"`
	Username    string `json:"username"`
}

// UnmarshalJSON accepts both a plain string and an author object.
func (a *apiAuthor) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		a.DisplayName = s
		return nil
	}

	type plain apiAuthor
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*a = apiAuthor(p)
	return nil
}

type apiProject struct {
	ID             flexID       `json:"id"`
	Slug           string       `json:"slug"`
	Title          string       `json:"title"`
	Name           string       `json:"name"`
	Description    string       `json:"description"`
	Classification string       `json:"classification"`
	Author         apiAuthor    `json:"author"`
	DownloadCount  int64        `json:"downloadCount"`
	Downloads      int64        `json:"downloads"`
	ImageURL       string       `json:"imageUrl"`
	IconURL        string       `json:"iconUrl"`
	Versions       []apiVersion `json:"versions"`
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstNonZero(values ...int64) int64 {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}

func (v apiVersion) toDomain() domain.ModVersion {
	gameVersion := v.GameVersion
	if gameVersion == "" && len(v.GameVersions) > 0 {
		gameVersion = v.GameVersions[0]
	}

	return domain.ModVersion{
		ID:          string(v.ID),
		Version:     firstNonEmpty(v.Version, v.VersionNumber),
		Downloads:   firstNonZero(v.DownloadCount, v.Downloads),
		GameVersion: gameVersion,
		ReleaseDate: firstNonEmpty(v.CreatedAt, v.ReleaseDate),
		FileSize:    firstNonZero(v.FileSize, v.Size),
		FileName:    firstNonEmpty(v.FileName, v.File),
	}
}

func (p apiProject) toDomain() domain.ModProject {
	versions := make([]domain.ModVersion, 0, len(p.Versions))
	for _, v := range p.Versions {
		versions = append(versions, v.toDomain())
	}

	classification := p.Classification
	if classification == "" {
		classification = "PLUGIN"
	}

	author := firstNonEmpty(p.Author.DisplayName, p.Author.Username)

	project := domain.ModProject{
		ID:             string(p.ID),
		Slug:           firstNonEmpty(p.Slug, string(p.ID)),
		Title:          firstNonEmpty(p.Title, p.Name),
		Description:    p.Description,
		Classification: classification,
		Author:         author,
		Downloads:      firstNonZero(p.DownloadCount, p.Downloads),
		IconURL:        firstNonEmpty(p.ImageURL, p.IconURL),
		Versions:       versions,
	}
	// The API lists versions newest first.
	if len(versions) > 0 {
		project.LatestVersion = &versions[0]
	}
	return project
}
