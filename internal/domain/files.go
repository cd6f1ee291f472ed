package domain

// FileEntry is one listed item of a server's data directory.
type FileEntry struct {
	Name        string `json:"name"`
	IsDirectory bool   `json:"isDirectory"`
	Size        *int64 `json:"size"`
	Permissions string `json:"permissions"`
	Icon        string `json:"icon"`
	Editable    bool   `json:"editable"`
}

// ServerFiles reports whether the server binaries are in place.
type ServerFiles struct {
	HasJar    bool `json:"hasJar"`
	HasAssets bool `json:"hasAssets"`
	Ready     bool `json:"ready"`
}
