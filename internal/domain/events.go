package domain

// Channel event names. Each request-style message has one fixed result
// event so the client can correlate request and response; the remaining
// names are unsolicited pushes.
const (
	EventStatus         = "status"
	EventLog            = "log"
	EventFiles          = "files"
	EventDownloaderAuth = "downloader-auth"
	EventLogsHistory    = "logs:history"
	EventError          = "error"

	EventServerJoined    = "server:joined"
	EventServerJoinError = "server:join-error"

	EventCommandResult  = "command-result"
	EventActionStatus   = "action-status"
	EventDownloadStatus = "download-status"

	EventUpdateStatus      = "update:status"
	EventUpdateCheckResult = "update:check-result"

	EventFilesListResult   = "files:list-result"
	EventFilesReadResult   = "files:read-result"
	EventFilesSaveResult   = "files:save-result"
	EventFilesMkdirResult  = "files:mkdir-result"
	EventFilesDeleteResult = "files:delete-result"
	EventFilesRenameResult = "files:rename-result"

	EventModsListResult            = "mods:list-result"
	EventModsSearchResult          = "mods:search-result"
	EventModsGetResult             = "mods:get-result"
	EventModsInstallStatus         = "mods:install-status"
	EventModsInstallResult         = "mods:install-result"
	EventModsUninstallResult       = "mods:uninstall-result"
	EventModsEnableResult          = "mods:enable-result"
	EventModsDisableResult         = "mods:disable-result"
	EventModsConfigStatus          = "mods:config-status"
	EventModsClassificationsResult = "mods:classifications-result"
	EventModsCheckUpdatesResult    = "mods:check-updates-result"
	EventModsUpdateStatus          = "mods:update-status"
	EventModsUpdateResult          = "mods:update-result"
)
