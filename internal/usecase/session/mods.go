package session

import (
	"context"

	"hytalepanel/internal/boundaries/in"
	"hytalepanel/internal/domain"
)

// ListMods pushes the reconciled mod ledger.
func (s *Service) ListMods(ctx context.Context) {
	_, name := s.binding()
	if name == "" {
		return
	}

	mods, err := s.deps.Mods.List(ctx, name)
	if err != nil {
		s.sink.Emit(domain.EventModsListResult, modsListPayload{opResult: errResult(err)})
		return
	}
	s.sink.Emit(domain.EventModsListResult, modsListPayload{opResult: okResult(), Mods: mods})
}

// SearchMods forwards a catalog search.
func (s *Service) SearchMods(ctx context.Context, params domain.ModSearchParams) {
	result, err := s.deps.Catalog.Search(ctx, params)
	if err != nil {
		s.sink.Emit(domain.EventModsSearchResult, modSearchPayload{opResult: errResult(err)})
		return
	}
	s.sink.Emit(domain.EventModsSearchResult, modSearchPayload{
		opResult: okResult(),
		Projects: result.Projects,
		Total:    result.Total,
		Page:     result.Page,
		PageSize: result.PageSize,
		HasMore:  result.HasMore,
	})
}

// GetMod pushes one catalog project with its version history.
func (s *Service) GetMod(ctx context.Context, projectID string) {
	project, err := s.deps.Catalog.GetProject(ctx, projectID)
	if err != nil {
		s.sink.Emit(domain.EventModsGetResult, modProjectPayload{opResult: errResult(err)})
		return
	}
	s.sink.Emit(domain.EventModsGetResult, modProjectPayload{opResult: okResult(), Project: project})
}

// InstallMod downloads a catalog version and installs it into the mods
// directory, reporting progress through install-status events.
func (s *Service) InstallMod(ctx context.Context, params in.InstallModParams) {
	_, name := s.binding()
	if name == "" {
		return
	}

	// The catalog's download endpoint is keyed by the version label,
	// not the opaque version id.
	s.sink.Emit(domain.EventModsInstallStatus, modStatusPayload{Status: "downloading", ProjectID: params.ProjectID})
	payload, fileName, err := s.deps.Catalog.DownloadVersion(ctx, params.ProjectID, params.Metadata.VersionName)
	if err != nil {
		s.sink.Emit(domain.EventModsInstallResult, modResultPayload{opResult: errResult(err)})
		return
	}

	s.sink.Emit(domain.EventModsInstallStatus, modStatusPayload{Status: "installing", ProjectID: params.ProjectID})
	meta := domain.ModMetadata{
		ProviderID:     domain.ProviderModtale,
		ProjectID:      params.ProjectID,
		ProjectSlug:    params.Metadata.ProjectSlug,
		ProjectTitle:   params.Metadata.ProjectTitle,
		ProjectIconURL: params.Metadata.ProjectIconURL,
		VersionID:      params.VersionID,
		VersionName:    params.Metadata.VersionName,
		Classification: params.Metadata.Classification,
		FileName:       params.Metadata.FileName,
	}
	if meta.FileName == "" {
		meta.FileName = fileName
	}

	mod, err := s.deps.Mods.Install(ctx, name, payload, meta)
	if err != nil {
		s.sink.Emit(domain.EventModsInstallResult, modResultPayload{opResult: errResult(err)})
		return
	}
	s.sink.Emit(domain.EventModsInstallResult, modResultPayload{opResult: okResult(), Mod: mod})
}

// UninstallMod removes an installed mod and its file.
func (s *Service) UninstallMod(ctx context.Context, modID string) {
	_, name := s.binding()
	if name == "" {
		return
	}
	s.sink.Emit(domain.EventModsUninstallResult, resultOf(s.deps.Mods.Uninstall(ctx, name, modID)))
}

// EnableMod activates a disabled mod file.
func (s *Service) EnableMod(ctx context.Context, modID string) {
	_, name := s.binding()
	if name == "" {
		return
	}

	mod, err := s.deps.Mods.Enable(ctx, name, modID)
	if err != nil {
		s.sink.Emit(domain.EventModsEnableResult, modResultPayload{opResult: errResult(err)})
		return
	}
	s.sink.Emit(domain.EventModsEnableResult, modResultPayload{opResult: okResult(), Mod: mod})
}

// DisableMod deactivates a mod file without removing it.
func (s *Service) DisableMod(ctx context.Context, modID string) {
	_, name := s.binding()
	if name == "" {
		return
	}

	mod, err := s.deps.Mods.Disable(ctx, name, modID)
	if err != nil {
		s.sink.Emit(domain.EventModsDisableResult, modResultPayload{opResult: errResult(err)})
		return
	}
	s.sink.Emit(domain.EventModsDisableResult, modResultPayload{opResult: okResult(), Mod: mod})
}

// CheckModConfig reports whether catalog credentials are present.
func (s *Service) CheckModConfig(ctx context.Context) {
	s.sink.Emit(domain.EventModsConfigStatus, modConfigPayload{Configured: s.deps.Catalog.IsConfigured()})
}

// ModClassifications pushes the catalog's content categories.
func (s *Service) ModClassifications(ctx context.Context) {
	classifications, err := s.deps.Catalog.Classifications(ctx)
	if err != nil {
		s.sink.Emit(domain.EventModsClassificationsResult, classificationsPayload{opResult: errResult(err)})
		return
	}
	s.sink.Emit(domain.EventModsClassificationsResult, classificationsPayload{
		opResult:        okResult(),
		Classifications: classifications,
	})
}

// CheckModUpdates compares installed catalog mods against their latest
// published versions.
func (s *Service) CheckModUpdates(ctx context.Context) {
	_, name := s.binding()
	if name == "" {
		return
	}

	updates, err := s.deps.Mods.CheckUpdates(ctx, name)
	if err != nil {
		s.sink.Emit(domain.EventModsCheckUpdatesResult, modUpdatesPayload{opResult: errResult(err)})
		return
	}
	s.sink.Emit(domain.EventModsCheckUpdatesResult, modUpdatesPayload{opResult: okResult(), Updates: updates})
}

// UpdateMod replaces an installed mod with a newer catalog version. The
// ledger upsert keyed by project keeps the mod's identity stable.
func (s *Service) UpdateMod(ctx context.Context, params in.UpdateModParams) {
	_, name := s.binding()
	if name == "" {
		return
	}

	mod, err := s.deps.Mods.Get(ctx, name, params.ModID)
	if err != nil {
		s.sink.Emit(domain.EventModsUpdateResult, modResultPayload{opResult: errResult(err)})
		return
	}

	s.sink.Emit(domain.EventModsUpdateStatus, modStatusPayload{Status: "downloading", ModID: params.ModID})
	payload, fileName, err := s.deps.Catalog.DownloadVersion(ctx, mod.ProjectID, params.Metadata.VersionName)
	if err != nil {
		s.sink.Emit(domain.EventModsUpdateResult, modResultPayload{opResult: errResult(err)})
		return
	}

	s.sink.Emit(domain.EventModsUpdateStatus, modStatusPayload{Status: "installing", ModID: params.ModID})
	meta := domain.ModMetadata{
		ProviderID:     mod.ProviderID,
		ProjectID:      mod.ProjectID,
		ProjectSlug:    mod.ProjectSlug,
		ProjectTitle:   mod.ProjectTitle,
		ProjectIconURL: mod.ProjectIconURL,
		VersionID:      params.VersionID,
		VersionName:    params.Metadata.VersionName,
		Classification: mod.Classification,
		FileName:       params.Metadata.FileName,
	}
	if meta.FileName == "" {
		meta.FileName = fileName
	}

	updated, err := s.deps.Mods.Install(ctx, name, payload, meta)
	if err != nil {
		s.sink.Emit(domain.EventModsUpdateResult, modResultPayload{opResult: errResult(err)})
		return
	}
	s.sink.Emit(domain.EventModsUpdateResult, modResultPayload{opResult: okResult(), Mod: updated})
}
