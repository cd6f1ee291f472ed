package mods

import (
	"context"
	"regexp"
	"strings"
	"sync"

	"github.com/Masterminds/semver/v3"
	"github.com/bnema/zerowrap"

	"hytalepanel/internal/domain"
)

// maxConcurrentLookups limits concurrent catalog calls during
// enrichment and update checks.
const maxConcurrentLookups = 5

var (
	fileSuffixRe  = regexp.MustCompile(`(?i)\.(jar|zip|disabled)$`)
	trailingVerRe = regexp.MustCompile(`-[\d.]+.*$`)
	fileVersionRe = regexp.MustCompile(`-(\d+\.\d+(?:\.\d+)?)`)
)

// enrichLocals resolves adopted local mods against the catalog. Matches
// rewrite the ledger entry with the catalog identity; lookup failures
// leave the mod local.
func (s *Service) enrichLocals(ctx context.Context, containerName string, mods []domain.InstalledMod) []domain.InstalledMod {
	log := zerowrap.FromCtx(ctx)

	var indices []int
	for i, mod := range mods {
		if mod.IsLocal && mod.ProjectID == "" {
			indices = append(indices, i)
		}
	}
	if len(indices) == 0 {
		return mods
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, maxConcurrentLookups)

	for _, i := range indices {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			enriched, ok := s.lookupLocal(ctx, mods[i])
			if !ok {
				return
			}

			mu.Lock()
			mods[i] = enriched
			mu.Unlock()

			if err := s.persistEnrichment(ctx, containerName, enriched); err != nil {
				log.Warn().Err(err).Str("file", enriched.FileName).Msg("failed to persist mod enrichment")
			}
		}(i)
	}
	wg.Wait()

	return mods
}

// lookupLocal searches the catalog for a project matching the mod's
// file name.
func (s *Service) lookupLocal(ctx context.Context, mod domain.InstalledMod) (domain.InstalledMod, bool) {
	term := searchTerm(mod.FileName)
	if len(term) < 2 {
		return mod, false
	}

	result, err := s.catalog.Search(ctx, domain.ModSearchParams{Query: term, PageSize: 5})
	if err != nil || result == nil || len(result.Projects) == 0 {
		return mod, false
	}

	var match *domain.ModProject
	lower := strings.ToLower(term)
	for i := range result.Projects {
		title := strings.ToLower(result.Projects[i].Title)
		if title == lower || strings.Contains(title, lower) {
			match = &result.Projects[i]
			break
		}
	}
	if match == nil {
		return mod, false
	}

	mod.ProviderID = domain.ProviderModtale
	mod.ProjectID = match.ID
	mod.ProjectSlug = match.Slug
	mod.ProjectTitle = match.Title
	mod.ProjectIconURL = match.IconURL
	mod.Classification = match.Classification
	mod.IsLocal = false

	if m := fileVersionRe.FindStringSubmatch(mod.FileName); m != nil {
		fileVersion := m[1]
		if version := matchVersion(match.Versions, fileVersion); version != nil {
			mod.VersionID = version.ID
			mod.VersionName = version.Version
		} else {
			mod.VersionName = fileVersion
		}
	}

	return mod, true
}

// persistEnrichment rewrites the enriched entry in the stored ledger.
func (s *Service) persistEnrichment(ctx context.Context, containerName string, mod domain.InstalledMod) error {
	ledger, err := s.load(ctx, containerName)
	if err != nil {
		return err
	}
	for i := range ledger.Mods {
		if ledger.Mods[i].ID == mod.ID {
			mod.Enabled = ledger.Mods[i].Enabled
			ledger.Mods[i] = mod
			return s.save(ctx, containerName, ledger)
		}
	}
	return domain.ErrModNotFound
}

// CheckUpdates compares catalog-sourced mods against the catalog's
// latest versions. A different latest version ID only counts as an
// update when it is not a semver downgrade of the installed version.
// Per-mod lookup failures are skipped.
func (s *Service) CheckUpdates(ctx context.Context, containerName string) ([]domain.ModUpdate, error) {
	ctx = zerowrap.CtxWithFields(ctx, map[string]any{
		zerowrap.FieldLayer:   "usecase",
		zerowrap.FieldUseCase: "CheckModUpdates",
		"container":           containerName,
	})
	log := zerowrap.FromCtx(ctx)

	mods, err := s.List(ctx, containerName)
	if err != nil {
		return nil, err
	}

	var candidates []domain.InstalledMod
	for _, mod := range mods {
		if mod.ProviderID == domain.ProviderModtale && mod.ProjectID != "" {
			candidates = append(candidates, mod)
		}
	}

	updates := make([]domain.ModUpdate, 0, len(candidates))
	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, maxConcurrentLookups)

	for _, mod := range candidates {
		wg.Add(1)
		go func(mod domain.InstalledMod) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			project, err := s.catalog.GetProject(ctx, mod.ProjectID)
			if err != nil {
				log.Warn().Err(err).Str("project", mod.ProjectTitle).Msg("failed to check mod for updates")
				return
			}
			if project == nil || project.LatestVersion == nil {
				return
			}

			latest := project.LatestVersion
			if latest.ID == "" || latest.ID == mod.VersionID {
				return
			}
			if isDowngrade(mod.VersionName, latest.Version) {
				return
			}

			mu.Lock()
			updates = append(updates, domain.ModUpdate{
				ModID:           mod.ID,
				ProjectID:       mod.ProjectID,
				ProjectTitle:    mod.ProjectTitle,
				CurrentVersion:  mod.VersionName,
				LatestVersion:   latest.Version,
				LatestVersionID: latest.ID,
				LatestFileName:  latest.FileName,
			})
			mu.Unlock()
		}(mod)
	}
	wg.Wait()

	return updates, nil
}

// searchTerm derives a catalog query from a mod file name: extensions
// and trailing version segments stripped, separators spaced out.
func searchTerm(fileName string) string {
	term := fileSuffixRe.ReplaceAllString(fileName, "")
	term = fileSuffixRe.ReplaceAllString(term, "")
	term = trailingVerRe.ReplaceAllString(term, "")
	term = strings.NewReplacer("-", " ", "_", " ").Replace(term)
	return strings.TrimSpace(term)
}

// matchVersion finds the published version equal to the one embedded in
// the file name. Comparison is semver-aware so "1.2" matches "1.2.0".
func matchVersion(versions []domain.ModVersion, fileVersion string) *domain.ModVersion {
	want, wantErr := semver.NewVersion(fileVersion)
	for i := range versions {
		if versions[i].Version == fileVersion {
			return &versions[i]
		}
		if wantErr != nil {
			continue
		}
		if have, err := semver.NewVersion(versions[i].Version); err == nil && have.Equal(want) {
			return &versions[i]
		}
	}
	return nil
}

// isDowngrade reports whether moving to latest would go backwards. When
// either side does not parse as semver the answer is false and the
// version-ID difference decides.
func isDowngrade(current, latest string) bool {
	cur, err := semver.NewVersion(current)
	if err != nil {
		return false
	}
	lat, err := semver.NewVersion(latest)
	if err != nil {
		return false
	}
	return lat.LessThan(cur)
}
