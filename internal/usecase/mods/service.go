// Package mods maintains the per-server mod ledger and the mod files in
// the container's mods directory. The directory is the source of truth:
// every list reconciles the ledger against it before answering.
package mods

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/bnema/zerowrap"
	"github.com/google/uuid"

	"hytalepanel/internal/boundaries/out"
	"hytalepanel/internal/domain"
	"hytalepanel/pkg/tarkit"
)

const (
	modsDir    = "/opt/hytale/mods"
	ledgerPath = "/opt/hytale/mods.json"

	execTimeout  = 30 * time.Second
	shortTimeout = 5 * time.Second
)

var sanitizeRe = regexp.MustCompile(`[^a-zA-Z0-9]`)

// Service implements the ModService interface.
type Service struct {
	runtime out.ContainerRuntime
	catalog out.ModCatalog
	log     zerowrap.Logger
}

// NewService creates a new mod service.
func NewService(runtime out.ContainerRuntime, catalog out.ModCatalog, log zerowrap.Logger) *Service {
	return &Service{runtime: runtime, catalog: catalog, log: log}
}

// List reconciles the ledger against the mods directory: enabled state
// is recomputed from the files on disk, unknown files are adopted as
// local mods and ledger entries whose file vanished are pruned. When the
// catalog is configured, adopted locals are enriched with their catalog
// identity.
func (s *Service) List(ctx context.Context, containerName string) ([]domain.InstalledMod, error) {
	ctx = zerowrap.CtxWithFields(ctx, map[string]any{
		zerowrap.FieldLayer:   "usecase",
		zerowrap.FieldUseCase: "ListMods",
		"container":           containerName,
	})
	log := zerowrap.FromCtx(ctx)

	ledger, err := s.load(ctx, containerName)
	if err != nil {
		return nil, err
	}

	files, err := s.listModFiles(ctx, containerName)
	if err != nil {
		return nil, err
	}

	existing := make(map[string]bool, len(files))
	for _, file := range files {
		existing[file.name] = true
	}

	known := make(map[string]bool, len(ledger.Mods))
	knownDisabled := make(map[string]bool, len(ledger.Mods))
	for _, mod := range ledger.Mods {
		known[mod.FileName] = true
		knownDisabled[mod.FileName+domain.DisabledSuffix] = true
	}

	var (
		view      []domain.InstalledMod
		kept      []domain.InstalledMod
		needsSave bool
	)
	for _, mod := range ledger.Mods {
		enabledExists := existing[mod.FileName]
		disabledExists := existing[mod.FileName+domain.DisabledSuffix]
		mod.Enabled = enabledExists && !disabledExists
		mod.FileExists = enabledExists || disabledExists

		if !mod.FileExists {
			// The file is gone; drop the stale entry.
			log.Debug().Str("file", mod.FileName).Msg("pruning vanished mod from ledger")
			needsSave = true
			continue
		}
		view = append(view, mod)
		kept = append(kept, mod)
	}
	ledger.Mods = kept

	now := time.Now().UTC()
	for _, file := range files {
		base := strings.TrimSuffix(file.name, domain.DisabledSuffix)
		if known[base] || known[file.name] || knownDisabled[file.name] {
			continue
		}

		disabled := strings.HasSuffix(file.name, domain.DisabledSuffix)
		mod := domain.InstalledMod{
			ID:             uuid.New().String(),
			ProviderID:     domain.ProviderLocal,
			ProjectTitle:   titleFromFileName(base),
			VersionName:    "Unknown",
			Classification: "PLUGIN",
			FileName:       base,
			FileSize:       file.size,
			Enabled:        !disabled,
			InstalledAt:    now,
			UpdatedAt:      now,
			IsLocal:        true,
			FileExists:     true,
		}

		view = append(view, mod)
		ledger.Mods = append(ledger.Mods, mod)
		known[base] = true
		needsSave = true
	}

	if needsSave {
		if err := s.save(ctx, containerName, ledger); err != nil {
			return nil, err
		}
	}

	if s.catalog.IsConfigured() {
		view = s.enrichLocals(ctx, containerName, view)
	}

	return view, nil
}

// Get returns one ledger entry by mod ID.
func (s *Service) Get(ctx context.Context, containerName, modID string) (*domain.InstalledMod, error) {
	ledger, err := s.load(ctx, containerName)
	if err != nil {
		return nil, err
	}
	for i := range ledger.Mods {
		if ledger.Mods[i].ID == modID {
			return &ledger.Mods[i], nil
		}
	}
	return nil, domain.ErrModNotFound
}

// Install writes the payload into the mods directory and upserts the
// ledger entry. An entry with the same project and version identity is
// replaced in place, keeping its ID and install time; its old file is
// removed when the name changed.
func (s *Service) Install(ctx context.Context, containerName string, payload []byte, meta domain.ModMetadata) (*domain.InstalledMod, error) {
	ctx = zerowrap.CtxWithFields(ctx, map[string]any{
		zerowrap.FieldLayer:   "usecase",
		zerowrap.FieldUseCase: "InstallMod",
		"container":           containerName,
		"project":             meta.ProjectTitle,
	})
	log := zerowrap.FromCtx(ctx)

	if err := s.ensureSetup(ctx, containerName); err != nil {
		return nil, err
	}

	fileName := meta.FileName
	if fileName == "" {
		fileName = fmt.Sprintf("%s-%s.jar", sanitizeRe.ReplaceAllString(meta.ProjectTitle, "-"), meta.VersionName)
	}

	archive, err := tarkit.PackFile(fileName, payload)
	if err != nil {
		return nil, log.WrapErr(err, "failed to pack mod file")
	}
	if err := s.runtime.PutArchive(ctx, containerName, modsDir, archive); err != nil {
		return nil, log.WrapErr(err, "failed to write mod file")
	}

	ledger, err := s.load(ctx, containerName)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	entry := domain.InstalledMod{
		ID:             uuid.New().String(),
		ProviderID:     meta.ProviderID,
		ProjectID:      meta.ProjectID,
		ProjectSlug:    meta.ProjectSlug,
		ProjectTitle:   meta.ProjectTitle,
		ProjectIconURL: meta.ProjectIconURL,
		VersionID:      meta.VersionID,
		VersionName:    meta.VersionName,
		Classification: meta.Classification,
		FileName:       fileName,
		FileSize:       int64(len(payload)),
		Enabled:        true,
		InstalledAt:    now,
		UpdatedAt:      now,
	}
	if entry.ProviderID == "" {
		entry.ProviderID = domain.ProviderModtale
	}
	if entry.Classification == "" {
		entry.Classification = "PLUGIN"
	}

	idx := -1
	if meta.ProjectID != "" {
		for i, mod := range ledger.Mods {
			if mod.ProjectID == meta.ProjectID && mod.VersionID == meta.VersionID {
				idx = i
				break
			}
		}
	}

	if idx >= 0 {
		previous := ledger.Mods[idx]
		entry.ID = previous.ID
		entry.InstalledAt = previous.InstalledAt
		if previous.FileName != fileName {
			s.removeModFile(ctx, containerName, previous.FileName)
		}
		ledger.Mods[idx] = entry
	} else {
		ledger.Mods = append(ledger.Mods, entry)
	}

	if err := s.save(ctx, containerName, ledger); err != nil {
		return nil, err
	}

	log.Info().Str("file", fileName).Msg("mod installed")
	return &entry, nil
}

// Uninstall removes the mod's file (enabled or disabled variant) and
// its ledger entry.
func (s *Service) Uninstall(ctx context.Context, containerName, modID string) error {
	ledger, err := s.load(ctx, containerName)
	if err != nil {
		return err
	}

	idx := -1
	for i, mod := range ledger.Mods {
		if mod.ID == modID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return domain.ErrModNotFound
	}

	s.removeModFile(ctx, containerName, ledger.Mods[idx].FileName)
	ledger.Mods = append(ledger.Mods[:idx], ledger.Mods[idx+1:]...)
	return s.save(ctx, containerName, ledger)
}

// Enable renames the disabled file back when present; already-enabled
// mods only get their ledger entry refreshed.
func (s *Service) Enable(ctx context.Context, containerName, modID string) (*domain.InstalledMod, error) {
	return s.setEnabled(ctx, containerName, modID, true)
}

// Disable renames the mod file aside when present; already-disabled
// mods only get their ledger entry refreshed.
func (s *Service) Disable(ctx context.Context, containerName, modID string) (*domain.InstalledMod, error) {
	return s.setEnabled(ctx, containerName, modID, false)
}

func (s *Service) setEnabled(ctx context.Context, containerName, modID string, enabled bool) (*domain.InstalledMod, error) {
	ledger, err := s.load(ctx, containerName)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i, mod := range ledger.Mods {
		if mod.ID == modID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, domain.ErrModNotFound
	}
	mod := &ledger.Mods[idx]

	enabledPath := path.Join(modsDir, mod.FileName)
	disabledPath := enabledPath + domain.DisabledSuffix
	from, to := enabledPath, disabledPath
	if enabled {
		from, to = disabledPath, enabledPath
	}

	probe, err := s.runtime.Exec(ctx, containerName,
		fmt.Sprintf(`test -f "%s" && echo "EXISTS" || echo "NOT_FOUND"`, from), execTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to probe mod file: %w", err)
	}
	if strings.Contains(probe, "EXISTS") {
		if _, err := s.runtime.Exec(ctx, containerName,
			fmt.Sprintf(`mv "%s" "%s"`, from, to), shortTimeout); err != nil {
			return nil, fmt.Errorf("failed to rename mod file: %w", err)
		}
	}

	mod.Enabled = enabled
	mod.UpdatedAt = time.Now().UTC()
	if err := s.save(ctx, containerName, ledger); err != nil {
		return nil, err
	}
	return mod, nil
}

// ensureSetup creates the mods directory and seeds an empty ledger when
// none exists yet.
func (s *Service) ensureSetup(ctx context.Context, containerName string) error {
	if _, err := s.runtime.Exec(ctx, containerName, fmt.Sprintf(`mkdir -p "%s"`, modsDir), shortTimeout); err != nil {
		return fmt.Errorf("failed to create mods directory: %w", err)
	}

	probe, err := s.runtime.Exec(ctx, containerName,
		fmt.Sprintf(`cat "%s" 2>/dev/null || echo "NOT_FOUND"`, ledgerPath), execTimeout)
	if err != nil {
		return fmt.Errorf("failed to probe mod ledger: %w", err)
	}
	if !strings.Contains(probe, "NOT_FOUND") {
		return nil
	}
	return s.save(ctx, containerName, domain.ModLedger{Version: 1})
}

func (s *Service) load(ctx context.Context, containerName string) (domain.ModLedger, error) {
	empty := domain.ModLedger{Version: 1}

	if err := s.ensureSetup(ctx, containerName); err != nil {
		return empty, err
	}

	stream, err := s.runtime.GetArchive(ctx, containerName, ledgerPath)
	if err != nil {
		return empty, fmt.Errorf("failed to read mod ledger: %w", err)
	}
	defer stream.Close()

	content, err := tarkit.ExtractFile(stream)
	if err != nil {
		return empty, fmt.Errorf("failed to unpack mod ledger: %w", err)
	}

	var ledger domain.ModLedger
	if err := json.Unmarshal(content, &ledger); err != nil {
		// A corrupt ledger starts over; the directory scan readopts the files.
		return empty, nil
	}
	if ledger.Version == 0 {
		ledger.Version = 1
	}
	return ledger, nil
}

func (s *Service) save(ctx context.Context, containerName string, ledger domain.ModLedger) error {
	content, err := json.MarshalIndent(ledger, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal mod ledger: %w", err)
	}
	archive, err := tarkit.PackFile(path.Base(ledgerPath), content)
	if err != nil {
		return fmt.Errorf("failed to pack mod ledger: %w", err)
	}
	if err := s.runtime.PutArchive(ctx, containerName, path.Dir(ledgerPath), archive); err != nil {
		return fmt.Errorf("failed to write mod ledger: %w", err)
	}
	return nil
}

func (s *Service) removeModFile(ctx context.Context, containerName, fileName string) {
	command := fmt.Sprintf(`rm -f "%s/%s" "%s/%s%s"`, modsDir, fileName, modsDir, fileName, domain.DisabledSuffix)
	if _, err := s.runtime.Exec(ctx, containerName, command, shortTimeout); err != nil {
		s.log.Warn().Err(err).Str("file", fileName).Msg("failed to remove mod file")
	}
}

type modFile struct {
	name string
	size int64
}

// listModFiles scans the mods directory for jar, zip and disabled files.
func (s *Service) listModFiles(ctx context.Context, containerName string) ([]modFile, error) {
	output, err := s.runtime.Exec(ctx, containerName,
		fmt.Sprintf(`ls -la "%s" 2>/dev/null | grep -E "\.(jar|disabled|zip)$" || echo ""`, modsDir), execTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to list mods directory: %w", err)
	}

	var files []modFile
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(strings.TrimSpace(line))
		if len(fields) < 9 {
			continue
		}
		name := strings.Join(fields[8:], " ")
		if !strings.HasSuffix(name, ".jar") && !strings.HasSuffix(name, ".zip") &&
			!strings.HasSuffix(name, domain.DisabledSuffix) {
			continue
		}
		size, _ := strconv.ParseInt(fields[4], 10, 64)
		files = append(files, modFile{name: name, size: size})
	}
	return files, nil
}

// titleFromFileName derives a display title for an adopted local mod.
func titleFromFileName(fileName string) string {
	name := strings.TrimSuffix(strings.TrimSuffix(fileName, ".jar"), ".zip")
	return strings.ReplaceAll(name, "-", " ")
}
