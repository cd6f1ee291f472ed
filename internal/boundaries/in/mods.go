package in

import (
	"context"

	"hytalepanel/internal/domain"
)

// ModService maintains the per-server mod ledger and its backing files.
type ModService interface {
	// List reconciles the ledger against the mods directory and returns
	// only entries whose backing file exists. Locally dropped files are
	// adopted into the ledger; vanished entries are pruned from it.
	List(ctx context.Context, containerName string) ([]domain.InstalledMod, error)

	Get(ctx context.Context, containerName, modID string) (*domain.InstalledMod, error)

	// Install writes the payload into the mods directory and upserts the
	// ledger entry keyed by (projectId, versionId).
	Install(ctx context.Context, containerName string, payload []byte, meta domain.ModMetadata) (*domain.InstalledMod, error)

	Uninstall(ctx context.Context, containerName, modID string) error

	// Enable and Disable rename the mod file; both are idempotent.
	Enable(ctx context.Context, containerName, modID string) (*domain.InstalledMod, error)
	Disable(ctx context.Context, containerName, modID string) (*domain.InstalledMod, error)

	// CheckUpdates compares catalog-sourced entries against the catalog's
	// latest versions. Per-mod failures are skipped, not fatal.
	CheckUpdates(ctx context.Context, containerName string) ([]domain.ModUpdate, error)
}
