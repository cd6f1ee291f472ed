package out

import (
	"context"

	"hytalepanel/internal/domain"
)

// ModCatalog is the mod catalog port. Absence of credentials degrades
// gracefully: IsConfigured reports false and the other calls fail with
// domain.ErrCatalogNotConfigured instead of panicking or hanging.
type ModCatalog interface {
	Search(ctx context.Context, params domain.ModSearchParams) (*domain.ModSearchResult, error)
	GetProject(ctx context.Context, projectID string) (*domain.ModProject, error)

	// DownloadVersion fetches a version's binary payload. The returned
	// file name may be empty when the catalog does not provide one.
	DownloadVersion(ctx context.Context, projectID, versionName string) ([]byte, string, error)

	Classifications(ctx context.Context) ([]domain.ModClassification, error)
	IsConfigured() bool
}
