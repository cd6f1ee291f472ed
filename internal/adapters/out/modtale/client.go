// Package modtale implements the mod catalog adapter against the
// Modtale REST API.
package modtale

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bnema/zerowrap"

	"hytalepanel/internal/domain"
)

// DefaultBaseURL is the public Modtale API endpoint.
const DefaultBaseURL = "https://api.modtale.net/api/v1"

const (
	apiKeyHeader    = "X-MODTALE-KEY"
	requestTimeout  = 30 * time.Second
	downloadTimeout = 5 * time.Minute
	defaultPageSize = 20
)

// Client implements the ModCatalog interface. A client without an API
// key degrades gracefully: IsConfigured reports false and every request
// fails with ErrCatalogNotConfigured.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	log     zerowrap.Logger
}

// Option configures the Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint (for testing).
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.http = client
	}
}

// NewClient creates a catalog client. An empty apiKey is allowed and
// produces an unconfigured client.
func NewClient(apiKey string, log zerowrap.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		log:     log,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.http == nil {
		c.http = &http.Client{Timeout: requestTimeout}
	}

	if c.apiKey == "" {
		log.Info().Msg("mod catalog API key not set, catalog features disabled")
	}

	return c
}

// IsConfigured reports whether an API key is present.
func (c *Client) IsConfigured() bool {
	return c.apiKey != ""
}

// Search queries the catalog's project index.
func (c *Client) Search(ctx context.Context, params domain.ModSearchParams) (*domain.ModSearchResult, error) {
	pageSize := params.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	page := params.Page
	if page <= 0 {
		page = 1
	}

	query := url.Values{}
	if params.Query != "" {
		query.Set("search", params.Query)
	}
	if params.Classification != "" {
		query.Set("classification", params.Classification)
	}
	// The API pages from zero.
	query.Set("page", strconv.Itoa(page-1))
	query.Set("size", strconv.Itoa(pageSize))
	if params.SortBy != "" {
		query.Set("sort", mapSortField(params.SortBy))
	}

	var resp searchResponse
	if err := c.getJSON(ctx, "/projects?"+query.Encode(), &resp); err != nil {
		return nil, err
	}

	projects := make([]domain.ModProject, 0, len(resp.Content))
	for _, p := range resp.Content {
		projects = append(projects, p.toDomain())
	}

	return &domain.ModSearchResult{
		Projects: projects,
		Total:    resp.TotalElements,
		Page:     resp.Number + 1,
		PageSize: pageSize,
		HasMore:  !resp.Last,
	}, nil
}

// GetProject fetches one project with its version history.
func (c *Client) GetProject(ctx context.Context, projectID string) (*domain.ModProject, error) {
	var resp apiProject
	if err := c.getJSON(ctx, "/projects/"+url.PathEscape(projectID), &resp); err != nil {
		return nil, err
	}
	project := resp.toDomain()
	return &project, nil
}

// DownloadVersion fetches a version's binary payload. The file name
// comes from the response's content-disposition header when present.
func (c *Client) DownloadVersion(ctx context.Context, projectID, versionName string) ([]byte, string, error) {
	if !c.IsConfigured() {
		return nil, "", domain.ErrCatalogNotConfigured
	}

	endpoint := fmt.Sprintf("%s/projects/%s/versions/%s/download",
		c.baseURL, url.PathEscape(projectID), url.PathEscape(versionName))

	ctx, cancel := context.WithTimeout(ctx, downloadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create download request: %w", err)
	}
	req.Header.Set(apiKeyHeader, c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("download request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return nil, "", fmt.Errorf("download failed: HTTP %d - %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read download body: %w", err)
	}

	fileName := ""
	if disposition := resp.Header.Get("Content-Disposition"); disposition != "" {
		if _, dispParams, err := mime.ParseMediaType(disposition); err == nil {
			fileName = dispParams["filename"]
		}
	}

	c.log.Debug().Int("bytes", len(payload)).Str("file_name", fileName).Msg("catalog version downloaded")
	return payload, fileName, nil
}

// Classifications returns the catalog's content categories.
func (c *Client) Classifications(ctx context.Context) ([]domain.ModClassification, error) {
	var raw []string
	if err := c.getJSON(ctx, "/meta/classifications", &raw); err != nil {
		return nil, err
	}

	classifications := make([]domain.ModClassification, 0, len(raw))
	for _, id := range raw {
		classifications = append(classifications, domain.ModClassification{
			ID:   id,
			Name: titleCase(id),
		})
	}
	return classifications, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, v any) error {
	if !c.IsConfigured() {
		return domain.ErrCatalogNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create catalog request: %w", err)
	}
	req.Header.Set(apiKeyHeader, c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("catalog request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apiError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode catalog response: %w", err)
	}
	return nil
}

// apiError extracts the API's error message when the body carries one.
func apiError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var parsed struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Message != "" {
		return fmt.Errorf("catalog error: %s", parsed.Message)
	}
	return fmt.Errorf("catalog error: HTTP %d: %s", resp.StatusCode, resp.Status)
}

// mapSortField maps panel sort keys to the API's sort enum.
func mapSortField(sortBy string) string {
	switch sortBy {
	case "relevance", "downloads", "updated", "newest", "rating", "favorites":
		return sortBy
	case "created":
		return "newest"
	default:
		return "downloads"
	}
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return s[:1] + strings.ToLower(s[1:])
}
