package modtale

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bnema/zerowrap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hytalepanel/internal/domain"
)

func testLogger() zerowrap.Logger {
	return zerowrap.New(zerowrap.Config{Level: "warn"})
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient("test-key", testLogger(), WithBaseURL(server.URL))
}

func TestClient_UnconfiguredRejectsAllCalls(t *testing.T) {
	client := NewClient("", testLogger())

	assert.False(t, client.IsConfigured())

	_, err := client.Search(context.Background(), domain.ModSearchParams{Query: "x"})
	assert.ErrorIs(t, err, domain.ErrCatalogNotConfigured)

	_, err = client.GetProject(context.Background(), "p1")
	assert.ErrorIs(t, err, domain.ErrCatalogNotConfigured)

	_, _, err = client.DownloadVersion(context.Background(), "p1", "v1")
	assert.ErrorIs(t, err, domain.ErrCatalogNotConfigured)

	_, err = client.Classifications(context.Background())
	assert.ErrorIs(t, err, domain.ErrCatalogNotConfigured)
}

func TestClient_Search(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/projects", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get(apiKeyHeader))
		assert.Equal(t, "chest", r.URL.Query().Get("search"))
		// Client pages from one, API from zero.
		assert.Equal(t, "1", r.URL.Query().Get("page"))
		assert.Equal(t, "10", r.URL.Query().Get("size"))
		assert.Equal(t, "downloads", r.URL.Query().Get("sort"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"content": [{
				"id": 42,
				"slug": "cool-chest",
				"title": "Cool Chest",
				"classification": "PLUGIN",
				"author": {"displayName": "Maker"},
				"downloadCount": 1200,
				"imageUrl": "https://cdn.example/icon.png",
				"versions": [{"id": "v2", "versionNumber": "1.3.0", "fileName": "cool-chest-1.3.0.jar"}]
			}],
			"totalElements": 57,
			"number": 1,
			"size": 10,
			"last": false
		}`))
	})

	result, err := client.Search(context.Background(), domain.ModSearchParams{
		Query:    "chest",
		Page:     2,
		PageSize: 10,
		SortBy:   "downloads",
	})

	require.NoError(t, err)
	assert.Equal(t, 57, result.Total)
	assert.Equal(t, 2, result.Page)
	assert.True(t, result.HasMore)
	require.Len(t, result.Projects, 1)

	project := result.Projects[0]
	assert.Equal(t, "42", project.ID)
	assert.Equal(t, "Cool Chest", project.Title)
	assert.Equal(t, "Maker", project.Author)
	assert.Equal(t, int64(1200), project.Downloads)
	assert.Equal(t, "https://cdn.example/icon.png", project.IconURL)
	require.NotNil(t, project.LatestVersion)
	assert.Equal(t, "1.3.0", project.LatestVersion.Version)
}

func TestClient_GetProject_AlternateFieldNames(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/projects/p1", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "p1",
			"name": "Named Not Titled",
			"author": "plainstring",
			"downloads": 7,
			"iconUrl": "https://cdn.example/alt.png",
			"versions": [{"id": 9, "version": "2.0", "size": 2048, "file": "named-2.0.jar"}]
		}`))
	})

	project, err := client.GetProject(context.Background(), "p1")

	require.NoError(t, err)
	assert.Equal(t, "Named Not Titled", project.Title)
	assert.Equal(t, "plainstring", project.Author)
	assert.Equal(t, "PLUGIN", project.Classification)
	assert.Equal(t, "p1", project.Slug)
	require.Len(t, project.Versions, 1)
	assert.Equal(t, "9", project.Versions[0].ID)
	assert.Equal(t, int64(2048), project.Versions[0].FileSize)
	assert.Equal(t, "named-2.0.jar", project.Versions[0].FileName)
}

func TestClient_GetProject_APIErrorMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message": "project not found"}`))
	})

	_, err := client.GetProject(context.Background(), "ghost")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "project not found")
}

func TestClient_DownloadVersion(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/projects/p1/versions/1.3.0/download", r.URL.Path)
		w.Header().Set("Content-Disposition", `attachment; filename="cool-chest-1.3.0.jar"`)
		_, _ = w.Write([]byte("jarbytes"))
	})

	payload, fileName, err := client.DownloadVersion(context.Background(), "p1", "1.3.0")

	require.NoError(t, err)
	assert.Equal(t, []byte("jarbytes"), payload)
	assert.Equal(t, "cool-chest-1.3.0.jar", fileName)
}

func TestClient_DownloadVersion_HTTPError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("key revoked"))
	})

	_, _, err := client.DownloadVersion(context.Background(), "p1", "v3")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
	assert.Contains(t, err.Error(), "key revoked")
}

func TestClient_Classifications(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/meta/classifications", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`["PLUGIN", "DATAPACK"]`))
	})

	classifications, err := client.Classifications(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []domain.ModClassification{
		{ID: "PLUGIN", Name: "Plugin"},
		{ID: "DATAPACK", Name: "Datapack"},
	}, classifications)
}

func TestMapSortField(t *testing.T) {
	assert.Equal(t, "newest", mapSortField("created"))
	assert.Equal(t, "rating", mapSortField("rating"))
	assert.Equal(t, "downloads", mapSortField("bogus"))
}
