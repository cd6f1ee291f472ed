package mods

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/bnema/zerowrap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	outMocks "hytalepanel/internal/boundaries/out/mocks"
	"hytalepanel/internal/domain"
	"hytalepanel/pkg/tarkit"
)

func newTestService(t *testing.T) (*Service, *outMocks.MockContainerRuntime, *outMocks.MockModCatalog) {
	t.Helper()
	runtime := outMocks.NewMockContainerRuntime(t)
	catalog := outMocks.NewMockModCatalog(t)
	log := zerowrap.New(zerowrap.Config{Level: "warn"})
	return NewService(runtime, catalog, log), runtime, catalog
}

// ledgerStream packs a ledger the way the runtime's GetArchive returns it.
func ledgerStream(t *testing.T, ledger domain.ModLedger) io.ReadCloser {
	t.Helper()
	content, err := json.Marshal(ledger)
	require.NoError(t, err)
	archive, err := tarkit.PackFile("mods.json", content)
	require.NoError(t, err)
	return io.NopCloser(archive)
}

func lsLine(size int64, name string) string {
	return fmt.Sprintf("-rw-r--r-- 1 root root %d Jan  1 00:00 %s", size, name)
}

// expectLoad wires the mkdir, ledger probe and archive fetch of one
// ledger load.
func expectLoad(runtime *outMocks.MockContainerRuntime, t *testing.T, ledger domain.ModLedger) {
	runtime.On("Exec", mock.Anything, "hytale-x", `mkdir -p "/opt/hytale/mods"`, mock.Anything).Return("", nil).Once()
	runtime.On("Exec", mock.Anything, "hytale-x", mock.MatchedBy(func(cmd string) bool {
		return strings.HasPrefix(cmd, `cat "/opt/hytale/mods.json"`)
	}), mock.Anything).Return(`{"version":1,"mods":[]}`, nil).Once()
	runtime.On("GetArchive", mock.Anything, "hytale-x", "/opt/hytale/mods.json").Return(ledgerStream(t, ledger), nil).Once()
}

func installedMod(id, fileName string) domain.InstalledMod {
	return domain.InstalledMod{
		ID:             id,
		ProviderID:     domain.ProviderModtale,
		ProjectID:      "proj-" + id,
		ProjectTitle:   "Mod " + id,
		VersionID:      "ver-" + id,
		VersionName:    "1.0.0",
		Classification: "PLUGIN",
		FileName:       fileName,
		FileSize:       100,
		Enabled:        true,
		InstalledAt:    time.Now().UTC(),
		UpdatedAt:      time.Now().UTC(),
	}
}

func TestService_List_RecomputesEnabledState(t *testing.T) {
	svc, runtime, catalog := newTestService(t)

	ledger := domain.ModLedger{Version: 1, Mods: []domain.InstalledMod{
		installedMod("a", "alpha.jar"),
		installedMod("b", "beta.jar"),
	}}
	expectLoad(runtime, t, ledger)
	runtime.On("Exec", mock.Anything, "hytale-x", mock.MatchedBy(func(cmd string) bool {
		return strings.HasPrefix(cmd, `ls -la`)
	}), mock.Anything).Return(
		lsLine(100, "alpha.jar")+"\n"+lsLine(100, "beta.jar.disabled")+"\n", nil)
	catalog.On("IsConfigured").Return(false)

	mods, err := svc.List(context.Background(), "hytale-x")
	require.NoError(t, err)
	require.Len(t, mods, 2)

	assert.True(t, mods[0].Enabled)
	assert.True(t, mods[0].FileExists)
	assert.False(t, mods[1].Enabled)
	assert.True(t, mods[1].FileExists)
}

func TestService_List_AdoptsLocalFiles(t *testing.T) {
	svc, runtime, catalog := newTestService(t)

	expectLoad(runtime, t, domain.ModLedger{Version: 1})
	runtime.On("Exec", mock.Anything, "hytale-x", mock.MatchedBy(func(cmd string) bool {
		return strings.HasPrefix(cmd, `ls -la`)
	}), mock.Anything).Return(lsLine(2048, "cool-chest-mod.jar")+"\n", nil)
	runtime.On("PutArchive", mock.Anything, "hytale-x", "/opt/hytale", mock.MatchedBy(func(archive io.Reader) bool {
		content, err := tarkit.ExtractFile(archive)
		if err != nil {
			return false
		}
		var saved domain.ModLedger
		return json.Unmarshal(content, &saved) == nil &&
			len(saved.Mods) == 1 &&
			saved.Mods[0].FileName == "cool-chest-mod.jar" &&
			saved.Mods[0].ProviderID == domain.ProviderLocal
	})).Return(nil)
	catalog.On("IsConfigured").Return(false)

	mods, err := svc.List(context.Background(), "hytale-x")
	require.NoError(t, err)
	require.Len(t, mods, 1)

	mod := mods[0]
	assert.Equal(t, "cool chest mod", mod.ProjectTitle)
	assert.Equal(t, domain.ProviderLocal, mod.ProviderID)
	assert.Equal(t, "Unknown", mod.VersionName)
	assert.Equal(t, int64(2048), mod.FileSize)
	assert.True(t, mod.Enabled)
	assert.True(t, mod.IsLocal)
	assert.NotEmpty(t, mod.ID)
}

func TestService_List_PrunesVanishedEntries(t *testing.T) {
	svc, runtime, catalog := newTestService(t)

	ledger := domain.ModLedger{Version: 1, Mods: []domain.InstalledMod{
		installedMod("a", "alpha.jar"),
		installedMod("b", "gone.jar"),
	}}
	expectLoad(runtime, t, ledger)
	runtime.On("Exec", mock.Anything, "hytale-x", mock.MatchedBy(func(cmd string) bool {
		return strings.HasPrefix(cmd, `ls -la`)
	}), mock.Anything).Return(lsLine(100, "alpha.jar")+"\n", nil)
	runtime.On("PutArchive", mock.Anything, "hytale-x", "/opt/hytale", mock.MatchedBy(func(archive io.Reader) bool {
		content, err := tarkit.ExtractFile(archive)
		if err != nil {
			return false
		}
		var saved domain.ModLedger
		return json.Unmarshal(content, &saved) == nil &&
			len(saved.Mods) == 1 && saved.Mods[0].FileName == "alpha.jar"
	})).Return(nil)
	catalog.On("IsConfigured").Return(false)

	mods, err := svc.List(context.Background(), "hytale-x")
	require.NoError(t, err)
	require.Len(t, mods, 1)
	assert.Equal(t, "alpha.jar", mods[0].FileName)
}

func TestService_Install(t *testing.T) {
	t.Run("new mod", func(t *testing.T) {
		svc, runtime, _ := newTestService(t)

		// ensureSetup runs once directly and once inside load.
		runtime.On("Exec", mock.Anything, "hytale-x", `mkdir -p "/opt/hytale/mods"`, mock.Anything).Return("", nil).Twice()
		runtime.On("Exec", mock.Anything, "hytale-x", mock.MatchedBy(func(cmd string) bool {
			return strings.HasPrefix(cmd, `cat "/opt/hytale/mods.json"`)
		}), mock.Anything).Return(`{"version":1,"mods":[]}`, nil).Twice()
		runtime.On("PutArchive", mock.Anything, "hytale-x", "/opt/hytale/mods", mock.Anything).Return(nil).Once()
		runtime.On("GetArchive", mock.Anything, "hytale-x", "/opt/hytale/mods.json").
			Return(ledgerStream(t, domain.ModLedger{Version: 1}), nil).Once()
		runtime.On("PutArchive", mock.Anything, "hytale-x", "/opt/hytale", mock.Anything).Return(nil).Once()

		mod, err := svc.Install(context.Background(), "hytale-x", []byte("payload"), domain.ModMetadata{
			ProjectID:    "proj-1",
			ProjectTitle: "Cool Chest",
			VersionID:    "ver-1",
			VersionName:  "2.0.0",
		})
		require.NoError(t, err)
		assert.Equal(t, "Cool-Chest-2.0.0.jar", mod.FileName)
		assert.Equal(t, domain.ProviderModtale, mod.ProviderID)
		assert.Equal(t, "PLUGIN", mod.Classification)
		assert.Equal(t, int64(len("payload")), mod.FileSize)
		assert.True(t, mod.Enabled)
	})

	t.Run("same project and version replaces entry and old file", func(t *testing.T) {
		svc, runtime, _ := newTestService(t)

		previous := installedMod("a", "old-name.jar")
		previous.ProjectID = "proj-1"
		previous.VersionID = "ver-1"

		runtime.On("Exec", mock.Anything, "hytale-x", `mkdir -p "/opt/hytale/mods"`, mock.Anything).Return("", nil).Twice()
		runtime.On("Exec", mock.Anything, "hytale-x", mock.MatchedBy(func(cmd string) bool {
			return strings.HasPrefix(cmd, `cat "/opt/hytale/mods.json"`)
		}), mock.Anything).Return(`{"version":1,"mods":[]}`, nil).Twice()
		runtime.On("PutArchive", mock.Anything, "hytale-x", "/opt/hytale/mods", mock.Anything).Return(nil).Once()
		runtime.On("GetArchive", mock.Anything, "hytale-x", "/opt/hytale/mods.json").
			Return(ledgerStream(t, domain.ModLedger{Version: 1, Mods: []domain.InstalledMod{previous}}), nil).Once()
		runtime.On("Exec", mock.Anything, "hytale-x", mock.MatchedBy(func(cmd string) bool {
			return strings.HasPrefix(cmd, `rm -f "/opt/hytale/mods/old-name.jar"`)
		}), mock.Anything).Return("", nil).Once()
		runtime.On("PutArchive", mock.Anything, "hytale-x", "/opt/hytale", mock.MatchedBy(func(archive io.Reader) bool {
			content, err := tarkit.ExtractFile(archive)
			if err != nil {
				return false
			}
			var saved domain.ModLedger
			return json.Unmarshal(content, &saved) == nil && len(saved.Mods) == 1
		})).Return(nil).Once()

		mod, err := svc.Install(context.Background(), "hytale-x", []byte("v2"), domain.ModMetadata{
			ProjectID:    "proj-1",
			ProjectTitle: "Mod a",
			VersionID:    "ver-1",
			VersionName:  "1.0.0",
			FileName:     "new-name.jar",
		})
		require.NoError(t, err)
		assert.Equal(t, previous.ID, mod.ID)
		assert.Equal(t, previous.InstalledAt.Unix(), mod.InstalledAt.Unix())
		assert.Equal(t, "new-name.jar", mod.FileName)
	})
}

func TestService_Uninstall(t *testing.T) {
	svc, runtime, _ := newTestService(t)

	existing := installedMod("a", "alpha.jar")
	expectLoad(runtime, t, domain.ModLedger{Version: 1, Mods: []domain.InstalledMod{existing}})
	runtime.On("Exec", mock.Anything, "hytale-x", mock.MatchedBy(func(cmd string) bool {
		return strings.HasPrefix(cmd, `rm -f "/opt/hytale/mods/alpha.jar"`)
	}), mock.Anything).Return("", nil)
	runtime.On("PutArchive", mock.Anything, "hytale-x", "/opt/hytale", mock.MatchedBy(func(archive io.Reader) bool {
		content, err := tarkit.ExtractFile(archive)
		if err != nil {
			return false
		}
		var saved domain.ModLedger
		return json.Unmarshal(content, &saved) == nil && len(saved.Mods) == 0
	})).Return(nil)

	require.NoError(t, svc.Uninstall(context.Background(), "hytale-x", existing.ID))
}

func TestService_Uninstall_NotFound(t *testing.T) {
	svc, runtime, _ := newTestService(t)

	expectLoad(runtime, t, domain.ModLedger{Version: 1})

	err := svc.Uninstall(context.Background(), "hytale-x", "missing")
	assert.ErrorIs(t, err, domain.ErrModNotFound)
}

func TestService_EnableDisable(t *testing.T) {
	t.Run("disable renames the live file", func(t *testing.T) {
		svc, runtime, _ := newTestService(t)

		existing := installedMod("a", "alpha.jar")
		expectLoad(runtime, t, domain.ModLedger{Version: 1, Mods: []domain.InstalledMod{existing}})
		runtime.On("Exec", mock.Anything, "hytale-x", mock.MatchedBy(func(cmd string) bool {
			return strings.HasPrefix(cmd, `test -f "/opt/hytale/mods/alpha.jar"`)
		}), mock.Anything).Return("EXISTS\n", nil)
		runtime.On("Exec", mock.Anything, "hytale-x",
			`mv "/opt/hytale/mods/alpha.jar" "/opt/hytale/mods/alpha.jar.disabled"`, mock.Anything).Return("", nil)
		runtime.On("PutArchive", mock.Anything, "hytale-x", "/opt/hytale", mock.Anything).Return(nil)

		mod, err := svc.Disable(context.Background(), "hytale-x", existing.ID)
		require.NoError(t, err)
		assert.False(t, mod.Enabled)
	})

	t.Run("enable is idempotent when no disabled file exists", func(t *testing.T) {
		svc, runtime, _ := newTestService(t)

		existing := installedMod("a", "alpha.jar")
		expectLoad(runtime, t, domain.ModLedger{Version: 1, Mods: []domain.InstalledMod{existing}})
		runtime.On("Exec", mock.Anything, "hytale-x", mock.MatchedBy(func(cmd string) bool {
			return strings.HasPrefix(cmd, `test -f "/opt/hytale/mods/alpha.jar.disabled"`)
		}), mock.Anything).Return("NOT_FOUND\n", nil)
		runtime.On("PutArchive", mock.Anything, "hytale-x", "/opt/hytale", mock.Anything).Return(nil)

		mod, err := svc.Enable(context.Background(), "hytale-x", existing.ID)
		require.NoError(t, err)
		assert.True(t, mod.Enabled)
	})
}

func TestSearchTerm(t *testing.T) {
	assert.Equal(t, "cool chest", searchTerm("cool-chest-1.2.0.jar"))
	assert.Equal(t, "cool chest", searchTerm("cool_chest.jar.disabled"))
	assert.Equal(t, "x", searchTerm("x.zip"))
}

func TestMatchVersion(t *testing.T) {
	versions := []domain.ModVersion{
		{ID: "v1", Version: "1.2.0"},
		{ID: "v2", Version: "2.0.0"},
	}

	match := matchVersion(versions, "1.2")
	require.NotNil(t, match)
	assert.Equal(t, "v1", match.ID)

	match = matchVersion(versions, "2.0.0")
	require.NotNil(t, match)
	assert.Equal(t, "v2", match.ID)

	assert.Nil(t, matchVersion(versions, "3.0.0"))
}

func TestIsDowngrade(t *testing.T) {
	assert.True(t, isDowngrade("2.0.0", "1.9.0"))
	assert.False(t, isDowngrade("1.0.0", "1.0.1"))
	assert.False(t, isDowngrade("Unknown", "1.0.0"))
}
