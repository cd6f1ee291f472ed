package update

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/bnema/zerowrap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	inMocks "hytalepanel/internal/boundaries/in/mocks"
	outMocks "hytalepanel/internal/boundaries/out/mocks"
	"hytalepanel/internal/domain"
	"hytalepanel/pkg/tarkit"
)

func newTestService(t *testing.T) (*Service, *outMocks.MockContainerRuntime, *inMocks.MockDownloadService, *inMocks.MockFileService) {
	t.Helper()
	runtime := outMocks.NewMockContainerRuntime(t)
	downloads := inMocks.NewMockDownloadService(t)
	files := inMocks.NewMockFileService(t)
	log := zerowrap.New(zerowrap.Config{Level: "warn"})
	svc := NewService(runtime, downloads, files, log)
	svc.settle = time.Millisecond
	return svc, runtime, downloads, files
}

func closedDownloadStream(statuses ...domain.DownloadStatus) <-chan domain.DownloadStatus {
	ch := make(chan domain.DownloadStatus, len(statuses))
	for _, status := range statuses {
		ch <- status
	}
	close(ch)
	return ch
}

func collect(t *testing.T, ch <-chan domain.UpdateStatus) []domain.UpdateStatus {
	t.Helper()
	var statuses []domain.UpdateStatus
	timeout := time.After(5 * time.Second)
	for {
		select {
		case status, ok := <-ch:
			if !ok {
				return statuses
			}
			statuses = append(statuses, status)
		case <-timeout:
			t.Fatal("timed out waiting for update statuses")
		}
	}
}

func expectMetadataWrite(runtime *outMocks.MockContainerRuntime) {
	runtime.On("Exec", mock.Anything, "hytale-x", mock.MatchedBy(func(cmd string) bool {
		return strings.HasPrefix(cmd, "stat -c")
	}), mock.Anything).Return("12345\n", nil)
	runtime.On("Exec", mock.Anything, "hytale-x", mock.MatchedBy(func(cmd string) bool {
		return strings.HasPrefix(cmd, "md5sum")
	}), mock.Anything).Return("d41d8cd98f00b204e9800998ecf8427e\n", nil)
	runtime.On("PutArchive", mock.Anything, "hytale-x", "/opt/hytale", mock.Anything).Return(nil)
}

func TestService_Apply_PreservesRunningState(t *testing.T) {
	svc, runtime, downloads, _ := newTestService(t)

	runtime.On("Inspect", mock.Anything, "hytale-x").Return(domain.ContainerState{Running: true, Status: "running"}, nil)
	runtime.On("Stop", mock.Anything, "hytale-x").Return(nil)
	downloads.On("Run", mock.Anything, "hytale-x", "srv1").
		Return(closedDownloadStream(
			domain.DownloadStatus{Status: domain.DownloadStarting, ServerID: "srv1"},
			domain.DownloadStatus{Status: domain.DownloadComplete, ServerID: "srv1"},
		))
	expectMetadataWrite(runtime)
	runtime.On("Restart", mock.Anything, "hytale-x").Return(nil)

	var forwarded []domain.DownloadStatus
	statuses := collect(t, svc.Apply(context.Background(), "hytale-x", "srv1", func(status domain.DownloadStatus) {
		forwarded = append(forwarded, status)
	}))

	require.Len(t, statuses, 4)
	assert.Equal(t, domain.UpdateStopping, statuses[0].Status)
	assert.Equal(t, domain.UpdateDownloading, statuses[1].Status)
	assert.Equal(t, domain.UpdateRestarting, statuses[2].Status)
	assert.Equal(t, domain.UpdateComplete, statuses[3].Status)
	for _, status := range statuses {
		assert.Equal(t, "srv1", status.ServerID)
	}

	require.Len(t, forwarded, 2)
	assert.Equal(t, domain.DownloadComplete, forwarded[1].Status)
}

func TestService_Apply_StoppedServerStaysStopped(t *testing.T) {
	svc, runtime, downloads, _ := newTestService(t)

	runtime.On("Inspect", mock.Anything, "hytale-x").Return(domain.ContainerState{Running: false, Status: "exited"}, nil)
	downloads.On("Run", mock.Anything, "hytale-x", "srv1").Return(closedDownloadStream())
	expectMetadataWrite(runtime)

	statuses := collect(t, svc.Apply(context.Background(), "hytale-x", "srv1", nil))

	require.Len(t, statuses, 2)
	assert.Equal(t, domain.UpdateDownloading, statuses[0].Status)
	assert.Equal(t, domain.UpdateComplete, statuses[1].Status)
}

func TestService_Apply_InspectFailureEndsError(t *testing.T) {
	svc, runtime, _, _ := newTestService(t)

	runtime.On("Inspect", mock.Anything, "hytale-x").Return(domain.ContainerState{}, assert.AnError)

	statuses := collect(t, svc.Apply(context.Background(), "hytale-x", "srv1", nil))

	require.Len(t, statuses, 1)
	assert.Equal(t, domain.UpdateError, statuses[0].Status)
}

func TestService_CheckForUpdate(t *testing.T) {
	t.Run("never updated", func(t *testing.T) {
		svc, runtime, _, files := newTestService(t)

		files.On("CheckServerFiles", mock.Anything, "srv1").Return(domain.ServerFiles{})
		runtime.On("Exec", mock.Anything, "hytale-x", mock.MatchedBy(func(cmd string) bool {
			return strings.HasPrefix(cmd, "cat /opt/hytale/.update-metadata.json")
		}), mock.Anything).Return("{}\n", nil)

		check, err := svc.CheckForUpdate(context.Background(), "srv1", "hytale-x")
		require.NoError(t, err)
		assert.Nil(t, check.LastUpdate)
		assert.Nil(t, check.DaysSinceUpdate)
		assert.False(t, check.HasFiles)
	})

	t.Run("computes days since update", func(t *testing.T) {
		svc, runtime, _, files := newTestService(t)

		files.On("CheckServerFiles", mock.Anything, "srv1").Return(domain.ServerFiles{HasJar: true, HasAssets: true, Ready: true})
		last := time.Now().UTC().Add(-72 * time.Hour).Format(time.RFC3339)
		runtime.On("Exec", mock.Anything, "hytale-x", mock.AnythingOfType("string"), mock.Anything).
			Return(`{"lastDownloadAt":"`+last+`","jarSize":12345,"jarHash":"abc","assetsSize":0}`, nil)

		check, err := svc.CheckForUpdate(context.Background(), "srv1", "hytale-x")
		require.NoError(t, err)
		require.NotNil(t, check.DaysSinceUpdate)
		assert.Equal(t, 3, *check.DaysSinceUpdate)
		assert.True(t, check.HasFiles)
	})
}

func TestService_RecordDownload(t *testing.T) {
	svc, runtime, _, _ := newTestService(t)

	runtime.On("Exec", mock.Anything, "hytale-x", mock.MatchedBy(func(cmd string) bool {
		return strings.HasPrefix(cmd, "stat -c")
	}), mock.Anything).Return("2048\n", nil)
	runtime.On("Exec", mock.Anything, "hytale-x", mock.MatchedBy(func(cmd string) bool {
		return strings.HasPrefix(cmd, "md5sum")
	}), mock.Anything).Return("abc123\n", nil)
	runtime.On("PutArchive", mock.Anything, "hytale-x", "/opt/hytale", mock.MatchedBy(func(archive io.Reader) bool {
		content, err := tarkit.ExtractFile(archive)
		return err == nil && strings.Contains(string(content), `"jarSize": 2048`)
	})).Return(nil)

	svc.RecordDownload(context.Background(), "hytale-x")
}
