package download

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

	outMocks "hytalepanel/internal/boundaries/out/mocks"
	"hytalepanel/internal/domain"
)

func collect(t *testing.T, ch <-chan domain.DownloadStatus) []domain.DownloadStatus {
	t.Helper()
	var statuses []domain.DownloadStatus
	timeout := time.After(5 * time.Second)
	for {
		select {
		case status, ok := <-ch:
			if !ok {
				return statuses
			}
			statuses = append(statuses, status)
		case <-timeout:
			t.Fatal("timed out waiting for download statuses")
		}
	}
}

func newTestService(t *testing.T) (*Service, *outMocks.MockContainerRuntime) {
	t.Helper()
	runtime := outMocks.NewMockContainerRuntime(t)
	log := zerowrap.New(zerowrap.Config{Level: "warn"})
	return NewService(runtime, log), runtime
}

func TestService_Run_CompleteFlow(t *testing.T) {
	svc, runtime := newTestService(t)

	runtime.On("Exec", mock.Anything, "hytale-x", "rm -f /opt/hytale/.download_attempted", mock.Anything).Return("", nil)
	runtime.On("Exec", mock.Anything, "hytale-x", "mkdir -p /opt/hytale/.download-temp", mock.Anything).Return("", nil)
	runtime.On("ExecStream", mock.Anything, "hytale-x", mock.MatchedBy(func(cmd string) bool {
		return strings.Contains(cmd, "hytale-downloader -download-path /opt/hytale/.download-temp/hytale-game.zip")
	})).Return(io.NopCloser(strings.NewReader("Downloading 42%\n")), nil)
	runtime.On("Exec", mock.Anything, "hytale-x", "sync", mock.Anything).Return("", nil)
	runtime.On("Exec", mock.Anything, "hytale-x", mock.MatchedBy(func(cmd string) bool {
		return strings.HasPrefix(cmd, "ls /opt/hytale/.download-temp/hytale-game.zip")
	}), mock.Anything).Return("/opt/hytale/.download-temp/hytale-game.zip\n", nil)
	runtime.On("Exec", mock.Anything, "hytale-x", mock.MatchedBy(func(cmd string) bool {
		return strings.HasPrefix(cmd, "unzip") || strings.HasPrefix(cmd, "find") || strings.HasPrefix(cmd, "rm -rf")
	}), mock.Anything).Return("", nil).Times(4)

	statuses := collect(t, svc.Run(context.Background(), "hytale-x", "srv1"))

	require.Len(t, statuses, 4)
	assert.Equal(t, domain.DownloadStarting, statuses[0].Status)
	assert.Equal(t, domain.DownloadOutput, statuses[1].Status)
	assert.Equal(t, "Downloading 42%\n", statuses[1].Message)
	assert.Equal(t, domain.DownloadExtracting, statuses[2].Status)
	assert.Equal(t, domain.DownloadComplete, statuses[3].Status)
	for _, status := range statuses {
		assert.Equal(t, "srv1", status.ServerID)
	}
}

func TestService_Run_NoZipEndsDone(t *testing.T) {
	svc, runtime := newTestService(t)

	runtime.On("Exec", mock.Anything, "hytale-x", mock.AnythingOfType("string"), mock.Anything).Return("", nil).Twice()
	runtime.On("ExecStream", mock.Anything, "hytale-x", mock.AnythingOfType("string")).
		Return(io.NopCloser(strings.NewReader("")), nil)
	runtime.On("Exec", mock.Anything, "hytale-x", "sync", mock.Anything).Return("", nil)
	runtime.On("Exec", mock.Anything, "hytale-x", mock.MatchedBy(func(cmd string) bool {
		return strings.HasPrefix(cmd, "ls ")
	}), mock.Anything).Return("NO_ZIP\n", nil)

	statuses := collect(t, svc.Run(context.Background(), "hytale-x", "srv1"))

	require.NotEmpty(t, statuses)
	last := statuses[len(statuses)-1]
	assert.Equal(t, domain.DownloadDone, last.Status)
	assert.Contains(t, last.Message, "authentication")
}

func TestService_Run_ExecFailureEndsError(t *testing.T) {
	svc, runtime := newTestService(t)

	runtime.On("Exec", mock.Anything, "hytale-x", "rm -f /opt/hytale/.download_attempted", mock.Anything).
		Return("", assert.AnError)

	statuses := collect(t, svc.Run(context.Background(), "hytale-x", "srv1"))

	require.Len(t, statuses, 2)
	assert.Equal(t, domain.DownloadStarting, statuses[0].Status)
	assert.Equal(t, domain.DownloadError, statuses[1].Status)
}

func TestClassify(t *testing.T) {
	t.Run("auth hints", func(t *testing.T) {
		for _, text := range []string{
			"Visit https://oauth.accounts.hytale.com/device",
			"Enter user_code ABCD-1234",
			"Authorization code required",
		} {
			status := Classify(text)
			assert.Equal(t, domain.DownloadAuthRequired, status.Status, text)
			assert.Equal(t, text, status.Message)
		}
	})

	t.Run("auth hint wins over forbidden", func(t *testing.T) {
		status := Classify("got 403, visit oauth.accounts.hytale.com to re-authenticate")
		assert.Equal(t, domain.DownloadAuthRequired, status.Status)
	})

	t.Run("forbidden", func(t *testing.T) {
		assert.Equal(t, domain.DownloadError, Classify("HTTP 403 from CDN").Status)
		assert.Equal(t, domain.DownloadError, Classify("Forbidden").Status)
	})

	t.Run("plain output", func(t *testing.T) {
		status := Classify("Downloading 42%")
		assert.Equal(t, domain.DownloadOutput, status.Status)
		assert.Equal(t, "Downloading 42%", status.Message)
	})
}
