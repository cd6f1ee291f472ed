// Package mocks provides testify mocks for the output ports.
package mocks

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"

	"hytalepanel/internal/domain"
)

type testingT interface {
	mock.TestingT
	Cleanup(func())
}

// MockContainerRuntime is a mock implementation of out.ContainerRuntime.
type MockContainerRuntime struct {
	mock.Mock
}

func NewMockContainerRuntime(t testingT) *MockContainerRuntime {
	m := &MockContainerRuntime{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockContainerRuntime) Inspect(ctx context.Context, name string) (domain.ContainerState, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(domain.ContainerState), args.Error(1)
}

func (m *MockContainerRuntime) Exec(ctx context.Context, name, command string, timeout time.Duration) (string, error) {
	args := m.Called(ctx, name, command, timeout)
	return args.String(0), args.Error(1)
}

func (m *MockContainerRuntime) ExecStream(ctx context.Context, name, command string) (io.ReadCloser, error) {
	args := m.Called(ctx, name, command)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *MockContainerRuntime) StreamLogs(ctx context.Context, name string, tail int) (io.ReadCloser, error) {
	args := m.Called(ctx, name, tail)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *MockContainerRuntime) LogHistory(ctx context.Context, name string, tail int) ([]string, error) {
	args := m.Called(ctx, name, tail)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockContainerRuntime) GetArchive(ctx context.Context, name, path string) (io.ReadCloser, error) {
	args := m.Called(ctx, name, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *MockContainerRuntime) PutArchive(ctx context.Context, name, path string, content io.Reader) error {
	args := m.Called(ctx, name, path, content)
	return args.Error(0)
}

func (m *MockContainerRuntime) Start(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

func (m *MockContainerRuntime) Stop(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

func (m *MockContainerRuntime) Restart(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

func (m *MockContainerRuntime) Remove(ctx context.Context, name string, removeVolumes bool) error {
	args := m.Called(ctx, name, removeVolumes)
	return args.Error(0)
}

// MockModCatalog is a mock implementation of out.ModCatalog.
type MockModCatalog struct {
	mock.Mock
}

func NewMockModCatalog(t testingT) *MockModCatalog {
	m := &MockModCatalog{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockModCatalog) Search(ctx context.Context, params domain.ModSearchParams) (*domain.ModSearchResult, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ModSearchResult), args.Error(1)
}

func (m *MockModCatalog) GetProject(ctx context.Context, projectID string) (*domain.ModProject, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ModProject), args.Error(1)
}

func (m *MockModCatalog) DownloadVersion(ctx context.Context, projectID, versionName string) ([]byte, string, error) {
	args := m.Called(ctx, projectID, versionName)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).([]byte), args.String(1), args.Error(2)
}

func (m *MockModCatalog) Classifications(ctx context.Context) ([]domain.ModClassification, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ModClassification), args.Error(1)
}

func (m *MockModCatalog) IsConfigured() bool {
	args := m.Called()
	return args.Bool(0)
}

// MockServerStore is a mock implementation of out.ServerStore.
type MockServerStore struct {
	mock.Mock
}

func NewMockServerStore(t testingT) *MockServerStore {
	m := &MockServerStore{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockServerStore) Load(ctx context.Context) (domain.ServerList, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.ServerList), args.Error(1)
}

func (m *MockServerStore) Save(ctx context.Context, list domain.ServerList) error {
	args := m.Called(ctx, list)
	return args.Error(0)
}

func (m *MockServerStore) EnsureServerDirs(ctx context.Context, serverID string) error {
	args := m.Called(ctx, serverID)
	return args.Error(0)
}

func (m *MockServerStore) RemoveServerDirs(ctx context.Context, serverID string) error {
	args := m.Called(ctx, serverID)
	return args.Error(0)
}

func (m *MockServerStore) ReadCompose(ctx context.Context, serverID string) ([]byte, error) {
	args := m.Called(ctx, serverID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockServerStore) WriteCompose(ctx context.Context, serverID string, content []byte) error {
	args := m.Called(ctx, serverID, content)
	return args.Error(0)
}

func (m *MockServerStore) DataPath(serverID string) string {
	args := m.Called(serverID)
	return args.String(0)
}

// MockComposeRunner is a mock implementation of out.ComposeRunner.
type MockComposeRunner struct {
	mock.Mock
}

func NewMockComposeRunner(t testingT) *MockComposeRunner {
	m := &MockComposeRunner{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockComposeRunner) Up(ctx context.Context, serverID string) error {
	args := m.Called(ctx, serverID)
	return args.Error(0)
}

func (m *MockComposeRunner) Down(ctx context.Context, serverID string, removeVolumes bool) error {
	args := m.Called(ctx, serverID, removeVolumes)
	return args.Error(0)
}

func (m *MockComposeRunner) Restart(ctx context.Context, serverID string) error {
	args := m.Called(ctx, serverID)
	return args.Error(0)
}
