// Package mocks provides testify mocks for the input ports.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"hytalepanel/internal/boundaries/in"
	"hytalepanel/internal/domain"
)

type testingT interface {
	mock.TestingT
	Cleanup(func())
}

// MockServerService is a mock implementation of in.ServerService.
type MockServerService struct {
	mock.Mock
}

func NewMockServerService(t testingT) *MockServerService {
	m := &MockServerService{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockServerService) List(ctx context.Context) ([]domain.Server, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Server), args.Error(1)
}

func (m *MockServerService) Get(ctx context.Context, id string) (*domain.Server, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Server), args.Error(1)
}

func (m *MockServerService) Create(ctx context.Context, params in.CreateServerParams) (*domain.Server, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Server), args.Error(1)
}

func (m *MockServerService) Update(ctx context.Context, id string, params in.UpdateServerParams) (*domain.Server, error) {
	args := m.Called(ctx, id, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Server), args.Error(1)
}

func (m *MockServerService) Delete(ctx context.Context, id string, removeData bool) error {
	args := m.Called(ctx, id, removeData)
	return args.Error(0)
}

func (m *MockServerService) Start(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockServerService) Stop(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockServerService) Restart(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockServerService) GetCompose(ctx context.Context, id string) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *MockServerService) SaveCompose(ctx context.Context, id string, content string) error {
	args := m.Called(ctx, id, content)
	return args.Error(0)
}

func (m *MockServerService) RegenerateCompose(ctx context.Context, id string) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

// MockFileService is a mock implementation of in.FileService.
type MockFileService struct {
	mock.Mock
}

func NewMockFileService(t testingT) *MockFileService {
	m := &MockFileService{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockFileService) List(ctx context.Context, serverID, dirPath string) ([]domain.FileEntry, error) {
	args := m.Called(ctx, serverID, dirPath)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FileEntry), args.Error(1)
}

func (m *MockFileService) Read(ctx context.Context, serverID, filePath string) (string, error) {
	args := m.Called(ctx, serverID, filePath)
	return args.String(0), args.Error(1)
}

func (m *MockFileService) Write(ctx context.Context, serverID, filePath, content string) error {
	args := m.Called(ctx, serverID, filePath, content)
	return args.Error(0)
}

func (m *MockFileService) Mkdir(ctx context.Context, serverID, dirPath string) error {
	args := m.Called(ctx, serverID, dirPath)
	return args.Error(0)
}

func (m *MockFileService) Delete(ctx context.Context, serverID, itemPath string) error {
	args := m.Called(ctx, serverID, itemPath)
	return args.Error(0)
}

func (m *MockFileService) Rename(ctx context.Context, serverID, oldPath, newPath string) error {
	args := m.Called(ctx, serverID, oldPath, newPath)
	return args.Error(0)
}

func (m *MockFileService) Backup(ctx context.Context, serverID, filePath string) (string, error) {
	args := m.Called(ctx, serverID, filePath)
	return args.String(0), args.Error(1)
}

func (m *MockFileService) CheckServerFiles(ctx context.Context, serverID string) domain.ServerFiles {
	args := m.Called(ctx, serverID)
	return args.Get(0).(domain.ServerFiles)
}

func (m *MockFileService) CheckAuth(ctx context.Context, serverID string) bool {
	args := m.Called(ctx, serverID)
	return args.Bool(0)
}

func (m *MockFileService) WipeData(ctx context.Context, serverID string) error {
	args := m.Called(ctx, serverID)
	return args.Error(0)
}

// MockModService is a mock implementation of in.ModService.
type MockModService struct {
	mock.Mock
}

func NewMockModService(t testingT) *MockModService {
	m := &MockModService{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockModService) List(ctx context.Context, containerName string) ([]domain.InstalledMod, error) {
	args := m.Called(ctx, containerName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.InstalledMod), args.Error(1)
}

func (m *MockModService) Get(ctx context.Context, containerName, modID string) (*domain.InstalledMod, error) {
	args := m.Called(ctx, containerName, modID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InstalledMod), args.Error(1)
}

func (m *MockModService) Install(ctx context.Context, containerName string, payload []byte, meta domain.ModMetadata) (*domain.InstalledMod, error) {
	args := m.Called(ctx, containerName, payload, meta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InstalledMod), args.Error(1)
}

func (m *MockModService) Uninstall(ctx context.Context, containerName, modID string) error {
	args := m.Called(ctx, containerName, modID)
	return args.Error(0)
}

func (m *MockModService) Enable(ctx context.Context, containerName, modID string) (*domain.InstalledMod, error) {
	args := m.Called(ctx, containerName, modID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InstalledMod), args.Error(1)
}

func (m *MockModService) Disable(ctx context.Context, containerName, modID string) (*domain.InstalledMod, error) {
	args := m.Called(ctx, containerName, modID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InstalledMod), args.Error(1)
}

func (m *MockModService) CheckUpdates(ctx context.Context, containerName string) ([]domain.ModUpdate, error) {
	args := m.Called(ctx, containerName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ModUpdate), args.Error(1)
}

// MockDownloadService is a mock implementation of in.DownloadService.
type MockDownloadService struct {
	mock.Mock
}

func NewMockDownloadService(t testingT) *MockDownloadService {
	m := &MockDownloadService{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockDownloadService) Run(ctx context.Context, containerName, serverID string) <-chan domain.DownloadStatus {
	args := m.Called(ctx, containerName, serverID)
	return args.Get(0).(<-chan domain.DownloadStatus)
}

// MockUpdateService is a mock implementation of in.UpdateService.
type MockUpdateService struct {
	mock.Mock
}

func NewMockUpdateService(t testingT) *MockUpdateService {
	m := &MockUpdateService{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockUpdateService) Apply(ctx context.Context, containerName, serverID string, forward func(domain.DownloadStatus)) <-chan domain.UpdateStatus {
	args := m.Called(ctx, containerName, serverID, forward)
	return args.Get(0).(<-chan domain.UpdateStatus)
}

func (m *MockUpdateService) CheckForUpdate(ctx context.Context, serverID, containerName string) (domain.UpdateCheck, error) {
	args := m.Called(ctx, serverID, containerName)
	return args.Get(0).(domain.UpdateCheck), args.Error(1)
}

func (m *MockUpdateService) RecordDownload(ctx context.Context, containerName string) {
	m.Called(ctx, containerName)
}
