package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"wallapi/internal/model"
)

type MockFileService struct {
	mock.Mock
}

func (m *MockFileService) List(ctx context.Context, dir string) ([]model.FileEntry, error) {
	args := m.Called(ctx, dir)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.FileEntry), args.Error(1)
}

func (m *MockFileService) Mkdir(ctx context.Context, parent, name string) (*model.FileEntry, error) {
	args := m.Called(ctx, parent, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FileEntry), args.Error(1)
}

func (m *MockFileService) Delete(ctx context.Context, p string) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockFileService) Upload(ctx context.Context, dir, filename string, size int64, r io.Reader) (*model.FileEntry, error) {
	args := m.Called(ctx, dir, filename, size, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FileEntry), args.Error(1)
}
