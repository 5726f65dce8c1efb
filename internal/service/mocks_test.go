package service

import (
	"GophBox/internal/blob"
	"GophBox/internal/model"
	"GophBox/internal/repo"
	"context"
	"io"

	"github.com/stretchr/testify/mock"
)

type mockFileRepo struct{ mock.Mock }

func (m *mockFileRepo) ListByParent(ctx context.Context, userID string, parentID *string) ([]model.FileEntry, error) {
	args := m.Called(ctx, userID, parentID)
	if v, ok := args.Get(0).([]model.FileEntry); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockFileRepo) ListTrashed(ctx context.Context, userID string) ([]model.FileEntry, error) {
	args := m.Called(ctx, userID)
	if v, ok := args.Get(0).([]model.FileEntry); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockFileRepo) GetByID(ctx context.Context, userID, id string) (*model.FileEntry, error) {
	args := m.Called(ctx, userID, id)
	if v, ok := args.Get(0).(*model.FileEntry); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockFileRepo) Create(ctx context.Context, entry *model.FileEntry, maxDepth int) error {
	return m.Called(ctx, entry, maxDepth).Error(0)
}

func (m *mockFileRepo) Delete(ctx context.Context, userID, id string) error {
	return m.Called(ctx, userID, id).Error(0)
}

func (m *mockFileRepo) DeleteTrashed(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockFileRepo) SetStarred(ctx context.Context, userID, id string, starred bool) (*model.FileEntry, error) {
	args := m.Called(ctx, userID, id, starred)
	if v, ok := args.Get(0).(*model.FileEntry); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockFileRepo) SetTrashed(ctx context.Context, userID, id string, trashed bool) (*model.FileEntry, error) {
	args := m.Called(ctx, userID, id, trashed)
	if v, ok := args.Get(0).(*model.FileEntry); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockFileRepo) Move(ctx context.Context, userID, id string, parentID *string, maxDepth int) (*model.FileEntry, error) {
	args := m.Called(ctx, userID, id, parentID, maxDepth)
	if v, ok := args.Get(0).(*model.FileEntry); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

var _ repo.FileRepository = (*mockFileRepo)(nil)

type mockStore struct{ mock.Mock }

func (m *mockStore) Upload(ctx context.Context, in blob.UploadInput) (*blob.UploadResult, error) {
	if in.Body != nil {
		_, _ = io.Copy(io.Discard, in.Body)
	}
	args := m.Called(ctx, in)
	if v, ok := args.Get(0).(*blob.UploadResult); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStore) Find(ctx context.Context, prefix, name string) ([]blob.Object, error) {
	args := m.Called(ctx, prefix, name)
	if v, ok := args.Get(0).([]blob.Object); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStore) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

var _ blob.Store = (*mockStore)(nil)

func ptrStr(s string) *string { return &s }
