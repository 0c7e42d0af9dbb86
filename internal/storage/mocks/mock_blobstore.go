package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"
)

type MockBlobStore struct {
	mock.Mock
}

func (m *MockBlobStore) Put(ctx context.Context, name string, r io.Reader, size int64) error {
	args := m.Called(ctx, name, r, size)
	return args.Error(0)
}

func (m *MockBlobStore) Get(ctx context.Context, name string) (io.ReadCloser, int64, error) {
	args := m.Called(ctx, name)
	rc, _ := args.Get(0).(io.ReadCloser)
	return rc, args.Get(1).(int64), args.Error(2)
}

func (m *MockBlobStore) Delete(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}
