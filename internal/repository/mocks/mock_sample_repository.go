package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"voicebank/internal/model"
	"voicebank/internal/repository"
)

type MockSampleRepository struct {
	mock.Mock
}

func (m *MockSampleRepository) Append(ctx context.Context, s *model.Sample) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockSampleRepository) Stats(ctx context.Context) (*repository.DatasetStats, error) {
	args := m.Called(ctx)
	if stats, ok := args.Get(0).(*repository.DatasetStats); ok {
		return stats, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSampleRepository) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Sample], error) {
	args := m.Called(ctx, pq)
	if res, ok := args.Get(0).(*repository.PageResult[model.Sample]); ok {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}
