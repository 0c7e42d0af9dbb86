package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"voicebank/internal/model"
	"voicebank/internal/service"
)

type MockSampleService struct {
	mock.Mock
}

func (m *MockSampleService) Submit(ctx context.Context, r io.Reader, size int64, text, language, environment string) (*model.Sample, error) {
	args := m.Called(ctx, r, size, text, language, environment)
	if s, ok := args.Get(0).(*model.Sample); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSampleService) Stats(ctx context.Context) (*service.StatsResult, error) {
	args := m.Called(ctx)
	if res, ok := args.Get(0).(*service.StatsResult); ok {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSampleService) List(ctx context.Context, limit, offset int) (*service.SampleListResult, error) {
	args := m.Called(ctx, limit, offset)
	if res, ok := args.Get(0).(*service.SampleListResult); ok {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}
