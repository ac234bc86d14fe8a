package mocks

import (
	"context"

	"github.com/dukex/flywheel/pkg/generator"
	"github.com/stretchr/testify/mock"
)

// MockContentGenerator is a mock implementation of services.ContentGenerator interface.
type MockContentGenerator struct {
	mock.Mock
}

func (m *MockContentGenerator) Generate(ctx context.Context, req generator.Request) (*generator.Result, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*generator.Result), args.Error(1)
}
