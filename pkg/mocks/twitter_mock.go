package mocks

import (
	"context"

	"github.com/dukex/flywheel/pkg/twitter"
	"github.com/stretchr/testify/mock"
)

// MockTwitter is a mock implementation of services.Twitter interface.
type MockTwitter struct {
	mock.Mock
}

func (m *MockTwitter) Publish(ctx context.Context, req twitter.PublishRequest) (*twitter.PublishResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*twitter.PublishResult), args.Error(1)
}

func (m *MockTwitter) Engage(ctx context.Context, requests []twitter.EngagementRequest) ([]twitter.EngagementResult, error) {
	args := m.Called(ctx, requests)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]twitter.EngagementResult), args.Error(1)
}

func (m *MockTwitter) SendDirectMessage(ctx context.Context, req twitter.DirectMessageRequest) (*twitter.DirectMessageResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*twitter.DirectMessageResult), args.Error(1)
}
