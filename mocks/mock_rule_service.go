package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"farerules/internal/domain"
)

// MockRuleService is a mock implementation of service.RuleService.
type MockRuleService struct {
	mock.Mock
}

func (m *MockRuleService) List(ctx context.Context) (domain.RuleSet, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.RuleSet), args.Error(1)
}

func (m *MockRuleService) Export(ctx context.Context, format domain.ExportFormat, w io.Writer) error {
	args := m.Called(ctx, format, w)
	return args.Error(0)
}

func (m *MockRuleService) Import(ctx context.Context, r io.Reader) (int, error) {
	args := m.Called(ctx, r)
	return args.Int(0), args.Error(1)
}

func (m *MockRuleService) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
