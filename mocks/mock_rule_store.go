package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"farerules/internal/domain"
)

// MockRuleStore is a mock implementation of port.RuleStore.
type MockRuleStore struct {
	mock.Mock
}

func (m *MockRuleStore) Upsert(ctx context.Context, ticket domain.ParsedTicket, pos string) (domain.RuleKey, domain.RuleRecord, error) {
	args := m.Called(ctx, ticket, pos)
	return args.Get(0).(domain.RuleKey), args.Get(1).(domain.RuleRecord), args.Error(2)
}

func (m *MockRuleStore) Lookup(ctx context.Context, key domain.RuleKey) (string, domain.RuleRecord, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Get(1).(domain.RuleRecord), args.Error(2)
}

func (m *MockRuleStore) All(ctx context.Context) (domain.RuleSet, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.RuleSet), args.Error(1)
}

func (m *MockRuleStore) Import(ctx context.Context, set domain.RuleSet) (int, error) {
	args := m.Called(ctx, set)
	return args.Int(0), args.Error(1)
}

func (m *MockRuleStore) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
