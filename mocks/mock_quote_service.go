package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"farerules/internal/domain"
	"farerules/internal/service"
)

// MockQuoteService is a mock implementation of service.QuoteService.
type MockQuoteService struct {
	mock.Mock
}

func (m *MockQuoteService) Quote(ctx context.Context, input service.QuoteInput) (*domain.FareQuote, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FareQuote), args.Error(1)
}
