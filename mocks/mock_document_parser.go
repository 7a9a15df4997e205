package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"farerules/internal/domain"
	"farerules/internal/port"
)

// MockTextExtractor is a mock implementation of port.TextExtractor.
type MockTextExtractor struct {
	mock.Mock
}

func (m *MockTextExtractor) Extract(ctx context.Context, input port.ExtractInput) (string, error) {
	args := m.Called(ctx, input)
	return args.String(0), args.Error(1)
}

// MockTicketParser is a mock implementation of port.TicketParser.
type MockTicketParser struct {
	mock.Mock
}

func (m *MockTicketParser) Parse(text string) domain.ParsedTicket {
	args := m.Called(text)
	return args.Get(0).(domain.ParsedTicket)
}
