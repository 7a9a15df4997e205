package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"farerules/internal/domain"
	"farerules/internal/service"
)

// MockIngestService is a mock implementation of service.IngestService.
type MockIngestService struct {
	mock.Mock
}

func (m *MockIngestService) Ingest(ctx context.Context, input service.TicketUploadInput) (*domain.IngestResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.IngestResult), args.Error(1)
}

func (m *MockIngestService) ExtractText(ctx context.Context, input service.TicketUploadInput) (string, error) {
	args := m.Called(ctx, input)
	return args.String(0), args.Error(1)
}

func (m *MockIngestService) Parse(ctx context.Context, text string) domain.ParsedTicket {
	args := m.Called(ctx, text)
	return args.Get(0).(domain.ParsedTicket)
}
