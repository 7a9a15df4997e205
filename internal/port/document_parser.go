package port

import (
	"context"

	"farerules/internal/domain"
)

// ExtractInput carries an uploaded document.
type ExtractInput struct {
	FileBytes   []byte
	FileName    string
	ContentType string
}

// TextExtractor converts a binary document into plain text.
type TextExtractor interface {
	Extract(ctx context.Context, input ExtractInput) (string, error)
}

// TicketParser turns ticket text into structured fields. It never fails;
// unrecognized input yields sentinel values.
type TicketParser interface {
	Parse(text string) domain.ParsedTicket
}
