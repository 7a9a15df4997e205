package domain

import "errors"

var (
	ErrNotFound            = errors.New("resource not found")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrEmptyDocument       = errors.New("document is empty")
	ErrInvalidRuleKey      = errors.New("invalid rule key")
	ErrInvalidQuote        = errors.New("invalid quote request")
	ErrInvalidTables       = errors.New("invalid configuration tables")
	ErrUnsupportedFormat   = errors.New("unsupported export format")
	ErrTextExtraction      = errors.New("document text extraction failed")
)

// MissingFieldError reports a mandatory request field that was absent.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return "missing_field:" + e.Field
}

// Is makes a MissingFieldError match ErrInvalidQuote.
func (e *MissingFieldError) Is(target error) bool {
	return target == ErrInvalidQuote
}
