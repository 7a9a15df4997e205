package handler

import "github.com/shopspring/decimal"

// Swagger type definitions for API documentation.
// These types are used by swag to generate OpenAPI documentation.

// --- Request Types ---

// ParseRequest represents the ticket parse request body.
type ParseRequest struct {
	Text *string `json:"text" example:"AIR NIUGINI PX 100 POM LAE FARE PGK 238.00 TAX PGK 22.80GC"`
}

// QuoteRequest represents the fare quote request body. Absent optional fields
// fall back to the configured defaults.
type QuoteRequest struct {
	Carrier   *string          `json:"carrier" example:"PX"`
	Origin    *string          `json:"origin" example:"POM"`
	Dest      *string          `json:"dest" example:"LAE"`
	BaseFare  *decimal.Decimal `json:"base_fare" swaggertype:"number" example:"238.00"`
	Currency  *string          `json:"currency,omitempty" example:"PGK"`
	POS       *string          `json:"pos,omitempty" example:"PG"`
	MarkupPct *decimal.Decimal `json:"markup_pct,omitempty" swaggertype:"number" example:"8.8"`
}

// --- Response Types ---

// TextResponse represents extracted document text.
type TextResponse struct {
	Text      string `json:"text"`
	Length    int    `json:"length" example:"2431"`
	Truncated bool   `json:"truncated" example:"false"`
}

// ImportResponse represents the result of a rule workbook import.
type ImportResponse struct {
	Imported int `json:"imported" example:"12"`
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status string `json:"status" example:"ok"`
	Error  string `json:"error,omitempty" example:"rule store not readable"`
}

// --- Generic Response Wrappers ---

// Response is the generic success envelope.
type Response struct {
	Success bool        `json:"success" example:"true"`
	Data    interface{} `json:"data"`
}

// ErrorResponseBody is the error envelope.
type ErrorResponseBody struct {
	Success bool     `json:"success" example:"false"`
	Error   APIError `json:"error"`
}
