package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"farerules/internal/service"
)

// QuoteHandler handles fare quote endpoints.
type QuoteHandler struct {
	quoteService service.QuoteService
}

// NewQuoteHandler creates a new QuoteHandler.
func NewQuoteHandler(quoteService service.QuoteService) *QuoteHandler {
	return &QuoteHandler{quoteService: quoteService}
}

// Quote handles POST /api/v1/quote
// @Summary Quote a fare
// @Description Re-derive a selling-platform total and a marked-up final total from the stored rule
// @Tags quotes
// @Accept json
// @Produce json
// @Param body body QuoteRequest true "Quote request"
// @Success 200 {object} Response{data=domain.FareQuote} "Fare quote"
// @Failure 400 {object} ErrorResponseBody "Invalid JSON or missing field"
// @Router /quote [post]
func (h *QuoteHandler) Quote(c *gin.Context) {
	var req QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_JSON", "request body must be a JSON object")
		return
	}

	if field := req.missingField(); field != "" {
		RespondError(c, http.StatusBadRequest, "MISSING_FIELD", "missing_field:"+field)
		return
	}

	input := service.QuoteInput{
		Carrier:  *req.Carrier,
		Origin:   *req.Origin,
		Dest:     *req.Dest,
		BaseFare: *req.BaseFare,
	}
	if req.Currency != nil {
		input.Currency = *req.Currency
	}
	if req.POS != nil {
		input.POS = *req.POS
	}
	if req.MarkupPct != nil {
		input.MarkupPct = decimal.NewNullDecimal(*req.MarkupPct)
	}

	quote, err := h.quoteService.Quote(c.Request.Context(), input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, quote)
}

func (r *QuoteRequest) missingField() string {
	for _, f := range []struct {
		name  string
		value *string
	}{
		{"carrier", r.Carrier}, {"origin", r.Origin}, {"dest", r.Dest},
	} {
		if f.value == nil || strings.TrimSpace(*f.value) == "" {
			return f.name
		}
	}
	if r.BaseFare == nil {
		return "base_fare"
	}
	return ""
}
