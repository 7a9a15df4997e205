package handler

import (
	"mime/multipart"
	"net/http"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"farerules/internal/service"
)

// MaxTextPreview caps the characters returned by the text endpoint.
const MaxTextPreview = 10000

// TicketHandler handles ticket ingestion and parsing endpoints.
type TicketHandler struct {
	ingestService service.IngestService
}

// NewTicketHandler creates a new TicketHandler.
func NewTicketHandler(ingestService service.IngestService) *TicketHandler {
	return &TicketHandler{ingestService: ingestService}
}

// Ingest handles POST /api/v1/tickets/ingest
// @Summary Ingest a ticket document
// @Description Extract, parse and fold a ticket (PDF or text) into the rule store
// @Tags tickets
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Ticket document (PDF or TXT)"
// @Param pos formData string false "Point of sale, defaults to the configured POS"
// @Param X-Secret header string true "Ingest secret"
// @Success 200 {object} Response{data=domain.IngestResult} "Ticket ingested"
// @Failure 400 {object} ErrorResponseBody "Missing file or unsupported type"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 413 {object} ErrorResponseBody "File too large"
// @Router /tickets/ingest [post]
func (h *TicketHandler) Ingest(c *gin.Context) {
	input, ok := uploadInput(c)
	if !ok {
		return
	}
	defer closeUpload(input)

	result, err := h.ingestService.Ingest(c.Request.Context(), input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, result)
}

// Text handles POST /api/v1/tickets/text
// @Summary Show extracted ticket text
// @Description Return the text the parser would see for a document, truncated
// @Tags tickets
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Ticket document (PDF or TXT)"
// @Param X-Secret header string true "Ingest secret"
// @Success 200 {object} Response{data=TextResponse} "Extracted text"
// @Failure 400 {object} ErrorResponseBody "Missing file or unsupported type"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Router /tickets/text [post]
func (h *TicketHandler) Text(c *gin.Context) {
	input, ok := uploadInput(c)
	if !ok {
		return
	}
	defer closeUpload(input)

	text, err := h.ingestService.ExtractText(c.Request.Context(), input)
	if err != nil {
		HandleError(c, err)
		return
	}

	length := utf8.RuneCountInString(text)
	resp := TextResponse{Text: text, Length: length}
	if length > MaxTextPreview {
		resp.Text = string([]rune(text)[:MaxTextPreview])
		resp.Truncated = true
	}
	RespondOK(c, resp)
}

// Parse handles POST /api/v1/tickets/parse
// @Summary Parse ticket text
// @Description Dry run of the ticket parser; the rule store is not touched
// @Tags tickets
// @Accept json
// @Produce json
// @Param body body ParseRequest true "Ticket text"
// @Param X-Secret header string true "Ingest secret"
// @Success 200 {object} Response{data=domain.ParsedTicket} "Parsed ticket"
// @Failure 400 {object} ErrorResponseBody "Invalid JSON or missing text"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Router /tickets/parse [post]
func (h *TicketHandler) Parse(c *gin.Context) {
	var req ParseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_JSON", "request body must be a JSON object")
		return
	}
	if req.Text == nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FIELD", "missing_field:text")
		return
	}

	RespondOK(c, h.ingestService.Parse(c.Request.Context(), *req.Text))
}

func uploadInput(c *gin.Context) (service.TicketUploadInput, bool) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return service.TicketUploadInput{}, false
	}
	return service.TicketUploadInput{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
		POS:         c.PostForm("pos"),
	}, true
}

func closeUpload(input service.TicketUploadInput) {
	if f, ok := input.Body.(multipart.File); ok {
		_ = f.Close()
	}
}
