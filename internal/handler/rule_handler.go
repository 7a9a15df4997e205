package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"farerules/internal/csvexport"
	"farerules/internal/domain"
	"farerules/internal/service"
)

var exportContentTypes = map[domain.ExportFormat]string{
	domain.ExportCSV:  "text/csv; charset=utf-8",
	domain.ExportXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// RuleHandler handles rule set endpoints.
type RuleHandler struct {
	ruleService service.RuleService
	now         func() time.Time
}

// NewRuleHandler creates a new RuleHandler.
func NewRuleHandler(ruleService service.RuleService) *RuleHandler {
	return &RuleHandler{ruleService: ruleService, now: time.Now}
}

// List handles GET /api/v1/rules
// @Summary List rules
// @Description Return the whole rule set keyed by CARRIER|ORIGIN-DEST|POS|CURRENCY
// @Tags rules
// @Produce json
// @Success 200 {object} Response{data=domain.RuleSet} "Rule set"
// @Failure 500 {object} ErrorResponseBody "Rule store unavailable"
// @Router /rules [get]
func (h *RuleHandler) List(c *gin.Context) {
	set, err := h.ruleService.List(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, set)
}

// Export handles GET /api/v1/rules/export
// @Summary Export rules
// @Description Download the rule set as CSV (UTF-8 BOM) or XLSX
// @Tags rules
// @Produce text/csv
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param format query string false "csv or xlsx" default(csv)
// @Success 200 {file} file "Rule export"
// @Failure 400 {object} ErrorResponseBody "Unsupported format"
// @Router /rules/export [get]
func (h *RuleHandler) Export(c *gin.Context) {
	format := domain.ExportFormat(strings.ToLower(c.DefaultQuery("format", string(domain.ExportCSV))))
	contentType, ok := exportContentTypes[format]
	if !ok {
		HandleError(c, fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, format))
		return
	}

	var buf bytes.Buffer
	if err := h.ruleService.Export(c.Request.Context(), format, &buf); err != nil {
		HandleError(c, err)
		return
	}

	filename := csvexport.BuildFilename("fare_rules", format, h.now())
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

// Import handles POST /api/v1/rules/import
// @Summary Import rules
// @Description Merge rules from a workbook in the export layout
// @Tags rules
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "XLSX workbook"
// @Param X-Secret header string true "Ingest secret"
// @Success 200 {object} Response{data=ImportResponse} "Rules imported"
// @Failure 400 {object} ErrorResponseBody "Missing file or bad rule key"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Router /rules/import [post]
func (h *RuleHandler) Import(c *gin.Context) {
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return
	}
	defer func() { _ = file.Close() }()

	n, err := h.ruleService.Import(c.Request.Context(), file)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, ImportResponse{Imported: n})
}
