package domain

// FileType represents the document types accepted for ingestion.
type FileType string

const (
	FileTypePDF  FileType = "pdf"
	FileTypeText FileType = "txt"
)

// AllowedExtensions maps file extensions (without dot) to FileType.
var AllowedExtensions = map[string]FileType{
	"pdf": FileTypePDF,
	"txt": FileTypeText,
}

// AllowedContentTypes maps FileType to its MIME content type.
var AllowedContentTypes = map[FileType]string{
	FileTypePDF:  "application/pdf",
	FileTypeText: "text/plain",
}

// ExportFormat selects the rule export encoding.
type ExportFormat string

const (
	ExportCSV  ExportFormat = "csv"
	ExportXLSX ExportFormat = "xlsx"
)

// RuleBackend names a durable store for the rule set.
type RuleBackend string

const (
	RuleBackendFile     RuleBackend = "file"
	RuleBackendS3       RuleBackend = "s3"
	RuleBackendPostgres RuleBackend = "postgres"
	RuleBackendSQLite   RuleBackend = "sqlite"
)
