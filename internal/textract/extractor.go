// Package textract turns uploaded ticket documents into plain text.
package textract

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"farerules/internal/domain"
	"farerules/internal/port"
)

var pdfMagic = []byte("%PDF-")

type extractor struct{}

// New returns the default TextExtractor. PDFs are read with pdfcpu; anything
// else is treated as UTF-8 text.
func New() port.TextExtractor {
	return extractor{}
}

func (extractor) Extract(ctx context.Context, input port.ExtractInput) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(input.FileBytes) == 0 {
		return "", domain.ErrEmptyDocument
	}

	if DetectFileType(input) != domain.FileTypePDF {
		return strings.ToValidUTF8(string(input.FileBytes), ""), nil
	}

	text, err := extractPDF(input.FileBytes)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", domain.ErrTextExtraction, input.FileName, err)
	}
	return text, nil
}

// DetectFileType classifies a document by its leading bytes, then by its
// extension and content type.
func DetectFileType(input port.ExtractInput) domain.FileType {
	if bytes.HasPrefix(bytes.TrimLeft(input.FileBytes, "\x00\t\r\n "), pdfMagic) {
		return domain.FileTypePDF
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(input.FileName)), ".")
	if ft, ok := domain.AllowedExtensions[ext]; ok {
		return ft
	}
	if strings.HasPrefix(input.ContentType, domain.AllowedContentTypes[domain.FileTypePDF]) {
		return domain.FileTypePDF
	}
	return domain.FileTypeText
}
