package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"farerules/internal/domain"
	"farerules/internal/port"
	"farerules/internal/textract"
)

// TicketUploadInput is the DTO for ticket document uploads.
type TicketUploadInput struct {
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
	POS         string
}

// IngestConfig holds the settings the ingest service needs.
type IngestConfig struct {
	DefaultPOS    string
	MaxFileSize   int64
	ArchiveBucket string
	ArchivePrefix string
}

// IngestService defines the ticket ingestion contract.
type IngestService interface {
	// Ingest extracts, parses and folds one ticket into the rule store.
	Ingest(ctx context.Context, input TicketUploadInput) (*domain.IngestResult, error)
	// ExtractText returns the text the parser would see for a document.
	ExtractText(ctx context.Context, input TicketUploadInput) (string, error)
	// Parse runs the parser on text without touching the rule store.
	Parse(ctx context.Context, text string) domain.ParsedTicket
}

type ingestService struct {
	extractor port.TextExtractor
	parser    port.TicketParser
	store     port.RuleStore
	publisher port.EventPublisher
	archive   port.ObjectStorage
	cfg       IngestConfig
	logger    *zap.Logger
	now       func() time.Time
}

// NewIngestService creates a new IngestService implementation. archive may be
// nil to skip copying uploads to object storage.
func NewIngestService(
	extractor port.TextExtractor,
	parser port.TicketParser,
	store port.RuleStore,
	publisher port.EventPublisher,
	archive port.ObjectStorage,
	cfg IngestConfig,
	logger *zap.Logger,
) IngestService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ingestService{
		extractor: extractor,
		parser:    parser,
		store:     store,
		publisher: publisher,
		archive:   archive,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *ingestService) Ingest(ctx context.Context, input TicketUploadInput) (*domain.IngestResult, error) {
	data, err := s.readUpload(input)
	if err != nil {
		return nil, err
	}
	log := s.logger.With(zap.String("file", input.FileName), zap.Int("bytes", len(data)))

	s.archiveUpload(ctx, input, data, log)

	text := s.extract(ctx, input, data, log)
	parsed := s.parser.Parse(text)

	pos := strings.ToUpper(strings.TrimSpace(input.POS))
	if pos == "" {
		pos = s.cfg.DefaultPOS
	}

	key, rec, err := s.store.Upsert(ctx, parsed, pos)
	if err != nil {
		return nil, fmt.Errorf("upserting rule: %w", err)
	}
	keyStr := key.String()
	log.Info("ticket ingested",
		zap.String("rule_key", keyStr),
		zap.String("carrier", string(parsed.Carrier)),
		zap.String("route", parsed.Route),
		zap.String("total", parsed.Total.StringFixed(2)),
	)

	event := domain.RuleUpdatedEvent{
		RuleKey:  keyStr,
		Record:   rec,
		Carrier:  parsed.Carrier,
		Route:    parsed.Route,
		Observed: parsed.Components.ObservedCodes(),
		Source:   input.FileName,
	}
	if err := s.publisher.PublishRuleUpdated(ctx, event); err != nil {
		log.Warn("rule event not published", zap.String("rule_key", keyStr), zap.Error(err))
	}

	return &domain.IngestResult{Parsed: parsed, RuleKey: &keyStr, UpdatedRule: rec}, nil
}

func (s *ingestService) ExtractText(ctx context.Context, input TicketUploadInput) (string, error) {
	data, err := s.readUpload(input)
	if err != nil {
		return "", err
	}
	return s.extract(ctx, input, data, s.logger.With(zap.String("file", input.FileName))), nil
}

func (s *ingestService) Parse(_ context.Context, text string) domain.ParsedTicket {
	return s.parser.Parse(text)
}

// readUpload validates the extension and size and reads the whole document.
func (s *ingestService) readUpload(input TicketUploadInput) ([]byte, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(input.FileName), "."))
	if _, ok := domain.AllowedExtensions[ext]; ext != "" && !ok {
		return nil, domain.ErrUnsupportedFileType
	}
	if s.cfg.MaxFileSize > 0 && input.Size > s.cfg.MaxFileSize {
		return nil, domain.ErrFileTooLarge
	}
	if input.Body == nil {
		return nil, domain.ErrEmptyDocument
	}

	r := input.Body
	if s.cfg.MaxFileSize > 0 {
		r = io.LimitReader(input.Body, s.cfg.MaxFileSize+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}
	if s.cfg.MaxFileSize > 0 && int64(len(data)) > s.cfg.MaxFileSize {
		return nil, domain.ErrFileTooLarge
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, domain.ErrEmptyDocument
	}
	return data, nil
}

// extract returns the document text. An unreadable PDF is parsed as raw bytes
// so the ingestion still yields sentinel values.
func (s *ingestService) extract(ctx context.Context, input TicketUploadInput, data []byte, log *zap.Logger) string {
	text, err := s.extractor.Extract(ctx, port.ExtractInput{
		FileBytes:   data,
		FileName:    input.FileName,
		ContentType: input.ContentType,
	})
	if err != nil {
		log.Warn("text extraction failed, parsing raw bytes", zap.Error(err))
		return strings.ToValidUTF8(string(data), "")
	}
	return text
}

func (s *ingestService) archiveUpload(ctx context.Context, input TicketUploadInput, data []byte, log *zap.Logger) {
	if s.archive == nil || s.cfg.ArchiveBucket == "" {
		return
	}
	fileType := textract.DetectFileType(port.ExtractInput{FileBytes: data, FileName: input.FileName, ContentType: input.ContentType})
	key := fmt.Sprintf("%s/%s/%s.%s",
		strings.Trim(s.cfg.ArchivePrefix, "/"), s.now().Format("2006-01-02"), uuid.New(), fileType)

	_, err := s.archive.Upload(ctx, port.UploadInput{
		Bucket:      s.cfg.ArchiveBucket,
		Key:         key,
		Body:        bytes.NewReader(data),
		ContentType: domain.AllowedContentTypes[fileType],
		Size:        int64(len(data)),
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		log.Warn("ticket archive failed", zap.String("key", key), zap.Error(err))
		return
	}
	log.Debug("ticket archived", zap.String("bucket", s.cfg.ArchiveBucket), zap.String("key", key))
}
