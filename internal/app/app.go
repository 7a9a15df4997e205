// Package app assembles the rule store, backends and services from
// configuration. The server and the CLI share it.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"farerules/internal/config"
	"farerules/internal/domain"
	"farerules/internal/events"
	"farerules/internal/parser"
	"farerules/internal/port"
	"farerules/internal/repository/postgres"
	"farerules/internal/repository/sqlite"
	"farerules/internal/rulestore"
	"farerules/internal/service"
	"farerules/internal/storage/file"
	s3storage "farerules/internal/storage/s3"
	"farerules/internal/tables"
	"farerules/internal/textract"
)

// App holds the wired services.
type App struct {
	Config *config.Config
	Tables *tables.Tables
	Store  *rulestore.Store
	Ingest service.IngestService
	Quote  service.QuoteService
	Rules  service.RuleService

	closers []func() error
}

// New builds every dependency named by cfg. Close releases them.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &App{Config: cfg}

	t, err := tables.Load(cfg.Tables.Path)
	if err != nil {
		return nil, fmt.Errorf("loading tables: %w", err)
	}
	a.Tables = t

	var objects port.ObjectStorage
	if cfg.Rules.Backend == string(domain.RuleBackendS3) || cfg.Archive.Enabled {
		objects, err = s3storage.NewS3Client(ctx, &cfg.S3)
		if err != nil {
			return nil, fmt.Errorf("initializing S3 client: %w", err)
		}
	}

	blob, err := a.openBlob(ctx, objects)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.Store = rulestore.New(blob,
		rulestore.WithCacheTTL(cfg.Rules.CacheTTL),
		rulestore.WithLogger(logger.Named("rulestore")),
	)

	publisher := events.NewNoopPublisher()
	if cfg.Events.NATSURL != "" {
		publisher, err = events.NewNATSPublisher(cfg.Events.NATSURL, cfg.Events.Subject)
		if err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("connecting to NATS: %w", err)
		}
	}
	a.closers = append(a.closers, publisher.Close)

	var archive port.ObjectStorage
	if cfg.Archive.Enabled {
		archive = objects
	}

	a.Ingest = service.NewIngestService(
		textract.New(),
		parser.New(t),
		a.Store,
		publisher,
		archive,
		service.IngestConfig{
			DefaultPOS:    t.DefaultPOS,
			MaxFileSize:   cfg.Ingest.MaxFileSizeBytes(),
			ArchiveBucket: cfg.S3.Bucket,
			ArchivePrefix: cfg.Archive.Prefix,
		},
		logger.Named("ingest"),
	)
	a.Quote = service.NewQuoteService(a.Store, service.QuoteDefaults{
		Currency:  t.DefaultCurrency,
		POS:       t.DefaultPOS,
		MarkupPct: decimal.NewFromFloat(t.DefaultMarkupPct),
	})
	a.Rules = service.NewRuleService(a.Store)

	logger.Info("rule store ready",
		zap.String("backend", cfg.Rules.Backend),
		zap.String("location", a.Store.Describe()),
		zap.Bool("archive", cfg.Archive.Enabled),
		zap.Bool("events", cfg.Events.NATSURL != ""),
	)
	return a, nil
}

func (a *App) openBlob(ctx context.Context, objects port.ObjectStorage) (port.BlobStore, error) {
	cfg := a.Config
	switch domain.RuleBackend(cfg.Rules.Backend) {
	case domain.RuleBackendFile:
		return file.NewBlobStore(cfg.Rules.Path), nil
	case domain.RuleBackendS3:
		return s3storage.NewBlobStore(objects, cfg.S3.Bucket, cfg.Rules.S3Key), nil
	case domain.RuleBackendPostgres:
		db, err := postgres.NewDB(&cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		return postgres.NewRuleBlobRepo(db, postgres.DefaultRuleDocument), nil
	case domain.RuleBackendSQLite:
		db, err := sqlite.Open(ctx, cfg.SQLite.Path)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		return sqlite.NewRuleBlobRepo(db, postgres.DefaultRuleDocument), nil
	default:
		return nil, fmt.Errorf("unknown rules backend %q", cfg.Rules.Backend)
	}
}

// Close releases connections in reverse order of opening.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
