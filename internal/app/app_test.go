package app_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"farerules/internal/app"
	"farerules/internal/config"
	"farerules/internal/service"
)

const receipt = `PNG AIR LIMITED
ELECTRONIC TICKET RECEIPT
Carrier CG
From MAG to WWK
Base Fare      PGK 238.00
Taxes PGK 22.80GC PGK 30.00YQ
XT 15.50
Total PGK 306.30
`

func testConfig(t *testing.T, backend string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		Rules:  config.RulesConfig{Backend: backend, Path: filepath.Join(dir, "rules.json")},
		SQLite: config.SQLiteConfig{Path: filepath.Join(dir, "rules.db")},
		Ingest: config.IngestConfig{MaxFileSizeMB: 1},
		Events: config.EventsConfig{Subject: "farerules.rule.updated"},
	}
}

func TestNew_LocalBackends(t *testing.T) {
	for _, backend := range []string{"file", "sqlite"} {
		t.Run(backend, func(t *testing.T) {
			ctx := context.Background()
			a, err := app.New(ctx, testConfig(t, backend), zap.NewNop())
			require.NoError(t, err)
			defer func() { assert.NoError(t, a.Close()) }()

			require.NoError(t, a.Rules.Ping(ctx))

			result, err := a.Ingest.Ingest(ctx, service.TicketUploadInput{
				FileName: "ticket.txt",
				Body:     strings.NewReader(receipt),
			})
			require.NoError(t, err)
			require.NotNil(t, result.RuleKey)

			set, err := a.Rules.List(ctx)
			require.NoError(t, err)
			assert.Contains(t, set, *result.RuleKey)
		})
	}
}

func TestNew_MissingTablesFile(t *testing.T) {
	cfg := testConfig(t, "file")
	cfg.Tables.Path = filepath.Join(t.TempDir(), "nope.yaml")

	_, err := app.New(context.Background(), cfg, nil)
	assert.Error(t, err)
}

func TestNew_UnknownBackend(t *testing.T) {
	_, err := app.New(context.Background(), testConfig(t, "redis"), nil)
	assert.Error(t, err)
}
