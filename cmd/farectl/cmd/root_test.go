package cmd_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farerules/cmd/farectl/cmd"
	"farerules/internal/csvexport"
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

func setup(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("FARERULES_RULES_BACKEND", "file")
	t.Setenv("FARERULES_RULES_PATH", filepath.Join(dir, "rules.json"))
	t.Setenv("FARERULES_EVENTS_NATS_URL", "")
	t.Setenv("FARERULES_ARCHIVE_ENABLED", "false")
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := cmd.NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestIngestThenQuoteAndList(t *testing.T) {
	dir := setup(t)
	ticket := filepath.Join(dir, "ticket.txt")
	require.NoError(t, os.WriteFile(ticket, []byte(receipt), 0o600))

	out, err := run(t, "ingest", ticket)
	require.NoError(t, err)
	var result map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	key, _ := result["rule_key"].(string)
	require.NotEmpty(t, key)

	out, err = run(t, "rules", "list")
	require.NoError(t, err)
	assert.Contains(t, out, key)

	out, err = run(t, "quote", "--carrier", "CG", "--origin", "MAG", "--dest", "WWK", "--base-fare", "100", "--markup", "0")
	require.NoError(t, err)
	var quote map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &quote))
	assert.Equal(t, key, quote["rule_key"])
}

func TestParseDoesNotWrite(t *testing.T) {
	dir := setup(t)
	ticket := filepath.Join(dir, "ticket.txt")
	require.NoError(t, os.WriteFile(ticket, []byte(receipt), 0o600))

	out, err := run(t, "parse", ticket)
	require.NoError(t, err)
	assert.Contains(t, out, `"route"`)

	_, statErr := os.Stat(filepath.Join(dir, "rules.json"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestText(t *testing.T) {
	dir := setup(t)
	ticket := filepath.Join(dir, "ticket.txt")
	require.NoError(t, os.WriteFile(ticket, []byte(receipt), 0o600))

	out, err := run(t, "text", "--limit", "15", ticket)
	require.NoError(t, err)
	assert.Equal(t, "PNG AIR LIMITED", strings.TrimSpace(out))
}

func TestRulesExportCSV(t *testing.T) {
	dir := setup(t)
	dest := filepath.Join(dir, "out.csv")

	_, err := run(t, "rules", "export", "--format", "csv", "--out", dest)
	require.NoError(t, err)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, csvexport.BOM))
	assert.Contains(t, string(data), "Rule Key")
}

func TestRulesExportUnsupportedFormat(t *testing.T) {
	setup(t)
	_, err := run(t, "rules", "export", "--format", "pdf", "--out", "-")
	assert.Error(t, err)
}

func TestQuoteRequiresFlags(t *testing.T) {
	setup(t)
	_, err := run(t, "quote", "--carrier", "PX")
	assert.Error(t, err)
}
