package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"farerules/internal/domain"
	"farerules/internal/port"
)

// DefaultRuleDocument is the rule_store row used by the service.
const DefaultRuleDocument = "rules"

type ruleBlobRepo struct {
	db   *sqlx.DB
	name string
}

// NewRuleBlobRepo creates a BlobStore kept in one row of rule_store. The
// table is created by the migrations in db/migrations.
func NewRuleBlobRepo(db *sqlx.DB, name string) port.BlobStore {
	return &ruleBlobRepo{db: db, name: name}
}

func (r *ruleBlobRepo) Read(ctx context.Context) ([]byte, error) {
	var doc string
	err := r.db.GetContext(ctx, &doc, `SELECT document FROM rule_store WHERE name = $1`, r.name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading rule_store %q: %w", r.name, err)
	}
	return []byte(doc), nil
}

func (r *ruleBlobRepo) Write(ctx context.Context, data []byte) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO rule_store (name, document, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (name) DO UPDATE SET
			document = EXCLUDED.document,
			updated_at = NOW()`,
		r.name, string(data))
	if err != nil {
		return fmt.Errorf("writing rule_store %q: %w", r.name, err)
	}
	return nil
}

func (r *ruleBlobRepo) Describe() string {
	return "postgres:rule_store/" + r.name
}
