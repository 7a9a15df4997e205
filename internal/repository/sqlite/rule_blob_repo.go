package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"farerules/internal/domain"
	"farerules/internal/port"
)

type ruleBlobRepo struct {
	db   *sqlx.DB
	name string
}

// NewRuleBlobRepo creates a BlobStore kept in one row of rule_store.
func NewRuleBlobRepo(db *sqlx.DB, name string) port.BlobStore {
	return &ruleBlobRepo{db: db, name: name}
}

func (r *ruleBlobRepo) Read(ctx context.Context) ([]byte, error) {
	var doc string
	err := r.db.GetContext(ctx, &doc, r.db.Rebind(`SELECT document FROM rule_store WHERE name = ?`), r.name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading rule_store %q: %w", r.name, err)
	}
	return []byte(doc), nil
}

func (r *ruleBlobRepo) Write(ctx context.Context, data []byte) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO rule_store (name, document, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (name) DO UPDATE SET
			document = excluded.document,
			updated_at = excluded.updated_at`),
		r.name, string(data))
	if err != nil {
		return fmt.Errorf("writing rule_store %q: %w", r.name, err)
	}
	return nil
}

func (r *ruleBlobRepo) Describe() string {
	return "sqlite:rule_store/" + r.name
}
