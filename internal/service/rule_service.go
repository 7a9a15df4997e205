package service

import (
	"context"
	"fmt"
	"io"

	"farerules/internal/csvexport"
	"farerules/internal/domain"
	"farerules/internal/port"
)

// RuleService defines read access to the rule base.
type RuleService interface {
	List(ctx context.Context) (domain.RuleSet, error)
	Export(ctx context.Context, format domain.ExportFormat, w io.Writer) error
	// Import merges rules from a workbook in the export layout.
	Import(ctx context.Context, r io.Reader) (int, error)
	Ping(ctx context.Context) error
}

type ruleService struct {
	store port.RuleStore
}

// NewRuleService creates a new RuleService implementation.
func NewRuleService(store port.RuleStore) RuleService {
	return &ruleService{store: store}
}

func (s *ruleService) List(ctx context.Context) (domain.RuleSet, error) {
	set, err := s.store.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing rules: %w", err)
	}
	return set, nil
}

func (s *ruleService) Export(ctx context.Context, format domain.ExportFormat, w io.Writer) error {
	set, err := s.List(ctx)
	if err != nil {
		return err
	}
	rows, err := csvexport.RowsFromSet(set)
	if err != nil {
		return err
	}

	switch format {
	case domain.ExportCSV:
		if _, err := w.Write(csvexport.BOM); err != nil {
			return fmt.Errorf("writing csv: %w", err)
		}
		cw := csvexport.NewWriter(w)
		if err := cw.WriteHeader(); err != nil {
			return fmt.Errorf("writing csv header: %w", err)
		}
		if err := cw.WriteRules(rows); err != nil {
			return fmt.Errorf("writing csv rows: %w", err)
		}
		cw.Flush()
		return cw.Error()
	case domain.ExportXLSX:
		return csvexport.WriteXLSX(w, rows)
	default:
		return fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, format)
	}
}

func (s *ruleService) Import(ctx context.Context, r io.Reader) (int, error) {
	set, err := csvexport.ReadXLSX(r)
	if err != nil {
		return 0, err
	}
	return s.store.Import(ctx, set)
}

func (s *ruleService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}
