// Package rulestore keeps the fare rule base: one JSON document mapping
// CARRIER|ORIGIN-DEST|POS|CURRENCY keys to the best observed offsets.
//
// The document is always read and written whole through a port.BlobStore.
// Upsert performs its read-merge-write under a mutex so concurrent ingestions
// in one process cannot lose updates or regress a recorded value. Listing and
// lookups are served from a cached snapshot refreshed by every save.
package rulestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"farerules/internal/domain"
	"farerules/internal/port"
)

const (
	snapshotKey     = "rules"
	defaultCacheTTL = 5 * time.Minute
	dateLayout      = "2006-01-02"
)

// Store is the rule base over a single blob.
type Store struct {
	blob   port.BlobStore
	mu     sync.Mutex
	cache  *cache.Cache
	now    func() time.Time
	logger *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the source of last_verified_at dates.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithCacheTTL sets how long a snapshot is served before the backend is read
// again. Zero disables expiry.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl <= 0 {
			ttl = cache.NoExpiration
		}
		s.cache = cache.New(ttl, 2*ttl)
	}
}

// WithLogger attaches a logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// New creates a Store over blob.
func New(blob port.BlobStore, opts ...Option) *Store {
	s := &Store{
		blob:   blob,
		cache:  cache.New(defaultCacheTTL, 2*defaultCacheTTL),
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads the whole rule set from the backend. A backend with nothing
// written yet yields an empty set.
func (s *Store) Load(ctx context.Context) (domain.RuleSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return set.Clone(), nil
}

// Save writes the whole rule set, replacing what the backend held.
func (s *Store) Save(ctx context.Context, set domain.RuleSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx, set)
}

// load reads the backend and refreshes the snapshot. Callers hold s.mu.
func (s *Store) load(ctx context.Context) (domain.RuleSet, error) {
	data, err := s.blob.Read(ctx)
	if errors.Is(err, domain.ErrNotFound) {
		s.logger.Debug("rule store empty", zap.String("backend", s.blob.Describe()))
		set := domain.RuleSet{}
		s.cache.SetDefault(snapshotKey, set.Clone())
		return set, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading rules: %w", err)
	}

	set, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("loading rules from %s: %w", s.blob.Describe(), err)
	}
	s.cache.SetDefault(snapshotKey, set.Clone())
	return set, nil
}

// save writes the backend and refreshes the snapshot. Callers hold s.mu.
func (s *Store) save(ctx context.Context, set domain.RuleSet) error {
	data, err := Encode(set)
	if err != nil {
		return err
	}
	if err := s.blob.Write(ctx, data); err != nil {
		return fmt.Errorf("saving rules: %w", err)
	}
	s.cache.SetDefault(snapshotKey, set.Clone())
	return nil
}

// Upsert folds a parsed ticket into the record for its key. A derived value
// replaces the stored one only when it is nonzero; last_verified_at is always
// restamped.
func (s *Store) Upsert(ctx context.Context, ticket domain.ParsedTicket, pos string) (domain.RuleKey, domain.RuleRecord, error) {
	origin, dest, _ := strings.Cut(ticket.Route, "-")
	key := domain.NewRuleKey(string(ticket.Carrier), origin, dest, pos, ticket.Currency)

	s.mu.Lock()
	defer s.mu.Unlock()

	set, err := s.load(ctx)
	if err != nil {
		return key, domain.RuleRecord{}, err
	}

	rec := Merge(set[key.String()], ticket.Components)
	rec.LastVerifiedAt = s.now().Format(dateLayout)
	set[key.String()] = rec

	if err := s.save(ctx, set); err != nil {
		return key, domain.RuleRecord{}, err
	}
	s.logger.Info("rule upserted",
		zap.String("rule_key", key.String()),
		zap.Strings("observed_codes", ticket.Components.ObservedCodes()),
	)
	return key, rec, nil
}

// Merge applies the derived offsets of c to rec. Zero or unobserved values
// leave the existing field untouched.
func Merge(rec domain.RuleRecord, c domain.TaxComponents) domain.RuleRecord {
	overwrite := func(field *decimal.NullDecimal, v decimal.Decimal) {
		if !v.IsZero() {
			*field = decimal.NewNullDecimal(domain.Money(v))
		}
	}
	overwrite(&rec.YQYROffset, c.Amount(domain.TaxYQ).Add(c.Amount(domain.TaxYR)))
	overwrite(&rec.XTOffset, c.Amount(domain.TaxXT))
	overwrite(&rec.GCTax, c.Amount(domain.TaxGC))
	overwrite(&rec.I9Tax, c.Amount(domain.TaxI9))
	return rec
}

// Import merges externally maintained records into the rule base under the
// same non-regression rule as Upsert. The later last_verified_at date wins.
// It returns the number of keys touched.
func (s *Store) Import(ctx context.Context, incoming domain.RuleSet) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, err := s.load(ctx)
	if err != nil {
		return 0, err
	}
	for k, in := range incoming {
		key, err := domain.ParseRuleKey(k)
		if err != nil {
			return 0, err
		}
		rec := set[key.String()]
		for _, f := range []struct{ dst, src *decimal.NullDecimal }{
			{&rec.YQYROffset, &in.YQYROffset},
			{&rec.XTOffset, &in.XTOffset},
			{&rec.GCTax, &in.GCTax},
			{&rec.I9Tax, &in.I9Tax},
		} {
			if f.src.Valid && !f.src.Decimal.IsZero() {
				*f.dst = decimal.NewNullDecimal(domain.Money(f.src.Decimal))
			}
		}
		if in.LastVerifiedAt > rec.LastVerifiedAt {
			rec.LastVerifiedAt = in.LastVerifiedAt
		}
		set[key.String()] = rec
	}
	if err := s.save(ctx, set); err != nil {
		return 0, err
	}
	s.logger.Info("rules imported", zap.Int("count", len(incoming)))
	return len(incoming), nil
}

// Lookup finds the rule for key, trying the reversed route when the forward
// key is absent. The matched key string is empty when neither exists.
func (s *Store) Lookup(ctx context.Context, key domain.RuleKey) (string, domain.RuleRecord, error) {
	set, err := s.snapshot(ctx)
	if err != nil {
		return "", domain.RuleRecord{}, err
	}
	for _, k := range []domain.RuleKey{key, key.Reversed()} {
		if rec, ok := set[k.String()]; ok {
			return k.String(), rec, nil
		}
	}
	return "", domain.RuleRecord{}, nil
}

// All returns a copy of the current rule set.
func (s *Store) All(ctx context.Context) (domain.RuleSet, error) {
	set, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return set.Clone(), nil
}

// Ping checks that the backend is readable.
func (s *Store) Ping(ctx context.Context) error {
	_, err := s.blob.Read(ctx)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return nil
}

// Describe names the backend.
func (s *Store) Describe() string {
	return s.blob.Describe()
}

func (s *Store) snapshot(ctx context.Context) (domain.RuleSet, error) {
	if v, ok := s.cache.Get(snapshotKey); ok {
		return v.(domain.RuleSet), nil
	}

	// Cold reads share s.mu with writers so a slow read cannot cache a set
	// older than one a concurrent save already stored.
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.cache.Get(snapshotKey); ok {
		return v.(domain.RuleSet), nil
	}
	return s.load(ctx)
}

// Encode renders the rule set as two-space indented JSON with sorted keys.
func Encode(set domain.RuleSet) ([]byte, error) {
	if set == nil {
		set = domain.RuleSet{}
	}
	data, err := json.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding rules: %w", err)
	}
	return data, nil
}

// Decode parses a stored rule document. Empty input is an empty set.
func Decode(data []byte) (domain.RuleSet, error) {
	set := domain.RuleSet{}
	if len(data) == 0 {
		return set, nil
	}
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("decoding rules: %w", err)
	}
	return set, nil
}
