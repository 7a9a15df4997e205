package rulestore_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"farerules/internal/domain"
	"farerules/internal/port"
	"farerules/internal/rulestore"
	"farerules/internal/storage/file"
	"farerules/mocks"
)

var fixedNow = func() time.Time { return time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC) }

func ticket(carrier domain.Carrier, route string, amounts map[string]string) domain.ParsedTicket {
	c := domain.NewTaxComponents(domain.RequiredTaxCodes)
	for code, v := range amounts {
		c.Taxes[code] = decimal.NewNullDecimal(decimal.RequireFromString(v))
	}
	return domain.ParsedTicket{Carrier: carrier, Route: route, Currency: "PGK", Components: c}
}

func money(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func assertMoney(t *testing.T, want string, got decimal.NullDecimal) {
	t.Helper()
	require.True(t, got.Valid, "expected %s, got null", want)
	assert.Equal(t, want, got.Decimal.StringFixed(2))
}

func newFileStore(t *testing.T) (*rulestore.Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.json")
	return rulestore.New(file.NewBlobStore(path), rulestore.WithClock(fixedNow)), path
}

func TestStore_LoadMissingIsEmpty(t *testing.T) {
	s, _ := newFileStore(t)

	set, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, set)
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	s, path := newFileStore(t)
	ctx := context.Background()

	in := domain.RuleSet{
		"PX|POM-LAE|PG|PGK": {YQYROffset: money("45.00"), LastVerifiedAt: "2025-01-02"},
		"CG|MAG-WWK|PG|PGK": {YQYROffset: money("30.00"), XTOffset: money("15.50"), GCTax: money("22.80"), LastVerifiedAt: "2025-01-01"},
	}
	require.NoError(t, s.Save(ctx, in))

	out, err := rulestore.New(file.NewBlobStore(path)).Load(ctx)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assertMoney(t, "15.50", out["CG|MAG-WWK|PG|PGK"].XTOffset)
	assertMoney(t, "45.00", out["PX|POM-LAE|PG|PGK"].YQYROffset)
	assert.False(t, out["PX|POM-LAE|PG|PGK"].GCTax.Valid)

	first, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, out))
	second, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestEncode_SortedIndented(t *testing.T) {
	data, err := rulestore.Encode(domain.RuleSet{
		"PX|POM-LAE|PG|PGK": {I9Tax: money("7.00"), LastVerifiedAt: "2025-01-02"},
		"CG|MAG-WWK|PG|PGK": {GCTax: money("22.80"), LastVerifiedAt: "2025-01-01"},
	})
	require.NoError(t, err)

	want := `{
  "CG|MAG-WWK|PG|PGK": {
    "gc_tax": 22.8,
    "last_verified_at": "2025-01-01"
  },
  "PX|POM-LAE|PG|PGK": {
    "i9_tax": 7,
    "last_verified_at": "2025-01-02"
  }
}`
	assert.Equal(t, want, string(data))
}

func TestDecode_Empty(t *testing.T) {
	set, err := rulestore.Decode(nil)
	require.NoError(t, err)
	assert.Empty(t, set)

	_, err = rulestore.Decode([]byte("{not json"))
	assert.Error(t, err)
}

func TestStore_UpsertCreatesRecord(t *testing.T) {
	s, _ := newFileStore(t)

	key, rec, err := s.Upsert(context.Background(),
		ticket(domain.CarrierCG, "MAG-WWK", map[string]string{"YQ": "20.00", "YR": "10.004", "XT": "15.50", "GC": "22.80"}), "pg")
	require.NoError(t, err)

	assert.Equal(t, "CG|MAG-WWK|PG|PGK", key.String())
	assertMoney(t, "30.00", rec.YQYROffset)
	assertMoney(t, "15.50", rec.XTOffset)
	assertMoney(t, "22.80", rec.GCTax)
	assert.False(t, rec.I9Tax.Valid)
	assert.Equal(t, "2025-03-14", rec.LastVerifiedAt)
}

func TestStore_UpsertIsIdempotent(t *testing.T) {
	s, path := newFileStore(t)
	ctx := context.Background()
	tk := ticket(domain.CarrierPX, "POM-LAE", map[string]string{"YQ": "45.00", "I9": "7.00"})

	_, once, err := s.Upsert(ctx, tk, "PG")
	require.NoError(t, err)
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	_, twice, err := s.Upsert(ctx, tk, "PG")
	require.NoError(t, err)
	second, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Equal(t, once, twice)
	assert.Equal(t, string(first), string(second))
}

func TestStore_UpsertNeverRegresses(t *testing.T) {
	s, _ := newFileStore(t)
	ctx := context.Background()

	_, _, err := s.Upsert(ctx, ticket(domain.CarrierCG, "MAG-WWK", map[string]string{"YQ": "30.00", "XT": "15.50", "GC": "22.80", "I9": "4.00"}), "PG")
	require.NoError(t, err)

	// Noisy document: only XT seen, with a new value; GC explicitly zero.
	_, rec, err := s.Upsert(ctx, ticket(domain.CarrierCG, "MAG-WWK", map[string]string{"XT": "16.00", "GC": "0.00"}), "PG")
	require.NoError(t, err)

	assertMoney(t, "30.00", rec.YQYROffset)
	assertMoney(t, "16.00", rec.XTOffset)
	assertMoney(t, "22.80", rec.GCTax)
	assertMoney(t, "4.00", rec.I9Tax)
}

func TestStore_UpsertUnknownTicketStillStamps(t *testing.T) {
	s, _ := newFileStore(t)

	key, rec, err := s.Upsert(context.Background(), ticket(domain.CarrierUnknown, domain.UnknownRoute, nil), "PG")
	require.NoError(t, err)
	assert.Equal(t, "UNK|UNK-UNK|PG|PGK", key.String())
	assert.Equal(t, "2025-03-14", rec.LastVerifiedAt)
	assert.False(t, rec.YQYROffset.Valid)
}

func TestStore_LookupForwardAndReverse(t *testing.T) {
	s, _ := newFileStore(t)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, domain.RuleSet{
		"CG|MAG-WWK|PG|PGK": {YQYROffset: money("30.00")},
	}))

	k, rec, err := s.Lookup(ctx, domain.NewRuleKey("cg", "mag", "wwk", "pg", "pgk"))
	require.NoError(t, err)
	assert.Equal(t, "CG|MAG-WWK|PG|PGK", k)
	assertMoney(t, "30.00", rec.YQYROffset)

	k, rec, err = s.Lookup(ctx, domain.NewRuleKey("CG", "WWK", "MAG", "PG", "PGK"))
	require.NoError(t, err)
	assert.Equal(t, "CG|MAG-WWK|PG|PGK", k)
	assertMoney(t, "30.00", rec.YQYROffset)

	k, rec, err = s.Lookup(ctx, domain.NewRuleKey("PX", "WWK", "MAG", "PG", "PGK"))
	require.NoError(t, err)
	assert.Empty(t, k)
	assert.True(t, rec.IsEmpty())
}

func TestStore_LookupPrefersForwardKey(t *testing.T) {
	s, _ := newFileStore(t)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, domain.RuleSet{
		"PX|POM-LAE|PG|PGK": {XTOffset: money("1.00")},
		"PX|LAE-POM|PG|PGK": {XTOffset: money("2.00")},
	}))

	k, rec, err := s.Lookup(ctx, domain.NewRuleKey("PX", "LAE", "POM", "PG", "PGK"))
	require.NoError(t, err)
	assert.Equal(t, "PX|LAE-POM|PG|PGK", k)
	assertMoney(t, "2.00", rec.XTOffset)
}

func TestStore_AllReturnsCopy(t *testing.T) {
	s, _ := newFileStore(t)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, domain.RuleSet{"PX|POM-LAE|PG|PGK": {}}))

	all, err := s.All(ctx)
	require.NoError(t, err)
	delete(all, "PX|POM-LAE|PG|PGK")

	again, err := s.All(ctx)
	require.NoError(t, err)
	assert.Len(t, again, 1)
}

func TestStore_CachedSnapshotServesReads(t *testing.T) {
	blob := new(mocks.MockBlobStore)
	blob.On("Read", mock.Anything).Return([]byte(`{"PX|POM-LAE|PG|PGK": {"xt_offset": 3}}`), nil).Once()
	blob.On("Describe").Return("mock").Maybe()

	s := rulestore.New(blob, rulestore.WithCacheTTL(time.Hour))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		all, err := s.All(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	}
	blob.AssertNumberOfCalls(t, "Read", 1)
}

func TestStore_BackendErrors(t *testing.T) {
	ctx := context.Background()

	readFail := new(mocks.MockBlobStore)
	readFail.On("Read", mock.Anything).Return(nil, errors.New("disk gone"))
	readFail.On("Describe").Return("mock").Maybe()
	s := rulestore.New(readFail)

	_, _, err := s.Upsert(ctx, ticket(domain.CarrierPX, "POM-LAE", nil), "PG")
	assert.ErrorContains(t, err, "disk gone")
	assert.Error(t, s.Ping(ctx))

	writeFail := new(mocks.MockBlobStore)
	writeFail.On("Read", mock.Anything).Return(nil, domain.ErrNotFound)
	writeFail.On("Write", mock.Anything, mock.Anything).Return(errors.New("read-only"))
	writeFail.On("Describe").Return("mock").Maybe()
	s = rulestore.New(writeFail)

	_, _, err = s.Upsert(ctx, ticket(domain.CarrierPX, "POM-LAE", nil), "PG")
	assert.ErrorContains(t, err, "read-only")
	assert.NoError(t, s.Ping(ctx))
}

// memBlob is a goroutine-safe in-memory BlobStore.
type memBlob struct {
	mu   sync.Mutex
	data []byte
}

func (m *memBlob) Read(context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		return nil, domain.ErrNotFound
	}
	return append([]byte(nil), m.data...), nil
}

func (m *memBlob) Write(_ context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = append([]byte(nil), data...)
	return nil
}

func (m *memBlob) Describe() string { return "memory" }

var _ port.BlobStore = (*memBlob)(nil)

func TestStore_ConcurrentUpsertsKeepEveryField(t *testing.T) {
	s := rulestore.New(&memBlob{}, rulestore.WithClock(fixedNow))
	ctx := context.Background()

	docs := []map[string]string{
		{"YQ": "30.00"},
		{"XT": "15.50"},
		{"GC": "22.80"},
		{"I9": "4.00"},
	}
	routes := []string{"MAG-WWK", "POM-LAE", "HGU-RAB"}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		for _, route := range routes {
			for _, d := range docs {
				wg.Add(1)
				go func(route string, d map[string]string) {
					defer wg.Done()
					_, _, err := s.Upsert(ctx, ticket(domain.CarrierCG, route, d), "PG")
					assert.NoError(t, err)
				}(route, d)
			}
		}
	}
	wg.Wait()

	all, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, all, len(routes))
	for _, route := range routes {
		rec := all["CG|"+route+"|PG|PGK"]
		assertMoney(t, "30.00", rec.YQYROffset)
		assertMoney(t, "15.50", rec.XTOffset)
		assertMoney(t, "22.80", rec.GCTax)
		assertMoney(t, "4.00", rec.I9Tax)
	}
}

// gatedBlob holds the first Read until release is closed.
type gatedBlob struct {
	*memBlob
	once    sync.Once
	started chan struct{}
	release chan struct{}
}

func (g *gatedBlob) Read(ctx context.Context) ([]byte, error) {
	first := false
	g.once.Do(func() { first = true })
	if first {
		data, err := g.memBlob.Read(ctx)
		close(g.started)
		<-g.release
		return data, err
	}
	return g.memBlob.Read(ctx)
}

func TestStore_ColdLookupDoesNotHideConcurrentUpsert(t *testing.T) {
	blob := &gatedBlob{
		memBlob: &memBlob{},
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	s := rulestore.New(blob, rulestore.WithClock(fixedNow), rulestore.WithCacheTTL(time.Hour))
	ctx := context.Background()
	key := domain.NewRuleKey("CG", "MAG", "WWK", "PG", "PGK")

	lookupDone := make(chan struct{})
	go func() {
		defer close(lookupDone)
		_, _, err := s.Lookup(ctx, key)
		assert.NoError(t, err)
	}()
	<-blob.started

	upsertDone := make(chan struct{})
	go func() {
		defer close(upsertDone)
		_, _, err := s.Upsert(ctx, ticket(domain.CarrierCG, "MAG-WWK", map[string]string{"YQ": "30.00"}), "PG")
		assert.NoError(t, err)
	}()
	select {
	case <-upsertDone:
	case <-time.After(50 * time.Millisecond):
	}
	close(blob.release)
	<-lookupDone
	<-upsertDone

	matched, rec, err := s.Lookup(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "CG|MAG-WWK|PG|PGK", matched)
	assertMoney(t, "30.00", rec.YQYROffset)
}

func TestStore_ImportMergesWithoutRegressing(t *testing.T) {
	s, _ := newFileStore(t)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, domain.RuleSet{
		"CG|MAG-WWK|PG|PGK": {YQYROffset: money("30.00"), GCTax: money("22.80"), LastVerifiedAt: "2025-02-01"},
	}))

	n, err := s.Import(ctx, domain.RuleSet{
		"CG|MAG-WWK|PG|PGK": {XTOffset: money("15.50"), GCTax: money("0"), LastVerifiedAt: "2025-01-01"},
		"PX|POM-LAE|PG|PGK": {I9Tax: money("7.00"), LastVerifiedAt: "2025-01-05"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	all, err := s.Load(ctx)
	require.NoError(t, err)
	cg := all["CG|MAG-WWK|PG|PGK"]
	assertMoney(t, "30.00", cg.YQYROffset)
	assertMoney(t, "15.50", cg.XTOffset)
	assertMoney(t, "22.80", cg.GCTax)
	assert.Equal(t, "2025-02-01", cg.LastVerifiedAt)
	assertMoney(t, "7.00", all["PX|POM-LAE|PG|PGK"].I9Tax)
}

func TestStore_ImportRejectsBadKey(t *testing.T) {
	s, _ := newFileStore(t)
	_, err := s.Import(context.Background(), domain.RuleSet{"nope": {}})
	assert.ErrorIs(t, err, domain.ErrInvalidRuleKey)
}
