package tracker_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/pricetracker/internal/domain"
	"github.com/jonesrussell/pricetracker/internal/fetch"
	"github.com/jonesrussell/pricetracker/internal/logger"
	"github.com/jonesrussell/pricetracker/internal/metrics"
	"github.com/jonesrussell/pricetracker/internal/parser"
	"github.com/jonesrussell/pricetracker/internal/tracker"
)

type stubProductStore struct {
	product *domain.Product
	updated *domain.Product
}

func (s *stubProductStore) GetByID(_ context.Context, id int64) (*domain.Product, error) {
	if s.product == nil || s.product.ID != id {
		return nil, errors.New("product not found")
	}
	return s.product, nil
}

func (s *stubProductStore) UpdateCheckOutcome(_ context.Context, product *domain.Product) error {
	copied := *product
	s.updated = &copied
	return nil
}

type stubObservationStore struct {
	appended []*domain.Observation
}

func (s *stubObservationStore) Append(_ context.Context, observation *domain.Observation) error {
	copied := *observation
	s.appended = append(s.appended, &copied)
	return nil
}

type stubConfigStore struct {
	config *domain.ParserConfig
}

func (s *stubConfigStore) GetByDomain(context.Context, string) (*domain.ParserConfig, error) {
	if s.config == nil {
		return nil, parser.ErrConfigNotFound
	}
	return s.config, nil
}

type stubStrategy struct {
	snapshots []*parser.ProductSnapshot
	errs      []error
	calls     int
}

func (s *stubStrategy) Name() string          { return "stub" }
func (s *stubStrategy) RequiresBrowser() bool { return false }

func (s *stubStrategy) Extract([]byte) (*parser.ProductSnapshot, error) {
	i := s.calls
	if i >= len(s.errs) {
		i = len(s.errs) - 1
	}
	s.calls++
	return s.snapshots[i], s.errs[i]
}

type stubResolver struct {
	strategy parser.Strategy
	err      error
}

func (s *stubResolver) Resolve(context.Context, string) (parser.Strategy, error) {
	return s.strategy, s.err
}

type stubFetcher struct {
	body      []byte
	errs      []error
	fetchedAt []time.Time
}

func (s *stubFetcher) Fetch(context.Context, string, bool) ([]byte, error) {
	call := len(s.fetchedAt)
	s.fetchedAt = append(s.fetchedAt, time.Now())
	if call < len(s.errs) && s.errs[call] != nil {
		return nil, s.errs[call]
	}
	return s.body, nil
}

type stubLimiter struct {
	acquired  []string
	intervals map[string]time.Duration
}

func (s *stubLimiter) Acquire(_ context.Context, siteDomain string) error {
	s.acquired = append(s.acquired, siteDomain)
	return nil
}

func (s *stubLimiter) SetInterval(siteDomain string, interval time.Duration) {
	if s.intervals == nil {
		s.intervals = make(map[string]time.Duration)
	}
	s.intervals[siteDomain] = interval
}

type stubAlerts struct {
	evaluations int
	lastOld     *float64
	lastObs     *domain.Observation
}

func (s *stubAlerts) Evaluate(_ context.Context, _ *domain.Product, observation *domain.Observation, previousPrice *float64) {
	s.evaluations++
	s.lastOld = previousPrice
	s.lastObs = observation
}

type fixture struct {
	products     *stubProductStore
	observations *stubObservationStore
	configs      *stubConfigStore
	resolver     *stubResolver
	fetcher      *stubFetcher
	limiter      *stubLimiter
	alerts       *stubAlerts
	tracker      *tracker.Tracker
}

func newFixture(t *testing.T, product *domain.Product, resolver *stubResolver, fetcher *stubFetcher) *fixture {
	t.Helper()
	f := &fixture{
		products:     &stubProductStore{product: product},
		observations: &stubObservationStore{},
		configs:      &stubConfigStore{},
		resolver:     resolver,
		fetcher:      fetcher,
		limiter:      &stubLimiter{},
		alerts:       &stubAlerts{},
	}
	config := &tracker.Config{MaxAttempts: 3, RetryBaseDelay: 20 * time.Millisecond}
	f.tracker = tracker.New(config,
		f.products, f.observations, f.configs,
		f.resolver, f.fetcher, f.limiter, f.alerts,
		metrics.NewMetrics(), logger.NewNoOp())
	return f
}

func activeProduct() *domain.Product {
	price := 120.0
	return &domain.Product{
		ID:       1,
		URL:      "https://www.amazon.fr/dp/B000TEST",
		Domain:   "amazon.fr",
		Currency: "EUR",
		Status:   domain.StatusActive,

		CurrentPrice: &price,
	}
}

func pricedSnapshot(price float64) *parser.ProductSnapshot {
	return &parser.ProductSnapshot{
		Name:        "Casque Audio",
		Price:       &price,
		Currency:    "EUR",
		ImageURL:    "https://cdn.example.com/casque.jpg",
		IsAvailable: true,
	}
}

func TestCheckProduct_Success(t *testing.T) {
	product := activeProduct()
	strategy := &stubStrategy{
		snapshots: []*parser.ProductSnapshot{pricedSnapshot(95)},
		errs:      []error{nil},
	}
	f := newFixture(t, product, &stubResolver{strategy: strategy}, &stubFetcher{body: []byte("page")})

	err := f.tracker.CheckProduct(context.Background(), product, domain.ObservationSourceScheduler)
	require.NoError(t, err)

	require.Len(t, f.observations.appended, 1)
	observation := f.observations.appended[0]
	require.NotNil(t, observation.Price)
	assert.InDelta(t, 95.0, *observation.Price, 0.001)
	assert.Equal(t, domain.ObservationSourceScheduler, observation.Source)

	updated := f.products.updated
	require.NotNil(t, updated)
	require.NotNil(t, updated.CurrentPrice)
	assert.InDelta(t, 95.0, *updated.CurrentPrice, 0.001)
	require.NotNil(t, updated.Name)
	assert.Equal(t, "Casque Audio", *updated.Name)
	assert.Equal(t, 0, updated.ConsecutiveFailures)
	assert.Nil(t, updated.LastErrorMessage)
	assert.NotNil(t, updated.LastCheckedAt)
	assert.NotNil(t, updated.LastSuccessAt)

	require.Equal(t, 1, f.alerts.evaluations)
	require.NotNil(t, f.alerts.lastOld)
	assert.InDelta(t, 120.0, *f.alerts.lastOld, 0.001, "alert rules compare against the pre-check price")
}

func TestCheckProduct_TransientRetriesWithBackoff(t *testing.T) {
	product := activeProduct()
	fetcher := &stubFetcher{errs: []error{
		errors.New("connection reset"),
		errors.New("connection reset"),
		errors.New("connection reset"),
	}}
	strategy := &stubStrategy{
		snapshots: []*parser.ProductSnapshot{nil},
		errs:      []error{errors.New("unused")},
	}
	f := newFixture(t, product, &stubResolver{strategy: strategy}, fetcher)

	err := f.tracker.CheckProduct(context.Background(), product, domain.ObservationSourceScheduler)
	require.NoError(t, err)

	require.Len(t, fetcher.fetchedAt, 3)
	gap1 := fetcher.fetchedAt[1].Sub(fetcher.fetchedAt[0])
	gap2 := fetcher.fetchedAt[2].Sub(fetcher.fetchedAt[1])
	assert.GreaterOrEqual(t, gap1, 20*time.Millisecond)
	assert.GreaterOrEqual(t, gap2, 40*time.Millisecond)

	require.Len(t, f.observations.appended, 1, "exhausted retries produce exactly one observation")
	assert.Nil(t, f.observations.appended[0].Price)
	assert.Equal(t, 0, f.alerts.evaluations, "failed checks never reach the alert evaluator")

	updated := f.products.updated
	require.NotNil(t, updated)
	assert.Equal(t, 1, updated.ConsecutiveFailures)
	require.NotNil(t, updated.CurrentPrice)
	assert.InDelta(t, 120.0, *updated.CurrentPrice, 0.001, "failures leave the last known price in place")
}

func TestCheckProduct_PermanentFetchStopsRetrying(t *testing.T) {
	product := activeProduct()
	fetcher := &stubFetcher{errs: []error{
		&fetch.StatusError{URL: product.URL, StatusCode: 404},
	}}
	strategy := &stubStrategy{
		snapshots: []*parser.ProductSnapshot{nil},
		errs:      []error{errors.New("unused")},
	}
	f := newFixture(t, product, &stubResolver{strategy: strategy}, fetcher)

	err := f.tracker.CheckProduct(context.Background(), product, domain.ObservationSourceScheduler)
	require.NoError(t, err)

	assert.Len(t, fetcher.fetchedAt, 1)
	require.Len(t, f.observations.appended, 1)
	assert.Nil(t, f.observations.appended[0].Price)
}

func TestCheckProduct_InvalidURLStopsRetrying(t *testing.T) {
	product := activeProduct()
	fetcher := &stubFetcher{errs: []error{
		fmt.Errorf("%w ://bad: missing protocol scheme", fetch.ErrInvalidURL),
	}}
	strategy := &stubStrategy{
		snapshots: []*parser.ProductSnapshot{nil},
		errs:      []error{nil},
	}
	f := newFixture(t, product, &stubResolver{strategy: strategy}, fetcher)

	err := f.tracker.CheckProduct(context.Background(), product, domain.ObservationSourceScheduler)
	require.NoError(t, err)

	assert.Len(t, fetcher.fetchedAt, 1, "a URL that cannot be built never improves on retry")
	require.NotNil(t, f.products.updated)
	assert.Equal(t, 1, f.products.updated.ConsecutiveFailures)
}

func TestCheckProduct_ExtractionFailureRetries(t *testing.T) {
	product := activeProduct()
	strategy := &stubStrategy{
		snapshots: []*parser.ProductSnapshot{
			{},
			pricedSnapshot(89.99),
		},
		errs: []error{parser.ErrPriceNotFound, nil},
	}
	f := newFixture(t, product, &stubResolver{strategy: strategy}, &stubFetcher{body: []byte("page")})

	err := f.tracker.CheckProduct(context.Background(), product, domain.ObservationSourceScheduler)
	require.NoError(t, err)

	assert.Equal(t, 2, strategy.calls)
	require.Len(t, f.observations.appended, 1)
	require.NotNil(t, f.observations.appended[0].Price)
	assert.InDelta(t, 89.99, *f.observations.appended[0].Price, 0.001)

	// A late success is a success: the earlier failed attempt must not
	// leak into the recorded outcome.
	updated := f.products.updated
	require.NotNil(t, updated)
	assert.Equal(t, 0, updated.ConsecutiveFailures)
	assert.Nil(t, updated.LastErrorMessage)
	assert.NotNil(t, updated.LastSuccessAt)
	assert.Equal(t, 1, f.alerts.evaluations)
}

func TestCheckProduct_NoStrategy(t *testing.T) {
	product := activeProduct()
	fetcher := &stubFetcher{}
	f := newFixture(t, product, &stubResolver{err: parser.ErrNoStrategy}, fetcher)

	err := f.tracker.CheckProduct(context.Background(), product, domain.ObservationSourceScheduler)
	require.NoError(t, err)

	assert.Empty(t, fetcher.fetchedAt, "no fetch happens without a strategy")
	require.NotNil(t, f.products.updated)
	assert.Equal(t, domain.StatusActive, f.products.updated.Status,
		"one missing strategy is not yet conclusive")
	assert.Equal(t, 1, f.products.updated.ConsecutiveFailures)
	require.Len(t, f.observations.appended, 1)
	assert.Nil(t, f.observations.appended[0].Price)

	// The second occurrence settles it.
	err = f.tracker.CheckProduct(context.Background(), product, domain.ObservationSourceScheduler)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusNotTrackable, f.products.updated.Status)
	assert.Equal(t, 2, f.products.updated.ConsecutiveFailures)
}

func TestCheckProduct_FailureThresholdFlagsError(t *testing.T) {
	product := activeProduct()
	product.ConsecutiveFailures = tracker.FailureThreshold - 1
	fetcher := &stubFetcher{errs: []error{
		&fetch.StatusError{URL: product.URL, StatusCode: 403},
	}}
	strategy := &stubStrategy{
		snapshots: []*parser.ProductSnapshot{nil},
		errs:      []error{errors.New("unused")},
	}
	f := newFixture(t, product, &stubResolver{strategy: strategy}, fetcher)

	err := f.tracker.CheckProduct(context.Background(), product, domain.ObservationSourceScheduler)
	require.NoError(t, err)

	require.NotNil(t, f.products.updated)
	assert.Equal(t, tracker.FailureThreshold, f.products.updated.ConsecutiveFailures)
	assert.Equal(t, domain.StatusError, f.products.updated.Status)
	require.NotNil(t, f.products.updated.LastErrorMessage)
}

func TestCheckProduct_PausedStatusHolds(t *testing.T) {
	product := activeProduct()
	product.Status = domain.StatusPaused
	product.ConsecutiveFailures = tracker.FailureThreshold + 2
	fetcher := &stubFetcher{errs: []error{errors.New("timeout"), errors.New("timeout"), errors.New("timeout")}}
	strategy := &stubStrategy{
		snapshots: []*parser.ProductSnapshot{nil},
		errs:      []error{errors.New("unused")},
	}
	f := newFixture(t, product, &stubResolver{strategy: strategy}, fetcher)

	err := f.tracker.CheckProduct(context.Background(), product, domain.ObservationSourceScheduler)
	require.NoError(t, err)

	require.NotNil(t, f.products.updated)
	assert.Equal(t, domain.StatusPaused, f.products.updated.Status)
}

func TestCheckProduct_ErrorStatusRecoversOnSuccess(t *testing.T) {
	product := activeProduct()
	product.Status = domain.StatusError
	product.ConsecutiveFailures = 7
	strategy := &stubStrategy{
		snapshots: []*parser.ProductSnapshot{pricedSnapshot(99)},
		errs:      []error{nil},
	}
	f := newFixture(t, product, &stubResolver{strategy: strategy}, &stubFetcher{body: []byte("page")})

	err := f.tracker.CheckProduct(context.Background(), product, domain.ObservationSourceScheduler)
	require.NoError(t, err)

	require.NotNil(t, f.products.updated)
	assert.Equal(t, domain.StatusActive, f.products.updated.Status)
	assert.Equal(t, 0, f.products.updated.ConsecutiveFailures)
}

func TestCheckProduct_DomainOverrides(t *testing.T) {
	product := activeProduct()
	fetcher := &stubFetcher{errs: []error{
		errors.New("timeout"), errors.New("timeout"), errors.New("timeout"),
		errors.New("timeout"), errors.New("timeout"),
	}}
	strategy := &stubStrategy{
		snapshots: []*parser.ProductSnapshot{nil},
		errs:      []error{errors.New("unused")},
	}
	f := newFixture(t, product, &stubResolver{strategy: strategy}, fetcher)
	f.configs.config = &domain.ParserConfig{
		Domain:           "amazon.fr",
		IsActive:         true,
		MaxRetries:       2,
		RateLimitSeconds: 9,
	}

	err := f.tracker.CheckProduct(context.Background(), product, domain.ObservationSourceScheduler)
	require.NoError(t, err)

	assert.Len(t, fetcher.fetchedAt, 2, "per-domain max retries override applies")
	assert.Equal(t, 9*time.Second, f.limiter.intervals["amazon.fr"])
}

func TestRunCheckNow(t *testing.T) {
	product := activeProduct()
	strategy := &stubStrategy{
		snapshots: []*parser.ProductSnapshot{pricedSnapshot(110)},
		errs:      []error{nil},
	}
	f := newFixture(t, product, &stubResolver{strategy: strategy}, &stubFetcher{body: []byte("page")})

	require.NoError(t, f.tracker.RunCheckNow(context.Background(), product.ID))
	require.Len(t, f.observations.appended, 1)
	assert.Equal(t, domain.ObservationSourceManual, f.observations.appended[0].Source)

	err := f.tracker.RunCheckNow(context.Background(), 999)
	require.Error(t, err)
}
