package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"surveybench/internal/benchmark"
	"surveybench/internal/cache"
	"surveybench/internal/dataprocessing"
	"surveybench/internal/store"
	"surveybench/pkg/contracts/domain"
)

// defaultPageSize bounds one survey data fetch during dataset loads.
const defaultPageSize = 1000

// BenchmarkMetrics receives business-metric events from the services.
// Implemented by infrastructure; a nil recorder disables recording.
type BenchmarkMetrics interface {
	RecordCacheHit(ctx context.Context)
	RecordCacheMiss(ctx context.Context)
	RecordDatasetLoad(ctx context.Context, rows int, elapsed time.Duration)
	RecordMatch(ctx context.Context, method domain.MatchMethod, matched bool)
}

// BenchmarkService serves filter options, market data, and percentile-rank
// lookups over the cached normalized dataset. Computation is pure; this
// service owns the load-normalize-cache cycle around it.
type BenchmarkService struct {
	store      store.Store
	cache      *cache.Cache
	normalizer *dataprocessing.Normalizer
	logger     *slog.Logger
	metrics    BenchmarkMetrics
	pageSize   int
}

// BenchmarkServiceOption configures optional dependencies.
type BenchmarkServiceOption func(*BenchmarkService)

// WithMetrics attaches a business-metrics recorder.
func WithMetrics(m BenchmarkMetrics) BenchmarkServiceOption {
	return func(s *BenchmarkService) { s.metrics = m }
}

// WithPageSize overrides the survey fetch page size.
func WithPageSize(n int) BenchmarkServiceOption {
	return func(s *BenchmarkService) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

// NewBenchmarkService creates the service. Logger nil falls back to
// slog.Default().
func NewBenchmarkService(st store.Store, c *cache.Cache, normalizer *dataprocessing.Normalizer, logger *slog.Logger, opts ...BenchmarkServiceOption) *BenchmarkService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &BenchmarkService{
		store:      st,
		cache:      c,
		normalizer: normalizer,
		logger:     logger,
		pageSize:   defaultPageSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// dataset returns the cached snapshot, reloading from the store when the
// cache misses. A structural or TTL miss is silent; the caller only sees a
// fresh snapshot or a load error.
func (s *BenchmarkService) dataset(ctx context.Context) (cache.Snapshot, error) {
	if snap, ok := s.cache.Get(); ok {
		if s.metrics != nil {
			s.metrics.RecordCacheHit(ctx)
		}
		return snap, nil
	}
	if s.metrics != nil {
		s.metrics.RecordCacheMiss(ctx)
	}
	return s.reload(ctx)
}

// reload fetches every survey page, normalizes the rows, derives the full
// option sets, and stores the snapshot.
func (s *BenchmarkService) reload(ctx context.Context) (cache.Snapshot, error) {
	start := time.Now()
	surveys, err := s.store.ListSurveys(ctx)
	if err != nil {
		return cache.Snapshot{}, fmt.Errorf("list surveys: %w", err)
	}

	var rows []domain.CanonicalRow
	for _, survey := range surveys {
		surveyRows, err := s.loadSurvey(ctx, survey)
		if err != nil {
			return cache.Snapshot{}, err
		}
		rows = append(rows, surveyRows...)
	}

	mappings, err := s.store.GetAllMappings(ctx)
	if err != nil {
		return cache.Snapshot{}, fmt.Errorf("load mappings: %w", err)
	}

	options := benchmark.DeriveFilterOptions(rows, domain.Filters{}, mappings)
	version := s.cache.Put(rows, options)
	snap, _ := s.cache.Get()

	elapsed := time.Since(start)
	s.logger.Info("benchmark dataset loaded",
		slog.Int("surveys", len(surveys)),
		slog.Int("rows", len(rows)),
		slog.Int64("version", version),
		slog.Duration("elapsed", elapsed))
	if s.metrics != nil {
		s.metrics.RecordDatasetLoad(ctx, len(rows), elapsed)
	}
	return snap, nil
}

func (s *BenchmarkService) loadSurvey(ctx context.Context, survey domain.Survey) ([]domain.CanonicalRow, error) {
	var colMap *domain.ColumnMapping
	if cm, err := s.store.GetColumnMapping(ctx, survey.ID); err == nil {
		colMap = &cm
	}

	var out []domain.CanonicalRow
	for offset := 0; ; offset += s.pageSize {
		page, err := s.store.GetSurveyData(ctx, survey.ID, domain.Pagination{Offset: offset, Limit: s.pageSize})
		if err != nil {
			return nil, fmt.Errorf("fetch survey %s at offset %d: %w", survey.ID, offset, err)
		}
		out = append(out, s.normalizer.NormalizeAll(page.Rows, survey, colMap)...)
		if offset+len(page.Rows) >= page.Total || len(page.Rows) == 0 {
			break
		}
	}
	return out, nil
}

// GetUniqueFilterValues derives the available values per dimension under the
// current filter selections. The survey-source list never narrows.
func (s *BenchmarkService) GetUniqueFilterValues(ctx context.Context, filters domain.Filters) (domain.FilterOptions, error) {
	snap, err := s.dataset(ctx)
	if err != nil {
		return domain.FilterOptions{}, err
	}
	mappings, err := s.store.GetAllMappings(ctx)
	if err != nil {
		return domain.FilterOptions{}, fmt.Errorf("load mappings: %w", err)
	}
	return benchmark.DeriveFilterOptions(snap.Rows, filters, mappings), nil
}

// GetMarketData aggregates the filtered rows into market percentiles. An
// empty result is the no-data state, not an error.
func (s *BenchmarkService) GetMarketData(ctx context.Context, filters domain.Filters) (domain.MarketData, error) {
	snap, err := s.dataset(ctx)
	if err != nil {
		return domain.MarketData{}, err
	}
	mappings, err := s.store.GetAllMappings(ctx)
	if err != nil {
		return domain.MarketData{}, fmt.Errorf("load mappings: %w", err)
	}
	filtered := benchmark.ApplyFilters(snap.Rows, filters, mappings)
	method := filters.AggregationMethod
	if method == "" {
		method = domain.AggregationSimple
	}
	return benchmark.ComputeMarketData(filtered, method), nil
}

// ExportDataset returns the filtered rows alongside their aggregate, for
// report generation.
func (s *BenchmarkService) ExportDataset(ctx context.Context, filters domain.Filters) ([]domain.CanonicalRow, domain.MarketData, error) {
	snap, err := s.dataset(ctx)
	if err != nil {
		return nil, domain.MarketData{}, err
	}
	mappings, err := s.store.GetAllMappings(ctx)
	if err != nil {
		return nil, domain.MarketData{}, fmt.Errorf("load mappings: %w", err)
	}
	filtered := benchmark.ApplyFilters(snap.Rows, filters, mappings)
	method := filters.AggregationMethod
	if method == "" {
		method = domain.AggregationSimple
	}
	return filtered, benchmark.ComputeMarketData(filtered, method), nil
}

// PercentileRequest is one user percentile-rank lookup. Value carries no
// required tag: zero is a legitimate input, and upstream coercion maps
// unparseable numerics to zero rather than erroring.
type PercentileRequest struct {
	Filters domain.Filters              `json:"filters"`
	Metric  domain.Metric               `json:"metric" validate:"required,oneof=tcc wrvu cf call_pay"`
	Value   float64                     `json:"value"`
	CallPay benchmark.CallPayAdjustment `json:"call_pay,omitempty"`
}

// PercentileResult reports where the user's value sits in the market.
// Percentile is nil when no market data matched the filters.
type PercentileResult struct {
	Percentile    *float64          `json:"percentile"`
	AdjustedValue float64           `json:"adjusted_value"`
	Market        domain.MarketData `json:"market"`
}

// GetUserPercentile adjusts the user's value for FTE (and call-pay terms for
// the call-pay metric) and interpolates its percentile rank against the
// filtered market.
func (s *BenchmarkService) GetUserPercentile(ctx context.Context, req PercentileRequest) (PercentileResult, error) {
	market, err := s.GetMarketData(ctx, req.Filters)
	if err != nil {
		return PercentileResult{}, err
	}

	value := benchmark.AdjustForFTE(req.Value, req.Filters.FTE, req.Metric)
	percentiles := market.Metric(req.Metric)
	if req.Metric == domain.MetricCallPay {
		value, percentiles = req.CallPay.Apply(value, percentiles)
		market.SetMetric(req.Metric, percentiles)
	}

	result := PercentileResult{AdjustedValue: value, Market: market}
	if rank, ok := benchmark.PercentileRank(percentiles, value); ok {
		result.Percentile = &rank
	}
	return result, nil
}

// BlendInput names one specialty and its weight in a blended market.
type BlendInput struct {
	Specialty string  `json:"specialty" validate:"required"`
	Weight    float64 `json:"weight" validate:"min=0"`
}

// GetBlendedMarketData combines per-specialty market data under the shared
// filters with the given weights.
func (s *BenchmarkService) GetBlendedMarketData(ctx context.Context, filters domain.Filters, inputs []BlendInput) (domain.MarketData, error) {
	components := make([]benchmark.BlendComponent, 0, len(inputs))
	for _, in := range inputs {
		f := filters
		f.Specialty = in.Specialty
		md, err := s.GetMarketData(ctx, f)
		if err != nil {
			return domain.MarketData{}, err
		}
		components = append(components, benchmark.BlendComponent{
			Specialty: in.Specialty,
			Market:    md,
			Weight:    in.Weight,
		})
	}
	return benchmark.BlendMarketData(components), nil
}

// Invalidate drops the cached dataset. The next read reloads from the store.
func (s *BenchmarkService) Invalidate() {
	s.cache.Clear()
}
