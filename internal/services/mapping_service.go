package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"surveybench/internal/cache"
	"surveybench/internal/retry"
	"surveybench/internal/specialty"
	"surveybench/internal/store"
	"surveybench/pkg/contracts/domain"
)

const (
	// defaultChunkSize is how many unmapped specialties one auto-map chunk
	// carries.
	defaultChunkSize = 25
	// defaultChunkWorkers bounds in-flight resolution within a chunk.
	defaultChunkWorkers = 8
)

// RefreshNotifier tells connected consumers the dataset or mappings changed.
// Implemented by the websocket hub; a nil notifier disables notifications.
type RefreshNotifier interface {
	NotifyMappingsChanged(reason string)
}

// AutoMapConfig tunes one auto-map batch.
type AutoMapConfig struct {
	ConfidenceThreshold float64 `json:"confidence_threshold" validate:"min=0,max=1"`
	UseFuzzyMatching    bool    `json:"use_fuzzy_matching"`
	ChunkSize           int     `json:"chunk_size" validate:"min=0,max=500"`
}

// UnmappedSpecialty is one raw specialty label awaiting standardization.
type UnmappedSpecialty struct {
	Name         string `json:"name" validate:"required"`
	SurveySource string `json:"survey_source" validate:"required"`
}

// MappingService owns specialty mapping mutations. Every successful mutation
// invalidates the benchmark cache and notifies the refresh hub.
type MappingService struct {
	store    store.MappingStore
	matcher  *specialty.Matcher
	cache    *cache.Cache
	notifier RefreshNotifier
	policy   retry.Policy
	metrics  BenchmarkMetrics
	logger   *slog.Logger
}

// MappingServiceOption configures optional dependencies.
type MappingServiceOption func(*MappingService)

// WithRefreshNotifier attaches the refresh hub.
func WithRefreshNotifier(n RefreshNotifier) MappingServiceOption {
	return func(s *MappingService) { s.notifier = n }
}

// WithRetryPolicy overrides the persistence retry policy.
func WithRetryPolicy(p retry.Policy) MappingServiceOption {
	return func(s *MappingService) { s.policy = p }
}

// WithMappingMetrics attaches a business-metrics recorder.
func WithMappingMetrics(m BenchmarkMetrics) MappingServiceOption {
	return func(s *MappingService) { s.metrics = m }
}

// NewMappingService creates the service with the default 3-attempt
// persistence retry policy.
func NewMappingService(st store.MappingStore, matcher *specialty.Matcher, c *cache.Cache, logger *slog.Logger, opts ...MappingServiceOption) *MappingService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &MappingService{
		store:   st,
		matcher: matcher,
		cache:   c,
		policy:  retry.DefaultPolicy(),
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AutoMapSpecialties resolves a batch of unmapped labels and folds the
// matches into their mappings. The batch runs in bounded chunks; one item's
// persistence failure lands in its result and never aborts siblings. Context
// cancellation stops the batch between chunks; writes that already landed
// still invalidate the cache on the way out.
func (s *MappingService) AutoMapSpecialties(ctx context.Context, items []UnmappedSpecialty, cfg AutoMapConfig) ([]domain.MappingResult, error) {
	mappings, err := s.store.GetAllMappings(ctx)
	if err != nil {
		return nil, fmt.Errorf("load mappings: %w", err)
	}
	learned, err := s.store.GetLearnedMappings(ctx)
	if err != nil {
		return nil, fmt.Errorf("load learned mappings: %w", err)
	}

	chunkSize := cfg.ChunkSize
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	resolveCfg := specialty.ResolveConfig{
		ConfidenceThreshold: cfg.ConfidenceThreshold,
		UseFuzzyMatching:    cfg.UseFuzzyMatching,
	}

	results := make([]domain.MappingResult, len(items))
	matches := make([]specialty.Match, len(items))
	mutated := false
	defer func() {
		if mutated {
			s.invalidate("auto-map")
		}
	}()

	for start := 0; start < len(items); start += chunkSize {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		end := start + chunkSize
		if end > len(items) {
			end = len(items)
		}

		// Resolution fans out over a frozen copy of the working set; folds
		// and persistence run serially afterwards, so every save carries the
		// full accumulated source list and the next chunk resolves against
		// the folded state.
		snapshot := snapshotMappings(mappings)
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(defaultChunkWorkers)
		for i := start; i < end; i++ {
			i := i
			g.Go(func() error {
				results[i], matches[i] = s.resolveOne(gctx, items[i], snapshot, learned, resolveCfg)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return results, err
		}

		for i := start; i < end; i++ {
			if !results[i].Matched {
				continue
			}
			if s.persistMatch(ctx, items[i], matches[i], mappings, &results[i]) {
				mutated = true
			}
		}
	}

	return results, nil
}

// resolveOne matches a single item against the snapshot. Read-only.
func (s *MappingService) resolveOne(ctx context.Context, item UnmappedSpecialty, mappings []domain.SpecialtyMapping, learned domain.LearnedMappings, cfg specialty.ResolveConfig) (domain.MappingResult, specialty.Match) {
	result := domain.MappingResult{OriginalName: item.Name, SurveySource: item.SurveySource}

	match, ok := s.matcher.Resolve(item.Name, item.SurveySource, mappings, learned, cfg)
	if s.metrics != nil {
		s.metrics.RecordMatch(ctx, match.Method, ok)
	}
	if !ok {
		return result, match
	}
	result.StandardizedName = match.StandardizedName
	result.Confidence = match.Confidence
	result.Method = match.Method
	result.Matched = true
	return result, match
}

// persistMatch folds an accepted match into the working set and writes it
// through the store, retrying per the service policy. Synonym and fuzzy
// acceptances also record a learned override so the next batch resolves the
// same label at the learned stage. A final failure lands in the result.
// Returns true when anything was persisted.
func (s *MappingService) persistMatch(ctx context.Context, item UnmappedSpecialty, match specialty.Match, mappings []domain.SpecialtyMapping, result *domain.MappingResult) bool {
	idx := -1
	for i := range mappings {
		if mappings[i].ID == match.MappingID {
			idx = i
			break
		}
	}
	if idx < 0 {
		result.Err = fmt.Sprintf("mapping %s no longer exists", match.MappingID)
		return false
	}

	persisted := false
	added := mappings[idx].AddSource(domain.SourceSpecialty{
		Specialty:    item.Name,
		SurveySource: item.SurveySource,
		OriginalName: item.Name,
	})
	if added {
		err := retry.Do(ctx, s.policy, func(ctx context.Context) error {
			return s.store.SaveMapping(ctx, mappings[idx])
		})
		if err != nil {
			result.Err = err.Error()
			s.logger.Warn("auto-map persistence failed",
				slog.String("specialty", item.Name),
				slog.String("survey_source", item.SurveySource),
				slog.String("error", err.Error()))
			return false
		}
		persisted = true
	}

	if match.Method == domain.MatchSynonym || match.Method == domain.MatchFuzzy {
		err := retry.Do(ctx, s.policy, func(ctx context.Context) error {
			return s.store.SaveLearnedMapping(ctx, item.Name, match.StandardizedName)
		})
		if err != nil {
			result.Err = err.Error()
			s.logger.Warn("learned override persistence failed",
				slog.String("specialty", item.Name),
				slog.String("error", err.Error()))
			return persisted
		}
		persisted = true
	}
	return persisted
}

// snapshotMappings deep-copies the working set so chunk goroutines can read
// it while the serial fold phase mutates the original between chunks.
func snapshotMappings(mappings []domain.SpecialtyMapping) []domain.SpecialtyMapping {
	snap := make([]domain.SpecialtyMapping, len(mappings))
	copy(snap, mappings)
	for i := range snap {
		snap[i].SourceSpecialties = append([]domain.SourceSpecialty(nil), snap[i].SourceSpecialties...)
	}
	return snap
}

// SaveMapping inserts or updates a mapping. A blank ID gets a generated one.
func (s *MappingService) SaveMapping(ctx context.Context, m domain.SpecialtyMapping) (domain.SpecialtyMapping, error) {
	if m.StandardizedName == "" {
		return domain.SpecialtyMapping{}, fmt.Errorf("standardized name required")
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	err := retry.Do(ctx, s.policy, func(ctx context.Context) error {
		return s.store.SaveMapping(ctx, m)
	})
	if err != nil {
		return domain.SpecialtyMapping{}, fmt.Errorf("save mapping %s: %w", m.ID, err)
	}
	s.invalidate("mapping saved")
	return m, nil
}

// DeleteMapping removes a mapping by ID.
func (s *MappingService) DeleteMapping(ctx context.Context, id string) error {
	err := retry.Do(ctx, s.policy, func(ctx context.Context) error {
		return s.store.DeleteMapping(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("delete mapping %s: %w", id, err)
	}
	s.invalidate("mapping deleted")
	return nil
}

// CorrectMapping records a user correction as a learned override consulted
// before fuzzy matching on future batches.
func (s *MappingService) CorrectMapping(ctx context.Context, originalName, standardizedName string) error {
	if originalName == "" || standardizedName == "" {
		return fmt.Errorf("original and standardized names required")
	}
	err := retry.Do(ctx, s.policy, func(ctx context.Context) error {
		return s.store.SaveLearnedMapping(ctx, originalName, standardizedName)
	})
	if err != nil {
		return fmt.Errorf("save learned mapping %q: %w", originalName, err)
	}
	s.invalidate("mapping corrected")
	return nil
}

// GetAllMappings lists every mapping in insertion order.
func (s *MappingService) GetAllMappings(ctx context.Context) ([]domain.SpecialtyMapping, error) {
	return s.store.GetAllMappings(ctx)
}

func (s *MappingService) invalidate(reason string) {
	s.cache.Clear()
	if s.notifier != nil {
		s.notifier.NotifyMappingsChanged(reason)
	}
	s.logger.Debug("benchmark cache invalidated", slog.String("reason", reason))
}
