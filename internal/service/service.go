package service

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"winesearcher/parser/internal/checkpoint"
	"winesearcher/parser/internal/client"
	"winesearcher/parser/internal/domain"
	"winesearcher/parser/internal/metrics"
	"winesearcher/parser/internal/parser"
	"winesearcher/parser/internal/repository"

	lru "github.com/hashicorp/golang-lru/v2"
	log "github.com/sirupsen/logrus"
)

// ErrCheckpointWrite marks an unwritable checkpoint target. It is the one
// batch-level fault that aborts a run: continuing without durable progress
// would re-fetch everything on the next start.
var ErrCheckpointWrite = errors.New("checkpoint write failed")

const cacheSize = 1024

// Service orchestrates the fetch → extract → checkpoint pipeline over large
// query lists. Runs against an existing checkpoint resume instead of
// restarting.
type Service struct {
	client     client.WineSearcherClient
	parser     *parser.WineParser
	checkpoint checkpoint.Store
	metrics    *metrics.Metrics
	sink       *sinkScheduler
	cache      *lru.Cache[string, *domain.Wine]
	batchSize  int
	batchDelay time.Duration
}

func NewService(
	wsClient client.WineSearcherClient,
	wineParser *parser.WineParser,
	store checkpoint.Store,
	repo repository.WineRepository,
	m *metrics.Metrics,
	batchSize int,
	batchDelay time.Duration,
) *Service {
	if batchSize <= 0 {
		batchSize = 10
	}

	cache, _ := lru.New[string, *domain.Wine](cacheSize)

	return &Service{
		client:     wsClient,
		parser:     wineParser,
		checkpoint: store,
		metrics:    m,
		sink:       &sinkScheduler{repository: repo},
		cache:      cache,
		batchSize:  batchSize,
		batchDelay: batchDelay,
	}
}

// FetchWine fetches and extracts a single wine by free-text name. Repeated
// lookups within a run are served from the in-memory cache.
func (s *Service) FetchWine(ctx context.Context, wineName string) (*domain.Wine, error) {
	query := domain.NormalizeQuery(wineName)
	if query == "" {
		return nil, fmt.Errorf("empty wine name")
	}

	if wine, ok := s.cache.Get(query); ok {
		return wine, nil
	}

	result := s.client.Fetch(ctx, s.client.SearchURL(query))
	if !result.OK() {
		return nil, fmt.Errorf("failed to fetch wine %q: %w", query, result.Err)
	}

	wine := s.parser.ParseWine(result.Body, query)
	if wine == nil {
		s.metrics.IncParseFailures()
		return nil, nil
	}

	s.metrics.IncWinesParsed()
	s.cache.Add(query, wine)
	return wine, nil
}

// ProcessWineList drives the whole pipeline over a query list. Queries
// already present in the checkpoint are skipped without a network call. The
// returned map covers every input query, including prior runs' entries and
// explicit nils for queries that yielded nothing.
func (s *Service) ProcessWineList(ctx context.Context, queries []string) (map[string]*domain.Wine, error) {
	processed, err := s.checkpoint.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load checkpoint: %w", err)
	}

	results := make(map[string]*domain.Wine, len(processed)+len(queries))
	for query, wine := range processed {
		results[query] = wine
	}

	pending := make([]string, 0, len(queries))
	seen := make(map[string]struct{}, len(queries))
	cached := make(map[string]*domain.Wine)
	for _, raw := range queries {
		query := domain.NormalizeQuery(raw)
		if query == "" {
			continue
		}
		if _, ok := processed[query]; ok {
			continue
		}
		if _, ok := seen[query]; ok {
			continue
		}
		seen[query] = struct{}{}
		if wine, ok := s.cache.Get(query); ok {
			results[query] = wine
			cached[query] = wine
			continue
		}
		pending = append(pending, query)
	}

	// Queries answered from the in-run cache still get checkpointed so the
	// next run skips them too.
	if len(cached) > 0 {
		if err := s.checkpoint.Append(cached); err != nil {
			return results, fmt.Errorf("%w: %v", ErrCheckpointWrite, err)
		}
	}

	log.Infof("Total queries: %d", len(queries))
	log.Infof("Queries to process: %d", len(pending))

	totalBatches := (len(pending) + s.batchSize - 1) / s.batchSize

	for start := 0; start < len(pending); start += s.batchSize {
		// Cancellation is honored at batch boundaries only; mid-batch work
		// may be lost but prior checkpoint state never is.
		if ctx.Err() != nil {
			s.sink.flush()
			return results, ctx.Err()
		}

		end := start + s.batchSize
		if end > len(pending) {
			end = len(pending)
		}
		batch := pending[start:end]
		batchNumber := start/s.batchSize + 1

		log.Infof("🔄 Processing batch %d/%d (%d queries)", batchNumber, totalBatches, len(batch))

		batchResults, err := s.processBatch(ctx, batch)
		for query, wine := range batchResults {
			results[query] = wine
		}

		if err != nil {
			if errors.Is(err, ErrCheckpointWrite) {
				s.sink.flush()
				return results, err
			}
			log.Errorf("❌ Error processing batch %d: %v", batchNumber, err)
			s.metrics.IncBatch("failed")
		} else {
			s.metrics.IncBatch("ok")
		}

		if end < len(pending) && s.batchDelay > 0 {
			select {
			case <-ctx.Done():
				s.sink.flush()
				return results, ctx.Err()
			case <-time.After(s.batchDelay):
			}
		}
	}

	s.sink.flush()
	log.Info("✅ Wine processing completed")
	return results, nil
}

// processBatch fetches, extracts, and checkpoints one batch. Any fault is
// returned rather than thrown so the caller can decide between continuing
// (batch faults) and aborting (checkpoint faults).
func (s *Service) processBatch(ctx context.Context, batch []string) (batchResults map[string]*domain.Wine, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("batch panicked: %v", r)
		}
	}()

	batchResults = make(map[string]*domain.Wine, len(batch))

	urls := make([]string, len(batch))
	for i, query := range batch {
		urls[i] = s.client.SearchURL(query)
	}

	fetchResults := s.client.FetchBatch(ctx, urls)

	wines := make([]*domain.Wine, 0, len(batch))
	for i, query := range batch {
		result := fetchResults[i]
		if !result.OK() {
			log.Errorf("❌ Failed to fetch wine %q: %v", query, result.Err)
			batchResults[query] = nil
			continue
		}

		wine := s.parser.ParseWine(result.Body, query)
		if wine == nil {
			log.Errorf("❌ Failed to parse wine: %s", query)
			s.metrics.IncParseFailures()
			batchResults[query] = nil
			continue
		}

		s.metrics.IncWinesParsed()
		s.cache.Add(query, wine)
		batchResults[query] = wine
		wines = append(wines, wine)
	}

	// Checkpoint before the sink hand-off: durable progress must not depend
	// on the database being reachable.
	if err := s.checkpoint.Append(batchResults); err != nil {
		return batchResults, fmt.Errorf("%w: %v", ErrCheckpointWrite, err)
	}

	s.sink.schedule(wines)

	return batchResults, nil
}

// ProcessWineListFile reads a line-oriented query file and processes it. The
// checkpoint store configured at construction provides both resume state and
// the output rows.
func (s *Service) ProcessWineListFile(ctx context.Context, inputPath string) (map[string]*domain.Wine, error) {
	queries, err := readQueryFile(inputPath)
	if err != nil {
		return nil, err
	}
	return s.ProcessWineList(ctx, queries)
}

// FlushSink waits for all background persistence writes to finish. Intended
// for shutdown paths and tests.
func (s *Service) FlushSink() {
	s.sink.flush()
}

func readQueryFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file %q: %w", path, err)
	}
	defer file.Close()

	var queries []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if line := domain.NormalizeQuery(scanner.Text()); line != "" {
			queries = append(queries, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read input file %q: %w", path, err)
	}
	return queries, nil
}
