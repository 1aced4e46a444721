package checkpoint

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"winesearcher/parser/internal/domain"

	log "github.com/sirupsen/logrus"
)

// serializedOfferColumns is how many leading offers get their own CSV column.
const serializedOfferColumns = 3

var csvHeader = []string{
	"id",
	"wine_searcher_id",
	"vintage",
	"name",
	"url",
	"description",
	"region",
	"region_image",
	"origin",
	"grape_variety",
	"image",
	"producer",
	"average_price",
	"min_price",
	"wine_type",
	"wine_style",
	"offers_count",
	"search_expanded",
	"query",
	"offer_1",
	"offer_2",
	"offer_3",
}

// CSVStore is the file-backed checkpoint store: an append-only CSV whose rows
// double as the run's output. Re-opening an existing file resumes it.
type CSVStore struct {
	path   string
	file   *os.File
	writer *csv.Writer
	mu     sync.Mutex
}

func NewCSVStore(path string) (*CSVStore, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create checkpoint directory %q: %w", dir, err)
		}
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open checkpoint file %q: %w", path, err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("stat checkpoint file: %w", err)
	}

	store := &CSVStore{
		path:   path,
		file:   file,
		writer: csv.NewWriter(file),
	}

	if info.Size() == 0 {
		if err := store.writer.Write(csvHeader); err != nil {
			file.Close()
			return nil, fmt.Errorf("write checkpoint header: %w", err)
		}
		store.writer.Flush()
		if err := store.writer.Error(); err != nil {
			file.Close()
			return nil, fmt.Errorf("flush checkpoint header: %w", err)
		}
	}

	return store, nil
}

// Load reads all previously checkpointed rows. Rows that fail to parse are
// skipped with a warning rather than aborting the resume.
func (s *CSVStore) Load() (map[string]*domain.Wine, error) {
	file, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]*domain.Wine{}, nil
		}
		return nil, fmt.Errorf("open checkpoint for reading: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return map[string]*domain.Wine{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read checkpoint header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[name] = i
	}
	queryIdx, ok := columns["query"]
	if !ok {
		return nil, fmt.Errorf("checkpoint file %q has no query column", s.path)
	}

	results := make(map[string]*domain.Wine)
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Warnf("⚠️ Skipping malformed checkpoint row: %v", err)
			continue
		}
		if queryIdx >= len(row) {
			continue
		}

		query := domain.NormalizeQuery(row[queryIdx])
		if query == "" {
			continue
		}
		results[query] = rowToWine(row, columns)
	}

	return results, nil
}

// Append writes one row per result and flushes, so a crash mid-run loses at
// most the in-flight batch.
func (s *CSVStore) Append(results map[string]*domain.Wine) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for query, wine := range results {
		if err := s.writer.Write(wineToRow(query, wine)); err != nil {
			return fmt.Errorf("write checkpoint row: %w", err)
		}
	}

	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		return fmt.Errorf("flush checkpoint rows: %w", err)
	}
	return nil
}

func (s *CSVStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		s.file.Close()
		return fmt.Errorf("flush checkpoint writer: %w", err)
	}
	return s.file.Close()
}

func wineToRow(query string, wine *domain.Wine) []string {
	row := make([]string, len(csvHeader))
	row[18] = query
	if wine == nil {
		return row
	}

	row[0] = wine.ID
	row[1] = strconv.Itoa(wine.WineSearcherID)
	row[2] = strconv.Itoa(wine.Vintage)
	row[3] = wine.Name
	row[4] = wine.URL
	row[5] = wine.Description
	row[6] = wine.Region
	row[7] = wine.RegionImage
	row[8] = wine.Origin
	row[9] = wine.GrapeVariety
	row[10] = wine.Image
	row[11] = wine.Producer
	row[12] = formatFloat(wine.AveragePrice)
	row[13] = formatFloat(wine.MinPrice)
	row[14] = wine.WineType
	row[15] = wine.WineStyle
	row[16] = strconv.Itoa(wine.OffersCount)
	row[17] = strconv.FormatBool(wine.SearchExpanded)

	for i := 0; i < serializedOfferColumns && i < len(wine.Offers); i++ {
		encoded, err := json.Marshal(wine.Offers[i])
		if err != nil {
			continue
		}
		row[19+i] = string(encoded)
	}

	return row
}

func rowToWine(row []string, columns map[string]int) *domain.Wine {
	get := func(name string) string {
		if idx, ok := columns[name]; ok && idx < len(row) {
			return row[idx]
		}
		return ""
	}

	// An empty id column marks an explicit null result.
	if get("id") == "" {
		return nil
	}

	wine := &domain.Wine{
		ID:           get("id"),
		Name:         get("name"),
		URL:          get("url"),
		Description:  get("description"),
		Region:       get("region"),
		RegionImage:  get("region_image"),
		Origin:       get("origin"),
		GrapeVariety: get("grape_variety"),
		Image:        get("image"),
		Producer:     get("producer"),
		WineType:     get("wine_type"),
		WineStyle:    get("wine_style"),
	}
	wine.WineSearcherID, _ = strconv.Atoi(get("wine_searcher_id"))
	wine.Vintage, _ = strconv.Atoi(get("vintage"))
	wine.OffersCount, _ = strconv.Atoi(get("offers_count"))
	wine.SearchExpanded, _ = strconv.ParseBool(get("search_expanded"))
	wine.AveragePrice = parseFloatColumn(get("average_price"))
	wine.MinPrice = parseFloatColumn(get("min_price"))

	for i := 1; i <= serializedOfferColumns; i++ {
		raw := get(fmt.Sprintf("offer_%d", i))
		if raw == "" {
			continue
		}
		var offer domain.Offer
		if err := json.Unmarshal([]byte(raw), &offer); err != nil {
			continue
		}
		wine.Offers = append(wine.Offers, offer)
	}

	return wine
}

func formatFloat(value *float64) string {
	if value == nil {
		return ""
	}
	return strconv.FormatFloat(*value, 'f', -1, 64)
}

func parseFloatColumn(raw string) *float64 {
	if raw == "" {
		return nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &value
}
