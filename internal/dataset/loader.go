// Package dataset loads the static per-locale overall collections from
// bundled JSON files and memoizes them for the process lifetime.
package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/haalarikone/haku-api/internal/models"
)

// Store serves the per-locale record collections. Each locale is loaded at
// most once and never invalidated; the backing files are static per
// deployment. Concurrent loads of the same locale are harmless
// (last-writer-wins on identical data).
type Store struct {
	dir    string
	logger *zap.Logger

	mu       sync.RWMutex
	byLocale map[models.Locale][]models.Record
}

func NewStore(dir string, logger *zap.Logger) *Store {
	return &Store{
		dir:      dir,
		logger:   logger,
		byLocale: make(map[models.Locale][]models.Record),
	}
}

// Records returns the localized dataset, loading it on first use.
// Callers must treat the returned slice as read-only.
func (s *Store) Records(locale models.Locale) ([]models.Record, error) {
	s.mu.RLock()
	records, ok := s.byLocale[locale]
	s.mu.RUnlock()
	if ok {
		return records, nil
	}

	records, err := loadFile(s.path(locale))
	if err != nil {
		return nil, fmt.Errorf("loading dataset for locale %s: %w", locale, err)
	}

	s.mu.Lock()
	s.byLocale[locale] = records
	s.mu.Unlock()

	s.logger.Info("dataset loaded",
		zap.String("locale", string(locale)),
		zap.Int("records", len(records)),
	)
	return records, nil
}

// Preload loads every supported locale up front so the first search does
// not pay the file read.
func (s *Store) Preload() error {
	for _, locale := range models.Locales() {
		if _, err := s.Records(locale); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) path(locale models.Locale) string {
	return filepath.Join(s.dir, fmt.Sprintf("overalls_%s.json", locale))
}

// loadFile reads and validates one locale file. Validation happens at this
// boundary so no loosely-typed value escapes the loader: ids must be unique
// and color/institution must be present on every record.
func loadFile(path string) ([]models.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var records []models.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	seen := make(map[int]bool, len(records))
	for i, r := range records {
		if seen[r.ID] {
			return nil, fmt.Errorf("%s: duplicate record id %d", path, r.ID)
		}
		seen[r.ID] = true
		if r.Color == "" {
			return nil, fmt.Errorf("%s: record %d (index %d) has empty color", path, r.ID, i)
		}
		if r.Institution == "" {
			return nil, fmt.Errorf("%s: record %d (index %d) has empty institution", path, r.ID, i)
		}
	}

	return records, nil
}
