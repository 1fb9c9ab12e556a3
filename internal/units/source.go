package units

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/noah-isme/pharmacy-desk/internal/cache"
)

// Fetcher loads unit definitions from the inventory backend.
type Fetcher interface {
	ListUnits(ctx context.Context) ([]Definition, error)
}

// Source memoises the unit table in process and in Redis. Definitions are
// immutable reference data, so the first successful load is kept until
// Invalidate is called.
type Source struct {
	Fetcher Fetcher
	Cache   *cache.JSON
	Logger  zerolog.Logger

	mu     sync.RWMutex
	table  Table
	loaded bool
}

// Table returns the unit table, loading it on first use.
func (s *Source) Table(ctx context.Context) (Table, error) {
	if s == nil {
		return Table{}, errors.New("units: source not configured")
	}
	s.mu.RLock()
	if s.loaded {
		t := s.table
		s.mu.RUnlock()
		return t, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		return s.table, nil
	}

	key := s.Cache.Key("units", "all")
	var defs []Definition
	found, err := s.Cache.Get(ctx, key, &defs)
	if err != nil {
		s.Logger.Warn().Err(err).Msg("units cache read")
	}
	if !found {
		if s.Fetcher == nil {
			return Table{}, errors.New("units: fetcher not configured")
		}
		defs, err = s.Fetcher.ListUnits(ctx)
		if err != nil {
			return Table{}, err
		}
		if err := s.Cache.Set(ctx, key, defs); err != nil {
			s.Logger.Warn().Err(err).Msg("units cache write")
		}
	}
	s.table = NewTable(defs)
	s.loaded = true
	return s.table, nil
}

// Invalidate forgets the memoised table and its cached copy.
func (s *Source) Invalidate(ctx context.Context) error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	s.table = Table{}
	s.loaded = false
	s.mu.Unlock()
	return s.Cache.Delete(ctx, s.Cache.Key("units", "all"))
}
