package taxonomy

import (
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog/log"
)

// Store holds the current taxonomy and swaps it atomically on reload.
// Callers take a snapshot with Current and keep using it for the whole
// analysis, so a reload never changes rules mid-analysis.
type Store struct {
	source  Source
	current atomic.Pointer[Taxonomy]
}

// NewStore loads the initial taxonomy from source
func NewStore(source Source) (*Store, error) {
	s := &Store{source: source}

	t, err := source.Load()
	if err != nil {
		return nil, fmt.Errorf("loading taxonomy: %w", err)
	}

	s.current.Store(t)

	return s, nil
}

// Current returns the active taxonomy
func (s *Store) Current() *Taxonomy {
	return s.current.Load()
}

// Reload loads a fresh taxonomy and publishes it. On failure the previous
// taxonomy stays active.
func (s *Store) Reload() error {
	t, err := s.source.Load()
	if err != nil {
		return fmt.Errorf("reloading taxonomy: %w", err)
	}

	prev := s.current.Swap(t)

	log.Info().Str("previous_version", prev.Version()).Str("version", t.Version()).Int("rule_sets", len(t.sets)).Msg("taxonomy reloaded")

	return nil
}
