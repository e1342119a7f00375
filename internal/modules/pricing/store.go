// README: Pricing store holds the tier rate table and festive dates in memory.
package pricing

import (
	"context"
	"errors"
	"sync"
	"time"

	"ridehail/internal/types"
)

var ErrUnknownTier = errors.New("unknown vehicle tier")

type Store struct {
	mu         sync.RWMutex
	rates      map[string]Rate
	surcharges Surcharges
	festive    map[string]struct{}
}

// NewStore returns a store seeded with DefaultRates.
func NewStore() *Store {
	s := &Store{
		rates: make(map[string]Rate),
		surcharges: Surcharges{
			Night:     25,
			Festive:   40,
			Rain:      1.15,
			HeavyRain: 1.3,
		},
		festive: make(map[string]struct{}),
	}
	for _, r := range DefaultRates() {
		s.rates[r.Tier] = r
	}
	for _, d := range []string{"2026-02-16", "2026-02-17", "2026-02-18", "2026-02-19", "2026-02-20"} {
		s.festive[d] = struct{}{}
	}
	return s
}

// DefaultRates share one distance and time schedule and differ by multiplier.
func DefaultRates() []Rate {
	base := Rate{
		BaseFare:       85,
		BaseDistanceKm: 1.25,
		DistanceUnitKm: 0.2,
		PerUnit:        5,
		PerMinOffPeak:  3,
		PerMinPeak:     5,
		Currency:       types.DefaultCurrency,
	}
	economy, comfort, premium := base, base, base
	economy.Tier, economy.Multiplier = TierEconomy, 1.0
	comfort.Tier, comfort.Multiplier = TierComfort, 1.2
	premium.Tier, premium.Multiplier = TierPremium, 1.5
	return []Rate{economy, comfort, premium}
}

func (s *Store) GetRate(ctx context.Context, tier string) (Rate, error) {
	if err := ctx.Err(); err != nil {
		return Rate{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rates[tier]
	if !ok {
		return Rate{}, ErrUnknownTier
	}
	return r, nil
}

func (s *Store) PutRate(ctx context.Context, r Rate) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.Tier == "" {
		return ErrUnknownTier
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rates[r.Tier] = r
	return nil
}

func (s *Store) Surcharges() Surcharges {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.surcharges
}

// AddFestiveDate marks a calendar day (in t's location) as festive.
func (s *Store) AddFestiveDate(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.festive[t.Format(time.DateOnly)] = struct{}{}
}

func (s *Store) IsFestive(t time.Time) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.festive[t.Format(time.DateOnly)]
	return ok
}
