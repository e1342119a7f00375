// README: Pricing service computes fare estimates.
package pricing

import (
	"context"
	"math"
	"time"

	"ridehail/internal/types"
)

type Service struct {
	store *Store
	now   func() time.Time
}

func NewService(store *Store) *Service {
	return &Service{store: store, now: time.Now}
}

// Estimate prices a trip:
// base fare, distance units past the base distance, per-minute time charge
// (peak or off-peak, adjusted by trip length), flat night and festive
// surcharges, then weather and tier multipliers. The total rounds up.
func (s *Service) Estimate(ctx context.Context, req PricingRequest) (PricingResult, error) {
	tier := req.Tier
	if tier == "" {
		tier = TierEconomy
	}
	rate, err := s.store.GetRate(ctx, tier)
	if err != nil {
		return PricingResult{}, err
	}
	sur := s.store.Surcharges()

	distance := distanceCharge(rate, req.DistanceKm)
	timeCharge := timeCharge(rate, req.DistanceKm, req.DurationMin, isPeak(req.RequestTime))

	var surcharge int64
	if isNight(req.RequestTime) {
		surcharge += sur.Night
	}
	if s.store.IsFestive(req.RequestTime) {
		surcharge += sur.Festive
	}

	subtotal := float64(rate.BaseFare+distance+surcharge) + timeCharge
	multiplier := rate.Multiplier
	switch req.Weather {
	case WeatherRain:
		multiplier *= sur.Rain
	case WeatherHeavyRain:
		multiplier *= sur.HeavyRain
	}
	total := roundUp(subtotal * multiplier)

	return PricingResult{
		TotalAmount: total,
		Currency:    rate.Currency,
		Breakdown: map[string]int64{
			"base":      rate.BaseFare,
			"distance":  distance,
			"time":      roundUp(timeCharge),
			"surcharge": surcharge,
		},
	}, nil
}

// Quote prices a trip requested now in normal weather.
func (s *Service) Quote(ctx context.Context, distanceKm, durationMin float64, tier string) (types.Money, error) {
	res, err := s.Estimate(ctx, PricingRequest{
		DistanceKm:  distanceKm,
		DurationMin: durationMin,
		RequestTime: s.now(),
		Weather:     WeatherNormal,
		Tier:        tier,
	})
	if err != nil {
		return types.Money{}, err
	}
	return types.Money{Amount: res.TotalAmount, Currency: res.Currency}, nil
}

func distanceCharge(r Rate, km float64) int64 {
	// Work in whole metres so 0.4km over the base is exactly two 0.2km units.
	excess := int64(math.Round((km - r.BaseDistanceKm) * 1000))
	unit := int64(math.Round(r.DistanceUnitKm * 1000))
	if excess <= 0 || unit <= 0 {
		return 0
	}
	units := (excess + unit - 1) / unit
	return units * r.PerUnit
}

func timeCharge(r Rate, km, minutes float64, peak bool) float64 {
	if minutes <= 0 {
		return 0
	}
	perMin := r.PerMinOffPeak
	if peak {
		perMin = r.PerMinPeak
	}
	switch {
	case km >= 5 && km < 6:
		perMin -= 2
	case km > 7:
		perMin += 2
	}
	if perMin < 0 {
		perMin = 0
	}
	return minutes * float64(perMin)
}

// isPeak covers the morning (07:00-09:59) and evening (17:00-19:59) rush.
func isPeak(t time.Time) bool {
	h := t.Hour()
	return (h >= 7 && h < 10) || (h >= 17 && h < 20)
}

// isNight covers 23:00-05:59.
func isNight(t time.Time) bool {
	h := t.Hour()
	return h >= 23 || h < 6
}

func roundUp(v float64) int64 {
	// Strip float noise such as 114.99999999999999 before taking the ceiling.
	return int64(math.Ceil(math.Round(v*1e6) / 1e6))
}
