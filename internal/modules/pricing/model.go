// README: Pricing rate definition for each vehicle tier.
package pricing

import "time"

const (
	TierEconomy = "economy"
	TierComfort = "comfort"
	TierPremium = "premium"
)

const (
	WeatherNormal    = "normal"
	WeatherRain      = "rain"
	WeatherHeavyRain = "heavy_rain"
)

// Rate is the fare table for one tier. Amounts are whole currency units.
type Rate struct {
	Tier           string
	BaseFare       int64
	BaseDistanceKm float64
	// Distance beyond BaseDistanceKm is charged per started unit.
	DistanceUnitKm float64
	PerUnit        int64
	PerMinOffPeak  int64
	PerMinPeak     int64
	Multiplier     float64
	Currency       string
}

// Surcharges are flat amounts and weather multipliers shared by every tier.
type Surcharges struct {
	Night     int64
	Festive   int64
	Rain      float64
	HeavyRain float64
}

type PricingRequest struct {
	DistanceKm  float64
	DurationMin float64
	RequestTime time.Time
	Weather     string // "rain", "heavy_rain", "normal"
	Tier        string // "economy" when empty
}

type PricingResult struct {
	TotalAmount int64
	Currency    string
	Breakdown   map[string]int64
}
