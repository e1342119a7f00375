// README: Vehicle model registered by drivers.
package vehicle

import (
	"time"

	"ridehail/internal/types"
)

type Tier string

const (
	TierEconomy Tier = "economy"
	TierComfort Tier = "comfort"
	TierPremium Tier = "premium"
)

func (t Tier) Valid() bool {
	return t == TierEconomy || t == TierComfort || t == TierPremium
}

type Vehicle struct {
	ID           types.ID  `json:"id"`
	DriverID     types.ID  `json:"driver_id"`
	Model        string    `json:"model"`
	Year         int       `json:"year"`
	Color        string    `json:"color"`
	LicensePlate string    `json:"license_plate"`
	Tier         Tier      `json:"tier"`
	CreatedAt    time.Time `json:"created_at"`
}

type Patch struct {
	Model        *string `json:"model"`
	Year         *int    `json:"year"`
	Color        *string `json:"color"`
	LicensePlate *string `json:"license_plate"`
	Tier         *Tier   `json:"tier"`
}

func (p Patch) apply(v Vehicle) Vehicle {
	if p.Model != nil {
		v.Model = *p.Model
	}
	if p.Year != nil {
		v.Year = *p.Year
	}
	if p.Color != nil {
		v.Color = *p.Color
	}
	if p.LicensePlate != nil {
		v.LicensePlate = *p.LicensePlate
	}
	if p.Tier != nil {
		v.Tier = *p.Tier
	}
	return v
}
