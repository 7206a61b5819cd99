package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Dispenser is a physical revenue-generating unit bound to exactly one owner.
// Currency fields are exact decimals; the backend owns all running totals.
type Dispenser struct {
	ID                        string          `json:"id"`
	OwnerID                   string          `json:"ownerId"`
	Location                  string          `json:"location"`
	LocationImgURL            *string         `json:"locationImgUrl"`
	SharePercentage           float64         `json:"sharePercentage"`
	CollectedAmount           decimal.Decimal `json:"collectedAmount"`
	LastPeriodCollectedAmount decimal.Decimal `json:"lastPeriodCollectedAmount"`
	TotalMoneyGenerated       decimal.Decimal `json:"totalMoneyGenerated"`
	PeriodStart               *time.Time      `json:"periodStart"`
	PeriodEnd                 *time.Time      `json:"periodEnd"`
	CreatedByID               string          `json:"createdById"`
	CreatedAt                 time.Time       `json:"createdAt"`
	UpdatedByID               *string         `json:"updatedById"`
	UpdatedAt                 time.Time       `json:"updatedAt"`
	Owner                     Owner           `json:"owner"`
}

// UnmarshalJSON accepts the last-period amount under both its canonical key
// and the misspelled "lastPeriondCollectedAmount" key some backend builds
// still serve.
func (d *Dispenser) UnmarshalJSON(data []byte) error {
	type alias Dispenser
	aux := struct {
		*alias
		MisspelledLastPeriod *decimal.Decimal `json:"lastPeriondCollectedAmount"`
	}{alias: (*alias)(d)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.MisspelledLastPeriod != nil {
		d.LastPeriodCollectedAmount = *aux.MisspelledLastPeriod
	}
	return nil
}

// OwnerShare returns the slice of amount retained by the owner under this
// dispenser's share percentage.
func (d *Dispenser) OwnerShare(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(decimal.NewFromFloat(d.SharePercentage)).Div(decimal.NewFromInt(100))
}

// PlatformShare returns the slice of amount retained by the platform.
func (d *Dispenser) PlatformShare(amount decimal.Decimal) decimal.Decimal {
	return amount.Sub(d.OwnerShare(amount))
}
