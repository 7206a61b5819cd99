package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CollectionEvent is a journal row recording one collection against a
// dispenser, with the revenue split frozen at collection time.
type CollectionEvent struct {
	ID              int             `json:"id"`
	DispenserID     string          `json:"dispenserId"`
	OwnerID         string          `json:"ownerId"`
	Location        string          `json:"location"`
	Amount          decimal.Decimal `json:"amount"`
	SharePercentage float64         `json:"sharePercentage"`
	OwnerShare      decimal.Decimal `json:"ownerShare"`
	PlatformShare   decimal.Decimal `json:"platformShare"`
	CollectedAt     time.Time       `json:"collectedAt"`
}

// FleetSummary is the computed platform/owner revenue split across the
// cached fleet.
type FleetSummary struct {
	DispenserCount     int             `json:"dispenserCount"`
	OwnerCount         int             `json:"ownerCount"`
	TotalCollected     decimal.Decimal `json:"totalCollected"`
	TotalGenerated     decimal.Decimal `json:"totalGenerated"`
	OwnerShareTotal    decimal.Decimal `json:"ownerShareTotal"`
	PlatformShareTotal decimal.Decimal `json:"platformShareTotal"`
	GeneratedAt        time.Time       `json:"generatedAt"`
}
