package models

import "github.com/shopspring/decimal"

// OwnerMode discriminates the two mutually exclusive dispenser creation
// modes. The mode is fixed once at payload construction, never re-inferred
// from field emptiness.
type OwnerMode string

const (
	// OwnerModeExisting binds the dispenser to an already registered owner.
	OwnerModeExisting OwnerMode = "existing"
	// OwnerModeNew registers a new owner as a side effect of creating the
	// dispenser; the backend returns the owner nested in the response.
	OwnerModeNew OwnerMode = "new"
)

// DispenserForm is the raw, unvalidated form payload as submitted by a
// dashboard client. Validation turns it into a CreateDispenserPayload.
type DispenserForm struct {
	OwnerID          string  `json:"ownerId"`
	OwnerName        string  `json:"ownerName"`
	OwnerPhoneNumber string  `json:"ownerPhoneNumber"`
	Location         string  `json:"location"`
	LocationImgURL   string  `json:"locationImgUrl"`
	SharePercentage  float64 `json:"sharePercentage"`
}

// CreateDispenserPayload is a validated dispenser creation request. The wire
// shape keeps the other mode's fields empty, which is exactly what the
// backend requires.
type CreateDispenserPayload struct {
	Mode             OwnerMode `json:"-"`
	OwnerID          string    `json:"ownerId"`
	OwnerName        string    `json:"ownerName"`
	OwnerPhoneNumber string    `json:"ownerPhoneNumber"`
	Location         string    `json:"location"`
	LocationImgURL   string    `json:"locationImgUrl"`
	SharePercentage  float64   `json:"sharePercentage"`
}

// NewDispenserWithExistingOwner builds a creation payload bound to an
// existing owner. Owner name and phone stay empty by construction.
func NewDispenserWithExistingOwner(ownerID, location, locationImgURL string, sharePercentage float64) CreateDispenserPayload {
	return CreateDispenserPayload{
		Mode:            OwnerModeExisting,
		OwnerID:         ownerID,
		Location:        location,
		LocationImgURL:  locationImgURL,
		SharePercentage: sharePercentage,
	}
}

// NewDispenserWithNewOwner builds a creation payload that registers a new
// owner alongside the dispenser. OwnerID stays empty by construction.
func NewDispenserWithNewOwner(ownerName, ownerPhoneNumber, location, locationImgURL string, sharePercentage float64) CreateDispenserPayload {
	return CreateDispenserPayload{
		Mode:             OwnerModeNew,
		OwnerName:        ownerName,
		OwnerPhoneNumber: ownerPhoneNumber,
		Location:         location,
		LocationImgURL:   locationImgURL,
		SharePercentage:  sharePercentage,
	}
}

// UpdateDispenserPayload carries the only fields that are mutable after
// creation. Owner binding is immutable.
type UpdateDispenserPayload struct {
	Location        *string  `json:"location,omitempty"`
	SharePercentage *float64 `json:"sharePercentage,omitempty"`
}

// CollectDispenserPayload records cash physically removed from a dispenser.
type CollectDispenserPayload struct {
	CollectedAmount decimal.Decimal `json:"collectedAmount"`
}
