package models

import "time"

// Owner is the third party entitled to a share of a dispenser's revenue.
// Matches the backend response shape.
type Owner struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	PhoneNumber string    `json:"phoneNumber"`
	CreatedBy   string    `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedBy   *string   `json:"updatedBy"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// UpdateOwnerPayload represents the request body for updating an owner
type UpdateOwnerPayload struct {
	Name        string `json:"name"`
	PhoneNumber string `json:"phoneNumber"`
}
