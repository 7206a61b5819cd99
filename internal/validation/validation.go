package validation

import (
	"net/url"
	"sort"
	"strings"

	"fleet-backend/internal/models"

	"github.com/shopspring/decimal"
)

// FieldErrors maps a field path to a human-readable message. It implements
// error so services can return it through a normal error path, but a
// validation failure is an expected outcome, not an exceptional one.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+e[f])
	}
	return strings.Join(parts, "; ")
}

// ValidateCreateDispenser checks a raw form payload and, on success, returns
// the tagged creation payload. The mode is decided once here, from whether
// ownerId is empty, and the other mode's fields must be exactly empty, so a
// payload can never satisfy both modes or neither.
func ValidateCreateDispenser(form models.DispenserForm) (models.CreateDispenserPayload, FieldErrors) {
	errs := FieldErrors{}

	validateCommonDispenserFields(form.Location, form.LocationImgURL, form.SharePercentage, errs)

	if form.OwnerID == "" {
		// New-owner mode: owner name and phone are required.
		if form.OwnerName == "" {
			errs["ownerName"] = "Owner name is required for new owner"
		}
		if form.OwnerPhoneNumber == "" {
			errs["ownerPhoneNumber"] = "Phone number is required for new owner"
		}
		if len(errs) > 0 {
			return models.CreateDispenserPayload{}, errs
		}
		return models.NewDispenserWithNewOwner(form.OwnerName, form.OwnerPhoneNumber, form.Location, form.LocationImgURL, form.SharePercentage), nil
	}

	// Existing-owner mode: name and phone must be exactly empty.
	if form.OwnerName != "" {
		errs["ownerName"] = "Owner name must be empty when binding an existing owner"
	}
	if form.OwnerPhoneNumber != "" {
		errs["ownerPhoneNumber"] = "Phone number must be empty when binding an existing owner"
	}
	if len(errs) > 0 {
		return models.CreateDispenserPayload{}, errs
	}
	return models.NewDispenserWithExistingOwner(form.OwnerID, form.Location, form.LocationImgURL, form.SharePercentage), nil
}

// ValidateCreateDispenserPayload re-checks an already constructed payload,
// including its declared mode. Used when a payload arrives pre-tagged rather
// than as a raw form.
func ValidateCreateDispenserPayload(p models.CreateDispenserPayload) FieldErrors {
	errs := FieldErrors{}

	validateCommonDispenserFields(p.Location, p.LocationImgURL, p.SharePercentage, errs)

	switch p.Mode {
	case models.OwnerModeExisting:
		if p.OwnerID == "" {
			errs["ownerId"] = "Owner id is required"
		}
		if p.OwnerName != "" {
			errs["ownerName"] = "Owner name must be empty when binding an existing owner"
		}
		if p.OwnerPhoneNumber != "" {
			errs["ownerPhoneNumber"] = "Phone number must be empty when binding an existing owner"
		}
	case models.OwnerModeNew:
		if p.OwnerID != "" {
			errs["ownerId"] = "Owner id must be empty for new owner"
		}
		if p.OwnerName == "" {
			errs["ownerName"] = "Owner name is required for new owner"
		}
		if p.OwnerPhoneNumber == "" {
			errs["ownerPhoneNumber"] = "Phone number is required for new owner"
		}
	default:
		errs["mode"] = "Unknown owner mode"
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ValidateUpdateDispenser checks a partial update. Only location and share
// percentage are mutable post-creation.
func ValidateUpdateDispenser(p models.UpdateDispenserPayload) FieldErrors {
	errs := FieldErrors{}

	if p.Location == nil && p.SharePercentage == nil {
		errs["payload"] = "At least one of location or sharePercentage is required"
		return errs
	}
	if p.Location != nil && *p.Location == "" {
		errs["location"] = "Location is required"
	}
	if p.SharePercentage != nil && !shareInRange(*p.SharePercentage) {
		errs["sharePercentage"] = "Must be a number between 0 and 100"
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ValidateCollectDispenser rejects non-positive amounts. A zero-value
// collection event is meaningless and refused.
func ValidateCollectDispenser(p models.CollectDispenserPayload) FieldErrors {
	if p.CollectedAmount.Cmp(decimal.Zero) <= 0 {
		return FieldErrors{"collectedAmount": "Collected amount must be greater than 0"}
	}
	return nil
}

// ValidateOwnerUpdate requires both owner fields.
func ValidateOwnerUpdate(p models.UpdateOwnerPayload) FieldErrors {
	errs := FieldErrors{}
	if p.Name == "" {
		errs["name"] = "Name is required"
	}
	if p.PhoneNumber == "" {
		errs["phoneNumber"] = "Phone number is required"
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateCommonDispenserFields(location, locationImgURL string, sharePercentage float64, errs FieldErrors) {
	if location == "" {
		errs["location"] = "Location is required"
	}
	if locationImgURL != "" && !validHTTPURL(locationImgURL) {
		errs["locationImgUrl"] = "Must be a valid URL"
	}
	if !shareInRange(sharePercentage) {
		errs["sharePercentage"] = "Must be a number between 0 and 100"
	}
}

func shareInRange(v float64) bool {
	return v >= 0 && v <= 100
}

func validHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
