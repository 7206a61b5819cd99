package validation

import (
	"testing"

	"fleet-backend/internal/models"

	"github.com/shopspring/decimal"
)

func validForm() models.DispenserForm {
	return models.DispenserForm{
		OwnerID:         "owner-1",
		Location:        "Pier 7",
		SharePercentage: 40,
	}
}

func TestValidateCreateDispenserExistingOwner(t *testing.T) {
	payload, errs := ValidateCreateDispenser(validForm())
	if errs != nil {
		t.Fatalf("expected valid payload, got errors: %v", errs)
	}
	if payload.Mode != models.OwnerModeExisting {
		t.Fatalf("expected existing-owner mode, got %s", payload.Mode)
	}
	if payload.OwnerID != "owner-1" || payload.OwnerName != "" || payload.OwnerPhoneNumber != "" {
		t.Fatalf("unexpected payload fields: %+v", payload)
	}
}

func TestValidateCreateDispenserNewOwner(t *testing.T) {
	form := models.DispenserForm{
		OwnerName:        "Jane",
		OwnerPhoneNumber: "555-0100",
		Location:         "Pier 7",
		SharePercentage:  40,
	}

	payload, errs := ValidateCreateDispenser(form)
	if errs != nil {
		t.Fatalf("expected valid payload, got errors: %v", errs)
	}
	if payload.Mode != models.OwnerModeNew {
		t.Fatalf("expected new-owner mode, got %s", payload.Mode)
	}
	if payload.OwnerID != "" {
		t.Fatalf("owner id must stay empty in new-owner mode, got %q", payload.OwnerID)
	}
}

func TestValidateCreateDispenserBothModesRejected(t *testing.T) {
	form := validForm()
	form.OwnerName = "Jane"

	if _, errs := ValidateCreateDispenser(form); errs == nil {
		t.Fatal("payload with ownerId and ownerName both set must fail")
	} else if _, ok := errs["ownerName"]; !ok {
		t.Fatalf("expected ownerName error, got %v", errs)
	}
}

func TestValidateCreateDispenserNeitherModeRejected(t *testing.T) {
	form := models.DispenserForm{Location: "Pier 7", SharePercentage: 40}

	_, errs := ValidateCreateDispenser(form)
	if errs == nil {
		t.Fatal("payload matching neither mode must fail")
	}
	if _, ok := errs["ownerName"]; !ok {
		t.Fatalf("expected ownerName error, got %v", errs)
	}
	if _, ok := errs["ownerPhoneNumber"]; !ok {
		t.Fatalf("expected ownerPhoneNumber error, got %v", errs)
	}
}

func TestValidateCreateDispenserSharePercentageBounds(t *testing.T) {
	cases := []struct {
		share float64
		valid bool
	}{
		{0, true},
		{100, true},
		{40, true},
		{-0.01, false},
		{100.01, false},
	}

	for _, tc := range cases {
		form := validForm()
		form.SharePercentage = tc.share
		_, errs := ValidateCreateDispenser(form)
		if tc.valid && errs != nil {
			t.Errorf("share %v: expected valid, got %v", tc.share, errs)
		}
		if !tc.valid {
			if errs == nil {
				t.Errorf("share %v: expected failure", tc.share)
			} else if _, ok := errs["sharePercentage"]; !ok {
				t.Errorf("share %v: expected sharePercentage error, got %v", tc.share, errs)
			}
		}
	}
}

func TestValidateCreateDispenserLocationImgURL(t *testing.T) {
	form := validForm()
	form.LocationImgURL = "not a url"
	if _, errs := ValidateCreateDispenser(form); errs == nil {
		t.Fatal("invalid image URL must fail")
	}

	form.LocationImgURL = "https://example.com/pic.jpg"
	if _, errs := ValidateCreateDispenser(form); errs != nil {
		t.Fatalf("valid image URL rejected: %v", errs)
	}

	form.LocationImgURL = ""
	if _, errs := ValidateCreateDispenser(form); errs != nil {
		t.Fatalf("empty image URL rejected: %v", errs)
	}
}

func TestValidateCreateDispenserPayloadModeMismatch(t *testing.T) {
	p := models.NewDispenserWithExistingOwner("owner-1", "Pier 7", "", 40)
	p.OwnerName = "Jane"
	if errs := ValidateCreateDispenserPayload(p); errs == nil {
		t.Fatal("existing-owner payload with owner name must fail")
	}

	p = models.NewDispenserWithNewOwner("Jane", "555-0100", "Pier 7", "", 40)
	p.OwnerID = "owner-1"
	if errs := ValidateCreateDispenserPayload(p); errs == nil {
		t.Fatal("new-owner payload with owner id must fail")
	}

	p = models.CreateDispenserPayload{Location: "Pier 7", SharePercentage: 40}
	if errs := ValidateCreateDispenserPayload(p); errs == nil {
		t.Fatal("payload without a mode must fail")
	}
}

func TestValidateUpdateDispenser(t *testing.T) {
	if errs := ValidateUpdateDispenser(models.UpdateDispenserPayload{}); errs == nil {
		t.Fatal("empty update must fail")
	}

	empty := ""
	if errs := ValidateUpdateDispenser(models.UpdateDispenserPayload{Location: &empty}); errs == nil {
		t.Fatal("empty location must fail")
	}

	over := 100.5
	if errs := ValidateUpdateDispenser(models.UpdateDispenserPayload{SharePercentage: &over}); errs == nil {
		t.Fatal("share above 100 must fail")
	}

	loc := "Dock 3"
	share := 25.0
	if errs := ValidateUpdateDispenser(models.UpdateDispenserPayload{Location: &loc, SharePercentage: &share}); errs != nil {
		t.Fatalf("valid update rejected: %v", errs)
	}
}

func TestValidateCollectDispenser(t *testing.T) {
	if errs := ValidateCollectDispenser(models.CollectDispenserPayload{CollectedAmount: decimal.Zero}); errs == nil {
		t.Fatal("zero collection must fail")
	}
	if errs := ValidateCollectDispenser(models.CollectDispenserPayload{CollectedAmount: decimal.NewFromInt(-5)}); errs == nil {
		t.Fatal("negative collection must fail")
	}
	if errs := ValidateCollectDispenser(models.CollectDispenserPayload{CollectedAmount: decimal.RequireFromString("0.01")}); errs != nil {
		t.Fatalf("0.01 collection rejected: %v", errs)
	}
}

func TestValidateOwnerUpdate(t *testing.T) {
	if errs := ValidateOwnerUpdate(models.UpdateOwnerPayload{}); errs == nil {
		t.Fatal("empty owner update must fail")
	}
	if errs := ValidateOwnerUpdate(models.UpdateOwnerPayload{Name: "Jane"}); errs == nil {
		t.Fatal("missing phone must fail")
	}
	if errs := ValidateOwnerUpdate(models.UpdateOwnerPayload{Name: "Jane", PhoneNumber: "555-0100"}); errs != nil {
		t.Fatalf("valid owner update rejected: %v", errs)
	}
}
