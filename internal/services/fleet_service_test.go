package services

import (
	"context"
	"errors"
	"testing"

	"fleet-backend/internal/fleet"
	"fleet-backend/internal/models"
	"fleet-backend/internal/upstream"
	"fleet-backend/internal/validation"

	"github.com/shopspring/decimal"
)

type stubBackend struct {
	dispensers []models.Dispenser
	owners     []models.Owner

	createCalls  int
	collectErr   error
	collectCalls int
}

func (b *stubBackend) ListDispensers(ctx context.Context) ([]models.Dispenser, error) {
	return append([]models.Dispenser(nil), b.dispensers...), nil
}

func (b *stubBackend) ListOwners(ctx context.Context) ([]models.Owner, error) {
	return append([]models.Owner(nil), b.owners...), nil
}

func (b *stubBackend) CreateDispenser(ctx context.Context, payload models.CreateDispenserPayload) (*models.Dispenser, error) {
	b.createCalls++
	return &models.Dispenser{ID: "d-new", OwnerID: payload.OwnerID, Location: payload.Location, SharePercentage: payload.SharePercentage}, nil
}

func (b *stubBackend) UpdateDispenser(ctx context.Context, id string, payload models.UpdateDispenserPayload) (*models.Dispenser, error) {
	d := b.dispensers[0]
	if payload.Location != nil {
		d.Location = *payload.Location
	}
	if payload.SharePercentage != nil {
		d.SharePercentage = *payload.SharePercentage
	}
	return &d, nil
}

func (b *stubBackend) CollectDispenser(ctx context.Context, id string, payload models.CollectDispenserPayload) (*models.Dispenser, error) {
	b.collectCalls++
	if b.collectErr != nil {
		return nil, b.collectErr
	}
	d := b.dispensers[0]
	d.CollectedAmount = d.CollectedAmount.Add(payload.CollectedAmount)
	return &d, nil
}

func (b *stubBackend) DeleteDispenser(ctx context.Context, id string) error { return nil }

func (b *stubBackend) UpdateOwner(ctx context.Context, id string, payload models.UpdateOwnerPayload) (*models.Owner, error) {
	return &models.Owner{ID: id, Name: payload.Name, PhoneNumber: payload.PhoneNumber}, nil
}

func (b *stubBackend) CurrentUser(ctx context.Context) (*models.User, error) {
	return &models.User{ID: "u1", Name: "Operator"}, nil
}

func newService(t *testing.T, backend *stubBackend) *FleetService {
	t.Helper()
	store := fleet.NewStore(backend, fleet.LogNotifier{})
	svc := NewFleetService(store, backend, nil, nil)
	if err := svc.EnsureLoaded(context.Background()); err != nil {
		t.Fatalf("EnsureLoaded failed: %v", err)
	}
	return svc
}

func fleetFixture() *stubBackend {
	return &stubBackend{
		dispensers: []models.Dispenser{
			{
				ID:                  "d1",
				OwnerID:             "o1",
				Location:            "Pier 7",
				SharePercentage:     40,
				CollectedAmount:     decimal.NewFromInt(100),
				TotalMoneyGenerated: decimal.NewFromInt(250),
			},
			{
				ID:                  "d2",
				OwnerID:             "o2",
				Location:            "Dock 3",
				SharePercentage:     25,
				CollectedAmount:     decimal.NewFromInt(200),
				TotalMoneyGenerated: decimal.NewFromInt(400),
			},
		},
		owners: []models.Owner{
			{ID: "o1", Name: "Jane"},
			{ID: "o2", Name: "Sam"},
		},
	}
}

func TestCreateDispenserRejectsInvalidFormWithoutBackendCall(t *testing.T) {
	backend := fleetFixture()
	svc := newService(t, backend)

	form := models.DispenserForm{OwnerID: "o1", OwnerName: "Jane", Location: "Pier 7", SharePercentage: 40}
	_, err := svc.CreateDispenser(context.Background(), form)

	var ferr validation.FieldErrors
	if !errors.As(err, &ferr) {
		t.Fatalf("expected FieldErrors, got %T: %v", err, err)
	}
	if backend.createCalls != 0 {
		t.Fatal("invalid form must not reach the backend")
	}
}

func TestCreateDispenserValidFormReachesStore(t *testing.T) {
	backend := fleetFixture()
	svc := newService(t, backend)

	created, err := svc.CreateDispenser(context.Background(), models.DispenserForm{
		OwnerID: "o1", Location: "Quay 1", SharePercentage: 30,
	})
	if err != nil {
		t.Fatalf("CreateDispenser failed: %v", err)
	}
	if created.ID != "d-new" {
		t.Fatalf("unexpected dispenser: %+v", created)
	}
	dispensers, err := svc.Dispensers(context.Background())
	if err != nil {
		t.Fatalf("Dispensers failed: %v", err)
	}
	if len(dispensers) != 3 {
		t.Fatalf("expected 3 cached dispensers, got %d", len(dispensers))
	}
}

func TestCollectDispenserValidationErrorIsReturned(t *testing.T) {
	backend := fleetFixture()
	svc := newService(t, backend)

	_, applied, err := svc.CollectDispenser(context.Background(), "d1", models.CollectDispenserPayload{CollectedAmount: decimal.Zero})
	if err == nil || applied {
		t.Fatalf("zero amount must fail validation: applied=%v err=%v", applied, err)
	}
	if backend.collectCalls != 0 {
		t.Fatal("invalid collection must not reach the backend")
	}
}

func TestCollectDispenserBackendFailureIsNotAnError(t *testing.T) {
	backend := fleetFixture()
	backend.collectErr = &upstream.APIError{Status: 422, Message: "period not open", Type: "validation"}
	svc := newService(t, backend)

	updated, applied, err := svc.CollectDispenser(context.Background(), "d1", models.CollectDispenserPayload{CollectedAmount: decimal.NewFromInt(10)})
	if err != nil {
		t.Fatalf("backend rejection must not surface as an error, got %v", err)
	}
	if applied || updated != nil {
		t.Fatal("failed collection must report applied=false with no dispenser")
	}
}

func TestCollectDispenserSuccess(t *testing.T) {
	backend := fleetFixture()
	svc := newService(t, backend)

	amount := decimal.RequireFromString("50.50")
	updated, applied, err := svc.CollectDispenser(context.Background(), "d1", models.CollectDispenserPayload{CollectedAmount: amount})
	if err != nil || !applied {
		t.Fatalf("expected applied collection, got applied=%v err=%v", applied, err)
	}
	if !updated.CollectedAmount.Equal(decimal.RequireFromString("150.50")) {
		t.Fatalf("unexpected collected amount: %s", updated.CollectedAmount)
	}
}

func TestSummaryComputesRevenueSplit(t *testing.T) {
	svc := newService(t, fleetFixture())

	summary, err := svc.Summary(context.Background())
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}

	if summary.DispenserCount != 2 || summary.OwnerCount != 2 {
		t.Fatalf("unexpected counts: %+v", summary)
	}
	if !summary.TotalCollected.Equal(decimal.NewFromInt(300)) {
		t.Errorf("total collected: got %s, want 300", summary.TotalCollected)
	}
	if !summary.TotalGenerated.Equal(decimal.NewFromInt(650)) {
		t.Errorf("total generated: got %s, want 650", summary.TotalGenerated)
	}
	// 40% of 100 plus 25% of 200
	if !summary.OwnerShareTotal.Equal(decimal.NewFromInt(90)) {
		t.Errorf("owner share: got %s, want 90", summary.OwnerShareTotal)
	}
	if !summary.PlatformShareTotal.Equal(decimal.NewFromInt(210)) {
		t.Errorf("platform share: got %s, want 210", summary.PlatformShareTotal)
	}
}

func TestUpdateOwnerValidation(t *testing.T) {
	svc := newService(t, fleetFixture())

	if _, err := svc.UpdateOwner(context.Background(), "o1", models.UpdateOwnerPayload{}); err == nil {
		t.Fatal("empty owner update must fail validation")
	}

	updated, err := svc.UpdateOwner(context.Background(), "o1", models.UpdateOwnerPayload{Name: "Janet", PhoneNumber: "555-0123"})
	if err != nil {
		t.Fatalf("UpdateOwner failed: %v", err)
	}
	if updated.Name != "Janet" {
		t.Fatalf("unexpected owner: %+v", updated)
	}
}
