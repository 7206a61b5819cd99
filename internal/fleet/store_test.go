package fleet

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"

	"fleet-backend/internal/models"
	"fleet-backend/internal/upstream"

	"github.com/shopspring/decimal"
)

type fakeBackend struct {
	dispensers []models.Dispenser
	owners     []models.Owner

	listDispensersErr error
	listOwnersErr     error

	createFn  func(payload models.CreateDispenserPayload) (*models.Dispenser, error)
	updateFn  func(id string, payload models.UpdateDispenserPayload) (*models.Dispenser, error)
	collectFn func(id string, payload models.CollectDispenserPayload) (*models.Dispenser, error)
	deleteErr error
	ownerFn   func(id string, payload models.UpdateOwnerPayload) (*models.Owner, error)
}

func (f *fakeBackend) ListDispensers(ctx context.Context) ([]models.Dispenser, error) {
	if f.listDispensersErr != nil {
		return nil, f.listDispensersErr
	}
	out := make([]models.Dispenser, len(f.dispensers))
	copy(out, f.dispensers)
	return out, nil
}

func (f *fakeBackend) ListOwners(ctx context.Context) ([]models.Owner, error) {
	if f.listOwnersErr != nil {
		return nil, f.listOwnersErr
	}
	out := make([]models.Owner, len(f.owners))
	copy(out, f.owners)
	return out, nil
}

func (f *fakeBackend) CreateDispenser(ctx context.Context, payload models.CreateDispenserPayload) (*models.Dispenser, error) {
	return f.createFn(payload)
}

func (f *fakeBackend) UpdateDispenser(ctx context.Context, id string, payload models.UpdateDispenserPayload) (*models.Dispenser, error) {
	return f.updateFn(id, payload)
}

func (f *fakeBackend) CollectDispenser(ctx context.Context, id string, payload models.CollectDispenserPayload) (*models.Dispenser, error) {
	return f.collectFn(id, payload)
}

func (f *fakeBackend) DeleteDispenser(ctx context.Context, id string) error {
	return f.deleteErr
}

func (f *fakeBackend) UpdateOwner(ctx context.Context, id string, payload models.UpdateOwnerPayload) (*models.Owner, error) {
	return f.ownerFn(id, payload)
}

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *recordingNotifier) Notify(message, detail string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, message)
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.messages)
}

func seedBackend() *fakeBackend {
	return &fakeBackend{
		dispensers: []models.Dispenser{
			{ID: "d1", OwnerID: "o1", Location: "Pier 7", SharePercentage: 40, Owner: models.Owner{ID: "o1", Name: "Jane"}},
			{ID: "d2", OwnerID: "o2", Location: "Dock 3", SharePercentage: 25, Owner: models.Owner{ID: "o2", Name: "Sam"}},
		},
		owners: []models.Owner{
			{ID: "o1", Name: "Jane", PhoneNumber: "555-0100"},
			{ID: "o2", Name: "Sam", PhoneNumber: "555-0101"},
		},
	}
}

func readyStore(t *testing.T, backend *fakeBackend) *Store {
	t.Helper()
	store := NewStore(backend, &recordingNotifier{})
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return store
}

func TestLoadEntersReady(t *testing.T) {
	store := readyStore(t, seedBackend())

	if store.State() != StateReady {
		t.Fatalf("expected ready state, got %s", store.State())
	}
	if len(store.Dispensers()) != 2 || len(store.Owners()) != 2 {
		t.Fatalf("snapshot not populated: %d dispensers, %d owners", len(store.Dispensers()), len(store.Owners()))
	}
}

func TestLoadOwnersFailureLeavesNoPartialState(t *testing.T) {
	backend := seedBackend()
	backend.listOwnersErr = errors.New("owners fetch refused")

	store := NewStore(backend, &recordingNotifier{})
	err := store.Load(context.Background())
	if err == nil {
		t.Fatal("expected load error")
	}

	if store.State() != StateErrored {
		t.Fatalf("expected errored state, got %s", store.State())
	}
	if store.LoadError() != "owners fetch refused" {
		t.Fatalf("expected owners failure message, got %q", store.LoadError())
	}
	if len(store.Dispensers()) != 0 {
		t.Fatal("dispensers must not be populated when owners fetch fails")
	}
	if _, err := store.CreateDispenser(context.Background(), models.NewDispenserWithExistingOwner("o1", "Pier 7", "", 40)); !errors.Is(err, ErrNotReady) {
		t.Fatalf("mutation on errored store: expected ErrNotReady, got %v", err)
	}
}

func TestLoadFailureKeepsStaleSnapshot(t *testing.T) {
	backend := seedBackend()
	store := readyStore(t, backend)

	backend.listDispensersErr = errors.New("backend down")
	if err := store.Refresh(context.Background()); err == nil {
		t.Fatal("expected refresh error")
	}

	if store.State() != StateErrored {
		t.Fatalf("expected errored state, got %s", store.State())
	}
	if len(store.Dispensers()) != 2 {
		t.Fatal("stale snapshot must be left untouched by a failed refresh")
	}
}

func TestRefreshIsIdempotent(t *testing.T) {
	backend := seedBackend()
	store := readyStore(t, backend)

	if err := store.Refresh(context.Background()); err != nil {
		t.Fatalf("first refresh failed: %v", err)
	}
	first := store.Dispensers()
	firstOwners := store.Owners()

	if err := store.Refresh(context.Background()); err != nil {
		t.Fatalf("second refresh failed: %v", err)
	}
	if !reflect.DeepEqual(first, store.Dispensers()) || !reflect.DeepEqual(firstOwners, store.Owners()) {
		t.Fatal("back-to-back refreshes must yield identical snapshots")
	}
}

func TestCreateDispenserExistingOwnerAppends(t *testing.T) {
	backend := seedBackend()
	backend.createFn = func(payload models.CreateDispenserPayload) (*models.Dispenser, error) {
		return &models.Dispenser{ID: "d3", OwnerID: payload.OwnerID, Location: payload.Location, SharePercentage: payload.SharePercentage}, nil
	}
	store := readyStore(t, backend)

	created, err := store.CreateDispenser(context.Background(), models.NewDispenserWithExistingOwner("o1", "Quay 1", "", 30))
	if err != nil {
		t.Fatalf("CreateDispenser failed: %v", err)
	}

	dispensers := store.Dispensers()
	if len(dispensers) != 3 || dispensers[2].ID != created.ID {
		t.Fatalf("dispenser not appended: %+v", dispensers)
	}
	if len(store.Owners()) != 2 {
		t.Fatal("existing-owner mode must not grow the owner cache")
	}
}

func TestCreateDispenserNewOwnerCachesNestedOwner(t *testing.T) {
	backend := seedBackend()
	backend.createFn = func(payload models.CreateDispenserPayload) (*models.Dispenser, error) {
		owner := models.Owner{ID: "o3", Name: payload.OwnerName, PhoneNumber: payload.OwnerPhoneNumber}
		return &models.Dispenser{
			ID:              "d3",
			OwnerID:         owner.ID,
			Location:        payload.Location,
			SharePercentage: payload.SharePercentage,
			CollectedAmount: decimal.Zero,
			Owner:           owner,
		}, nil
	}
	store := readyStore(t, backend)

	created, err := store.CreateDispenser(context.Background(), models.NewDispenserWithNewOwner("Jane", "555-0100", "Pier 7", "", 40))
	if err != nil {
		t.Fatalf("CreateDispenser failed: %v", err)
	}

	owners := store.Owners()
	var matches int
	for _, o := range owners {
		if o.ID == created.Owner.ID {
			matches++
		}
	}
	if matches != 1 {
		t.Fatalf("new owner must appear exactly once in the cache, found %d", matches)
	}
	if created.OwnerID != created.Owner.ID {
		t.Fatalf("dispenser ownerId %q does not match nested owner id %q", created.OwnerID, created.Owner.ID)
	}
	if !created.CollectedAmount.Equal(decimal.Zero) {
		t.Fatalf("fresh dispenser must start at zero collected, got %s", created.CollectedAmount)
	}
}

func TestCreateDispenserFailureLeavesCacheUntouched(t *testing.T) {
	backend := seedBackend()
	backend.createFn = func(payload models.CreateDispenserPayload) (*models.Dispenser, error) {
		return nil, &upstream.APIError{Status: 409, Message: "duplicate location", Type: "conflict"}
	}
	store := readyStore(t, backend)

	_, err := store.CreateDispenser(context.Background(), models.NewDispenserWithExistingOwner("o1", "Pier 7", "", 40))
	if err == nil {
		t.Fatal("expected create failure to be re-raised")
	}
	if len(store.Dispensers()) != 2 || len(store.Owners()) != 2 {
		t.Fatal("failed create must leave the cache unchanged")
	}
}

func TestUpdateDispenserReplacesByIDPreservingOrder(t *testing.T) {
	backend := seedBackend()
	backend.updateFn = func(id string, payload models.UpdateDispenserPayload) (*models.Dispenser, error) {
		d := backend.dispensers[0]
		d.Location = *payload.Location
		return &d, nil
	}
	store := readyStore(t, backend)

	loc := "X"
	updated, err := store.UpdateDispenser(context.Background(), "d1", models.UpdateDispenserPayload{Location: &loc})
	if err != nil {
		t.Fatalf("UpdateDispenser failed: %v", err)
	}

	dispensers := store.Dispensers()
	if dispensers[0].ID != "d1" || dispensers[1].ID != "d2" {
		t.Fatal("list order must be preserved")
	}
	if dispensers[0].Location != "X" {
		t.Fatalf("expected updated location, got %q", dispensers[0].Location)
	}
	if dispensers[0].SharePercentage != updated.SharePercentage || dispensers[0].OwnerID != "o1" {
		t.Fatal("fields beyond the patch must match the backend response")
	}
}

func TestUpdateDispenserFailureLeavesCacheUntouched(t *testing.T) {
	backend := seedBackend()
	backend.updateFn = func(id string, payload models.UpdateDispenserPayload) (*models.Dispenser, error) {
		return nil, &upstream.TransportError{Err: errors.New("connection reset")}
	}
	store := readyStore(t, backend)

	loc := "X"
	if _, err := store.UpdateDispenser(context.Background(), "d1", models.UpdateDispenserPayload{Location: &loc}); err == nil {
		t.Fatal("expected update failure to be re-raised")
	}
	if store.Dispensers()[0].Location != "Pier 7" {
		t.Fatal("failed update must leave the cache unchanged")
	}
}

func TestCollectDispenserAppliesAndReplaces(t *testing.T) {
	backend := seedBackend()
	backend.collectFn = func(id string, payload models.CollectDispenserPayload) (*models.Dispenser, error) {
		d := backend.dispensers[0]
		d.CollectedAmount = d.CollectedAmount.Add(payload.CollectedAmount)
		d.LastPeriodCollectedAmount = payload.CollectedAmount
		return &d, nil
	}
	store := readyStore(t, backend)

	amount := decimal.RequireFromString("75.25")
	updated, applied := store.CollectDispenser(context.Background(), "d1", models.CollectDispenserPayload{CollectedAmount: amount})
	if !applied {
		t.Fatal("expected collection to apply")
	}
	if !updated.LastPeriodCollectedAmount.Equal(amount) {
		t.Fatalf("unexpected last period amount: %s", updated.LastPeriodCollectedAmount)
	}
	if !store.Dispensers()[0].CollectedAmount.Equal(amount) {
		t.Fatal("cache entry not replaced with collected totals")
	}
}

func TestCollectDispenserFailureNotifiesWithoutError(t *testing.T) {
	backend := seedBackend()
	backend.collectFn = func(id string, payload models.CollectDispenserPayload) (*models.Dispenser, error) {
		return nil, &upstream.APIError{Status: 422, Message: "period not open", Type: "validation", Summary: "Close the period first"}
	}
	notifier := &recordingNotifier{}
	store := NewStore(backend, notifier)
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	updated, applied := store.CollectDispenser(context.Background(), "d1", models.CollectDispenserPayload{CollectedAmount: decimal.NewFromInt(10)})
	if applied || updated != nil {
		t.Fatal("failed collection must not apply")
	}
	if notifier.count() != 1 {
		t.Fatalf("expected exactly one notification, got %d", notifier.count())
	}
	if !store.Dispensers()[0].CollectedAmount.Equal(decimal.Zero) {
		t.Fatal("failed collection must leave the cache unchanged")
	}
}

func TestRemoveDispenserFiltersByID(t *testing.T) {
	store := readyStore(t, seedBackend())

	if err := store.RemoveDispenser(context.Background(), "d1"); err != nil {
		t.Fatalf("RemoveDispenser failed: %v", err)
	}

	dispensers := store.Dispensers()
	if len(dispensers) != 1 || dispensers[0].ID != "d2" {
		t.Fatalf("expected only d2 to remain, got %+v", dispensers)
	}
}

func TestRemoveDispenserFailureLeavesCacheUntouched(t *testing.T) {
	backend := seedBackend()
	backend.deleteErr = &upstream.APIError{Status: 404, Message: "not found", Type: "not_found"}
	store := readyStore(t, backend)

	if err := store.RemoveDispenser(context.Background(), "d1"); err == nil {
		t.Fatal("expected delete failure to be re-raised")
	}
	if len(store.Dispensers()) != 2 {
		t.Fatal("failed delete must leave the cache unchanged")
	}
}

func TestUpdateOwnerReplacesByID(t *testing.T) {
	backend := seedBackend()
	backend.ownerFn = func(id string, payload models.UpdateOwnerPayload) (*models.Owner, error) {
		return &models.Owner{ID: id, Name: payload.Name, PhoneNumber: payload.PhoneNumber}, nil
	}
	store := readyStore(t, backend)

	if _, err := store.UpdateOwner(context.Background(), "o2", models.UpdateOwnerPayload{Name: "Samuel", PhoneNumber: "555-0199"}); err != nil {
		t.Fatalf("UpdateOwner failed: %v", err)
	}

	owners := store.Owners()
	if owners[0].ID != "o1" || owners[1].ID != "o2" {
		t.Fatal("owner list order must be preserved")
	}
	if owners[1].Name != "Samuel" {
		t.Fatalf("owner not replaced: %+v", owners[1])
	}
}

func TestMutationsRequireReadyState(t *testing.T) {
	store := NewStore(seedBackend(), &recordingNotifier{})

	if _, err := store.CreateDispenser(context.Background(), models.NewDispenserWithExistingOwner("o1", "Pier 7", "", 40)); !errors.Is(err, ErrNotReady) {
		t.Fatalf("expected ErrNotReady, got %v", err)
	}
	if err := store.RemoveDispenser(context.Background(), "d1"); !errors.Is(err, ErrNotReady) {
		t.Fatalf("expected ErrNotReady, got %v", err)
	}
	if _, applied := store.CollectDispenser(context.Background(), "d1", models.CollectDispenserPayload{CollectedAmount: decimal.NewFromInt(1)}); applied {
		t.Fatal("collect on uninitialized store must not apply")
	}
}
