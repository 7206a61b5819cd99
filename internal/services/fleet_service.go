package services

import (
	"context"
	"log"
	"time"

	"fleet-backend/internal/cache"
	"fleet-backend/internal/fleet"
	"fleet-backend/internal/metrics"
	"fleet-backend/internal/models"
	"fleet-backend/internal/repositories"
	"fleet-backend/internal/validation"
	"fleet-backend/internal/ws"

	"github.com/shopspring/decimal"
)

// UserSource fetches the operator bound to the upstream session.
type UserSource interface {
	CurrentUser(ctx context.Context) (*models.User, error)
}

// FleetService orchestrates the fleet store with the collection journal,
// the summary cache and the websocket hub. Journal and Hub may be nil;
// everything they add is best-effort around the core store semantics.
type FleetService struct {
	Store   *fleet.Store
	Users   UserSource
	Journal *repositories.CollectionEventRepository
	Hub     *ws.Hub
}

func NewFleetService(store *fleet.Store, users UserSource, journal *repositories.CollectionEventRepository, hub *ws.Hub) *FleetService {
	return &FleetService{Store: store, Users: users, Journal: journal, Hub: hub}
}

// EnsureLoaded loads the snapshot on first use. An errored store is retried;
// a ready store is left as is.
func (s *FleetService) EnsureLoaded(ctx context.Context) error {
	if s.Store.State() == fleet.StateReady {
		return nil
	}
	return s.Store.Load(ctx)
}

// Dispensers returns the cached dispenser list, loading it on first use.
func (s *FleetService) Dispensers(ctx context.Context) ([]models.Dispenser, error) {
	if err := s.EnsureLoaded(ctx); err != nil {
		return nil, err
	}
	return s.Store.Dispensers(), nil
}

// Owners returns the cached owner list, loading it on first use.
func (s *FleetService) Owners(ctx context.Context) ([]models.Owner, error) {
	if err := s.EnsureLoaded(ctx); err != nil {
		return nil, err
	}
	return s.Store.Owners(), nil
}

// Refresh re-fetches both collections, fully replacing the cache.
func (s *FleetService) Refresh(ctx context.Context) error {
	return s.Store.Refresh(ctx)
}

// CreateDispenser validates a raw form payload and creates the dispenser.
// The validated payload carries its creation mode; in new-owner mode the
// store also caches the owner nested in the response.
func (s *FleetService) CreateDispenser(ctx context.Context, form models.DispenserForm) (*models.Dispenser, error) {
	payload, ferr := validation.ValidateCreateDispenser(form)
	if ferr != nil {
		metrics.FleetOperationsTotal.WithLabelValues("create", "invalid").Inc()
		return nil, ferr
	}

	created, err := s.Store.CreateDispenser(ctx, payload)
	if err != nil {
		metrics.FleetOperationsTotal.WithLabelValues("create", "failed").Inc()
		return nil, err
	}
	metrics.FleetOperationsTotal.WithLabelValues("create", "success").Inc()

	cache.InvalidateFleetSummary(ctx)
	if s.Hub != nil {
		event := ws.Event{Type: ws.EventCreated, Dispenser: created}
		if payload.Mode == models.OwnerModeNew {
			owner := created.Owner
			event.Owner = &owner
		}
		s.Hub.Broadcast(event)
	}
	return created, nil
}

// UpdateDispenser validates and applies a partial update.
func (s *FleetService) UpdateDispenser(ctx context.Context, id string, payload models.UpdateDispenserPayload) (*models.Dispenser, error) {
	if ferr := validation.ValidateUpdateDispenser(payload); ferr != nil {
		metrics.FleetOperationsTotal.WithLabelValues("update", "invalid").Inc()
		return nil, ferr
	}

	updated, err := s.Store.UpdateDispenser(ctx, id, payload)
	if err != nil {
		metrics.FleetOperationsTotal.WithLabelValues("update", "failed").Inc()
		return nil, err
	}
	metrics.FleetOperationsTotal.WithLabelValues("update", "success").Inc()

	cache.InvalidateFleetSummary(ctx)
	if s.Hub != nil {
		s.Hub.Broadcast(ws.Event{Type: ws.EventUpdated, Dispenser: updated})
	}
	return updated, nil
}

// CollectDispenser validates and records a collection. Validation failures
// are returned; a backend or transport failure is only notified (applied is
// false and err is nil), so a failed collection never blocks the caller.
// An applied collection is journaled with the split frozen at this moment.
func (s *FleetService) CollectDispenser(ctx context.Context, id string, payload models.CollectDispenserPayload) (*models.Dispenser, bool, error) {
	if ferr := validation.ValidateCollectDispenser(payload); ferr != nil {
		metrics.FleetOperationsTotal.WithLabelValues("collect", "invalid").Inc()
		return nil, false, ferr
	}

	updated, applied := s.Store.CollectDispenser(ctx, id, payload)
	if !applied {
		metrics.FleetOperationsTotal.WithLabelValues("collect", "failed").Inc()
		return nil, false, nil
	}
	metrics.FleetOperationsTotal.WithLabelValues("collect", "success").Inc()

	s.journalCollection(ctx, updated, payload.CollectedAmount)
	cache.InvalidateFleetSummary(ctx)
	if s.Hub != nil {
		s.Hub.Broadcast(ws.Event{Type: ws.EventCollected, Dispenser: updated})
	}
	return updated, true, nil
}

// RemoveDispenser deletes a dispenser and drops it from the cache.
func (s *FleetService) RemoveDispenser(ctx context.Context, id string) error {
	if err := s.Store.RemoveDispenser(ctx, id); err != nil {
		metrics.FleetOperationsTotal.WithLabelValues("remove", "failed").Inc()
		return err
	}
	metrics.FleetOperationsTotal.WithLabelValues("remove", "success").Inc()

	cache.InvalidateFleetSummary(ctx)
	if s.Hub != nil {
		s.Hub.Broadcast(ws.Event{Type: ws.EventDeleted, DispenserID: id})
	}
	return nil
}

// UpdateOwner validates and applies an owner update.
func (s *FleetService) UpdateOwner(ctx context.Context, id string, payload models.UpdateOwnerPayload) (*models.Owner, error) {
	if ferr := validation.ValidateOwnerUpdate(payload); ferr != nil {
		metrics.FleetOperationsTotal.WithLabelValues("update_owner", "invalid").Inc()
		return nil, ferr
	}

	updated, err := s.Store.UpdateOwner(ctx, id, payload)
	if err != nil {
		metrics.FleetOperationsTotal.WithLabelValues("update_owner", "failed").Inc()
		return nil, err
	}
	metrics.FleetOperationsTotal.WithLabelValues("update_owner", "success").Inc()
	return updated, nil
}

// CurrentUser fetches the operator for the session credential.
func (s *FleetService) CurrentUser(ctx context.Context) (*models.User, error) {
	return s.Users.CurrentUser(ctx)
}

// Summary computes the fleet-wide revenue split, serving a short-lived
// cached copy when redis holds one.
func (s *FleetService) Summary(ctx context.Context) (*models.FleetSummary, error) {
	if cached, ok := cache.GetFleetSummary(ctx); ok {
		return cached, nil
	}

	if err := s.EnsureLoaded(ctx); err != nil {
		return nil, err
	}

	summary := &models.FleetSummary{
		TotalCollected:     decimal.Zero,
		TotalGenerated:     decimal.Zero,
		OwnerShareTotal:    decimal.Zero,
		PlatformShareTotal: decimal.Zero,
		GeneratedAt:        time.Now(),
	}
	dispensers := s.Store.Dispensers()
	summary.DispenserCount = len(dispensers)
	summary.OwnerCount = len(s.Store.Owners())
	for i := range dispensers {
		d := &dispensers[i]
		summary.TotalCollected = summary.TotalCollected.Add(d.CollectedAmount)
		summary.TotalGenerated = summary.TotalGenerated.Add(d.TotalMoneyGenerated)
		summary.OwnerShareTotal = summary.OwnerShareTotal.Add(d.OwnerShare(d.CollectedAmount))
		summary.PlatformShareTotal = summary.PlatformShareTotal.Add(d.PlatformShare(d.CollectedAmount))
	}

	cache.SetFleetSummary(ctx, summary)
	return summary, nil
}

func (s *FleetService) journalCollection(ctx context.Context, d *models.Dispenser, amount decimal.Decimal) {
	if s.Journal == nil {
		return
	}
	event := &models.CollectionEvent{
		DispenserID:     d.ID,
		OwnerID:         d.OwnerID,
		Location:        d.Location,
		Amount:          amount,
		SharePercentage: d.SharePercentage,
		OwnerShare:      d.OwnerShare(amount),
		PlatformShare:   d.PlatformShare(amount),
		CollectedAt:     time.Now(),
	}
	if err := s.Journal.Create(ctx, event); err != nil {
		// The backend already accepted the collection; a journal miss only
		// leaves a gap in local history.
		log.Printf("[Journal] Failed to record collection for dispenser %s: %v", d.ID, err)
	}
}
