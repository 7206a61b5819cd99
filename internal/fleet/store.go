package fleet

import (
	"context"
	"errors"
	"log"
	"sync"

	"fleet-backend/internal/models"
	"fleet-backend/internal/upstream"
)

// State is the lifecycle of a session's fleet snapshot.
type State int

const (
	StateUninitialized State = iota
	StateLoading
	StateReady
	StateErrored
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// ErrNotReady is returned by mutating operations before a successful Load.
var ErrNotReady = errors.New("fleet store is not ready")

// Backend is the slice of the dispenser backend the store depends on.
// *upstream.Client satisfies it.
type Backend interface {
	ListDispensers(ctx context.Context) ([]models.Dispenser, error)
	ListOwners(ctx context.Context) ([]models.Owner, error)
	CreateDispenser(ctx context.Context, payload models.CreateDispenserPayload) (*models.Dispenser, error)
	UpdateDispenser(ctx context.Context, id string, payload models.UpdateDispenserPayload) (*models.Dispenser, error)
	CollectDispenser(ctx context.Context, id string, payload models.CollectDispenserPayload) (*models.Dispenser, error)
	DeleteDispenser(ctx context.Context, id string) error
	UpdateOwner(ctx context.Context, id string, payload models.UpdateOwnerPayload) (*models.Owner, error)
}

// Notifier receives user-facing failure notices for operations whose errors
// are deliberately not re-raised (collect).
type Notifier interface {
	Notify(message, detail string)
}

// LogNotifier writes notices to the process log.
type LogNotifier struct{}

func (LogNotifier) Notify(message, detail string) {
	if detail != "" {
		log.Printf("[Fleet] %s (%s)", message, detail)
		return
	}
	log.Printf("[Fleet] %s", message)
}

// Store owns the in-memory session snapshot of dispensers and owners and
// keeps it consistent with the backend. All cache writes are append or
// replace-by-id; there is never a field-level merge, so a slow response can
// only be overwritten wholesale, not interleaved.
//
// Mutating operations run their network call without holding the lock, so
// several may be in flight at once; completions targeting different ids
// commute. Two updates racing on the same id are last-response-wins with no
// version check.
type Store struct {
	backend  Backend
	notifier Notifier

	mu         sync.RWMutex
	state      State
	loadErr    string
	dispensers []models.Dispenser
	owners     []models.Owner
}

// NewStore creates an uninitialized store. A nil notifier falls back to
// LogNotifier.
func NewStore(backend Backend, notifier Notifier) *Store {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &Store{
		backend:  backend,
		notifier: notifier,
		state:    StateUninitialized,
	}
}

// State returns the snapshot lifecycle state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// LoadError returns the failure message retained from the last failed Load,
// or "" when the store is not errored.
func (s *Store) LoadError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadErr
}

// Dispensers returns a copy of the cached dispenser list.
func (s *Store) Dispensers() []models.Dispenser {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Dispenser, len(s.dispensers))
	copy(out, s.dispensers)
	return out
}

// Owners returns a copy of the cached owner list.
func (s *Store) Owners() []models.Owner {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Owner, len(s.owners))
	copy(out, s.owners)
	return out
}

// Dispenser looks up a cached dispenser by id.
func (s *Store) Dispenser(id string) (models.Dispenser, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, d := range s.dispensers {
		if d.ID == id {
			return d, true
		}
	}
	return models.Dispenser{}, false
}

// Owner looks up a cached owner by id.
func (s *Store) Owner(id string) (models.Owner, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, o := range s.owners {
		if o.ID == id {
			return o, true
		}
	}
	return models.Owner{}, false
}

// Load fetches dispensers and owners concurrently. If either fetch fails the
// store enters StateErrored, retains the failure message, and leaves any
// stale data untouched; no partial population happens. On success both lists
// are replaced wholesale and the store enters StateReady.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	s.state = StateLoading
	s.mu.Unlock()

	var (
		wg          sync.WaitGroup
		dispensers  []models.Dispenser
		owners      []models.Owner
		dispenseErr error
		ownersErr   error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		dispensers, dispenseErr = s.backend.ListDispensers(ctx)
	}()
	go func() {
		defer wg.Done()
		owners, ownersErr = s.backend.ListOwners(ctx)
	}()
	wg.Wait()

	err := ownersErr
	if dispenseErr != nil {
		err = dispenseErr
	}
	if err != nil {
		s.mu.Lock()
		s.state = StateErrored
		s.loadErr = err.Error()
		s.mu.Unlock()
		log.Printf("[Fleet] Load failed: %v", err)
		return err
	}

	s.mu.Lock()
	s.dispensers = dispensers
	s.owners = owners
	s.state = StateReady
	s.loadErr = ""
	s.mu.Unlock()
	return nil
}

// Refresh re-runs Load, fully replacing the cache. Against in-flight
// optimistic patches the refresh result wins.
func (s *Store) Refresh(ctx context.Context) error {
	return s.Load(ctx)
}

// CreateDispenser sends a validated creation payload to the backend. On
// success the returned dispenser is appended to the cache; in new-owner mode
// the owner nested in the response is appended to the owner cache as well
// (it is never fetched separately). On failure the cache is unchanged and
// the error is returned to the caller.
func (s *Store) CreateDispenser(ctx context.Context, payload models.CreateDispenserPayload) (*models.Dispenser, error) {
	if err := s.requireReady(); err != nil {
		return nil, err
	}

	created, err := s.backend.CreateDispenser(ctx, payload)
	if err != nil {
		s.notifyFailure("Failed to create dispenser", err)
		return nil, err
	}

	s.mu.Lock()
	s.dispensers = append(s.dispensers, *created)
	if payload.Mode == models.OwnerModeNew {
		s.owners = append(s.owners, created.Owner)
	}
	s.mu.Unlock()
	return created, nil
}

// UpdateDispenser patches a dispenser and replaces the matching cache entry
// by id, preserving list order. On failure the cache is unchanged and the
// error is returned.
func (s *Store) UpdateDispenser(ctx context.Context, id string, payload models.UpdateDispenserPayload) (*models.Dispenser, error) {
	if err := s.requireReady(); err != nil {
		return nil, err
	}

	updated, err := s.backend.UpdateDispenser(ctx, id, payload)
	if err != nil {
		s.notifyFailure("Failed to update dispenser", err)
		return nil, err
	}

	s.replaceDispenser(*updated)
	return updated, nil
}

// CollectDispenser records a collection. A failed collection must not block
// the caller from presenting the still-valid prior state, so failures are
// reported through the notifier and not returned as an error; applied
// reports whether the cache was patched.
func (s *Store) CollectDispenser(ctx context.Context, id string, payload models.CollectDispenserPayload) (updated *models.Dispenser, applied bool) {
	if err := s.requireReady(); err != nil {
		s.notifier.Notify("Failed to collect money from the dispenser", err.Error())
		return nil, false
	}

	collected, err := s.backend.CollectDispenser(ctx, id, payload)
	if err != nil {
		s.notifyFailure("Failed to collect money from the dispenser", err)
		return nil, false
	}

	s.replaceDispenser(*collected)
	return collected, true
}

// RemoveDispenser deletes a dispenser and filters it out of the cache by id.
// On failure the cache is unchanged and the error is returned.
func (s *Store) RemoveDispenser(ctx context.Context, id string) error {
	if err := s.requireReady(); err != nil {
		return err
	}

	if err := s.backend.DeleteDispenser(ctx, id); err != nil {
		s.notifyFailure("Failed to delete dispenser", err)
		return err
	}

	s.mu.Lock()
	kept := s.dispensers[:0]
	for _, d := range s.dispensers {
		if d.ID != id {
			kept = append(kept, d)
		}
	}
	s.dispensers = kept
	s.mu.Unlock()
	return nil
}

// UpdateOwner patches an owner and replaces the matching owner cache entry
// by id, preserving list order.
func (s *Store) UpdateOwner(ctx context.Context, id string, payload models.UpdateOwnerPayload) (*models.Owner, error) {
	if err := s.requireReady(); err != nil {
		return nil, err
	}

	updated, err := s.backend.UpdateOwner(ctx, id, payload)
	if err != nil {
		s.notifyFailure("Failed to update owner", err)
		return nil, err
	}

	s.mu.Lock()
	for i := range s.owners {
		if s.owners[i].ID == updated.ID {
			s.owners[i] = *updated
			break
		}
	}
	s.mu.Unlock()
	return updated, nil
}

func (s *Store) requireReady() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state != StateReady {
		return ErrNotReady
	}
	return nil
}

func (s *Store) replaceDispenser(updated models.Dispenser) {
	s.mu.Lock()
	for i := range s.dispensers {
		if s.dispensers[i].ID == updated.ID {
			s.dispensers[i] = updated
			break
		}
	}
	s.mu.Unlock()
}

func (s *Store) notifyFailure(message string, err error) {
	var apiErr *upstream.APIError
	if errors.As(err, &apiErr) {
		s.notifier.Notify(message+" ("+apiErr.Type+")", apiErr.Summary)
		return
	}
	s.notifier.Notify(message, err.Error())
}
