package repositories

import (
	"context"
	"fmt"
	"time"

	"fleet-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type CollectionEventRepository struct {
	DB *pgxpool.Pool
}

func NewCollectionEventRepository(db *pgxpool.Pool) *CollectionEventRepository {
	return &CollectionEventRepository{DB: db}
}

func (r *CollectionEventRepository) Create(ctx context.Context, ev *models.CollectionEvent) error {
	query := `
		INSERT INTO collection_events (dispenser_id, owner_id, location, amount, share_percentage, owner_share, platform_share, collected_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	err := r.DB.QueryRow(ctx, query,
		ev.DispenserID,
		ev.OwnerID,
		ev.Location,
		ev.Amount,
		ev.SharePercentage,
		ev.OwnerShare,
		ev.PlatformShare,
		ev.CollectedAt,
	).Scan(&ev.ID)
	if err != nil {
		return fmt.Errorf("failed to record collection event: %w", err)
	}

	return nil
}

func (r *CollectionEventRepository) ListRecent(ctx context.Context, limit int) ([]*models.CollectionEvent, error) {
	query := `
		SELECT id, dispenser_id, owner_id, location, amount, share_percentage, owner_share, platform_share, collected_at
		FROM collection_events
		ORDER BY collected_at DESC
		LIMIT $1
	`
	return r.queryEvents(ctx, query, limit)
}

func (r *CollectionEventRepository) ListByDispenser(ctx context.Context, dispenserID string, limit int) ([]*models.CollectionEvent, error) {
	query := `
		SELECT id, dispenser_id, owner_id, location, amount, share_percentage, owner_share, platform_share, collected_at
		FROM collection_events
		WHERE dispenser_id = $1
		ORDER BY collected_at DESC
		LIMIT $2
	`
	return r.queryEvents(ctx, query, dispenserID, limit)
}

func (r *CollectionEventRepository) ListByOwnerBetween(ctx context.Context, ownerID string, from, to time.Time) ([]*models.CollectionEvent, error) {
	query := `
		SELECT id, dispenser_id, owner_id, location, amount, share_percentage, owner_share, platform_share, collected_at
		FROM collection_events
		WHERE owner_id = $1 AND collected_at >= $2 AND collected_at < $3
		ORDER BY collected_at ASC
	`
	return r.queryEvents(ctx, query, ownerID, from, to)
}

func (r *CollectionEventRepository) queryEvents(ctx context.Context, query string, args ...interface{}) ([]*models.CollectionEvent, error) {
	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query collection events: %w", err)
	}
	defer rows.Close()

	var events []*models.CollectionEvent
	for rows.Next() {
		var ev models.CollectionEvent
		if err := rows.Scan(
			&ev.ID,
			&ev.DispenserID,
			&ev.OwnerID,
			&ev.Location,
			&ev.Amount,
			&ev.SharePercentage,
			&ev.OwnerShare,
			&ev.PlatformShare,
			&ev.CollectedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan collection event: %w", err)
		}
		events = append(events, &ev)
	}

	return events, rows.Err()
}
