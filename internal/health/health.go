package health

import (
	"context"
	"time"

	"fleet-backend/internal/fleet"

	"github.com/jackc/pgx/v5/pgxpool"
)

type HealthChecker struct {
	db    *pgxpool.Pool
	store *fleet.Store
}

type HealthStatus struct {
	Status   string         `json:"status"`
	Fleet    FleetHealth    `json:"fleet"`
	Database DatabaseHealth `json:"database"`
}

type FleetHealth struct {
	State string `json:"state"`
	Error string `json:"error,omitempty"`
}

type DatabaseHealth struct {
	Status       string `json:"status"`
	ResponseTime int64  `json:"response_time_ms"`
}

// NewHealthChecker creates a checker. db may be nil when the collection
// journal is disabled.
func NewHealthChecker(db *pgxpool.Pool, store *fleet.Store) *HealthChecker {
	return &HealthChecker{db: db, store: store}
}

func (h *HealthChecker) CheckBasic() HealthStatus {
	dbHealth := h.checkDatabase()
	fleetHealth := FleetHealth{
		State: h.store.State().String(),
		Error: h.store.LoadError(),
	}

	status := "healthy"
	if dbHealth.Status == "unhealthy" || h.store.State() == fleet.StateErrored {
		status = "unhealthy"
	}

	return HealthStatus{
		Status:   status,
		Fleet:    fleetHealth,
		Database: dbHealth,
	}
}

func (h *HealthChecker) checkDatabase() DatabaseHealth {
	if h.db == nil {
		return DatabaseHealth{Status: "disabled"}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	start := time.Now()
	err := h.db.Ping(ctx)
	responseTime := time.Since(start).Milliseconds()

	if err != nil {
		return DatabaseHealth{
			Status:       "unhealthy",
			ResponseTime: responseTime,
		}
	}

	return DatabaseHealth{
		Status:       "healthy",
		ResponseTime: responseTime,
	}
}
