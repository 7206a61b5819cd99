package http

import (
	"fleet-backend/internal/handlers"
	"fleet-backend/internal/middleware"
	"fleet-backend/internal/ws"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(
	dispenserHandler *handlers.DispenserHandler,
	ownerHandler *handlers.OwnerHandler,
	historyHandler *handlers.HistoryHandler,
	reportHandler *handlers.ReportHandler,
	userHandler *handlers.UserHandler,
	healthHandler *handlers.HealthHandler,
	systemHandler *handlers.SystemHandler,
	hub *ws.Hub,
) *mux.Router {
	r := mux.NewRouter()

	r.Use(middleware.PanicRecovery)
	r.Use(middleware.RequestLogging)
	r.Use(middleware.MetricsMiddleware)

	// Ops endpoints
	r.HandleFunc("/health", healthHandler.Health).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	r.HandleFunc("/ws/events", hub.HandleWS).Methods("GET")

	// Dispensers
	dispensersAPI := r.PathPrefix("/api/dispensers").Subrouter()
	dispensersAPI.HandleFunc("", dispenserHandler.ListDispensers).Methods("GET")
	dispensersAPI.HandleFunc("", dispenserHandler.CreateDispenser).Methods("POST")
	dispensersAPI.HandleFunc("/refresh", dispenserHandler.Refresh).Methods("POST")
	dispensersAPI.HandleFunc("/{id}", dispenserHandler.UpdateDispenser).Methods("PATCH")
	dispensersAPI.HandleFunc("/{id}", dispenserHandler.DeleteDispenser).Methods("DELETE")
	dispensersAPI.HandleFunc("/{id}/collect", dispenserHandler.CollectDispenser).Methods("PATCH")

	// Owners
	ownersAPI := r.PathPrefix("/api/owners").Subrouter()
	ownersAPI.HandleFunc("", ownerHandler.ListOwners).Methods("GET")
	ownersAPI.HandleFunc("/{id}", ownerHandler.UpdateOwner).Methods("PATCH")

	// Revenue summary and collection history
	r.HandleFunc("/api/summary", dispenserHandler.Summary).Methods("GET")
	historyAPI := r.PathPrefix("/api/history").Subrouter()
	historyAPI.HandleFunc("", historyHandler.ListRecent).Methods("GET")
	historyAPI.HandleFunc("/dispenser/{id}", historyHandler.ListByDispenser).Methods("GET")

	// Reports
	r.HandleFunc("/api/reports/owner/{id}/statement", reportHandler.OwnerStatement).Methods("GET")

	// Session user
	r.HandleFunc("/api/user/me", userHandler.Me).Methods("GET")

	// Monitoring
	r.HandleFunc("/api/monitoring/system", systemHandler.Stats).Methods("GET")

	return r
}
