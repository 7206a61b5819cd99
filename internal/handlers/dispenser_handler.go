package handlers

import (
	"encoding/json"
	"net/http"

	"fleet-backend/internal/models"
	"fleet-backend/internal/services"
	"fleet-backend/pkg/utils"

	"github.com/gorilla/mux"
)

type DispenserHandler struct {
	Service *services.FleetService
}

func NewDispenserHandler(s *services.FleetService) *DispenserHandler {
	return &DispenserHandler{Service: s}
}

func (h *DispenserHandler) ListDispensers(w http.ResponseWriter, r *http.Request) {
	dispensers, err := h.Service.Dispensers(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, dispensers)
}

func (h *DispenserHandler) CreateDispenser(w http.ResponseWriter, r *http.Request) {
	var form models.DispenserForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	created, err := h.Service.CreateDispenser(r.Context(), form)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, created)
}

func (h *DispenserHandler) UpdateDispenser(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var payload models.UpdateDispenserPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	updated, err := h.Service.UpdateDispenser(r.Context(), id, payload)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, updated)
}

// CollectDispenser never surfaces a backend failure as an error status: a
// failed collection is notified and reported as applied=false so the UI can
// keep rendering the prior state.
func (h *DispenserHandler) CollectDispenser(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var payload models.CollectDispenserPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	updated, applied, err := h.Service.CollectDispenser(r.Context(), id, payload)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]interface{}{
		"applied":   applied,
		"dispenser": updated,
	})
}

func (h *DispenserHandler) DeleteDispenser(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.Service.RemoveDispenser(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *DispenserHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Refresh(r.Context()); err != nil {
		writeServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]string{"status": "refreshed"})
}

func (h *DispenserHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Service.Summary(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, summary)
}
