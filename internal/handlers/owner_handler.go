package handlers

import (
	"encoding/json"
	"net/http"

	"fleet-backend/internal/models"
	"fleet-backend/internal/services"
	"fleet-backend/pkg/utils"

	"github.com/gorilla/mux"
)

type OwnerHandler struct {
	Service *services.FleetService
}

func NewOwnerHandler(s *services.FleetService) *OwnerHandler {
	return &OwnerHandler{Service: s}
}

func (h *OwnerHandler) ListOwners(w http.ResponseWriter, r *http.Request) {
	owners, err := h.Service.Owners(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, owners)
}

func (h *OwnerHandler) UpdateOwner(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var payload models.UpdateOwnerPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	updated, err := h.Service.UpdateOwner(r.Context(), id, payload)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, updated)
}
