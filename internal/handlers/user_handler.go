package handlers

import (
	"net/http"

	"fleet-backend/internal/services"
	"fleet-backend/pkg/utils"
)

type UserHandler struct {
	Service *services.FleetService
}

func NewUserHandler(s *services.FleetService) *UserHandler {
	return &UserHandler{Service: s}
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.Service.CurrentUser(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, user)
}
