package handlers

import (
	"net/http"
	"strconv"

	"fleet-backend/internal/repositories"
	"fleet-backend/pkg/utils"

	"github.com/gorilla/mux"
)

const defaultHistoryLimit = 50

type HistoryHandler struct {
	Repo *repositories.CollectionEventRepository
}

func NewHistoryHandler(repo *repositories.CollectionEventRepository) *HistoryHandler {
	return &HistoryHandler{Repo: repo}
}

func (h *HistoryHandler) ListRecent(w http.ResponseWriter, r *http.Request) {
	if h.Repo == nil {
		utils.Error(w, http.StatusNotImplemented, "Collection journal is not enabled")
		return
	}

	events, err := h.Repo.ListRecent(r.Context(), historyLimit(r))
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.JSON(w, http.StatusOK, events)
}

func (h *HistoryHandler) ListByDispenser(w http.ResponseWriter, r *http.Request) {
	if h.Repo == nil {
		utils.Error(w, http.StatusNotImplemented, "Collection journal is not enabled")
		return
	}

	id := mux.Vars(r)["id"]
	events, err := h.Repo.ListByDispenser(r.Context(), id, historyLimit(r))
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.JSON(w, http.StatusOK, events)
}

func historyLimit(r *http.Request) int {
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 500 {
			return n
		}
	}
	return defaultHistoryLimit
}
