package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"fleet-backend/internal/services"
	"fleet-backend/internal/timeutil"
	"fleet-backend/pkg/utils"

	"github.com/gorilla/mux"
)

type ReportHandler struct {
	Service *services.ReportService
}

func NewReportHandler(s *services.ReportService) *ReportHandler {
	return &ReportHandler{Service: s}
}

// OwnerStatement serves the owner revenue statement as PDF, or CSV when
// ?format=csv. Range defaults to the last 30 days.
func (h *ReportHandler) OwnerStatement(w http.ResponseWriter, r *http.Request) {
	ownerID := mux.Vars(r)["id"]

	from, to, err := statementRange(r)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	data, err := h.Service.BuildOwnerStatement(r.Context(), ownerID, from, to)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrOwnerNotFound):
			utils.Error(w, http.StatusNotFound, err.Error())
		case errors.Is(err, services.ErrJournalDisabled):
			utils.Error(w, http.StatusNotImplemented, err.Error())
		default:
			utils.Error(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	if r.URL.Query().Get("format") == "csv" {
		out, err := h.Service.GenerateOwnerStatementCSV(data)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="statement-%s.csv"`, ownerID))
		w.Write(out)
		return
	}

	out, err := h.Service.GenerateOwnerStatementPDF(data)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="statement-%s.pdf"`, ownerID))
	w.Write(out)
}

func statementRange(r *http.Request) (time.Time, time.Time, error) {
	to := time.Now()
	from := to.AddDate(0, 0, -30)

	if raw := r.URL.Query().Get("from"); raw != "" {
		parsed, err := timeutil.ParseDay(raw)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid from date: %s", raw)
		}
		from = parsed
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		parsed, err := timeutil.ParseDay(raw)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid to date: %s", raw)
		}
		to = parsed
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("to date precedes from date")
	}
	return from, to, nil
}
