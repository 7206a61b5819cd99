package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"time"

	"fleet-backend/internal/fleet"
	"fleet-backend/internal/models"
	"fleet-backend/internal/repositories"
	"fleet-backend/internal/timeutil"

	"github.com/jung-kurt/gofpdf/v2"
	"github.com/shopspring/decimal"
)

var (
	// ErrJournalDisabled is returned when the collection journal is not
	// configured; statements are built from journal rows.
	ErrJournalDisabled = errors.New("collection journal is not enabled")
	// ErrOwnerNotFound is returned for an owner id absent from the fleet
	// snapshot.
	ErrOwnerNotFound = errors.New("owner not found")
)

// OwnerStatementData holds all data for an owner revenue statement
type OwnerStatementData struct {
	Owner          models.Owner
	From           time.Time
	To             time.Time
	Events         []*models.CollectionEvent
	TotalCollected decimal.Decimal
	OwnerShare     decimal.Decimal
	PlatformShare  decimal.Decimal
}

// ReportService builds owner revenue statements from the collection journal
type ReportService struct {
	Store   *fleet.Store
	Journal *repositories.CollectionEventRepository
}

func NewReportService(store *fleet.Store, journal *repositories.CollectionEventRepository) *ReportService {
	return &ReportService{Store: store, Journal: journal}
}

// BuildOwnerStatement collects an owner's journal entries for a date range
// and totals the split.
func (s *ReportService) BuildOwnerStatement(ctx context.Context, ownerID string, from, to time.Time) (*OwnerStatementData, error) {
	owner, ok := s.Store.Owner(ownerID)
	if !ok {
		return nil, fmt.Errorf("owner %s: %w", ownerID, ErrOwnerNotFound)
	}

	if s.Journal == nil {
		return nil, ErrJournalDisabled
	}

	events, err := s.Journal.ListByOwnerBetween(ctx, ownerID, from, timeutil.DayEnd(to))
	if err != nil {
		return nil, err
	}

	data := &OwnerStatementData{
		Owner:          owner,
		From:           from,
		To:             to,
		Events:         events,
		TotalCollected: decimal.Zero,
		OwnerShare:     decimal.Zero,
		PlatformShare:  decimal.Zero,
	}
	for _, ev := range events {
		data.TotalCollected = data.TotalCollected.Add(ev.Amount)
		data.OwnerShare = data.OwnerShare.Add(ev.OwnerShare)
		data.PlatformShare = data.PlatformShare.Add(ev.PlatformShare)
	}
	return data, nil
}

// GenerateOwnerStatementPDF renders the statement as a PDF document
func (s *ReportService) GenerateOwnerStatementPDF(data *OwnerStatementData) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, "Owner Revenue Statement")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Owner: %s (%s)", data.Owner.Name, data.Owner.PhoneNumber))
	pdf.Ln(7)
	pdf.Cell(0, 7, fmt.Sprintf("Period: %s to %s", data.From.Format("2006-01-02"), data.To.Format("2006-01-02")))
	pdf.Ln(12)

	// Table header
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(30, 8, "Date", "1", 0, "C", false, 0, "")
	pdf.CellFormat(55, 8, "Location", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 8, "Collected", "1", 0, "C", false, 0, "")
	pdf.CellFormat(20, 8, "Share %", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 8, "Owner Share", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 8, "Platform", "1", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	for _, ev := range data.Events {
		pdf.CellFormat(30, 7, ev.CollectedAt.Format("2006-01-02"), "1", 0, "L", false, 0, "")
		pdf.CellFormat(55, 7, ev.Location, "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 7, ev.Amount.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(20, 7, fmt.Sprintf("%.1f", ev.SharePercentage), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 7, ev.OwnerShare.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 7, ev.PlatformShare.StringFixed(2), "1", 1, "R", false, 0, "")
	}

	// Totals row
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(85, 8, "Total", "1", 0, "R", false, 0, "")
	pdf.CellFormat(30, 8, data.TotalCollected.StringFixed(2), "1", 0, "R", false, 0, "")
	pdf.CellFormat(20, 8, "", "1", 0, "R", false, 0, "")
	pdf.CellFormat(30, 8, data.OwnerShare.StringFixed(2), "1", 0, "R", false, 0, "")
	pdf.CellFormat(30, 8, data.PlatformShare.StringFixed(2), "1", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render statement PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// GenerateOwnerStatementCSV renders the statement rows as CSV
func (s *ReportService) GenerateOwnerStatementCSV(data *OwnerStatementData) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"date", "dispenser_id", "location", "collected", "share_percentage", "owner_share", "platform_share"}); err != nil {
		return nil, err
	}
	for _, ev := range data.Events {
		record := []string{
			ev.CollectedAt.Format(time.RFC3339),
			ev.DispenserID,
			ev.Location,
			ev.Amount.StringFixed(2),
			fmt.Sprintf("%.2f", ev.SharePercentage),
			ev.OwnerShare.StringFixed(2),
			ev.PlatformShare.StringFixed(2),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
