package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"sort"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/sjperalta/condominio-api/internal/models"
	"github.com/sjperalta/condominio-api/internal/repository"
)

type ReportService struct {
	floorRepo    repository.FloorRepository
	monthlyRepo  repository.MonthlyPaymentRepository
	eventPayRepo repository.EventPaymentRepository
	expenseRepo  repository.ExpenseRepository
	systemRepo   repository.SystemRepository
}

func NewReportService(
	floorRepo repository.FloorRepository,
	monthlyRepo repository.MonthlyPaymentRepository,
	eventPayRepo repository.EventPaymentRepository,
	expenseRepo repository.ExpenseRepository,
	systemRepo repository.SystemRepository,
) *ReportService {
	return &ReportService{
		floorRepo:    floorRepo,
		monthlyRepo:  monthlyRepo,
		eventPayRepo: eventPayRepo,
		expenseRepo:  expenseRepo,
		systemRepo:   systemRepo,
	}
}

// LedgerEntry is one movement in the combined ledger view. Amount is signed:
// positive for money entering the fund, negative for money leaving it.
type LedgerEntry struct {
	Date        time.Time
	Kind        string
	Description string
	Amount      float64
}

// LedgerEntries collects payments and expenses in a date range into a single
// chronological list.
func (s *ReportService) LedgerEntries(ctx context.Context, start, end string) ([]LedgerEntry, error) {
	monthly, err := s.monthlyRepo.FindByDateRange(ctx, start, end)
	if err != nil {
		return nil, err
	}
	eventPays, err := s.eventPayRepo.FindByDateRange(ctx, start, end)
	if err != nil {
		return nil, err
	}
	expenses, err := s.expenseRepo.FindByDateRange(ctx, start, end)
	if err != nil {
		return nil, err
	}

	entries := make([]LedgerEntry, 0, len(monthly)+len(eventPays)+len(expenses))
	for _, p := range monthly {
		entries = append(entries, LedgerEntry{
			Date:        p.PaymentDate,
			Kind:        "Cuota",
			Description: fmt.Sprintf("%s, mes %s", p.Floor.DisplayName(), p.Month),
			Amount:      p.AmountPaid,
		})
	}
	for _, p := range eventPays {
		eventName := fmt.Sprintf("evento #%d", p.EventID)
		if p.Event.ID != 0 {
			eventName = p.Event.Name
		}
		entries = append(entries, LedgerEntry{
			Date:        p.PaymentDate,
			Kind:        "Aporte",
			Description: fmt.Sprintf("%s, %s", p.Floor.DisplayName(), eventName),
			Amount:      p.AmountPaid,
		})
	}
	for _, e := range expenses {
		entries = append(entries, LedgerEntry{
			Date:        e.ExpenseDate,
			Kind:        "Gasto",
			Description: e.Description,
			Amount:      -e.Amount,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date.Before(entries[j].Date)
	})
	return entries, nil
}

// GenerateLedgerCSV writes the combined ledger for a date range as CSV
func (s *ReportService) GenerateLedgerCSV(ctx context.Context, start, end string) (*bytes.Buffer, error) {
	entries, err := s.LedgerEntries(ctx, start, end)
	if err != nil {
		return nil, err
	}

	b := &bytes.Buffer{}
	w := csv.NewWriter(b)

	header := []string{"Fecha", "Tipo", "Detalle", "Ingreso", "Egreso"}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, e := range entries {
		credit, debit := "", ""
		if e.Amount >= 0 {
			credit = fmt.Sprintf("%.2f", e.Amount)
		} else {
			debit = fmt.Sprintf("%.2f", -e.Amount)
		}
		record := []string{
			e.Date.Format("2006-01-02"),
			e.Kind,
			e.Description,
			credit,
			debit,
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return b, nil
}

// GenerateMonthlyStatementPDF builds the monthly statement: per-floor dues
// status, expenses of the month, and the current fund balance.
func (s *ReportService) GenerateMonthlyStatementPDF(ctx context.Context, month string) (*bytes.Buffer, error) {
	monthStart, err := time.Parse(models.MonthFormat, month)
	if err != nil {
		return nil, ErrInvalidMonth
	}
	monthEnd := monthStart.AddDate(0, 1, 0).AddDate(0, 0, -1)

	floors, err := s.floorRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	cfg, err := s.systemRepo.GetMonthlyDueConfig(ctx)
	if err != nil {
		return nil, err
	}

	balance, err := s.systemRepo.GetBalance(ctx)
	if err != nil {
		return nil, err
	}

	payments, err := s.monthlyRepo.FindByMonth(ctx, month)
	if err != nil {
		return nil, err
	}

	expenses, err := s.expenseRepo.FindByDateRange(ctx,
		monthStart.Format("2006-01-02"), monthEnd.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}

	// Per-floor paid totals and latest residual
	paidByFloor := make(map[uint]float64)
	remainingByFloor := make(map[uint]float64)
	for _, floor := range floors {
		remainingByFloor[floor.ID] = cfg.Required
	}
	for _, p := range payments {
		paidByFloor[p.FloorID] += p.AmountPaid
		remainingByFloor[p.FloorID] = p.RemainingAmount
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, fmt.Sprintf("Estado de cuenta %s", month))
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(40, 10, "Cuotas por piso")
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 10)
	pdf.Cell(60, 8, "Piso")
	pdf.Cell(40, 8, "Pagado")
	pdf.Cell(40, 8, "Pendiente")
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 10)
	totalCollected := 0.0
	for _, floor := range floors {
		paid := paidByFloor[floor.ID]
		totalCollected += paid
		pdf.Cell(60, 6, floor.DisplayName())
		pdf.Cell(40, 6, fmt.Sprintf("L %.2f", paid))
		pdf.Cell(40, 6, fmt.Sprintf("L %.2f", remainingByFloor[floor.ID]))
		pdf.Ln(6)
	}
	pdf.Ln(6)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(40, 10, "Gastos del mes")
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 10)
	totalSpent := 0.0
	if len(expenses) == 0 {
		pdf.Cell(100, 6, "Sin gastos registrados")
		pdf.Ln(6)
	}
	for _, e := range expenses {
		totalSpent += e.Amount
		pdf.Cell(30, 6, e.ExpenseDate.Format("02/01/2006"))
		pdf.Cell(90, 6, e.Description)
		pdf.Cell(40, 6, fmt.Sprintf("L %.2f", e.Amount))
		pdf.Ln(6)
	}
	pdf.Ln(6)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(40, 10, "Resumen")
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(60, 6, "Cuotas recaudadas:")
	pdf.Cell(40, 6, fmt.Sprintf("L %.2f", totalCollected))
	pdf.Ln(6)
	pdf.Cell(60, 6, "Gastos del mes:")
	pdf.Cell(40, 6, fmt.Sprintf("L %.2f", totalSpent))
	pdf.Ln(6)
	pdf.Cell(60, 6, "Balance actual del fondo:")
	pdf.Cell(40, 6, fmt.Sprintf("L %.2f", balance.TotalBalance))
	pdf.Ln(8)

	pdf.SetFont("Arial", "I", 9)
	pdf.Cell(160, 6, fmt.Sprintf("Son: %s", NumberToWords(balance.TotalBalance)))
	pdf.Ln(6)

	buf := new(bytes.Buffer)
	if err := pdf.Output(buf); err != nil {
		return nil, err
	}
	return buf, nil
}
