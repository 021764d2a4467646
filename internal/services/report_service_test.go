package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sjperalta/condominio-api/internal/models"
	"github.com/stretchr/testify/assert"
)

func (m *mockMonthlyPaymentRepository) FindByDateRange(ctx context.Context, start, end string) ([]models.MonthlyPayment, error) {
	var out []models.MonthlyPayment
	for _, p := range m.payments {
		d := p.PaymentDate.Format("2006-01-02")
		if d >= start && d <= end {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockMonthlyPaymentRepository) FindByMonth(ctx context.Context, month string) ([]models.MonthlyPayment, error) {
	var out []models.MonthlyPayment
	for _, p := range m.payments {
		if p.Month == month {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockEventPaymentRepository) FindByDateRange(ctx context.Context, start, end string) ([]models.EventPayment, error) {
	var out []models.EventPayment
	for _, p := range m.payments {
		d := p.PaymentDate.Format("2006-01-02")
		if d >= start && d <= end {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockExpenseRepository) FindByDateRange(ctx context.Context, start, end string) ([]models.Expense, error) {
	var out []models.Expense
	for _, e := range m.expenses {
		d := e.ExpenseDate.Format("2006-01-02")
		if d >= start && d <= end {
			out = append(out, e)
		}
	}
	return out, nil
}

func newReportFixture() (*ReportService, *mockMonthlyPaymentRepository, *mockEventPaymentRepository, *mockExpenseRepository, *mockSystemRepository) {
	floorRepo := &mockFloorRepository{floors: []models.Floor{
		{ID: 1, FloorNumber: 0},
		{ID: 2, FloorNumber: 1},
	}}
	monthlyRepo := &mockMonthlyPaymentRepository{}
	eventPayRepo := &mockEventPaymentRepository{}
	expenseRepo := &mockExpenseRepository{}
	systemRepo := &mockSystemRepository{balance: 900, required: 500}

	svc := NewReportService(floorRepo, monthlyRepo, eventPayRepo, expenseRepo, systemRepo)
	return svc, monthlyRepo, eventPayRepo, expenseRepo, systemRepo
}

func day(d int) time.Time {
	return time.Date(2026, 8, d, 0, 0, 0, 0, time.UTC)
}

func TestLedgerEntriesMergedChronologically(t *testing.T) {
	svc, monthlyRepo, eventPayRepo, expenseRepo, _ := newReportFixture()
	ctx := context.Background()

	monthlyRepo.payments = []models.MonthlyPayment{
		{ID: 1, FloorID: 1, Month: "2026-08", AmountPaid: 200, PaymentDate: day(10), Floor: models.Floor{ID: 1, FloorNumber: 0}},
	}
	eventPayRepo.payments = []models.EventPayment{
		{ID: 1, EventID: 1, FloorID: 2, AmountPaid: 150, PaymentDate: day(5),
			Event: models.MaintenanceEvent{ID: 1, Name: "Reparación de techo"},
			Floor: models.Floor{ID: 2, FloorNumber: 1}},
	}
	expenseRepo.expenses = []models.Expense{
		{ID: 1, ExpenseType: models.ExpenseTypeMonthly, Description: "Limpieza", Amount: 300, ExpenseDate: day(20)},
	}

	entries, err := svc.LedgerEntries(ctx, "2026-08-01", "2026-08-31")
	assert.NoError(t, err)
	assert.Len(t, entries, 3)

	assert.Equal(t, "Aporte", entries[0].Kind)
	assert.Equal(t, 150.0, entries[0].Amount)
	assert.Contains(t, entries[0].Description, "Reparación de techo")

	assert.Equal(t, "Cuota", entries[1].Kind)
	assert.Equal(t, 200.0, entries[1].Amount)

	assert.Equal(t, "Gasto", entries[2].Kind)
	assert.Equal(t, -300.0, entries[2].Amount)
}

func TestLedgerEntriesRespectDateRange(t *testing.T) {
	svc, monthlyRepo, _, _, _ := newReportFixture()

	monthlyRepo.payments = []models.MonthlyPayment{
		{ID: 1, FloorID: 1, Month: "2026-07", AmountPaid: 500, PaymentDate: time.Date(2026, 7, 15, 0, 0, 0, 0, time.UTC)},
		{ID: 2, FloorID: 1, Month: "2026-08", AmountPaid: 200, PaymentDate: day(10)},
	}

	entries, err := svc.LedgerEntries(context.Background(), "2026-08-01", "2026-08-31")
	assert.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, 200.0, entries[0].Amount)
}

func TestGenerateLedgerCSV(t *testing.T) {
	svc, monthlyRepo, _, expenseRepo, _ := newReportFixture()

	monthlyRepo.payments = []models.MonthlyPayment{
		{ID: 1, FloorID: 1, Month: "2026-08", AmountPaid: 200, PaymentDate: day(10), Floor: models.Floor{ID: 1, FloorNumber: 0}},
	}
	expenseRepo.expenses = []models.Expense{
		{ID: 1, ExpenseType: models.ExpenseTypeMonthly, Description: "Limpieza", Amount: 300, ExpenseDate: day(20)},
	}

	buf, err := svc.GenerateLedgerCSV(context.Background(), "2026-08-01", "2026-08-31")
	assert.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 3)
	assert.Equal(t, "Fecha,Tipo,Detalle,Ingreso,Egreso", lines[0])
	// Income lands in Ingreso, expense in Egreso
	assert.Contains(t, lines[1], "Cuota")
	assert.Contains(t, lines[1], "200.00,")
	assert.Contains(t, lines[2], "Gasto")
	assert.True(t, strings.HasSuffix(lines[2], ",300.00"))
}

func TestGenerateMonthlyStatementPDF(t *testing.T) {
	svc, monthlyRepo, _, _, _ := newReportFixture()

	monthlyRepo.payments = []models.MonthlyPayment{
		{ID: 1, FloorID: 1, Month: "2026-08", AmountPaid: 500, PaymentDate: day(10), RemainingAmount: 0, IsComplete: true},
	}

	buf, err := svc.GenerateMonthlyStatementPDF(context.Background(), "2026-08")
	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(buf.String(), "%PDF"))

	_, err = svc.GenerateMonthlyStatementPDF(context.Background(), "agosto 2026")
	assert.ErrorIs(t, err, ErrInvalidMonth)
}
