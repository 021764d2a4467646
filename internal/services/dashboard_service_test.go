package services

import (
	"context"
	"testing"
	"time"

	"github.com/sjperalta/condominio-api/internal/models"
	"github.com/stretchr/testify/assert"
)

func (m *mockMonthlyPaymentRepository) SumAll(ctx context.Context) (float64, error) {
	var total float64
	for _, p := range m.payments {
		total += p.AmountPaid
	}
	return total, nil
}

func (m *mockMonthlyPaymentRepository) SumByMonth(ctx context.Context, month string) (float64, error) {
	var total float64
	for _, p := range m.payments {
		if p.Month == month {
			total += p.AmountPaid
		}
	}
	return total, nil
}

func (m *mockEventPaymentRepository) SumAll(ctx context.Context) (float64, error) {
	var total float64
	for _, p := range m.payments {
		total += p.AmountPaid
	}
	return total, nil
}

func (m *mockExpenseRepository) SumAll(ctx context.Context) (float64, error) {
	var total float64
	for _, e := range m.expenses {
		total += e.Amount
	}
	return total, nil
}

func (m *mockExpenseRepository) SumByDateRange(ctx context.Context, start, end string) (float64, error) {
	var total float64
	for _, e := range m.expenses {
		d := e.ExpenseDate.Format("2006-01-02")
		if d >= start && d < end {
			total += e.Amount
		}
	}
	return total, nil
}

func (m *mockEventRepository) FindOpen(ctx context.Context) ([]models.MaintenanceEvent, error) {
	var out []models.MaintenanceEvent
	for _, e := range m.events {
		if e.Status == models.EventStatusOpen {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockSystemRepository) SetBalance(ctx context.Context, value float64) error {
	m.balance = value
	return nil
}

func newDashboardFixture(t *testing.T) (*DashboardService, *mockMonthlyPaymentRepository, *mockEventPaymentRepository, *mockExpenseRepository, *mockSystemRepository, *mockNotificationRepository) {
	t.Helper()

	systemRepo := &mockSystemRepository{required: 500}
	monthlyRepo := &mockMonthlyPaymentRepository{}
	eventRepo := &mockEventRepository{
		events: []models.MaintenanceEvent{
			{ID: 1, Name: "Reparación de techo", TotalCost: 2400, CostPerFloor: 300, Status: models.EventStatusOpen},
		},
		nextID: 1,
	}
	eventPayRepo := &mockEventPaymentRepository{}
	expenseRepo := &mockExpenseRepository{}
	notifRepo := &mockNotificationRepository{}

	notifSvc := NewNotificationService(notifRepo, &mockUserRepository{
		mockFindAdmins: func(ctx context.Context) ([]models.User, error) {
			return []models.User{{ID: 9, Email: "admin@condominio.app", Role: models.RoleAdmin}}, nil
		},
	})

	svc := NewDashboardService(systemRepo, monthlyRepo, eventRepo, eventPayRepo, expenseRepo, notifSvc)
	return svc, monthlyRepo, eventPayRepo, expenseRepo, systemRepo, notifRepo
}

func TestReconcileBalanceNoDrift(t *testing.T) {
	svc, monthlyRepo, eventPayRepo, expenseRepo, systemRepo, _ := newDashboardFixture(t)

	monthlyRepo.payments = []models.MonthlyPayment{{ID: 1, AmountPaid: 500}}
	eventPayRepo.payments = []models.EventPayment{{ID: 1, EventID: 1, AmountPaid: 300}}
	expenseRepo.expenses = []models.Expense{{ID: 1, Amount: 200}}
	systemRepo.balance = 600 // 500 + 300 - 200

	err := svc.ReconcileBalance(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 600.0, systemRepo.balance)
}

func TestReconcileBalanceCorrectsDrift(t *testing.T) {
	svc, monthlyRepo, eventPayRepo, expenseRepo, systemRepo, notifRepo := newDashboardFixture(t)

	monthlyRepo.payments = []models.MonthlyPayment{{ID: 1, AmountPaid: 500}}
	eventPayRepo.payments = []models.EventPayment{{ID: 1, EventID: 1, AmountPaid: 300}}
	expenseRepo.expenses = []models.Expense{{ID: 1, Amount: 200}}
	systemRepo.balance = 555 // drifted

	notified := false
	notifRepo.mockCreate = func(ctx context.Context, n *models.Notification) error {
		notified = true
		assert.Equal(t, "Balance corregido", n.Title)
		return nil
	}

	err := svc.ReconcileBalance(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 600.0, systemRepo.balance)
	assert.True(t, notified)
}

func TestMonthRangeStaysWithinMonth(t *testing.T) {
	start, end := monthRange(time.Date(2026, 1, 31, 23, 0, 0, 0, time.UTC))
	assert.Equal(t, "2026-01-01", start)
	assert.Equal(t, "2026-02-01", end)

	// Year rollover
	start, end = monthRange(time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "2026-12-01", start)
	assert.Equal(t, "2027-01-01", end)

	start, end = monthRange(time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "2026-08-01", start)
	assert.Equal(t, "2026-09-01", end)
}

func TestGetOverviewServesCachedCopy(t *testing.T) {
	svc, monthlyRepo, _, _, systemRepo, _ := newDashboardFixture(t)
	ctx := context.Background()
	systemRepo.balance = 1000

	first, err := svc.GetOverview(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 1000.0, first.TotalBalance)
	assert.Equal(t, "L", first.CurrencySymbol)
	assert.Len(t, first.OpenEvents, 1)

	// New data does not show up until the cache is refreshed
	systemRepo.balance = 2000
	monthlyRepo.payments = append(monthlyRepo.payments, models.MonthlyPayment{ID: 10, AmountPaid: 100})

	second, err := svc.GetOverview(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 1000.0, second.TotalBalance)

	err = svc.RefreshCache(ctx)
	assert.NoError(t, err)

	third, err := svc.GetOverview(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 2000.0, third.TotalBalance)
}
