package services

import (
	"context"
	"testing"
	"time"

	"github.com/sjperalta/condominio-api/internal/jobs"
	"github.com/sjperalta/condominio-api/internal/models"
	"github.com/sjperalta/condominio-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type mockExpenseRepository struct {
	repository.ExpenseRepository
	expenses []models.Expense
	nextID   uint
}

func (m *mockExpenseRepository) FindByID(ctx context.Context, id uint) (*models.Expense, error) {
	for i := range m.expenses {
		if m.expenses[i].ID == id {
			e := m.expenses[i]
			return &e, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockExpenseRepository) Create(ctx context.Context, expense *models.Expense) error {
	m.nextID++
	expense.ID = m.nextID
	m.expenses = append(m.expenses, *expense)
	return nil
}

func (m *mockExpenseRepository) Update(ctx context.Context, expense *models.Expense) error {
	for i := range m.expenses {
		if m.expenses[i].ID == expense.ID {
			m.expenses[i] = *expense
		}
	}
	return nil
}

func (m *mockExpenseRepository) Delete(ctx context.Context, id uint) error {
	kept := m.expenses[:0]
	for _, e := range m.expenses {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	m.expenses = kept
	return nil
}

// mockLowBalanceMailer reports every alerted admin on a channel so tests can
// wait for the async send.
type mockLowBalanceMailer struct {
	sent chan string
}

func (m *mockLowBalanceMailer) SendLowBalanceAlert(ctx context.Context, admin *models.User, balance float64) error {
	if m.sent != nil {
		m.sent <- admin.Email
	}
	return nil
}

func newExpenseFixture(t *testing.T, balance float64) (*ExpenseService, *mockSystemRepository) {
	t.Helper()

	repo := &mockExpenseRepository{}
	eventRepo := &mockEventRepository{
		events: []models.MaintenanceEvent{
			{ID: 1, Name: "Reparación de techo", Status: models.EventStatusOpen},
		},
		nextID: 1,
	}
	systemRepo := &mockSystemRepository{balance: balance}
	userRepo := &mockUserRepository{}

	worker := jobs.NewWorker(0)
	t.Cleanup(worker.Shutdown)

	notifSvc := NewNotificationService(&mockNotificationRepository{}, userRepo)
	svc := NewExpenseService(repo, eventRepo, systemRepo, userRepo, notifSvc, &mockLowBalanceMailer{}, nil, nil, worker)
	return svc, systemRepo
}

func TestCreateExpenseWithinBalance(t *testing.T) {
	svc, systemRepo := newExpenseFixture(t, 1000)
	ctx := context.Background()
	date := time.Now()

	expense, err := svc.Create(ctx, models.ExpenseTypeMonthly, nil, "Limpieza de cisterna", 1000, date, "", 9, "", "")
	assert.NoError(t, err)
	assert.Equal(t, models.PaidThroughCash, expense.PaidThrough)

	// The expense may drain the fund to exactly zero, never below
	assert.Equal(t, 0.0, systemRepo.balance)
}

func TestCreateExpenseExceedsBalance(t *testing.T) {
	svc, systemRepo := newExpenseFixture(t, 1000)

	_, err := svc.Create(context.Background(), models.ExpenseTypeMonthly, nil, "Gasto grande", 1500, time.Now(), "", 9, "", "")
	assert.ErrorIs(t, err, ErrInsufficientBalance)
	assert.Equal(t, 1000.0, systemRepo.balance)
}

func TestCreateExpenseValidation(t *testing.T) {
	svc, _ := newExpenseFixture(t, 1000)
	ctx := context.Background()

	_, err := svc.Create(ctx, models.ExpenseTypeMonthly, nil, "Gasto", 0, time.Now(), "", 9, "", "")
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = svc.Create(ctx, "otro", nil, "Gasto", 100, time.Now(), "", 9, "", "")
	assert.Error(t, err)

	// Event expenses require an existing event
	_, err = svc.Create(ctx, models.ExpenseTypeEvent, nil, "Gasto", 100, time.Now(), "", 9, "", "")
	assert.Error(t, err)

	missing := uint(404)
	_, err = svc.Create(ctx, models.ExpenseTypeEvent, &missing, "Gasto", 100, time.Now(), "", 9, "", "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateEventExpenseKeepsEventID(t *testing.T) {
	svc, _ := newExpenseFixture(t, 1000)
	eventID := uint(1)

	expense, err := svc.Create(context.Background(), models.ExpenseTypeEvent, &eventID, "Materiales", 300, time.Now(), models.PaidThroughBank, 9, "", "")
	assert.NoError(t, err)
	assert.NotNil(t, expense.EventID)
	assert.Equal(t, eventID, *expense.EventID)
	assert.Equal(t, models.PaidThroughBank, expense.PaidThrough)
}

func TestCreateMonthlyExpenseDropsEventID(t *testing.T) {
	svc, _ := newExpenseFixture(t, 1000)
	eventID := uint(1)

	// A monthly expense ignores any event sent along
	expense, err := svc.Create(context.Background(), models.ExpenseTypeMonthly, &eventID, "Luz del pasillo", 100, time.Now(), "", 9, "", "")
	assert.NoError(t, err)
	assert.Nil(t, expense.EventID)
}

func TestCreateExpenseLowBalanceEmailsAdmins(t *testing.T) {
	repo := &mockExpenseRepository{}
	eventRepo := &mockEventRepository{}
	systemRepo := &mockSystemRepository{balance: 1200}
	userRepo := &mockUserRepository{mockFindAdmins: func(ctx context.Context) ([]models.User, error) {
		return []models.User{{ID: 9, Email: "admin@condominio.app", FullName: "Administrador", Role: models.RoleAdmin}}, nil
	}}
	mailer := &mockLowBalanceMailer{sent: make(chan string, 1)}

	worker := jobs.NewWorker(0)
	t.Cleanup(worker.Shutdown)

	notifSvc := NewNotificationService(&mockNotificationRepository{}, userRepo)
	svc := NewExpenseService(repo, eventRepo, systemRepo, userRepo, notifSvc, mailer, nil, nil, worker)

	// 1200 - 400 leaves the fund under the alert threshold
	_, err := svc.Create(context.Background(), models.ExpenseTypeMonthly, nil, "Bomba de agua", 400, time.Now(), "", 9, "", "")
	assert.NoError(t, err)

	select {
	case to := <-mailer.sent:
		assert.Equal(t, "admin@condominio.app", to)
	case <-time.After(2 * time.Second):
		t.Fatal("expected a low balance email for the admin")
	}
}

func TestUpdateExpenseAppliesFlippedDelta(t *testing.T) {
	svc, systemRepo := newExpenseFixture(t, 1000)
	ctx := context.Background()
	date := time.Now()

	expense, err := svc.Create(ctx, models.ExpenseTypeMonthly, nil, "Fumigación", 400, date, "", 9, "", "")
	assert.NoError(t, err)
	assert.Equal(t, 600.0, systemRepo.balance)

	// 400 → 250 returns 150 to the fund
	updated, err := svc.Update(ctx, expense.ID, "Fumigación", 250, date, "", 9, "", "")
	assert.NoError(t, err)
	assert.Equal(t, 250.0, updated.Amount)
	assert.Equal(t, 750.0, systemRepo.balance)

	// Increasing beyond what the fund holds is rejected
	_, err = svc.Update(ctx, expense.ID, "Fumigación", 250+751, date, "", 9, "", "")
	assert.ErrorIs(t, err, ErrInsufficientBalance)
	assert.Equal(t, 750.0, systemRepo.balance)
}

func TestDeleteExpenseRestoresBalance(t *testing.T) {
	svc, systemRepo := newExpenseFixture(t, 1000)
	ctx := context.Background()

	expense, err := svc.Create(ctx, models.ExpenseTypeMonthly, nil, "Vigilancia", 600, time.Now(), "", 9, "", "")
	assert.NoError(t, err)
	assert.Equal(t, 400.0, systemRepo.balance)

	err = svc.Delete(ctx, expense.ID, 9, "", "")
	assert.NoError(t, err)
	assert.Equal(t, 1000.0, systemRepo.balance)
}
