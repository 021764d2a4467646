package services

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/sjperalta/condominio-api/internal/jobs"
	"github.com/sjperalta/condominio-api/internal/models"
	"github.com/sjperalta/condominio-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

// In-memory MonthlyPaymentRepository. Keeps records in insert order so
// chains replay the way the database would return them.
type mockMonthlyPaymentRepository struct {
	repository.MonthlyPaymentRepository
	payments []models.MonthlyPayment
	nextID   uint
}

func (m *mockMonthlyPaymentRepository) FindByID(ctx context.Context, id uint) (*models.MonthlyPayment, error) {
	for i := range m.payments {
		if m.payments[i].ID == id {
			p := m.payments[i]
			return &p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockMonthlyPaymentRepository) FindByFloorAndMonth(ctx context.Context, floorID uint, month string) ([]models.MonthlyPayment, error) {
	var chain []models.MonthlyPayment
	for _, p := range m.payments {
		if p.FloorID == floorID && p.Month == month {
			chain = append(chain, p)
		}
	}
	sort.SliceStable(chain, func(i, j int) bool { return chain[i].ID < chain[j].ID })
	return chain, nil
}

func (m *mockMonthlyPaymentRepository) Create(ctx context.Context, payment *models.MonthlyPayment) error {
	m.nextID++
	payment.ID = m.nextID
	m.payments = append(m.payments, *payment)
	return nil
}

func (m *mockMonthlyPaymentRepository) UpdateAll(ctx context.Context, payments []models.MonthlyPayment) error {
	for _, p := range payments {
		for i := range m.payments {
			if m.payments[i].ID == p.ID {
				m.payments[i] = p
			}
		}
	}
	return nil
}

func (m *mockMonthlyPaymentRepository) Delete(ctx context.Context, id uint) error {
	kept := m.payments[:0]
	for _, p := range m.payments {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	m.payments = kept
	return nil
}

// mockSystemRepository tracks every balance delta applied
type mockSystemRepository struct {
	repository.SystemRepository
	balance  float64
	required float64
	deltas   []float64
}

func (m *mockSystemRepository) GetBalance(ctx context.Context) (*models.SystemBalance, error) {
	return &models.SystemBalance{ID: 1, TotalBalance: m.balance, LastUpdated: time.Now()}, nil
}

func (m *mockSystemRepository) ApplyDelta(ctx context.Context, delta float64) (float64, error) {
	m.balance += delta
	m.deltas = append(m.deltas, delta)
	return m.balance, nil
}

func (m *mockSystemRepository) GetMonthlyDueConfig(ctx context.Context) (*models.MonthlyDueConfig, error) {
	return &models.MonthlyDueConfig{ID: 1, Required: m.required}, nil
}

func (m *mockSystemRepository) UpdateMonthlyRequired(ctx context.Context, required float64) error {
	m.required = required
	return nil
}

type mockFloorRepository struct {
	repository.FloorRepository
	floors []models.Floor
}

func (m *mockFloorRepository) FindByID(ctx context.Context, id uint) (*models.Floor, error) {
	for i := range m.floors {
		if m.floors[i].ID == id {
			return &m.floors[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockFloorRepository) FindAll(ctx context.Context) ([]models.Floor, error) {
	return m.floors, nil
}

func (m *mockFloorRepository) Count(ctx context.Context) (int64, error) {
	return int64(len(m.floors)), nil
}

type mockUserRepository struct {
	repository.UserRepository
	mockFindAdmins func(ctx context.Context) ([]models.User, error)
}

func (m *mockUserRepository) FindAdmins(ctx context.Context) ([]models.User, error) {
	if m.mockFindAdmins != nil {
		return m.mockFindAdmins(ctx)
	}
	return nil, nil
}

type mockNotificationRepository struct {
	repository.NotificationRepository
	mockCreate func(ctx context.Context, notification *models.Notification) error
}

func (m *mockNotificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	if m.mockCreate != nil {
		return m.mockCreate(ctx, notification)
	}
	return nil
}

func newMonthlyPaymentFixture(t *testing.T, required float64) (*MonthlyPaymentService, *mockMonthlyPaymentRepository, *mockSystemRepository) {
	t.Helper()

	repo := &mockMonthlyPaymentRepository{}
	floorRepo := &mockFloorRepository{floors: []models.Floor{{ID: 1, FloorNumber: 0}, {ID: 2, FloorNumber: 1}}}
	systemRepo := &mockSystemRepository{required: required}
	userRepo := &mockUserRepository{}
	notifRepo := &mockNotificationRepository{}

	worker := jobs.NewWorker(0)
	t.Cleanup(worker.Shutdown)

	notifSvc := NewNotificationService(notifRepo, userRepo)
	svc := NewMonthlyPaymentService(repo, floorRepo, systemRepo, userRepo, notifSvc, nil, nil, worker)
	return svc, repo, systemRepo
}

func TestRecordPartialPaymentChain(t *testing.T) {
	svc, _, systemRepo := newMonthlyPaymentFixture(t, 500)
	ctx := context.Background()
	date := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)

	p1, err := svc.Record(ctx, 1, "2026-08", 200, date, 9, "127.0.0.1", "test")
	assert.NoError(t, err)
	assert.Equal(t, 300.0, p1.RemainingAmount)
	assert.False(t, p1.IsComplete)

	p2, err := svc.Record(ctx, 1, "2026-08", 200, date, 9, "127.0.0.1", "test")
	assert.NoError(t, err)
	assert.Equal(t, 100.0, p2.RemainingAmount)
	assert.False(t, p2.IsComplete)

	// Only 100 left: 150 must be rejected
	_, err = svc.Record(ctx, 1, "2026-08", 150, date, 9, "127.0.0.1", "test")
	assert.ErrorIs(t, err, ErrExceedsRemaining)

	p3, err := svc.Record(ctx, 1, "2026-08", 100, date, 9, "127.0.0.1", "test")
	assert.NoError(t, err)
	assert.Equal(t, 0.0, p3.RemainingAmount)
	assert.True(t, p3.IsComplete)

	// The month is settled, nothing more fits
	_, err = svc.Record(ctx, 1, "2026-08", 1, date, 9, "127.0.0.1", "test")
	assert.ErrorIs(t, err, ErrExceedsRemaining)

	// Every payment credited the shared balance
	assert.Equal(t, 500.0, systemRepo.balance)
	assert.Equal(t, []float64{200, 200, 100}, systemRepo.deltas)
}

func TestRecordValidation(t *testing.T) {
	svc, _, _ := newMonthlyPaymentFixture(t, 500)
	ctx := context.Background()
	date := time.Now()

	_, err := svc.Record(ctx, 1, "2026-08", 0, date, 9, "", "")
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = svc.Record(ctx, 1, "2026-08", -50, date, 9, "", "")
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = svc.Record(ctx, 1, "agosto", 100, date, 9, "", "")
	assert.ErrorIs(t, err, ErrInvalidMonth)

	// Unknown floor
	_, err = svc.Record(ctx, 99, "2026-08", 100, date, 9, "", "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRemainingDefaultsToConfiguredDue(t *testing.T) {
	svc, _, _ := newMonthlyPaymentFixture(t, 500)
	ctx := context.Background()

	remaining, err := svc.Remaining(ctx, 1, "2026-08")
	assert.NoError(t, err)
	assert.Equal(t, 500.0, remaining)

	_, err = svc.Remaining(ctx, 1, "2026/08")
	assert.ErrorIs(t, err, ErrInvalidMonth)
}

func TestRemainingLockedToFirstPayment(t *testing.T) {
	svc, _, systemRepo := newMonthlyPaymentFixture(t, 500)
	ctx := context.Background()
	date := time.Now()

	_, err := svc.Record(ctx, 1, "2026-08", 200, date, 9, "", "")
	assert.NoError(t, err)

	// Raising the configured due does not rewrite an existing month
	systemRepo.required = 800

	remaining, err := svc.Remaining(ctx, 1, "2026-08")
	assert.NoError(t, err)
	assert.Equal(t, 300.0, remaining)

	// A fresh month picks up the new amount
	remaining, err = svc.Remaining(ctx, 1, "2026-09")
	assert.NoError(t, err)
	assert.Equal(t, 800.0, remaining)
}

func TestUpdateAppliesBalanceDelta(t *testing.T) {
	svc, _, systemRepo := newMonthlyPaymentFixture(t, 500)
	ctx := context.Background()
	date := time.Now()

	p, err := svc.Record(ctx, 1, "2026-08", 200, date, 9, "", "")
	assert.NoError(t, err)

	updated, err := svc.Update(ctx, p.ID, 350, date, "2026-08", 9, "", "")
	assert.NoError(t, err)
	assert.Equal(t, 350.0, updated.AmountPaid)
	assert.Equal(t, 150.0, updated.RemainingAmount)

	// Balance got the original 200 plus the 150 difference
	assert.Equal(t, 350.0, systemRepo.balance)
}

func TestUpdateRejectsOverflowingChain(t *testing.T) {
	svc, _, _ := newMonthlyPaymentFixture(t, 500)
	ctx := context.Background()
	date := time.Now()

	p1, err := svc.Record(ctx, 1, "2026-08", 200, date, 9, "", "")
	assert.NoError(t, err)
	_, err = svc.Record(ctx, 1, "2026-08", 200, date, 9, "", "")
	assert.NoError(t, err)

	// 350 + 200 would exceed the locked-in 500
	_, err = svc.Update(ctx, p1.ID, 350, date, "2026-08", 9, "", "")
	assert.ErrorIs(t, err, ErrExceedsRemaining)
}

func TestUpdateMovesPaymentAcrossMonths(t *testing.T) {
	svc, repo, systemRepo := newMonthlyPaymentFixture(t, 500)
	ctx := context.Background()
	date := time.Now()

	p, err := svc.Record(ctx, 1, "2026-08", 200, date, 9, "", "")
	assert.NoError(t, err)

	moved, err := svc.Update(ctx, p.ID, 200, date, "2026-09", 9, "", "")
	assert.NoError(t, err)
	assert.Equal(t, "2026-09", moved.Month)
	assert.Equal(t, 300.0, moved.RemainingAmount)

	// Same amount, no balance change beyond the original credit
	assert.Equal(t, 200.0, systemRepo.balance)

	// The old month is empty again
	chain, err := repo.FindByFloorAndMonth(ctx, 1, "2026-08")
	assert.NoError(t, err)
	assert.Empty(t, chain)
}

func TestDeleteRecomputesChainAndDebitsBalance(t *testing.T) {
	svc, repo, systemRepo := newMonthlyPaymentFixture(t, 500)
	ctx := context.Background()
	date := time.Now()

	p1, err := svc.Record(ctx, 1, "2026-08", 200, date, 9, "", "")
	assert.NoError(t, err)
	_, err = svc.Record(ctx, 1, "2026-08", 200, date, 9, "", "")
	assert.NoError(t, err)

	err = svc.Delete(ctx, p1.ID, 9, "", "")
	assert.NoError(t, err)

	// The surviving record settles against the same 500
	chain, err := repo.FindByFloorAndMonth(ctx, 1, "2026-08")
	assert.NoError(t, err)
	assert.Len(t, chain, 1)
	assert.Equal(t, 300.0, chain[0].RemainingAmount)
	assert.False(t, chain[0].IsComplete)

	assert.Equal(t, 200.0, systemRepo.balance)
}

func TestDeleteMissingPayment(t *testing.T) {
	svc, _, _ := newMonthlyPaymentFixture(t, 500)
	err := svc.Delete(context.Background(), 404, 9, "", "")
	assert.ErrorIs(t, err, ErrNotFound)
}
