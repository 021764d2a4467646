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

type mockEventPaymentRepository struct {
	repository.EventPaymentRepository
	payments []models.EventPayment
	nextID   uint
}

func (m *mockEventPaymentRepository) FindByID(ctx context.Context, id uint) (*models.EventPayment, error) {
	for i := range m.payments {
		if m.payments[i].ID == id {
			p := m.payments[i]
			return &p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEventPaymentRepository) FindByEventAndFloor(ctx context.Context, eventID, floorID uint) ([]models.EventPayment, error) {
	var chain []models.EventPayment
	for _, p := range m.payments {
		if p.EventID == eventID && p.FloorID == floorID {
			chain = append(chain, p)
		}
	}
	sort.SliceStable(chain, func(i, j int) bool { return chain[i].ID < chain[j].ID })
	return chain, nil
}

func (m *mockEventPaymentRepository) FindByEvent(ctx context.Context, eventID uint) ([]models.EventPayment, error) {
	var payments []models.EventPayment
	for _, p := range m.payments {
		if p.EventID == eventID {
			payments = append(payments, p)
		}
	}
	sort.SliceStable(payments, func(i, j int) bool { return payments[i].ID < payments[j].ID })
	return payments, nil
}

func (m *mockEventPaymentRepository) Create(ctx context.Context, payment *models.EventPayment) error {
	m.nextID++
	payment.ID = m.nextID
	m.payments = append(m.payments, *payment)
	return nil
}

func (m *mockEventPaymentRepository) UpdateAll(ctx context.Context, payments []models.EventPayment) error {
	for _, p := range payments {
		for i := range m.payments {
			if m.payments[i].ID == p.ID {
				m.payments[i] = p
			}
		}
	}
	return nil
}

func (m *mockEventPaymentRepository) Delete(ctx context.Context, id uint) error {
	kept := m.payments[:0]
	for _, p := range m.payments {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	m.payments = kept
	return nil
}

func (m *mockEventPaymentRepository) SumByEvent(ctx context.Context, eventID uint) (float64, error) {
	var total float64
	for _, p := range m.payments {
		if p.EventID == eventID {
			total += p.AmountPaid
		}
	}
	return total, nil
}

func newEventPaymentFixture(t *testing.T) (*EventPaymentService, *mockEventRepository, *mockSystemRepository) {
	t.Helper()

	repo := &mockEventPaymentRepository{}
	eventRepo := &mockEventRepository{
		events: []models.MaintenanceEvent{
			{ID: 1, Name: "Reparación de techo", TotalCost: 2400, CostPerFloor: 300, Status: models.EventStatusOpen},
			{ID: 2, Name: "Evento cerrado", TotalCost: 800, CostPerFloor: 100, Status: models.EventStatusClosed},
		},
		nextID: 2,
	}
	floorRepo := &mockFloorRepository{floors: []models.Floor{
		{ID: 1, FloorNumber: 0},
		{ID: 2, FloorNumber: 1},
		{ID: 3, FloorNumber: 2},
	}}
	systemRepo := &mockSystemRepository{}

	worker := jobs.NewWorker(0)
	t.Cleanup(worker.Shutdown)

	notifSvc := NewNotificationService(&mockNotificationRepository{}, &mockUserRepository{})
	svc := NewEventPaymentService(repo, eventRepo, floorRepo, systemRepo, notifSvc, nil, worker)
	return svc, eventRepo, systemRepo
}

func TestRecordEventPaymentChain(t *testing.T) {
	svc, _, systemRepo := newEventPaymentFixture(t)
	ctx := context.Background()
	date := time.Now()

	p1, err := svc.Record(ctx, 1, 1, 120, date, 9, "", "")
	assert.NoError(t, err)
	assert.Equal(t, 180.0, p1.RemainingAmount)
	assert.False(t, p1.IsComplete)

	// Quota is 300: another 200 does not fit
	_, err = svc.Record(ctx, 1, 1, 200, date, 9, "", "")
	assert.ErrorIs(t, err, ErrExceedsRemaining)

	p2, err := svc.Record(ctx, 1, 1, 180, date, 9, "", "")
	assert.NoError(t, err)
	assert.Equal(t, 0.0, p2.RemainingAmount)
	assert.True(t, p2.IsComplete)

	assert.Equal(t, 300.0, systemRepo.balance)
}

func TestRecordOnClosedEvent(t *testing.T) {
	svc, _, _ := newEventPaymentFixture(t)

	_, err := svc.Record(context.Background(), 2, 1, 50, time.Now(), 9, "", "")
	assert.ErrorIs(t, err, ErrEventClosed)
}

func TestRecordEventPaymentValidation(t *testing.T) {
	svc, _, _ := newEventPaymentFixture(t)
	ctx := context.Background()

	_, err := svc.Record(ctx, 1, 1, 0, time.Now(), 9, "", "")
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = svc.Record(ctx, 404, 1, 50, time.Now(), 9, "", "")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Record(ctx, 1, 404, 50, time.Now(), 9, "", "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEventPaymentQuotaLockedAtFirstPayment(t *testing.T) {
	svc, eventRepo, _ := newEventPaymentFixture(t)
	ctx := context.Background()

	_, err := svc.Record(ctx, 1, 1, 120, time.Now(), 9, "", "")
	assert.NoError(t, err)

	// Raising the quota afterwards does not reopen a floor's settled math
	event, _ := eventRepo.FindByID(ctx, 1)
	event.CostPerFloor = 500
	eventRepo.Update(ctx, event)

	remaining, err := svc.Remaining(ctx, 1, 1)
	assert.NoError(t, err)
	assert.Equal(t, 180.0, remaining)

	// A floor that has not paid yet sees the new quota
	remaining, err = svc.Remaining(ctx, 1, 2)
	assert.NoError(t, err)
	assert.Equal(t, 500.0, remaining)
}

func TestUpdateEventPayment(t *testing.T) {
	svc, _, systemRepo := newEventPaymentFixture(t)
	ctx := context.Background()
	date := time.Now()

	p, err := svc.Record(ctx, 1, 1, 120, date, 9, "", "")
	assert.NoError(t, err)

	updated, err := svc.Update(ctx, p.ID, 200, date, 9, "", "")
	assert.NoError(t, err)
	assert.Equal(t, 200.0, updated.AmountPaid)
	assert.Equal(t, 100.0, updated.RemainingAmount)
	assert.Equal(t, 200.0, systemRepo.balance)

	// 350 exceeds the 300 quota
	_, err = svc.Update(ctx, p.ID, 350, date, 9, "", "")
	assert.ErrorIs(t, err, ErrExceedsRemaining)
}

func TestUpdateEventPaymentNotifiesAdjustment(t *testing.T) {
	repo := &mockEventPaymentRepository{}
	eventRepo := &mockEventRepository{
		events: []models.MaintenanceEvent{
			{ID: 1, Name: "Pintura de fachada", TotalCost: 900, CostPerFloor: 300, Status: models.EventStatusOpen},
		},
		nextID: 1,
	}
	floorRepo := &mockFloorRepository{floors: []models.Floor{{ID: 1, FloorNumber: 0}}}
	systemRepo := &mockSystemRepository{}

	adjusted := make(chan string, 1)
	notifRepo := &mockNotificationRepository{mockCreate: func(ctx context.Context, n *models.Notification) error {
		if n.NotificationType != nil && *n.NotificationType == models.NotificationTypePaymentAdjusted {
			adjusted <- n.Message
		}
		return nil
	}}
	userRepo := &mockUserRepository{mockFindAdmins: func(ctx context.Context) ([]models.User, error) {
		return []models.User{{ID: 9, Email: "admin@condominio.app", Role: models.RoleAdmin}}, nil
	}}

	worker := jobs.NewWorker(0)
	t.Cleanup(worker.Shutdown)

	svc := NewEventPaymentService(repo, eventRepo, floorRepo, systemRepo, NewNotificationService(notifRepo, userRepo), nil, worker)

	p, err := svc.Record(context.Background(), 1, 1, 120, time.Now(), 9, "", "")
	assert.NoError(t, err)

	_, err = svc.Update(context.Background(), p.ID, 200, time.Now(), 9, "", "")
	assert.NoError(t, err)

	select {
	case msg := <-adjusted:
		assert.Contains(t, msg, "120.00")
		assert.Contains(t, msg, "200.00")
	case <-time.After(2 * time.Second):
		t.Fatal("expected an adjustment notification for admins")
	}
}

func TestDeleteEventPayment(t *testing.T) {
	svc, _, systemRepo := newEventPaymentFixture(t)
	ctx := context.Background()
	date := time.Now()

	p1, err := svc.Record(ctx, 1, 1, 120, date, 9, "", "")
	assert.NoError(t, err)
	_, err = svc.Record(ctx, 1, 1, 100, date, 9, "", "")
	assert.NoError(t, err)

	err = svc.Delete(ctx, p1.ID, 9, "", "")
	assert.NoError(t, err)

	// The second payment settles against the full quota again
	remaining, err := svc.Remaining(ctx, 1, 1)
	assert.NoError(t, err)
	assert.Equal(t, 200.0, remaining)

	assert.Equal(t, 100.0, systemRepo.balance)
}

func TestPendingFloors(t *testing.T) {
	svc, _, _ := newEventPaymentFixture(t)
	ctx := context.Background()
	date := time.Now()

	// Floor 1 settles in full, floor 2 pays half, floor 3 pays nothing
	_, err := svc.Record(ctx, 1, 1, 300, date, 9, "", "")
	assert.NoError(t, err)
	_, err = svc.Record(ctx, 1, 2, 150, date, 9, "", "")
	assert.NoError(t, err)

	pending, err := svc.PendingFloors(ctx, 1)
	assert.NoError(t, err)
	assert.Len(t, pending, 2)

	byFloor := make(map[uint]float64, len(pending))
	for _, p := range pending {
		byFloor[p.Floor.ID] = p.Remaining
	}
	assert.Equal(t, 150.0, byFloor[2])
	assert.Equal(t, 300.0, byFloor[3])
}
