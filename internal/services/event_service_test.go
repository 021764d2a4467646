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

type mockEventRepository struct {
	repository.EventRepository
	events            []models.MaintenanceEvent
	nextID            uint
	cascadePayments   float64
	cascadeExpenses   float64
	deleteCascadeDone bool
}

func (m *mockEventRepository) FindByID(ctx context.Context, id uint) (*models.MaintenanceEvent, error) {
	for i := range m.events {
		if m.events[i].ID == id {
			e := m.events[i]
			return &e, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEventRepository) Create(ctx context.Context, event *models.MaintenanceEvent) error {
	m.nextID++
	event.ID = m.nextID
	m.events = append(m.events, *event)
	return nil
}

func (m *mockEventRepository) Update(ctx context.Context, event *models.MaintenanceEvent) error {
	for i := range m.events {
		if m.events[i].ID == event.ID {
			m.events[i] = *event
		}
	}
	return nil
}

func (m *mockEventRepository) DeleteCascade(ctx context.Context, id uint) (float64, float64, error) {
	kept := m.events[:0]
	for _, e := range m.events {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	m.events = kept
	m.deleteCascadeDone = true
	return m.cascadePayments, m.cascadeExpenses, nil
}

func newEventFixture(t *testing.T, floorCount int) (*EventService, *mockEventRepository) {
	t.Helper()

	repo := &mockEventRepository{}
	floors := make([]models.Floor, floorCount)
	for i := range floors {
		floors[i] = models.Floor{ID: uint(i + 1), FloorNumber: i}
	}
	floorRepo := &mockFloorRepository{floors: floors}

	worker := jobs.NewWorker(0)
	t.Cleanup(worker.Shutdown)

	notifSvc := NewNotificationService(&mockNotificationRepository{}, &mockUserRepository{})
	svc := NewEventService(repo, floorRepo, nil, nil, notifSvc, nil, worker)
	return svc, repo
}

func TestCreateEventSplitsCostWithCeiling(t *testing.T) {
	svc, _ := newEventFixture(t, 7)
	ctx := context.Background()
	date := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	event, err := svc.Create(ctx, "Reparación de techo", "Filtraciones en el último piso", 1000, date, 9, "", "")
	assert.NoError(t, err)
	assert.Equal(t, models.EventStatusOpen, event.Status)
	// ceil(1000 / 7) = 143, shares always cover the total
	assert.Equal(t, 143.0, event.CostPerFloor)
	assert.GreaterOrEqual(t, event.CostPerFloor*7, event.TotalCost)
}

func TestCreateEventExactSplit(t *testing.T) {
	svc, _ := newEventFixture(t, 8)

	event, err := svc.Create(context.Background(), "Pintura de fachada", "", 2000, time.Now(), 9, "", "")
	assert.NoError(t, err)
	assert.Equal(t, 250.0, event.CostPerFloor)
}

func TestCreateEventValidation(t *testing.T) {
	svc, _ := newEventFixture(t, 8)

	_, err := svc.Create(context.Background(), "Evento", "", 0, time.Now(), 9, "", "")
	assert.ErrorIs(t, err, ErrInvalidAmount)

	empty, _ := newEventFixture(t, 0)
	_, err = empty.Create(context.Background(), "Evento", "", 500, time.Now(), 9, "", "")
	assert.ErrorIs(t, err, ErrNoFloors)
}

func TestUpdateEventRecomputesShare(t *testing.T) {
	svc, _ := newEventFixture(t, 8)
	ctx := context.Background()

	event, err := svc.Create(ctx, "Ascensor", "", 2000, time.Now(), 9, "", "")
	assert.NoError(t, err)

	updated, err := svc.Update(ctx, event.ID, "Ascensor", "Cambio de motor", 3000, event.EventDate, 9, "", "")
	assert.NoError(t, err)
	assert.Equal(t, 375.0, updated.CostPerFloor)
}

func TestEventLifecycle(t *testing.T) {
	svc, repo := newEventFixture(t, 8)
	ctx := context.Background()

	event, err := svc.Create(ctx, "Bomba de agua", "", 800, time.Now(), 9, "", "")
	assert.NoError(t, err)

	closed, err := svc.Close(ctx, event.ID, 9, "", "")
	assert.NoError(t, err)
	assert.Equal(t, models.EventStatusClosed, closed.Status)

	// Closing twice is an invalid transition
	_, err = svc.Close(ctx, event.ID, 9, "", "")
	assert.ErrorIs(t, err, ErrInvalidState)

	reopened, err := svc.Reopen(ctx, event.ID, 9, "", "")
	assert.NoError(t, err)
	assert.Equal(t, models.EventStatusOpen, reopened.Status)

	// Reopening an open event is likewise invalid
	_, err = svc.Reopen(ctx, event.ID, 9, "", "")
	assert.ErrorIs(t, err, ErrInvalidState)

	stored, err := repo.FindByID(ctx, event.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.EventStatusOpen, stored.Status)
}

func TestDeleteEventCascades(t *testing.T) {
	svc, repo := newEventFixture(t, 8)
	ctx := context.Background()

	event, err := svc.Create(ctx, "Portón eléctrico", "", 1200, time.Now(), 9, "", "")
	assert.NoError(t, err)

	repo.cascadePayments = 400
	repo.cascadeExpenses = 150

	err = svc.Delete(ctx, event.ID, 9, "", "")
	assert.NoError(t, err)
	assert.True(t, repo.deleteCascadeDone)

	_, err = repo.FindByID(ctx, event.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDeleteMissingEvent(t *testing.T) {
	svc, _ := newEventFixture(t, 8)
	err := svc.Delete(context.Background(), 404, 9, "", "")
	assert.ErrorIs(t, err, ErrNotFound)
}
