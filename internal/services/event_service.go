package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/sjperalta/condominio-api/internal/jobs"
	"github.com/sjperalta/condominio-api/internal/models"
	"github.com/sjperalta/condominio-api/internal/repository"
	"github.com/sjperalta/condominio-api/internal/statemachine"
)

type EventService struct {
	repo            repository.EventRepository
	floorRepo       repository.FloorRepository
	paymentRepo     repository.EventPaymentRepository
	expenseRepo     repository.ExpenseRepository
	notificationSvc *NotificationService
	auditSvc        *AuditService
	worker          *jobs.Worker
}

func NewEventService(
	repo repository.EventRepository,
	floorRepo repository.FloorRepository,
	paymentRepo repository.EventPaymentRepository,
	expenseRepo repository.ExpenseRepository,
	notificationSvc *NotificationService,
	auditSvc *AuditService,
	worker *jobs.Worker,
) *EventService {
	return &EventService{
		repo:            repo,
		floorRepo:       floorRepo,
		paymentRepo:     paymentRepo,
		expenseRepo:     expenseRepo,
		notificationSvc: notificationSvc,
		auditSvc:        auditSvc,
		worker:          worker,
	}
}

func (s *EventService) FindByID(ctx context.Context, id uint) (*models.MaintenanceEvent, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *EventService) FindByIDWithDetails(ctx context.Context, id uint) (*models.MaintenanceEvent, error) {
	return s.repo.FindByIDWithDetails(ctx, id)
}

func (s *EventService) List(ctx context.Context, query *repository.ListQuery) ([]models.MaintenanceEvent, int64, error) {
	return s.repo.List(ctx, query)
}

func (s *EventService) Collected(ctx context.Context, eventID uint) (float64, error) {
	return s.paymentRepo.SumByEvent(ctx, eventID)
}

// Create registers a maintenance event and splits its cost evenly across
// floors, rounding each share up so the shares always cover the total.
func (s *EventService) Create(ctx context.Context, name, description string, totalCost float64, eventDate time.Time, actorID uint, ip, userAgent string) (*models.MaintenanceEvent, error) {
	if totalCost <= 0 {
		return nil, ErrInvalidAmount
	}

	costPerFloor, err := s.costPerFloor(ctx, totalCost)
	if err != nil {
		return nil, err
	}

	event := &models.MaintenanceEvent{
		Name:         name,
		Description:  description,
		TotalCost:    totalCost,
		CostPerFloor: costPerFloor,
		EventDate:    eventDate,
		Status:       models.EventStatusOpen,
	}

	if err := s.repo.Create(ctx, event); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, actorID, "CREATE", "Event", event.ID,
		fmt.Sprintf("Evento %q creado, costo total L %.2f (L %.2f por piso)", name, totalCost, costPerFloor), ip, userAgent)

	return event, nil
}

// Update edits an event's details and recomputes the per-floor share from
// the new total cost. Quota snapshots already taken by payments are not
// rewritten; they settle against the quota in force when the floor first
// paid.
func (s *EventService) Update(ctx context.Context, id uint, name, description string, totalCost float64, eventDate time.Time, actorID uint, ip, userAgent string) (*models.MaintenanceEvent, error) {
	if totalCost <= 0 {
		return nil, ErrInvalidAmount
	}

	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}

	costPerFloor, err := s.costPerFloor(ctx, totalCost)
	if err != nil {
		return nil, err
	}

	event.Name = name
	event.Description = description
	event.TotalCost = totalCost
	event.CostPerFloor = costPerFloor
	event.EventDate = eventDate

	if err := s.repo.Update(ctx, event); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, actorID, "UPDATE", "Event", event.ID,
		fmt.Sprintf("Evento %q actualizado, costo total L %.2f (L %.2f por piso)", name, totalCost, costPerFloor), ip, userAgent)

	return event, nil
}

// Close transitions an event to closed; closed events reject new payments
func (s *EventService) Close(ctx context.Context, id uint, actorID uint, ip, userAgent string) (*models.MaintenanceEvent, error) {
	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}

	efsm := statemachine.NewEventFSM(event)
	if err := efsm.Close(ctx); err != nil {
		return nil, ErrInvalidState
	}

	if err := s.repo.Update(ctx, event); err != nil {
		return nil, err
	}

	s.worker.EnqueueAsync(func(ctx context.Context) error {
		return s.notificationSvc.NotifyAdmins(ctx,
			"Evento cerrado",
			fmt.Sprintf("El evento %q fue cerrado", event.Name),
			models.NotificationTypeEventClosed)
	})

	s.auditSvc.Log(ctx, actorID, "CLOSE", "Event", event.ID,
		fmt.Sprintf("Evento %q cerrado", event.Name), ip, userAgent)

	return event, nil
}

// Reopen transitions a closed event back to open
func (s *EventService) Reopen(ctx context.Context, id uint, actorID uint, ip, userAgent string) (*models.MaintenanceEvent, error) {
	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}

	efsm := statemachine.NewEventFSM(event)
	if err := efsm.Reopen(ctx); err != nil {
		return nil, ErrInvalidState
	}

	if err := s.repo.Update(ctx, event); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, actorID, "REOPEN", "Event", event.ID,
		fmt.Sprintf("Evento %q reabierto", event.Name), ip, userAgent)

	return event, nil
}

// Delete removes an event with all of its payments and expenses and adjusts
// the shared balance by the net effect, in a single transaction. Other
// events and monthly dues are untouched.
func (s *EventService) Delete(ctx context.Context, id uint, actorID uint, ip, userAgent string) error {
	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return ErrNotFound
	}

	paymentsTotal, expensesTotal, err := s.repo.DeleteCascade(ctx, id)
	if err != nil {
		return err
	}

	s.worker.EnqueueAsync(func(ctx context.Context) error {
		return s.notificationSvc.NotifyAdmins(ctx,
			"Evento eliminado",
			fmt.Sprintf("El evento %q fue eliminado: se revirtieron L %.2f en aportes y L %.2f en gastos",
				event.Name, paymentsTotal, expensesTotal),
			models.NotificationTypeEventDeleted)
	})

	s.auditSvc.Log(ctx, actorID, "DELETE", "Event", id,
		fmt.Sprintf("Evento %q eliminado (aportes L %.2f, gastos L %.2f)", event.Name, paymentsTotal, expensesTotal), ip, userAgent)

	return nil
}

func (s *EventService) costPerFloor(ctx context.Context, totalCost float64) (float64, error) {
	count, err := s.floorRepo.Count(ctx)
	if err != nil {
		return 0, err
	}
	if count == 0 {
		return 0, ErrNoFloors
	}
	return math.Ceil(totalCost / float64(count)), nil
}
