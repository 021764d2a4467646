package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sjperalta/condominio-api/internal/jobs"
	"github.com/sjperalta/condominio-api/internal/models"
	"github.com/sjperalta/condominio-api/internal/repository"
)

// PendingFloor describes a floor that still owes part of an event's quota
type PendingFloor struct {
	Floor     models.FloorResponse `json:"floor"`
	Remaining float64              `json:"remaining"`
}

type EventPaymentService struct {
	repo            repository.EventPaymentRepository
	eventRepo       repository.EventRepository
	floorRepo       repository.FloorRepository
	systemRepo      repository.SystemRepository
	notificationSvc *NotificationService
	auditSvc        *AuditService
	worker          *jobs.Worker
}

func NewEventPaymentService(
	repo repository.EventPaymentRepository,
	eventRepo repository.EventRepository,
	floorRepo repository.FloorRepository,
	systemRepo repository.SystemRepository,
	notificationSvc *NotificationService,
	auditSvc *AuditService,
	worker *jobs.Worker,
) *EventPaymentService {
	return &EventPaymentService{
		repo:            repo,
		eventRepo:       eventRepo,
		floorRepo:       floorRepo,
		systemRepo:      systemRepo,
		notificationSvc: notificationSvc,
		auditSvc:        auditSvc,
		worker:          worker,
	}
}

func (s *EventPaymentService) FindByID(ctx context.Context, id uint) (*models.EventPayment, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *EventPaymentService) FindByEvent(ctx context.Context, eventID uint) ([]models.EventPayment, error) {
	return s.repo.FindByEvent(ctx, eventID)
}

// Remaining returns the residual quota for a floor on an event: the snapshot
// of the most recent payment, or the event's cost per floor when the floor
// has not paid anything yet.
func (s *EventPaymentService) Remaining(ctx context.Context, eventID, floorID uint) (float64, error) {
	event, err := s.eventRepo.FindByID(ctx, eventID)
	if err != nil {
		return 0, ErrNotFound
	}
	if _, err := s.floorRepo.FindByID(ctx, floorID); err != nil {
		return 0, ErrNotFound
	}

	chain, err := s.repo.FindByEventAndFloor(ctx, eventID, floorID)
	if err != nil {
		return 0, err
	}
	if len(chain) > 0 {
		return chain[len(chain)-1].RemainingAmount, nil
	}
	return event.CostPerFloor, nil
}

// Collected recomputes the total gathered for an event from its live
// payment records.
func (s *EventPaymentService) Collected(ctx context.Context, eventID uint) (float64, error) {
	return s.repo.SumByEvent(ctx, eventID)
}

// PendingFloors lists floors whose event quota is not fully settled, with
// the residual each still owes. Fully paid floors are excluded.
func (s *EventPaymentService) PendingFloors(ctx context.Context, eventID uint) ([]PendingFloor, error) {
	event, err := s.eventRepo.FindByID(ctx, eventID)
	if err != nil {
		return nil, ErrNotFound
	}

	floors, err := s.floorRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	payments, err := s.repo.FindByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	// Latest snapshot per floor; records arrive in write order
	latest := make(map[uint]float64, len(floors))
	for _, p := range payments {
		latest[p.FloorID] = p.RemainingAmount
	}

	pending := make([]PendingFloor, 0, len(floors))
	for _, floor := range floors {
		remaining, paid := latest[floor.ID]
		if !paid {
			remaining = event.CostPerFloor
		}
		if remaining > 0 {
			pending = append(pending, PendingFloor{
				Floor:     floor.ToResponse(),
				Remaining: remaining,
			})
		}
	}
	return pending, nil
}

// Record registers a (possibly partial) event payment for a floor and
// credits the shared balance. The event must be open.
func (s *EventPaymentService) Record(ctx context.Context, eventID, floorID uint, amount float64, paymentDate time.Time, actorID uint, ip, userAgent string) (*models.EventPayment, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	event, err := s.eventRepo.FindByID(ctx, eventID)
	if err != nil {
		return nil, ErrNotFound
	}
	if !event.IsOpen() {
		return nil, ErrEventClosed
	}

	floor, err := s.floorRepo.FindByID(ctx, floorID)
	if err != nil {
		return nil, ErrNotFound
	}

	remaining, err := s.Remaining(ctx, eventID, floorID)
	if err != nil {
		return nil, err
	}
	if amount > remaining {
		return nil, ErrExceedsRemaining
	}

	payment := &models.EventPayment{
		EventID:         eventID,
		FloorID:         floorID,
		AmountPaid:      amount,
		PaymentDate:     paymentDate,
		RemainingAmount: remaining - amount,
		IsComplete:      remaining-amount <= 0,
	}

	if err := s.repo.Create(ctx, payment); err != nil {
		return nil, err
	}

	if _, err := s.systemRepo.ApplyDelta(ctx, amount); err != nil {
		return nil, fmt.Errorf("actualizando balance: %w", err)
	}

	s.worker.EnqueueAsync(func(ctx context.Context) error {
		return s.notificationSvc.NotifyAdmins(ctx,
			"Aporte de evento registrado",
			fmt.Sprintf("%s aportó L %.2f al evento %q", floor.DisplayName(), amount, event.Name),
			models.NotificationTypePaymentRecorded)
	})

	s.auditSvc.Log(ctx, actorID, "CREATE", "EventPayment", payment.ID,
		fmt.Sprintf("Aporte de L %.2f registrado para %s, evento #%d", amount, floor.DisplayName(), eventID), ip, userAgent)

	return payment, nil
}

// Update edits a payment's amount or date. The balance receives only the
// difference against the stored amount; the floor's chain is recomputed
// against its locked-in quota.
func (s *EventPaymentService) Update(ctx context.Context, id uint, amount float64, paymentDate time.Time, actorID uint, ip, userAgent string) (*models.EventPayment, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	payment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}

	oldAmount := payment.AmountPaid
	delta := amount - oldAmount

	chain, err := s.repo.FindByEventAndFloor(ctx, payment.EventID, payment.FloorID)
	if err != nil {
		return nil, err
	}
	required, err := s.chainRequired(ctx, payment.EventID, chain)
	if err != nil {
		return nil, err
	}

	payment.AmountPaid = amount
	payment.PaymentDate = paymentDate
	for i := range chain {
		if chain[i].ID == payment.ID {
			chain[i].AmountPaid = amount
			chain[i].PaymentDate = paymentDate
		}
	}
	if err := recomputeEventChain(chain, required); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateAll(ctx, chain); err != nil {
		return nil, err
	}

	if delta != 0 {
		if _, err := s.systemRepo.ApplyDelta(ctx, delta); err != nil {
			return nil, fmt.Errorf("actualizando balance: %w", err)
		}
	}

	s.worker.EnqueueAsync(func(ctx context.Context) error {
		return s.notificationSvc.NotifyAdmins(ctx,
			"Aporte de evento ajustado",
			fmt.Sprintf("Aporte #%d ajustado de L %.2f a L %.2f (evento #%d)", payment.ID, oldAmount, amount, payment.EventID),
			models.NotificationTypePaymentAdjusted)
	})

	s.auditSvc.Log(ctx, actorID, "UPDATE", "EventPayment", payment.ID,
		fmt.Sprintf("Aporte ajustado de L %.2f a L %.2f (evento #%d)", oldAmount, amount, payment.EventID), ip, userAgent)

	return s.repo.FindByID(ctx, id)
}

// Delete removes a payment, debits the balance by the stored amount, and
// recomputes the rest of the chain.
func (s *EventPaymentService) Delete(ctx context.Context, id uint, actorID uint, ip, userAgent string) error {
	payment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return ErrNotFound
	}

	chain, err := s.repo.FindByEventAndFloor(ctx, payment.EventID, payment.FloorID)
	if err != nil {
		return err
	}
	required, err := s.chainRequired(ctx, payment.EventID, chain)
	if err != nil {
		return err
	}

	kept := chain[:0]
	for _, p := range chain {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	if err := recomputeEventChain(kept, required); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.repo.UpdateAll(ctx, kept); err != nil {
		return err
	}

	if _, err := s.systemRepo.ApplyDelta(ctx, -payment.AmountPaid); err != nil {
		return fmt.Errorf("actualizando balance: %w", err)
	}

	s.auditSvc.Log(ctx, actorID, "DELETE", "EventPayment", id,
		fmt.Sprintf("Aporte de L %.2f eliminado (evento #%d)", payment.AmountPaid, payment.EventID), ip, userAgent)

	return nil
}

// chainRequired returns the quota a floor's chain is settled against: the
// implied required of its first record, or the event's current cost per
// floor for an empty chain.
func (s *EventPaymentService) chainRequired(ctx context.Context, eventID uint, chain []models.EventPayment) (float64, error) {
	if len(chain) > 0 {
		return chain[0].RemainingAmount + chain[0].AmountPaid, nil
	}
	event, err := s.eventRepo.FindByID(ctx, eventID)
	if err != nil {
		return 0, err
	}
	return event.CostPerFloor, nil
}

// recomputeEventChain replays a chain in write order against the quota,
// rewriting each record's snapshot. Fails if any step would drive the
// residual below zero.
func recomputeEventChain(chain []models.EventPayment, required float64) error {
	remaining := required
	for i := range chain {
		remaining -= chain[i].AmountPaid
		if remaining < 0 {
			return ErrExceedsRemaining
		}
		chain[i].RemainingAmount = remaining
		chain[i].IsComplete = remaining <= 0
	}
	return nil
}
