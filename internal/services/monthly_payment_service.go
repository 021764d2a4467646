package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sjperalta/condominio-api/internal/jobs"
	"github.com/sjperalta/condominio-api/internal/models"
	"github.com/sjperalta/condominio-api/internal/repository"
	"github.com/sjperalta/condominio-api/pkg/logger"
)

type MonthlyPaymentService struct {
	repo            repository.MonthlyPaymentRepository
	floorRepo       repository.FloorRepository
	systemRepo      repository.SystemRepository
	userRepo        repository.UserRepository
	notificationSvc *NotificationService
	emailSvc        *EmailService
	auditSvc        *AuditService
	worker          *jobs.Worker
}

func NewMonthlyPaymentService(
	repo repository.MonthlyPaymentRepository,
	floorRepo repository.FloorRepository,
	systemRepo repository.SystemRepository,
	userRepo repository.UserRepository,
	notificationSvc *NotificationService,
	emailSvc *EmailService,
	auditSvc *AuditService,
	worker *jobs.Worker,
) *MonthlyPaymentService {
	return &MonthlyPaymentService{
		repo:            repo,
		floorRepo:       floorRepo,
		systemRepo:      systemRepo,
		userRepo:        userRepo,
		notificationSvc: notificationSvc,
		emailSvc:        emailSvc,
		auditSvc:        auditSvc,
		worker:          worker,
	}
}

func (s *MonthlyPaymentService) FindByID(ctx context.Context, id uint) (*models.MonthlyPayment, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *MonthlyPaymentService) List(ctx context.Context, query *repository.ListQuery) ([]models.MonthlyPayment, int64, error) {
	return s.repo.List(ctx, query)
}

// Remaining returns the residual due for a (floor, month) key: the
// RemainingAmount snapshot of the most recent record, or the configured
// monthly amount when no payment exists yet.
func (s *MonthlyPaymentService) Remaining(ctx context.Context, floorID uint, month string) (float64, error) {
	if _, err := time.Parse(models.MonthFormat, month); err != nil {
		return 0, ErrInvalidMonth
	}
	if _, err := s.floorRepo.FindByID(ctx, floorID); err != nil {
		return 0, ErrNotFound
	}

	chain, err := s.repo.FindByFloorAndMonth(ctx, floorID, month)
	if err != nil {
		return 0, err
	}
	if len(chain) > 0 {
		return chain[len(chain)-1].RemainingAmount, nil
	}

	cfg, err := s.systemRepo.GetMonthlyDueConfig(ctx)
	if err != nil {
		return 0, err
	}
	return cfg.Required, nil
}

// Record registers a (possibly partial) dues payment for a floor and month,
// snapshots the residual, and credits the shared balance.
func (s *MonthlyPaymentService) Record(ctx context.Context, floorID uint, month string, amount float64, paymentDate time.Time, actorID uint, ip, userAgent string) (*models.MonthlyPayment, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	floor, err := s.floorRepo.FindByID(ctx, floorID)
	if err != nil {
		return nil, ErrNotFound
	}

	remaining, err := s.Remaining(ctx, floorID, month)
	if err != nil {
		return nil, err
	}
	if amount > remaining {
		return nil, ErrExceedsRemaining
	}

	payment := &models.MonthlyPayment{
		FloorID:         floorID,
		Month:           month,
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
			"Pago de cuota registrado",
			fmt.Sprintf("%s pagó L %.2f de la cuota de %s", floor.DisplayName(), amount, month),
			models.NotificationTypePaymentRecorded)
	})

	s.auditSvc.Log(ctx, actorID, "CREATE", "MonthlyPayment", payment.ID,
		fmt.Sprintf("Pago de L %.2f registrado para %s, mes %s", amount, floor.DisplayName(), month), ip, userAgent)

	return payment, nil
}

// Update edits a payment's amount, date, or month. The balance receives only
// the difference against the stored amount, and the affected chains are
// recomputed against their locked-in required amounts.
func (s *MonthlyPaymentService) Update(ctx context.Context, id uint, amount float64, paymentDate time.Time, month string, actorID uint, ip, userAgent string) (*models.MonthlyPayment, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if _, err := time.Parse(models.MonthFormat, month); err != nil {
		return nil, ErrInvalidMonth
	}

	payment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}

	oldAmount := payment.AmountPaid
	oldMonth := payment.Month
	delta := amount - oldAmount

	payment.AmountPaid = amount
	payment.PaymentDate = paymentDate
	payment.Month = month

	if month == oldMonth {
		chain, err := s.repo.FindByFloorAndMonth(ctx, payment.FloorID, month)
		if err != nil {
			return nil, err
		}
		required, err := s.chainRequired(ctx, chain)
		if err != nil {
			return nil, err
		}
		replaceInChain(chain, payment)
		if err := recomputeMonthlyChain(chain, required); err != nil {
			return nil, err
		}
		if err := s.repo.UpdateAll(ctx, chain); err != nil {
			return nil, err
		}
	} else {
		// The record moves to another month: validate the destination chain
		// first, then repair the one it left.
		destChain, err := s.repo.FindByFloorAndMonth(ctx, payment.FloorID, month)
		if err != nil {
			return nil, err
		}
		destRequired, err := s.chainRequired(ctx, destChain)
		if err != nil {
			return nil, err
		}
		destChain = append(destChain, *payment)
		if err := recomputeMonthlyChain(destChain, destRequired); err != nil {
			return nil, err
		}

		oldChain, err := s.repo.FindByFloorAndMonth(ctx, payment.FloorID, oldMonth)
		if err != nil {
			return nil, err
		}
		oldRequired, err := s.chainRequired(ctx, oldChain)
		if err != nil {
			return nil, err
		}
		oldChain = removeFromChain(oldChain, payment.ID)
		if err := recomputeMonthlyChain(oldChain, oldRequired); err != nil {
			return nil, err
		}

		if err := s.repo.UpdateAll(ctx, destChain); err != nil {
			return nil, err
		}
		if err := s.repo.UpdateAll(ctx, oldChain); err != nil {
			return nil, err
		}
	}

	if delta != 0 {
		if _, err := s.systemRepo.ApplyDelta(ctx, delta); err != nil {
			return nil, fmt.Errorf("actualizando balance: %w", err)
		}
	}

	s.worker.EnqueueAsync(func(ctx context.Context) error {
		return s.notificationSvc.NotifyAdmins(ctx,
			"Pago de cuota ajustado",
			fmt.Sprintf("Pago #%d ajustado de L %.2f a L %.2f", payment.ID, oldAmount, amount),
			models.NotificationTypePaymentAdjusted)
	})

	s.auditSvc.Log(ctx, actorID, "UPDATE", "MonthlyPayment", payment.ID,
		fmt.Sprintf("Pago ajustado de L %.2f a L %.2f (mes %s)", oldAmount, amount, month), ip, userAgent)

	return s.repo.FindByID(ctx, id)
}

// Delete removes a payment, debits the balance by the stored amount, and
// recomputes the rest of the chain.
func (s *MonthlyPaymentService) Delete(ctx context.Context, id uint, actorID uint, ip, userAgent string) error {
	payment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return ErrNotFound
	}

	chain, err := s.repo.FindByFloorAndMonth(ctx, payment.FloorID, payment.Month)
	if err != nil {
		return err
	}
	required, err := s.chainRequired(ctx, chain)
	if err != nil {
		return err
	}
	chain = removeFromChain(chain, payment.ID)
	if err := recomputeMonthlyChain(chain, required); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.repo.UpdateAll(ctx, chain); err != nil {
		return err
	}

	if _, err := s.systemRepo.ApplyDelta(ctx, -payment.AmountPaid); err != nil {
		return fmt.Errorf("actualizando balance: %w", err)
	}

	s.auditSvc.Log(ctx, actorID, "DELETE", "MonthlyPayment", id,
		fmt.Sprintf("Pago de L %.2f eliminado (mes %s)", payment.AmountPaid, payment.Month), ip, userAgent)

	return nil
}

// SendDailyDuesSummaryEmails emails admins the floors whose current-month
// dues are not yet complete. Intended to run once per day.
func (s *MonthlyPaymentService) SendDailyDuesSummaryEmails(ctx context.Context) error {
	month := time.Now().Format(models.MonthFormat)

	floors, err := s.floorRepo.FindAll(ctx)
	if err != nil {
		return fmt.Errorf("listando pisos: %w", err)
	}

	var rows []DuesSummaryRow
	for _, floor := range floors {
		remaining, err := s.Remaining(ctx, floor.ID, month)
		if err != nil {
			logger.Warn(fmt.Sprintf("[Dues summary] Failed to compute remaining for floor %d: %v", floor.ID, err))
			continue
		}
		if remaining > 0 {
			rows = append(rows, DuesSummaryRow{
				FloorName: floor.DisplayName(),
				Remaining: fmt.Sprintf("L%.2f", remaining),
			})
		}
	}

	if len(rows) == 0 {
		logger.Info("[Dues summary] All floors up to date, no summary sent")
		return nil
	}

	admins, err := s.userRepo.FindAdmins(ctx)
	if err != nil {
		return fmt.Errorf("listando administradores: %w", err)
	}

	sent := 0
	for i := range admins {
		if err := s.emailSvc.SendDuesSummary(ctx, &admins[i], month, rows); err != nil {
			logger.Warn(fmt.Sprintf("[Dues summary] Failed to send to %s: %v", admins[i].Email, err))
			continue
		}
		sent++
	}

	logger.Info(fmt.Sprintf("[Dues summary] Sent %d summary email(s), %d floor(s) pending for %s", sent, len(rows), month))
	return nil
}

// chainRequired returns the amount a chain is settled against: the implied
// required of its first record (snapshot + amount, taken before any edit),
// or the configured monthly amount for an empty chain. Locking the required
// to the first record keeps later config changes from rewriting history.
func (s *MonthlyPaymentService) chainRequired(ctx context.Context, chain []models.MonthlyPayment) (float64, error) {
	if len(chain) > 0 {
		return chain[0].RemainingAmount + chain[0].AmountPaid, nil
	}
	cfg, err := s.systemRepo.GetMonthlyDueConfig(ctx)
	if err != nil {
		return 0, err
	}
	return cfg.Required, nil
}

// recomputeMonthlyChain replays a chain in write order against the required
// amount, rewriting each record's snapshot. Fails if any step would drive
// the residual below zero.
func recomputeMonthlyChain(chain []models.MonthlyPayment, required float64) error {
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

func replaceInChain(chain []models.MonthlyPayment, payment *models.MonthlyPayment) {
	for i := range chain {
		if chain[i].ID == payment.ID {
			chain[i] = *payment
			return
		}
	}
}

func removeFromChain(chain []models.MonthlyPayment, id uint) []models.MonthlyPayment {
	out := chain[:0]
	for _, p := range chain {
		if p.ID != id {
			out = append(out, p)
		}
	}
	return out
}
