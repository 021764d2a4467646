package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"time"

	"github.com/sjperalta/condominio-api/internal/jobs"
	"github.com/sjperalta/condominio-api/internal/models"
	"github.com/sjperalta/condominio-api/internal/repository"
	"github.com/sjperalta/condominio-api/internal/storage"
	"github.com/sjperalta/condominio-api/pkg/logger"
)

// lowBalanceThreshold is the balance under which admins get alerted
const lowBalanceThreshold = 1000.0

// lowBalanceMailer is the slice of EmailService the low-balance alert uses
type lowBalanceMailer interface {
	SendLowBalanceAlert(ctx context.Context, admin *models.User, balance float64) error
}

type ExpenseService struct {
	repo            repository.ExpenseRepository
	eventRepo       repository.EventRepository
	systemRepo      repository.SystemRepository
	userRepo        repository.UserRepository
	notificationSvc *NotificationService
	emailSvc        lowBalanceMailer
	auditSvc        *AuditService
	storage         *storage.LocalStorage
	imageSvc        *ImageService
	worker          *jobs.Worker
}

func NewExpenseService(
	repo repository.ExpenseRepository,
	eventRepo repository.EventRepository,
	systemRepo repository.SystemRepository,
	userRepo repository.UserRepository,
	notificationSvc *NotificationService,
	emailSvc lowBalanceMailer,
	auditSvc *AuditService,
	storage *storage.LocalStorage,
	worker *jobs.Worker,
) *ExpenseService {
	return &ExpenseService{
		repo:            repo,
		eventRepo:       eventRepo,
		systemRepo:      systemRepo,
		userRepo:        userRepo,
		notificationSvc: notificationSvc,
		emailSvc:        emailSvc,
		auditSvc:        auditSvc,
		storage:         storage,
		imageSvc:        NewImageService(),
		worker:          worker,
	}
}

func (s *ExpenseService) FindByID(ctx context.Context, id uint) (*models.Expense, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *ExpenseService) List(ctx context.Context, query *repository.ListQuery) ([]models.Expense, int64, error) {
	return s.repo.List(ctx, query)
}

// Create registers an expense and debits the shared balance. The expense
// must fit within the current balance; the fund never goes negative.
func (s *ExpenseService) Create(ctx context.Context, expenseType string, eventID *uint, description string, amount float64, expenseDate time.Time, paidThrough string, actorID uint, ip, userAgent string) (*models.Expense, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if expenseType != models.ExpenseTypeMonthly && expenseType != models.ExpenseTypeEvent {
		return nil, fmt.Errorf("tipo de gasto inválido: %s", expenseType)
	}
	if paidThrough == "" {
		paidThrough = models.PaidThroughCash
	}

	if expenseType == models.ExpenseTypeEvent {
		if eventID == nil {
			return nil, fmt.Errorf("un gasto de evento requiere el evento asociado")
		}
		if _, err := s.eventRepo.FindByID(ctx, *eventID); err != nil {
			return nil, ErrNotFound
		}
	} else {
		eventID = nil
	}

	balance, err := s.systemRepo.GetBalance(ctx)
	if err != nil {
		return nil, err
	}
	if amount > balance.TotalBalance {
		return nil, ErrInsufficientBalance
	}

	expense := &models.Expense{
		ExpenseType: expenseType,
		EventID:     eventID,
		Description: description,
		Amount:      amount,
		ExpenseDate: expenseDate,
		PaidThrough: paidThrough,
	}

	if err := s.repo.Create(ctx, expense); err != nil {
		return nil, err
	}

	newBalance, err := s.systemRepo.ApplyDelta(ctx, -amount)
	if err != nil {
		return nil, fmt.Errorf("actualizando balance: %w", err)
	}

	s.worker.EnqueueAsync(func(ctx context.Context) error {
		if err := s.notificationSvc.NotifyAdmins(ctx,
			"Gasto registrado",
			fmt.Sprintf("Gasto de L %.2f: %s", amount, description),
			models.NotificationTypeExpenseRecorded); err != nil {
			return err
		}
		if newBalance < lowBalanceThreshold {
			return s.alertLowBalance(ctx, newBalance)
		}
		return nil
	})

	s.auditSvc.Log(ctx, actorID, "CREATE", "Expense", expense.ID,
		fmt.Sprintf("Gasto de L %.2f registrado: %s", amount, description), ip, userAgent)

	return expense, nil
}

// alertLowBalance raises the in-app alert and emails every admin when the
// fund drops under the threshold.
func (s *ExpenseService) alertLowBalance(ctx context.Context, balance float64) error {
	if err := s.notificationSvc.NotifyAdmins(ctx,
		"Balance bajo",
		fmt.Sprintf("El balance del fondo bajó a L %.2f", balance),
		models.NotificationTypeLowBalance); err != nil {
		return err
	}

	admins, err := s.userRepo.FindAdmins(ctx)
	if err != nil {
		return fmt.Errorf("listando administradores: %w", err)
	}
	for i := range admins {
		if err := s.emailSvc.SendLowBalanceAlert(ctx, &admins[i], balance); err != nil {
			logger.Warn(fmt.Sprintf("[Low balance] Failed to email %s: %v", admins[i].Email, err))
		}
	}
	return nil
}

// Update edits an expense. The balance receives the flipped difference
// against the stored amount; an increase must still fit within the current
// balance.
func (s *ExpenseService) Update(ctx context.Context, id uint, description string, amount float64, expenseDate time.Time, paidThrough string, actorID uint, ip, userAgent string) (*models.Expense, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	expense, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}

	oldAmount := expense.Amount
	delta := amount - oldAmount

	if delta > 0 {
		balance, err := s.systemRepo.GetBalance(ctx)
		if err != nil {
			return nil, err
		}
		if delta > balance.TotalBalance {
			return nil, ErrInsufficientBalance
		}
	}

	expense.Description = description
	expense.Amount = amount
	expense.ExpenseDate = expenseDate
	if paidThrough != "" {
		expense.PaidThrough = paidThrough
	}

	if err := s.repo.Update(ctx, expense); err != nil {
		return nil, err
	}

	if delta != 0 {
		if _, err := s.systemRepo.ApplyDelta(ctx, -delta); err != nil {
			return nil, fmt.Errorf("actualizando balance: %w", err)
		}
	}

	s.auditSvc.Log(ctx, actorID, "UPDATE", "Expense", expense.ID,
		fmt.Sprintf("Gasto ajustado de L %.2f a L %.2f", oldAmount, amount), ip, userAgent)

	return expense, nil
}

// Delete removes an expense and returns its amount to the balance
func (s *ExpenseService) Delete(ctx context.Context, id uint, actorID uint, ip, userAgent string) error {
	expense, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return ErrNotFound
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if _, err := s.systemRepo.ApplyDelta(ctx, expense.Amount); err != nil {
		return fmt.Errorf("actualizando balance: %w", err)
	}

	if expense.ReceiptPath != nil && *expense.ReceiptPath != "" {
		s.deleteReceiptFiles(*expense.ReceiptPath)
	}

	s.auditSvc.Log(ctx, actorID, "DELETE", "Expense", id,
		fmt.Sprintf("Gasto de L %.2f eliminado: %s", expense.Amount, expense.Description), ip, userAgent)

	return nil
}

// UploadReceipt stores a receipt file for the expense and records its path
func (s *ExpenseService) UploadReceipt(ctx context.Context, id uint, file multipart.File, header *multipart.FileHeader) (*models.Expense, error) {
	expense, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}

	path, err := s.storage.Upload(file, header, "receipts")
	if err != nil {
		return nil, fmt.Errorf("guardando comprobante: %w", err)
	}

	// Replace a previous receipt if one exists
	if expense.ReceiptPath != nil && *expense.ReceiptPath != "" {
		s.deleteReceiptFiles(*expense.ReceiptPath)
	}

	expense.ReceiptPath = &path
	if err := s.repo.Update(ctx, expense); err != nil {
		return nil, err
	}

	// Image receipts get a preview thumbnail; PDFs are stored verbatim
	if s.imageSvc.IsImage(path) {
		fullPath := s.storage.GetFullPath(path)
		s.worker.EnqueueAsync(func(ctx context.Context) error {
			_, err := s.imageSvc.CreateThumbnail(fullPath)
			return err
		})
	}

	return expense, nil
}

// deleteReceiptFiles removes a stored receipt and its thumbnail, if any
func (s *ExpenseService) deleteReceiptFiles(path string) {
	s.storage.Delete(path)
	if s.imageSvc.IsImage(path) {
		s.storage.Delete(s.imageSvc.ThumbnailPath(path))
	}
}

// ReceiptPath returns the stored receipt path for download, if any
func (s *ExpenseService) ReceiptPath(ctx context.Context, id uint) (string, error) {
	expense, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return "", ErrNotFound
	}
	if expense.ReceiptPath == nil || *expense.ReceiptPath == "" || !s.storage.Exists(*expense.ReceiptPath) {
		return "", ErrNotFound
	}
	return s.storage.GetFullPath(*expense.ReceiptPath), nil
}
