package repository

import (
	"context"
	"time"

	"github.com/sjperalta/condominio-api/internal/models"

	"gorm.io/gorm"
)

// EventRepository defines the interface for maintenance event data access
type EventRepository interface {
	FindByID(ctx context.Context, id uint) (*models.MaintenanceEvent, error)
	FindByIDWithDetails(ctx context.Context, id uint) (*models.MaintenanceEvent, error)
	FindOpen(ctx context.Context) ([]models.MaintenanceEvent, error)
	Create(ctx context.Context, event *models.MaintenanceEvent) error
	Update(ctx context.Context, event *models.MaintenanceEvent) error
	List(ctx context.Context, query *ListQuery) ([]models.MaintenanceEvent, int64, error)
	DeleteCascade(ctx context.Context, id uint) (paymentsTotal, expensesTotal float64, err error)
}

type eventRepository struct {
	db *gorm.DB
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) FindByID(ctx context.Context, id uint) (*models.MaintenanceEvent, error) {
	var event models.MaintenanceEvent
	err := r.db.WithContext(ctx).First(&event, id).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *eventRepository) FindByIDWithDetails(ctx context.Context, id uint) (*models.MaintenanceEvent, error) {
	var event models.MaintenanceEvent
	err := r.db.WithContext(ctx).
		Preload("Payments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("Payments.Floor").
		Preload("Expenses", func(db *gorm.DB) *gorm.DB {
			return db.Order("expense_date ASC")
		}).
		First(&event, id).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *eventRepository) FindOpen(ctx context.Context) ([]models.MaintenanceEvent, error) {
	var events []models.MaintenanceEvent
	err := r.db.WithContext(ctx).
		Where("status = ?", models.EventStatusOpen).
		Order("event_date ASC").
		Find(&events).Error
	return events, err
}

func (r *eventRepository) Create(ctx context.Context, event *models.MaintenanceEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *eventRepository) Update(ctx context.Context, event *models.MaintenanceEvent) error {
	return r.db.WithContext(ctx).Save(event).Error
}

func (r *eventRepository) List(ctx context.Context, query *ListQuery) ([]models.MaintenanceEvent, int64, error) {
	var events []models.MaintenanceEvent
	var total int64

	db := r.db.WithContext(ctx).Model(&models.MaintenanceEvent{})

	if status := query.Filters["status"]; status != "" {
		db = db.Where("status = ?", status)
	}
	if search := query.Search; search != "" {
		term := "%" + search + "%"
		db = db.Where("name ILIKE ? OR description ILIKE ?", term, term)
	}

	db.Count(&total)

	db = db.Order("event_date DESC")
	if query.PerPage > 0 {
		db = db.Offset((query.Page - 1) * query.PerPage).Limit(query.PerPage)
	}

	err := db.Find(&events).Error
	return events, total, err
}

// DeleteCascade removes an event together with its payments and expenses and
// reverses their balance effects, all in one transaction. The sums are read
// inside the same transaction as the deletes so the adjustment is computed
// from a consistent snapshot: deleting the payments removes their credit
// (-paymentsTotal) and deleting the expenses returns their debit
// (+expensesTotal).
func (r *eventRepository) DeleteCascade(ctx context.Context, id uint) (float64, float64, error) {
	var paymentsTotal, expensesTotal float64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sum struct {
			Total float64
		}

		if err := tx.Model(&models.EventPayment{}).
			Select("COALESCE(SUM(amount_paid), 0) as total").
			Where("event_id = ?", id).
			Scan(&sum).Error; err != nil {
			return err
		}
		paymentsTotal = sum.Total

		if err := tx.Model(&models.Expense{}).
			Select("COALESCE(SUM(amount), 0) as total").
			Where("expense_type = ? AND event_id = ?", models.ExpenseTypeEvent, id).
			Scan(&sum).Error; err != nil {
			return err
		}
		expensesTotal = sum.Total

		if err := tx.Where("event_id = ?", id).Delete(&models.EventPayment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("expense_type = ? AND event_id = ?", models.ExpenseTypeEvent, id).
			Delete(&models.Expense{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.MaintenanceEvent{}, id).Error; err != nil {
			return err
		}

		adjustment := -paymentsTotal + expensesTotal
		return tx.Model(&models.SystemBalance{}).
			Where("id = ?", 1).
			Updates(map[string]interface{}{
				"total_balance": gorm.Expr("total_balance + ?", adjustment),
				"last_updated":  time.Now(),
			}).Error
	})

	return paymentsTotal, expensesTotal, err
}
