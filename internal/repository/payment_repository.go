package repository

import (
	"context"

	"github.com/sjperalta/condominio-api/internal/models"

	"gorm.io/gorm"
)

// MonthlyPaymentRepository defines the interface for monthly dues payment data access
type MonthlyPaymentRepository interface {
	FindByID(ctx context.Context, id uint) (*models.MonthlyPayment, error)
	FindByFloorAndMonth(ctx context.Context, floorID uint, month string) ([]models.MonthlyPayment, error)
	FindByMonth(ctx context.Context, month string) ([]models.MonthlyPayment, error)
	Create(ctx context.Context, payment *models.MonthlyPayment) error
	Update(ctx context.Context, payment *models.MonthlyPayment) error
	UpdateAll(ctx context.Context, payments []models.MonthlyPayment) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, query *ListQuery) ([]models.MonthlyPayment, int64, error)
	FindByDateRange(ctx context.Context, start, end string) ([]models.MonthlyPayment, error)
	SumByMonth(ctx context.Context, month string) (float64, error)
	SumAll(ctx context.Context) (float64, error)
}

type monthlyPaymentRepository struct {
	db *gorm.DB
}

// NewMonthlyPaymentRepository creates a new monthly payment repository
func NewMonthlyPaymentRepository(db *gorm.DB) MonthlyPaymentRepository {
	return &monthlyPaymentRepository{db: db}
}

func (r *monthlyPaymentRepository) FindByID(ctx context.Context, id uint) (*models.MonthlyPayment, error) {
	var payment models.MonthlyPayment
	err := r.db.WithContext(ctx).
		Preload("Floor").
		First(&payment, id).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// FindByFloorAndMonth returns the payment chain for a (floor, month) key in
// write order. The last record's RemainingAmount is the residual due.
func (r *monthlyPaymentRepository) FindByFloorAndMonth(ctx context.Context, floorID uint, month string) ([]models.MonthlyPayment, error) {
	var payments []models.MonthlyPayment
	err := r.db.WithContext(ctx).
		Where("floor_id = ? AND month = ?", floorID, month).
		Order("created_at ASC, id ASC").
		Find(&payments).Error
	return payments, err
}

func (r *monthlyPaymentRepository) FindByMonth(ctx context.Context, month string) ([]models.MonthlyPayment, error) {
	var payments []models.MonthlyPayment
	err := r.db.WithContext(ctx).
		Preload("Floor").
		Where("month = ?", month).
		Order("created_at ASC, id ASC").
		Find(&payments).Error
	return payments, err
}

func (r *monthlyPaymentRepository) Create(ctx context.Context, payment *models.MonthlyPayment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *monthlyPaymentRepository) Update(ctx context.Context, payment *models.MonthlyPayment) error {
	return r.db.WithContext(ctx).Save(payment).Error
}

// UpdateAll saves a recomputed payment chain in one transaction
func (r *monthlyPaymentRepository) UpdateAll(ctx context.Context, payments []models.MonthlyPayment) error {
	if len(payments) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range payments {
			if err := tx.Save(&payments[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *monthlyPaymentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.MonthlyPayment{}, id).Error
}

func (r *monthlyPaymentRepository) List(ctx context.Context, query *ListQuery) ([]models.MonthlyPayment, int64, error) {
	var payments []models.MonthlyPayment
	var total int64

	db := r.db.WithContext(ctx).Model(&models.MonthlyPayment{})

	if month := query.Filters["month"]; month != "" {
		db = db.Where("month = ?", month)
	}
	if floorID := query.Filters["floor_id"]; floorID != "" {
		db = db.Where("floor_id = ?", floorID)
	}
	if complete := query.Filters["is_complete"]; complete != "" {
		db = db.Where("is_complete = ?", complete == "true")
	}

	db.Count(&total)

	db = db.Preload("Floor").Order("created_at DESC")
	if query.PerPage > 0 {
		db = db.Offset((query.Page - 1) * query.PerPage).Limit(query.PerPage)
	}

	err := db.Find(&payments).Error
	return payments, total, err
}

func (r *monthlyPaymentRepository) FindByDateRange(ctx context.Context, start, end string) ([]models.MonthlyPayment, error) {
	var payments []models.MonthlyPayment
	err := r.db.WithContext(ctx).
		Preload("Floor").
		Where("payment_date >= ? AND payment_date <= ?", start, end).
		Order("payment_date ASC, id ASC").
		Find(&payments).Error
	return payments, err
}

func (r *monthlyPaymentRepository) SumByMonth(ctx context.Context, month string) (float64, error) {
	var result struct {
		Total float64
	}
	err := r.db.WithContext(ctx).
		Model(&models.MonthlyPayment{}).
		Select("COALESCE(SUM(amount_paid), 0) as total").
		Where("month = ?", month).
		Scan(&result).Error
	return result.Total, err
}

func (r *monthlyPaymentRepository) SumAll(ctx context.Context) (float64, error) {
	var result struct {
		Total float64
	}
	err := r.db.WithContext(ctx).
		Model(&models.MonthlyPayment{}).
		Select("COALESCE(SUM(amount_paid), 0) as total").
		Scan(&result).Error
	return result.Total, err
}

// EventPaymentRepository defines the interface for maintenance event payment data access
type EventPaymentRepository interface {
	FindByID(ctx context.Context, id uint) (*models.EventPayment, error)
	FindByEventAndFloor(ctx context.Context, eventID, floorID uint) ([]models.EventPayment, error)
	FindByEvent(ctx context.Context, eventID uint) ([]models.EventPayment, error)
	Create(ctx context.Context, payment *models.EventPayment) error
	Update(ctx context.Context, payment *models.EventPayment) error
	UpdateAll(ctx context.Context, payments []models.EventPayment) error
	Delete(ctx context.Context, id uint) error
	FindByDateRange(ctx context.Context, start, end string) ([]models.EventPayment, error)
	SumByEvent(ctx context.Context, eventID uint) (float64, error)
	SumAll(ctx context.Context) (float64, error)
}

type eventPaymentRepository struct {
	db *gorm.DB
}

// NewEventPaymentRepository creates a new event payment repository
func NewEventPaymentRepository(db *gorm.DB) EventPaymentRepository {
	return &eventPaymentRepository{db: db}
}

func (r *eventPaymentRepository) FindByID(ctx context.Context, id uint) (*models.EventPayment, error) {
	var payment models.EventPayment
	err := r.db.WithContext(ctx).
		Preload("Event").
		Preload("Floor").
		First(&payment, id).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// FindByEventAndFloor returns the payment chain for an (event, floor) key in write order
func (r *eventPaymentRepository) FindByEventAndFloor(ctx context.Context, eventID, floorID uint) ([]models.EventPayment, error) {
	var payments []models.EventPayment
	err := r.db.WithContext(ctx).
		Where("event_id = ? AND floor_id = ?", eventID, floorID).
		Order("created_at ASC, id ASC").
		Find(&payments).Error
	return payments, err
}

func (r *eventPaymentRepository) FindByEvent(ctx context.Context, eventID uint) ([]models.EventPayment, error) {
	var payments []models.EventPayment
	err := r.db.WithContext(ctx).
		Preload("Floor").
		Where("event_id = ?", eventID).
		Order("created_at ASC, id ASC").
		Find(&payments).Error
	return payments, err
}

func (r *eventPaymentRepository) Create(ctx context.Context, payment *models.EventPayment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *eventPaymentRepository) Update(ctx context.Context, payment *models.EventPayment) error {
	return r.db.WithContext(ctx).Save(payment).Error
}

// UpdateAll saves a recomputed payment chain in one transaction
func (r *eventPaymentRepository) UpdateAll(ctx context.Context, payments []models.EventPayment) error {
	if len(payments) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range payments {
			if err := tx.Save(&payments[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *eventPaymentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.EventPayment{}, id).Error
}

func (r *eventPaymentRepository) FindByDateRange(ctx context.Context, start, end string) ([]models.EventPayment, error) {
	var payments []models.EventPayment
	err := r.db.WithContext(ctx).
		Preload("Event").
		Preload("Floor").
		Where("payment_date >= ? AND payment_date <= ?", start, end).
		Order("payment_date ASC, id ASC").
		Find(&payments).Error
	return payments, err
}

func (r *eventPaymentRepository) SumByEvent(ctx context.Context, eventID uint) (float64, error) {
	var result struct {
		Total float64
	}
	err := r.db.WithContext(ctx).
		Model(&models.EventPayment{}).
		Select("COALESCE(SUM(amount_paid), 0) as total").
		Where("event_id = ?", eventID).
		Scan(&result).Error
	return result.Total, err
}

func (r *eventPaymentRepository) SumAll(ctx context.Context) (float64, error) {
	var result struct {
		Total float64
	}
	err := r.db.WithContext(ctx).
		Model(&models.EventPayment{}).
		Select("COALESCE(SUM(amount_paid), 0) as total").
		Scan(&result).Error
	return result.Total, err
}
