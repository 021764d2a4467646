package repository

import (
	"context"

	"github.com/sjperalta/condominio-api/internal/models"

	"gorm.io/gorm"
)

// ExpenseRepository defines the interface for expense data access
type ExpenseRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Expense, error)
	Create(ctx context.Context, expense *models.Expense) error
	Update(ctx context.Context, expense *models.Expense) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, query *ListQuery) ([]models.Expense, int64, error)
	FindByDateRange(ctx context.Context, start, end string) ([]models.Expense, error)
	SumByEvent(ctx context.Context, eventID uint) (float64, error)
	SumByDateRange(ctx context.Context, start, end string) (float64, error)
	SumAll(ctx context.Context) (float64, error)
}

type expenseRepository struct {
	db *gorm.DB
}

// NewExpenseRepository creates a new expense repository
func NewExpenseRepository(db *gorm.DB) ExpenseRepository {
	return &expenseRepository{db: db}
}

func (r *expenseRepository) FindByID(ctx context.Context, id uint) (*models.Expense, error) {
	var expense models.Expense
	err := r.db.WithContext(ctx).
		Preload("Event").
		First(&expense, id).Error
	if err != nil {
		return nil, err
	}
	return &expense, nil
}

func (r *expenseRepository) Create(ctx context.Context, expense *models.Expense) error {
	return r.db.WithContext(ctx).Create(expense).Error
}

func (r *expenseRepository) Update(ctx context.Context, expense *models.Expense) error {
	return r.db.WithContext(ctx).Save(expense).Error
}

func (r *expenseRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Expense{}, id).Error
}

func (r *expenseRepository) List(ctx context.Context, query *ListQuery) ([]models.Expense, int64, error) {
	var expenses []models.Expense
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Expense{})

	if expenseType := query.Filters["expense_type"]; expenseType != "" {
		db = db.Where("expense_type = ?", expenseType)
	}
	if eventID := query.Filters["event_id"]; eventID != "" {
		db = db.Where("event_id = ?", eventID)
	}
	if val := query.Filters["start_date"]; val != "" {
		db = db.Where("expense_date >= ?", val)
	}
	if val := query.Filters["end_date"]; val != "" {
		db = db.Where("expense_date <= ?", val)
	}
	if search := query.Search; search != "" {
		db = db.Where("description ILIKE ?", "%"+search+"%")
	}

	db.Count(&total)

	db = db.Preload("Event").Order("expense_date DESC, created_at DESC")
	if query.PerPage > 0 {
		db = db.Offset((query.Page - 1) * query.PerPage).Limit(query.PerPage)
	}

	err := db.Find(&expenses).Error
	return expenses, total, err
}

func (r *expenseRepository) FindByDateRange(ctx context.Context, start, end string) ([]models.Expense, error) {
	var expenses []models.Expense
	err := r.db.WithContext(ctx).
		Preload("Event").
		Where("expense_date >= ? AND expense_date <= ?", start, end).
		Order("expense_date ASC").
		Find(&expenses).Error
	return expenses, err
}

func (r *expenseRepository) SumByEvent(ctx context.Context, eventID uint) (float64, error) {
	var result struct {
		Total float64
	}
	err := r.db.WithContext(ctx).
		Model(&models.Expense{}).
		Select("COALESCE(SUM(amount), 0) as total").
		Where("expense_type = ? AND event_id = ?", models.ExpenseTypeEvent, eventID).
		Scan(&result).Error
	return result.Total, err
}

func (r *expenseRepository) SumByDateRange(ctx context.Context, start, end string) (float64, error) {
	var result struct {
		Total float64
	}
	err := r.db.WithContext(ctx).
		Model(&models.Expense{}).
		Select("COALESCE(SUM(amount), 0) as total").
		Where("expense_date >= ? AND expense_date <= ?", start, end).
		Scan(&result).Error
	return result.Total, err
}

func (r *expenseRepository) SumAll(ctx context.Context) (float64, error) {
	var result struct {
		Total float64
	}
	err := r.db.WithContext(ctx).
		Model(&models.Expense{}).
		Select("COALESCE(SUM(amount), 0) as total").
		Scan(&result).Error
	return result.Total, err
}
