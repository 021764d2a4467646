package repository

import (
	"context"
	"time"

	"github.com/sjperalta/condominio-api/internal/models"

	"gorm.io/gorm"
)

// SystemRepository defines the interface for the balance and due-config singletons
type SystemRepository interface {
	GetBalance(ctx context.Context) (*models.SystemBalance, error)
	ApplyDelta(ctx context.Context, delta float64) (float64, error)
	SetBalance(ctx context.Context, value float64) error
	GetMonthlyDueConfig(ctx context.Context) (*models.MonthlyDueConfig, error)
	UpdateMonthlyRequired(ctx context.Context, required float64) error
}

type systemRepository struct {
	db *gorm.DB
}

// NewSystemRepository creates a new system repository
func NewSystemRepository(db *gorm.DB) SystemRepository {
	return &systemRepository{db: db}
}

// GetBalance returns the balance singleton, creating it at zero if missing.
// A missing balance document reads as balance = 0.
func (r *systemRepository) GetBalance(ctx context.Context) (*models.SystemBalance, error) {
	var balance models.SystemBalance
	err := r.db.WithContext(ctx).
		Where(models.SystemBalance{ID: 1}).
		Attrs(models.SystemBalance{TotalBalance: 0, LastUpdated: time.Now()}).
		FirstOrCreate(&balance).Error
	if err != nil {
		return nil, err
	}
	return &balance, nil
}

// ApplyDelta credits (positive) or debits (negative) the shared balance as a
// single SQL increment, so concurrent writers cannot lose each other's
// updates. Returns the balance after the delta.
func (r *systemRepository) ApplyDelta(ctx context.Context, delta float64) (float64, error) {
	var balance models.SystemBalance
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where(models.SystemBalance{ID: 1}).
			Attrs(models.SystemBalance{TotalBalance: 0, LastUpdated: time.Now()}).
			FirstOrCreate(&balance).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.SystemBalance{}).
			Where("id = ?", balance.ID).
			Updates(map[string]interface{}{
				"total_balance": gorm.Expr("total_balance + ?", delta),
				"last_updated":  time.Now(),
			}).Error; err != nil {
			return err
		}
		return tx.First(&balance, balance.ID).Error
	})
	return balance.TotalBalance, err
}

// SetBalance overwrites the balance singleton. Used by the reconciliation
// job when a replay of live records disagrees with the stored value.
func (r *systemRepository) SetBalance(ctx context.Context, value float64) error {
	balance, err := r.GetBalance(ctx)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Model(&models.SystemBalance{}).
		Where("id = ?", balance.ID).
		Updates(map[string]interface{}{
			"total_balance": value,
			"last_updated":  time.Now(),
		}).Error
}

// GetMonthlyDueConfig returns the due-config singleton, creating it if missing
func (r *systemRepository) GetMonthlyDueConfig(ctx context.Context) (*models.MonthlyDueConfig, error) {
	var cfg models.MonthlyDueConfig
	err := r.db.WithContext(ctx).
		Where(models.MonthlyDueConfig{ID: 1}).
		FirstOrCreate(&cfg).Error
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (r *systemRepository) UpdateMonthlyRequired(ctx context.Context, required float64) error {
	cfg, err := r.GetMonthlyDueConfig(ctx)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Model(&models.MonthlyDueConfig{}).
		Where("id = ?", cfg.ID).
		Update("required", required).Error
}
