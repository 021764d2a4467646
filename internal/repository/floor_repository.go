package repository

import (
	"context"

	"github.com/sjperalta/condominio-api/internal/models"

	"gorm.io/gorm"
)

// FloorRepository defines the interface for floor data access. Floors are
// immutable reference data; only the seeder creates them.
type FloorRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Floor, error)
	FindByNumber(ctx context.Context, number int) (*models.Floor, error)
	FindAll(ctx context.Context) ([]models.Floor, error)
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, floor *models.Floor) error
}

type floorRepository struct {
	db *gorm.DB
}

// NewFloorRepository creates a new floor repository
func NewFloorRepository(db *gorm.DB) FloorRepository {
	return &floorRepository{db: db}
}

func (r *floorRepository) FindByID(ctx context.Context, id uint) (*models.Floor, error) {
	var floor models.Floor
	err := r.db.WithContext(ctx).First(&floor, id).Error
	if err != nil {
		return nil, err
	}
	return &floor, nil
}

func (r *floorRepository) FindByNumber(ctx context.Context, number int) (*models.Floor, error) {
	var floor models.Floor
	err := r.db.WithContext(ctx).Where("floor_number = ?", number).First(&floor).Error
	if err != nil {
		return nil, err
	}
	return &floor, nil
}

func (r *floorRepository) FindAll(ctx context.Context) ([]models.Floor, error) {
	var floors []models.Floor
	err := r.db.WithContext(ctx).Order("floor_number ASC").Find(&floors).Error
	return floors, err
}

func (r *floorRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Floor{}).Count(&count).Error
	return count, err
}

func (r *floorRepository) Create(ctx context.Context, floor *models.Floor) error {
	return r.db.WithContext(ctx).Create(floor).Error
}
