package services

import (
	"context"

	"github.com/sjperalta/condominio-api/internal/models"
	"github.com/sjperalta/condominio-api/internal/repository"
)

// FloorService exposes the building's floors. Floors are reference data
// created by the seeder, so there are no write operations here.
type FloorService struct {
	repo repository.FloorRepository
}

func NewFloorService(repo repository.FloorRepository) *FloorService {
	return &FloorService{repo: repo}
}

func (s *FloorService) FindByID(ctx context.Context, id uint) (*models.Floor, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *FloorService) FindAll(ctx context.Context) ([]models.Floor, error) {
	return s.repo.FindAll(ctx)
}
