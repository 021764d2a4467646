package services

import (
	"context"
	"fmt"

	"github.com/sjperalta/condominio-api/internal/models"
	"github.com/sjperalta/condominio-api/internal/repository"
)

// SystemService exposes the balance and monthly-due singletons
type SystemService struct {
	repo     repository.SystemRepository
	auditSvc *AuditService
}

func NewSystemService(repo repository.SystemRepository, auditSvc *AuditService) *SystemService {
	return &SystemService{repo: repo, auditSvc: auditSvc}
}

func (s *SystemService) Balance(ctx context.Context) (*models.SystemBalance, error) {
	return s.repo.GetBalance(ctx)
}

func (s *SystemService) MonthlyDueConfig(ctx context.Context) (*models.MonthlyDueConfig, error) {
	return s.repo.GetMonthlyDueConfig(ctx)
}

// UpdateMonthlyRequired changes the configured monthly dues amount. Chains
// already started keep settling against the amount in force when their first
// payment was recorded.
func (s *SystemService) UpdateMonthlyRequired(ctx context.Context, required float64, actorID uint, ip, userAgent string) (*models.MonthlyDueConfig, error) {
	if required <= 0 {
		return nil, ErrInvalidAmount
	}

	cfg, err := s.repo.GetMonthlyDueConfig(ctx)
	if err != nil {
		return nil, err
	}
	old := cfg.Required

	if err := s.repo.UpdateMonthlyRequired(ctx, required); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, actorID, "UPDATE", "MonthlyDueConfig", cfg.ID,
		fmt.Sprintf("Cuota mensual cambiada de L %.2f a L %.2f", old, required), ip, userAgent)

	return s.repo.GetMonthlyDueConfig(ctx)
}
