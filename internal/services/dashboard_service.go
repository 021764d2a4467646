package services

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/sjperalta/condominio-api/internal/models"
	"github.com/sjperalta/condominio-api/internal/repository"
	"github.com/sjperalta/condominio-api/pkg/logger"
)

// reconcileTolerance is the drift (in currency units) the reconciliation
// job accepts before correcting the stored balance.
const reconcileTolerance = 0.01

// EventProgress summarizes collection progress for one open event
type EventProgress struct {
	ID        uint    `json:"id"`
	Name      string  `json:"name"`
	TotalCost float64 `json:"total_cost"`
	Collected float64 `json:"collected"`
	Percent   float64 `json:"percent"`
}

// DashboardOverview is the aggregate view served to the frontend
type DashboardOverview struct {
	TotalBalance       float64         `json:"total_balance"`
	LastUpdated        time.Time       `json:"last_updated"`
	RequiredMonthly    float64         `json:"required_monthly"`
	CollectedThisMonth float64         `json:"collected_this_month"`
	SpentThisMonth     float64         `json:"spent_this_month"`
	OpenEvents         []EventProgress `json:"open_events"`
	CurrencySymbol     string          `json:"currency_symbol"`
}

type DashboardService struct {
	systemRepo      repository.SystemRepository
	monthlyRepo     repository.MonthlyPaymentRepository
	eventRepo       repository.EventRepository
	eventPayRepo    repository.EventPaymentRepository
	expenseRepo     repository.ExpenseRepository
	notificationSvc *NotificationService

	mu       sync.RWMutex
	cached   *DashboardOverview
	cachedAt time.Time
	cacheTTL time.Duration
}

func NewDashboardService(
	systemRepo repository.SystemRepository,
	monthlyRepo repository.MonthlyPaymentRepository,
	eventRepo repository.EventRepository,
	eventPayRepo repository.EventPaymentRepository,
	expenseRepo repository.ExpenseRepository,
	notificationSvc *NotificationService,
) *DashboardService {
	return &DashboardService{
		systemRepo:      systemRepo,
		monthlyRepo:     monthlyRepo,
		eventRepo:       eventRepo,
		eventPayRepo:    eventPayRepo,
		expenseRepo:     expenseRepo,
		notificationSvc: notificationSvc,
		cacheTTL:        15 * time.Minute,
	}
}

// GetOverview returns the dashboard aggregate, served from the in-process
// cache when fresh.
func (s *DashboardService) GetOverview(ctx context.Context) (*DashboardOverview, error) {
	s.mu.RLock()
	if s.cached != nil && time.Since(s.cachedAt) < s.cacheTTL {
		overview := *s.cached
		s.mu.RUnlock()
		return &overview, nil
	}
	s.mu.RUnlock()

	overview, err := s.computeOverview(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.cached = overview
	s.cachedAt = time.Now()
	s.mu.Unlock()

	return overview, nil
}

// RefreshCache recomputes the overview; intended for the scheduler
func (s *DashboardService) RefreshCache(ctx context.Context) error {
	overview, err := s.computeOverview(ctx)
	if err != nil {
		logger.Error("Failed to refresh dashboard cache", "error", err)
		return err
	}

	s.mu.Lock()
	s.cached = overview
	s.cachedAt = time.Now()
	s.mu.Unlock()

	return nil
}

func (s *DashboardService) computeOverview(ctx context.Context) (*DashboardOverview, error) {
	balance, err := s.systemRepo.GetBalance(ctx)
	if err != nil {
		return nil, err
	}

	cfg, err := s.systemRepo.GetMonthlyDueConfig(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	month := now.Format(models.MonthFormat)
	collected, err := s.monthlyRepo.SumByMonth(ctx, month)
	if err != nil {
		return nil, err
	}

	monthStart, monthEnd := monthRange(now)
	spent, err := s.expenseRepo.SumByDateRange(ctx, monthStart, monthEnd)
	if err != nil {
		return nil, err
	}

	openEvents, err := s.eventRepo.FindOpen(ctx)
	if err != nil {
		return nil, err
	}

	progress := make([]EventProgress, 0, len(openEvents))
	for _, event := range openEvents {
		eventCollected, err := s.eventPayRepo.SumByEvent(ctx, event.ID)
		if err != nil {
			return nil, err
		}
		percent := 0.0
		if event.TotalCost > 0 {
			percent = math.Round(eventCollected/event.TotalCost*1000) / 10
		}
		progress = append(progress, EventProgress{
			ID:        event.ID,
			Name:      event.Name,
			TotalCost: event.TotalCost,
			Collected: eventCollected,
			Percent:   percent,
		})
	}

	return &DashboardOverview{
		TotalBalance:       balance.TotalBalance,
		LastUpdated:        balance.LastUpdated,
		RequiredMonthly:    cfg.Required,
		CollectedThisMonth: collected,
		SpentThisMonth:     spent,
		OpenEvents:         progress,
		CurrencySymbol:     "L",
	}, nil
}

// monthRange returns the [start, end) date bounds of the month containing t.
// AddDate runs from the first of the month so day overflow at month ends
// (Jan 31 + 1 month lands in March) cannot stretch the range.
func monthRange(t time.Time) (start, end string) {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return first.Format("2006-01-02"), first.AddDate(0, 1, 0).Format("2006-01-02")
}

// ReconcileBalance replays all live payment and expense records and compares
// the result with the stored balance singleton. On drift beyond the
// tolerance it corrects the singleton and alerts admins. Runs on a schedule
// as a safety net for partial multi-step writes.
func (s *DashboardService) ReconcileBalance(ctx context.Context) error {
	monthlyTotal, err := s.monthlyRepo.SumAll(ctx)
	if err != nil {
		return fmt.Errorf("sumando cuotas: %w", err)
	}
	eventTotal, err := s.eventPayRepo.SumAll(ctx)
	if err != nil {
		return fmt.Errorf("sumando aportes: %w", err)
	}
	expenseTotal, err := s.expenseRepo.SumAll(ctx)
	if err != nil {
		return fmt.Errorf("sumando gastos: %w", err)
	}

	expected := monthlyTotal + eventTotal - expenseTotal

	balance, err := s.systemRepo.GetBalance(ctx)
	if err != nil {
		return err
	}

	drift := expected - balance.TotalBalance
	if math.Abs(drift) <= reconcileTolerance {
		return nil
	}

	logger.Warn("Balance drift detected, correcting",
		"stored", balance.TotalBalance, "expected", expected, "drift", drift)

	if err := s.systemRepo.SetBalance(ctx, expected); err != nil {
		return fmt.Errorf("corrigiendo balance: %w", err)
	}

	return s.notificationSvc.NotifyAdmins(ctx,
		"Balance corregido",
		fmt.Sprintf("La conciliación ajustó el balance de L %.2f a L %.2f", balance.TotalBalance, expected),
		models.NotificationTypeBalanceCorrected)
}
