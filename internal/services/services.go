package services

import (
	"github.com/sjperalta/condominio-api/internal/config"
	"github.com/sjperalta/condominio-api/internal/jobs"
	"github.com/sjperalta/condominio-api/internal/repository"
	"github.com/sjperalta/condominio-api/internal/storage"
	"gorm.io/gorm"
)

// Services holds all service instances
type Services struct {
	Auth           *AuthService
	User           *UserService
	Floor          *FloorService
	MonthlyPayment *MonthlyPaymentService
	Event          *EventService
	EventPayment   *EventPaymentService
	Expense        *ExpenseService
	Dashboard      *DashboardService
	System         *SystemService
	Notification   *NotificationService
	Report         *ReportService
	Export         *ExportService
	Audit          *AuditService
	Email          *EmailService
	Job            *JobService
}

// NewServices creates all service instances
func NewServices(repos *repository.Repositories, worker *jobs.Worker, storage *storage.LocalStorage, cfg *config.Config, db *gorm.DB) *Services {
	notificationSvc := NewNotificationService(repos.Notification, repos.User)
	emailSvc := NewEmailService(cfg)
	auditSvc := NewAuditService(db)
	jobSvc := NewJobService(worker)

	reportSvc := NewReportService(repos.Floor, repos.MonthlyPayment, repos.EventPayment, repos.Expense, repos.System)

	return &Services{
		Auth:           NewAuthService(repos.User, repos.RefreshToken, cfg),
		User:           NewUserService(repos.User, repos.Floor, emailSvc, auditSvc),
		Floor:          NewFloorService(repos.Floor),
		MonthlyPayment: NewMonthlyPaymentService(repos.MonthlyPayment, repos.Floor, repos.System, repos.User, notificationSvc, emailSvc, auditSvc, worker),
		Event:          NewEventService(repos.Event, repos.Floor, repos.EventPayment, repos.Expense, notificationSvc, auditSvc, worker),
		EventPayment:   NewEventPaymentService(repos.EventPayment, repos.Event, repos.Floor, repos.System, notificationSvc, auditSvc, worker),
		Expense:        NewExpenseService(repos.Expense, repos.Event, repos.System, repos.User, notificationSvc, emailSvc, auditSvc, storage, worker),
		Dashboard:      NewDashboardService(repos.System, repos.MonthlyPayment, repos.Event, repos.EventPayment, repos.Expense, notificationSvc),
		System:         NewSystemService(repos.System, auditSvc),
		Notification:   notificationSvc,
		Report:         reportSvc,
		Export:         NewExportService(reportSvc),
		Audit:          auditSvc,
		Email:          emailSvc,
		Job:            jobSvc,
	}
}
