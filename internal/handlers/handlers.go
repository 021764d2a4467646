package handlers

import (
	"github.com/sjperalta/condominio-api/internal/services"
)

// Handlers holds all handler instances
type Handlers struct {
	Health         *HealthHandler
	Auth           *AuthHandler
	User           *UserHandler
	Floor          *FloorHandler
	MonthlyPayment *MonthlyPaymentHandler
	Event          *EventHandler
	EventPayment   *EventPaymentHandler
	Expense        *ExpenseHandler
	Dashboard      *DashboardHandler
	Notification   *NotificationHandler
	Report         *ReportHandler
	Audit          *AuditHandler
	Job            *JobHandler
}

// NewHandlers creates all handler instances
func NewHandlers(svcs *services.Services) *Handlers {
	return &Handlers{
		Health:         NewHealthHandler(),
		Auth:           NewAuthHandler(svcs.Auth),
		User:           NewUserHandler(svcs.User),
		Floor:          NewFloorHandler(svcs.Floor, svcs.MonthlyPayment),
		MonthlyPayment: NewMonthlyPaymentHandler(svcs.MonthlyPayment),
		Event:          NewEventHandler(svcs.Event, svcs.EventPayment),
		EventPayment:   NewEventPaymentHandler(svcs.EventPayment),
		Expense:        NewExpenseHandler(svcs.Expense),
		Dashboard:      NewDashboardHandler(svcs.Dashboard, svcs.System),
		Notification:   NewNotificationHandler(svcs.Notification),
		Report:         NewReportHandler(svcs.Report, svcs.Export),
		Audit:          NewAuditHandler(svcs.Audit),
		Job:            NewJobHandler(svcs.Job),
	}
}
