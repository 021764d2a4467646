package repository

import (
	"gorm.io/gorm"
)

// Repositories holds all repository instances
type Repositories struct {
	User           UserRepository
	Floor          FloorRepository
	Event          EventRepository
	MonthlyPayment MonthlyPaymentRepository
	EventPayment   EventPaymentRepository
	Expense        ExpenseRepository
	System         SystemRepository
	Notification   NotificationRepository
	RefreshToken   RefreshTokenRepository
}

// NewRepositories creates all repository instances
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:           NewUserRepository(db),
		Floor:          NewFloorRepository(db),
		Event:          NewEventRepository(db),
		MonthlyPayment: NewMonthlyPaymentRepository(db),
		EventPayment:   NewEventPaymentRepository(db),
		Expense:        NewExpenseRepository(db),
		System:         NewSystemRepository(db),
		Notification:   NewNotificationRepository(db),
		RefreshToken:   NewRefreshTokenRepository(db),
	}
}
