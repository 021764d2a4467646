package models

import (
	"strings"
	"time"
)

// Expense represents money spent by the association. Every expense debits
// the shared balance; event expenses additionally carry the event they
// belong to so event deletion can cascade over them.
type Expense struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ExpenseType string    `gorm:"not null;index" json:"expense_type"`
	EventID     *uint     `gorm:"index" json:"event_id,omitempty"` // set iff ExpenseType == event
	Description string    `gorm:"not null" json:"description"`
	Amount      float64   `gorm:"type:decimal(12,2);not null" json:"amount"`
	ExpenseDate time.Time `gorm:"type:date;not null;index" json:"expense_date"`
	PaidThrough string    `gorm:"default:cash;not null" json:"paid_through"`
	ReceiptPath *string   `json:"-"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Associations
	Event *MaintenanceEvent `gorm:"foreignKey:EventID" json:"event,omitempty"`
}

// TableName specifies the table name for Expense
func (Expense) TableName() string {
	return "expenses"
}

// Expense type constants
const (
	ExpenseTypeMonthly = "monthly"
	ExpenseTypeEvent   = "event"
)

// Payment channel constants
const (
	PaidThroughCash = "cash"
	PaidThroughBank = "bank"
)

// ExpenseResponse is the JSON response format for expenses
type ExpenseResponse struct {
	ID          uint      `json:"id"`
	ExpenseType string    `json:"expense_type"`
	EventID     *uint     `json:"event_id,omitempty"`
	EventName   string    `json:"event_name,omitempty"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
	ExpenseDate time.Time `json:"expense_date"`
	PaidThrough string    `json:"paid_through"`
	HasReceipt  bool      `json:"has_receipt"`
	IsPDF       bool      `json:"is_pdf"`
	CreatedAt   time.Time `json:"created_at"`
}

// ToResponse converts Expense to ExpenseResponse
func (e *Expense) ToResponse() ExpenseResponse {
	resp := ExpenseResponse{
		ID:          e.ID,
		ExpenseType: e.ExpenseType,
		EventID:     e.EventID,
		Description: e.Description,
		Amount:      e.Amount,
		ExpenseDate: e.ExpenseDate,
		PaidThrough: e.PaidThrough,
		HasReceipt:  e.ReceiptPath != nil && *e.ReceiptPath != "",
		IsPDF:       e.ReceiptPath != nil && strings.HasSuffix(strings.ToLower(*e.ReceiptPath), ".pdf"),
		CreatedAt:   e.CreatedAt,
	}
	if e.Event != nil && e.Event.ID != 0 {
		resp.EventName = e.Event.Name
	}
	return resp
}
