package models

import (
	"time"
)

// MonthFormat is the layout for the dues period key ("YYYY-MM")
const MonthFormat = "2006-01"

// MonthlyPayment represents one payment (possibly partial) of a floor's
// monthly dues. A floor's bill for a month is the sequence of these records
// keyed by (FloorID, Month); RemainingAmount on the most recent record is
// the residual due for that key.
type MonthlyPayment struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	FloorID         uint      `gorm:"not null;index:idx_monthly_payments_floor_month" json:"floor_id"`
	Month           string    `gorm:"size:7;not null;index:idx_monthly_payments_floor_month" json:"month"`
	AmountPaid      float64   `gorm:"type:decimal(12,2);not null" json:"amount_paid"`
	PaymentDate     time.Time `gorm:"type:date;not null" json:"payment_date"`
	RemainingAmount float64   `gorm:"type:decimal(12,2);not null" json:"remaining_amount"`
	IsComplete      bool      `gorm:"not null;default:false" json:"is_complete"`
	CreatedAt       time.Time `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	// Associations
	Floor Floor `gorm:"foreignKey:FloorID" json:"floor,omitempty"`
}

// TableName specifies the table name for MonthlyPayment
func (MonthlyPayment) TableName() string {
	return "monthly_payments"
}

// MonthlyPaymentResponse is the JSON response format for monthly payments
type MonthlyPaymentResponse struct {
	ID              uint      `json:"id"`
	FloorID         uint      `json:"floor_id"`
	FloorNumber     int       `json:"floor_number"`
	Month           string    `json:"month"`
	AmountPaid      float64   `json:"amount_paid"`
	PaymentDate     time.Time `json:"payment_date"`
	RemainingAmount float64   `json:"remaining_amount"`
	IsComplete      bool      `json:"is_complete"`
	CreatedAt       time.Time `json:"created_at"`
}

// ToResponse converts MonthlyPayment to MonthlyPaymentResponse
func (p *MonthlyPayment) ToResponse() MonthlyPaymentResponse {
	resp := MonthlyPaymentResponse{
		ID:              p.ID,
		FloorID:         p.FloorID,
		Month:           p.Month,
		AmountPaid:      p.AmountPaid,
		PaymentDate:     p.PaymentDate,
		RemainingAmount: p.RemainingAmount,
		IsComplete:      p.IsComplete,
		CreatedAt:       p.CreatedAt,
	}
	if p.Floor.ID != 0 {
		resp.FloorNumber = p.Floor.FloorNumber
	}
	return resp
}
