package models

import (
	"time"
)

// EventPayment represents one payment (possibly partial) of a floor's share
// of a maintenance event. Same partial-payment model as MonthlyPayment,
// keyed by (EventID, FloorID) with the event's CostPerFloor as the required
// amount.
type EventPayment struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	EventID         uint      `gorm:"not null;index:idx_event_payments_event_floor" json:"event_id"`
	FloorID         uint      `gorm:"not null;index:idx_event_payments_event_floor" json:"floor_id"`
	AmountPaid      float64   `gorm:"type:decimal(12,2);not null" json:"amount_paid"`
	PaymentDate     time.Time `gorm:"type:date;not null" json:"payment_date"`
	RemainingAmount float64   `gorm:"type:decimal(12,2);not null" json:"remaining_amount"`
	IsComplete      bool      `gorm:"not null;default:false" json:"is_complete"`
	CreatedAt       time.Time `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	// Associations
	Event MaintenanceEvent `gorm:"foreignKey:EventID" json:"event,omitempty"`
	Floor Floor            `gorm:"foreignKey:FloorID" json:"floor,omitempty"`
}

// TableName specifies the table name for EventPayment
func (EventPayment) TableName() string {
	return "event_payments"
}

// EventPaymentResponse is the JSON response format for event payments
type EventPaymentResponse struct {
	ID              uint      `json:"id"`
	EventID         uint      `json:"event_id"`
	EventName       string    `json:"event_name,omitempty"`
	FloorID         uint      `json:"floor_id"`
	FloorNumber     int       `json:"floor_number"`
	AmountPaid      float64   `json:"amount_paid"`
	PaymentDate     time.Time `json:"payment_date"`
	RemainingAmount float64   `json:"remaining_amount"`
	IsComplete      bool      `json:"is_complete"`
	CreatedAt       time.Time `json:"created_at"`
}

// ToResponse converts EventPayment to EventPaymentResponse
func (p *EventPayment) ToResponse() EventPaymentResponse {
	resp := EventPaymentResponse{
		ID:              p.ID,
		EventID:         p.EventID,
		FloorID:         p.FloorID,
		AmountPaid:      p.AmountPaid,
		PaymentDate:     p.PaymentDate,
		RemainingAmount: p.RemainingAmount,
		IsComplete:      p.IsComplete,
		CreatedAt:       p.CreatedAt,
	}
	if p.Event.ID != 0 {
		resp.EventName = p.Event.Name
	}
	if p.Floor.ID != 0 {
		resp.FloorNumber = p.Floor.FloorNumber
	}
	return resp
}
