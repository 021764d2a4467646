package models

import (
	"time"
)

// MaintenanceEvent represents a fundraising event for building maintenance
// (roof repair, elevator service, facade painting). Its total cost is split
// evenly across floors with ceiling rounding, so CostPerFloor * floorCount
// always covers TotalCost.
type MaintenanceEvent struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"not null" json:"name"`
	Description  string    `gorm:"type:text" json:"description"`
	TotalCost    float64   `gorm:"type:decimal(12,2);not null" json:"total_cost"`
	CostPerFloor float64   `gorm:"type:decimal(12,2);not null" json:"cost_per_floor"`
	EventDate    time.Time `gorm:"type:date;not null;index" json:"event_date"`
	Status       string    `gorm:"default:open;not null;index" json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Associations
	Payments []EventPayment `gorm:"foreignKey:EventID" json:"payments,omitempty"`
	Expenses []Expense      `gorm:"foreignKey:EventID" json:"expenses,omitempty"`
}

// TableName specifies the table name for MaintenanceEvent
func (MaintenanceEvent) TableName() string {
	return "maintenance_events"
}

// Event status constants
const (
	EventStatusOpen   = "open"
	EventStatusClosed = "closed"
)

// IsOpen returns true if the event still accepts payments
func (e *MaintenanceEvent) IsOpen() bool {
	return e.Status == EventStatusOpen
}

// MayClose returns true if the event can transition to closed
func (e *MaintenanceEvent) MayClose() bool {
	return e.Status == EventStatusOpen
}

// MayReopen returns true if the event can transition back to open
func (e *MaintenanceEvent) MayReopen() bool {
	return e.Status == EventStatusClosed
}

// MaintenanceEventResponse is the JSON response format for events
type MaintenanceEventResponse struct {
	ID           uint      `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	TotalCost    float64   `json:"total_cost"`
	CostPerFloor float64   `json:"cost_per_floor"`
	EventDate    time.Time `json:"event_date"`
	Status       string    `json:"status"`
	Collected    float64   `json:"collected"`
	CreatedAt    time.Time `json:"created_at"`
}

// ToResponse converts MaintenanceEvent to MaintenanceEventResponse.
// Collected is derived by the caller (never stored on the event).
func (e *MaintenanceEvent) ToResponse(collected float64) MaintenanceEventResponse {
	return MaintenanceEventResponse{
		ID:           e.ID,
		Name:         e.Name,
		Description:  e.Description,
		TotalCost:    e.TotalCost,
		CostPerFloor: e.CostPerFloor,
		EventDate:    e.EventDate,
		Status:       e.Status,
		Collected:    collected,
		CreatedAt:    e.CreatedAt,
	}
}
