package models

import (
	"fmt"
	"time"
)

// Floor represents a unit of the building. Floors are reference data seeded
// once (cmd/seed) and never mutated by the application.
type Floor struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	FloorNumber int       `gorm:"uniqueIndex;not null" json:"floor_number"` // 0 = ground floor
	Label       string    `json:"label"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName specifies the table name for Floor
func (Floor) TableName() string {
	return "floors"
}

// DisplayName returns a human readable name for the floor
func (f *Floor) DisplayName() string {
	if f.Label != "" {
		return f.Label
	}
	if f.FloorNumber == 0 {
		return "Planta Baja"
	}
	return fmt.Sprintf("Piso %d", f.FloorNumber)
}

// FloorResponse is the JSON response format for floors
type FloorResponse struct {
	ID          uint   `json:"id"`
	FloorNumber int    `json:"floor_number"`
	Label       string `json:"label"`
}

// ToResponse converts Floor to FloorResponse
func (f *Floor) ToResponse() FloorResponse {
	return FloorResponse{
		ID:          f.ID,
		FloorNumber: f.FloorNumber,
		Label:       f.DisplayName(),
	}
}
