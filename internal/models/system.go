package models

import (
	"time"
)

// SystemBalance is the singleton holding the association's available funds.
// Every payment credits TotalBalance and every expense debits it; edits and
// deletes apply the signed difference between the old and new effect.
type SystemBalance struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	TotalBalance float64   `gorm:"type:decimal(14,2);not null;default:0" json:"total_balance"`
	LastUpdated  time.Time `json:"last_updated"`
}

// TableName specifies the table name for SystemBalance
func (SystemBalance) TableName() string {
	return "system_balances"
}

// MonthlyDueConfig is the singleton holding the per-floor monthly amount due.
type MonthlyDueConfig struct {
	ID       uint    `gorm:"primaryKey" json:"id"`
	Required float64 `gorm:"type:decimal(12,2);not null;default:0" json:"required"`

	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for MonthlyDueConfig
func (MonthlyDueConfig) TableName() string {
	return "monthly_due_configs"
}

// BalanceResponse is the JSON response format for the balance singleton
type BalanceResponse struct {
	TotalBalance float64   `json:"total_balance"`
	LastUpdated  time.Time `json:"last_updated"`
}

// ToResponse converts SystemBalance to BalanceResponse
func (b *SystemBalance) ToResponse() BalanceResponse {
	return BalanceResponse{
		TotalBalance: b.TotalBalance,
		LastUpdated:  b.LastUpdated,
	}
}
