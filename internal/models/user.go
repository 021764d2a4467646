package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents an account able to sign into the admin application
type User struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	Email             string     `gorm:"uniqueIndex;not null" json:"email"`
	EncryptedPassword string     `gorm:"column:encrypted_password;not null" json:"-"`
	Role              string     `gorm:"default:resident" json:"role"`
	FullName          string     `json:"full_name"`
	Phone             string     `json:"phone"`
	Status            string     `gorm:"default:active" json:"status"`
	FloorID           *uint      `gorm:"index" json:"floor_id,omitempty"` // resident accounts belong to a floor
	DiscardedAt       *time.Time `gorm:"index" json:"-"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`

	// Associations
	Floor         *Floor         `gorm:"foreignKey:FloorID" json:"floor,omitempty"`
	Notifications []Notification `gorm:"foreignKey:UserID" json:"notifications,omitempty"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}

// BeforeCreate hook for setting defaults
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.Role == "" {
		u.Role = RoleResident
	}
	if u.Status == "" {
		u.Status = StatusActive
	}
	return nil
}

// IsAdmin returns true if user has admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsActive returns true if user status is active
func (u *User) IsActive() bool {
	return u.Status == StatusActive && u.DiscardedAt == nil
}

// Role constants
const (
	RoleAdmin    = "admin"
	RoleResident = "resident"
)

// Status constants
const (
	StatusActive    = "active"
	StatusInactive  = "inactive"
	StatusSuspended = "suspended"
)

// UserResponse is the JSON response format for users
type UserResponse struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Phone     string    `json:"phone"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	FloorID   *uint     `json:"floor_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToResponse converts User to UserResponse
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		Phone:     u.Phone,
		Role:      u.Role,
		Status:    u.Status,
		FloorID:   u.FloorID,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
