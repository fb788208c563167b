package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Roles.
const (
	RoleCashier    = "cashier"
	RoleSupervisor = "supervisor"
	RoleAdmin      = "admin"
)

// User stores till operators with role-based access.
// Role: "cashier" | "supervisor" | "admin"
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Username     string    `gorm:"uniqueIndex;not null"`
	FullName     string    `gorm:"not null"`
	Email        *string
	PasswordHash string `gorm:"not null"`
	Role         string `gorm:"type:varchar(20);not null"`
	// POSProfileID is the profile the user sells under; nil means none assigned.
	POSProfileID *uuid.UUID `gorm:"type:uuid"`
	Active       bool       `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// Privileged reports whether the role may close other users' sessions and
// reconcile by day.
func (u *User) Privileged() bool {
	return u.Role == RoleSupervisor || u.Role == RoleAdmin
}
