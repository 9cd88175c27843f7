package models

import (
	"strings"
	"time"

	"github.com/angelmondragon/parkinglot-manager/pkg/enums"
)

// User is an account that can sign in to the portal.
type User struct {
	ID           int64          `gorm:"primaryKey;autoIncrement"`
	Username     string         `gorm:"column:username;size:50;not null;uniqueIndex:idx_users_username"`
	PasswordHash string         `gorm:"column:password_hash;not null"`
	Email        string         `gorm:"column:email;not null;uniqueIndex:idx_users_email"`
	FirstName    string         `gorm:"column:first_name;size:50;not null"`
	LastName     string         `gorm:"column:last_name;size:50;not null"`
	PhoneNumber  *string        `gorm:"column:phone_number"`
	Role         enums.UserRole `gorm:"column:role;type:varchar(20);not null;default:'USER'"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string { return "users" }

// FullName joins first and last name for display.
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Phone returns the phone number or "" when unset.
func (u User) Phone() string {
	if u.PhoneNumber == nil {
		return ""
	}
	return *u.PhoneNumber
}
