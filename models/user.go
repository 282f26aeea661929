package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const UserTable = "lib_users"

const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// User covers both members and admins; Role decides what they may touch.
type User struct {
	ID           string `gorm:"primaryKey;type:uuid" json:"id"`
	Name         string `gorm:"size:100;not null" json:"name"`
	Email        string `gorm:"size:120;uniqueIndex;not null" json:"email"`
	Phone        string `gorm:"size:20" json:"phone,omitempty"`
	PasswordHash string `gorm:"size:255;not null" json:"-"`
	Role         string `gorm:"size:20;not null;default:'member'" json:"role"`
	IsActive     bool   `gorm:"not null;default:true" json:"isActive"`

	// accumulated unpaid fines; grows on overdue returns, shrinks on payment
	FineBalance decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"fineBalance"`

	LastLoginAt *time.Time `gorm:"index" json:"lastLoginAt,omitempty"`
	LastSeenAt  *time.Time `gorm:"index" json:"lastSeenAt,omitempty"`
	LoginCount  int64      `gorm:"not null;default:0" json:"loginCount"`
	LastLoginIP string     `gorm:"size:45" json:"-"`
	LastLoginUA string     `gorm:"size:255" json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (User) TableName() string { return UserTable }

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }
