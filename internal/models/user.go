package models

import (
	"time"

	"gorm.io/gorm"
)

type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleUser:
		return true
	}
	return false
}

type Status string

const (
	StatusActive  Status = "ACTIVE"
	StatusSuspend Status = "SUSPEND"
)

type User struct {
	ID                   uint           `gorm:"primaryKey" json:"id"`
	Name                 string         `gorm:"size:100" json:"name"`
	Email                string         `gorm:"uniqueIndex;size:100" json:"email"`
	Password             string         `gorm:"size:255" json:"-"`
	Role                 Role           `gorm:"size:20;default:'USER'" json:"role"`
	Status               Status         `gorm:"size:20;default:'ACTIVE'" json:"status"`
	Provider             string         `gorm:"size:50" json:"provider,omitempty"`
	Profile              string         `json:"profile,omitempty"`
	ResetPasswordToken   *string        `gorm:"size:64;index" json:"-"`
	ResetPasswordExpires *time.Time     `json:"-"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
	DeletedAt            gorm.DeletedAt `gorm:"index" json:"-"`
}
