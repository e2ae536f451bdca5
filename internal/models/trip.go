package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Trip holds one generated itinerary. Plan is the AI output kept as an
// opaque JSON document: tripName, hotels, day-by-day plan entries.
type Trip struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	UserID      uint           `gorm:"not null;index" json:"user_id"`
	User        *User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Destination string         `gorm:"size:200;not null" json:"destination"`
	NoOfDays    int            `gorm:"not null" json:"noOfDays"`
	Budget      string         `gorm:"size:50" json:"budget"`
	Travelers   string         `gorm:"size:100" json:"travelers"`
	Plan        datatypes.JSON `json:"plan"`
	IsPublic    bool           `gorm:"default:false" json:"is_public"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}
