package models

import "time"

// User ialah akaun staf untuk dashboard admin.
type User struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Name      string `gorm:"type:varchar(255);not null" json:"name"`
	Email     string `gorm:"type:varchar(255);unique;not null" json:"email"`
	Password  string `gorm:"type:varchar(255);not null" json:"-"`
	Role      string `gorm:"type:varchar(50);not null;default:'admin'" json:"role"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
