package models

import "time"

// Project ialah projek amal yang boleh menerima derma. ProjectID null pada
// derma bermaksud Tabung Am (general fund).
type Project struct {
	ID              uint          `gorm:"primaryKey" json:"id"`
	Slug            string        `gorm:"type:varchar(255);uniqueIndex;not null" json:"slug"`
	Title           LocalizedText `gorm:"embedded;embeddedPrefix:title_" json:"title"`
	Description     LocalizedText `gorm:"embedded;embeddedPrefix:description_" json:"description"`
	TargetAmount    int64         `gorm:"default:0" json:"target_amount"`    // dalam sen
	CollectedAmount int64         `gorm:"default:0" json:"collected_amount"` // dikira dari derma completed
	ImageURL        string        `gorm:"type:varchar(255)" json:"image_url"`
	Published       bool          `gorm:"default:false;index" json:"published"`
	CreatedAt       time.Time     `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time     `gorm:"not null" json:"updated_at"`
}
