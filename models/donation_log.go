package models

import (
	"time"
)

// Jenis event dalam jejak audit derma
const (
	LogEventCreated          = "created"
	LogEventBillCreated      = "bill_created"
	LogEventCallbackReceived = "callback_received"
	LogEventStatusUpdated    = "status_updated"
	LogEventReceiptSent      = "receipt_sent"
	LogEventRetryInitiated   = "retry_initiated"
	LogEventMarkedExpired    = "marked_expired"
	LogEventError            = "error"
)

// DonationLog ialah jejak audit append-only; satu baris bagi setiap event
// kitaran hayat derma. Baris tidak pernah diubah atau dipadam.
type DonationLog struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	DonationID uint      `gorm:"not null;index" json:"donation_id"`
	Donation   Donation  `gorm:"foreignKey:DonationID" json:"-"`
	Event      string    `gorm:"type:varchar(50);not null;index" json:"event"`
	Detail     string    `gorm:"type:text" json:"detail"` // JSON snapshot respons gateway / butiran ralat
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
}
