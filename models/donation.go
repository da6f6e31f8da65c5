package models

import (
	"fmt"
	"time"
)

// PaymentStatus adalah status pembayaran derma. Transisi hanya boleh
// dilakukan melalui CanTransitionTo supaya semua jalur update konsisten.
type PaymentStatus string

const (
	StatusPending   PaymentStatus = "pending"
	StatusCompleted PaymentStatus = "completed"
	StatusFailed    PaymentStatus = "failed"
	StatusExpired   PaymentStatus = "expired"
	StatusRefunded  PaymentStatus = "refunded"
)

// DonationType jenis derma
type DonationType string

const (
	DonationTypeOneTime DonationType = "onetime"
	DonationTypeMonthly DonationType = "monthly"
)

const (
	EnvironmentSandbox    = "sandbox"
	EnvironmentProduction = "production"
)

// StaleAfter ialah had umur sebelum derma pending dianggap stale.
const StaleAfter = 24 * time.Hour

// Donation represents a single donation attempt. A row is never deleted;
// corrections are applied as new status transitions.
type Donation struct {
	ID               uint          `gorm:"primaryKey" json:"id"`
	PaymentReference string        `gorm:"type:varchar(100);uniqueIndex;not null" json:"payment_reference"`
	DonorName        string        `gorm:"type:varchar(255)" json:"donor_name"`
	DonorEmail       string        `gorm:"type:varchar(255);not null" json:"donor_email"`
	DonorPhone       string        `gorm:"type:varchar(50)" json:"donor_phone"`
	IsAnonymous      bool          `gorm:"default:false" json:"is_anonymous"`
	ProjectID        *uint         `gorm:"index" json:"project_id,omitempty"`
	Project          *Project      `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Amount           int64         `gorm:"not null" json:"amount"` // dalam sen
	Currency         string        `gorm:"type:varchar(10);default:'MYR'" json:"currency"`
	DonationType     DonationType  `gorm:"type:varchar(20);default:'onetime'" json:"donation_type"`
	PaymentStatus    PaymentStatus `gorm:"type:varchar(20);default:'pending';index" json:"payment_status"`
	PaymentMethod    string        `gorm:"type:varchar(50)" json:"payment_method"`
	PaymentAttempts  int           `gorm:"default:0" json:"payment_attempts"`
	BillCode         string        `gorm:"type:varchar(100);index" json:"bill_code"`
	GatewayTxnID     string        `gorm:"type:varchar(100)" json:"gateway_txn_id"`
	Environment      string        `gorm:"type:varchar(20);default:'sandbox'" json:"environment"`
	ReceiptNumber    *string       `gorm:"type:varchar(50);uniqueIndex" json:"receipt_number,omitempty"`
	ReceiptSentAt    *time.Time    `json:"receipt_sent_at,omitempty"`
	FailureReason    string        `gorm:"type:text" json:"failure_reason,omitempty"`
	CreatedAt        time.Time     `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time     `gorm:"not null" json:"updated_at"`
	CompletedAt      *time.Time    `json:"completed_at,omitempty"`
}

// CanTransitionTo memeriksa sama ada transisi status dibenarkan.
// completed, expired dan refunded adalah terminal. Tiada jalur masuk ke
// refunded dilaksanakan (refund diuruskan di luar sistem).
func (s PaymentStatus) CanTransitionTo(target PaymentStatus) bool {
	switch s {
	case StatusPending:
		return target == StatusCompleted || target == StatusFailed || target == StatusExpired
	case StatusFailed:
		// retry mengembalikan derma failed ke pending; admin boleh expire-kan
		return target == StatusPending || target == StatusExpired
	case StatusCompleted, StatusExpired, StatusRefunded:
		return false
	default:
		return false
	}
}

// IsTerminal reports whether no further transition is allowed from s.
func (s PaymentStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusExpired || s == StatusRefunded
}

// IsStale reports whether the donation is still pending past the staleness
// window. Pure function of wall-clock time; no stored flag.
func (d *Donation) IsStale(now time.Time) bool {
	return d.PaymentStatus == StatusPending && now.Sub(d.CreatedAt) > StaleAfter
}

// DisplayName nama yang dipaparkan kepada umum. Email tetap disimpan untuk
// penghantaran resit walaupun anonymous.
func (d *Donation) DisplayName() string {
	if d.IsAnonymous {
		return "Hamba Allah"
	}
	return d.DonorName
}

// MakeReceiptNumber derives the receipt number for a donation completed at
// the given time. Deterministic from the row id, assigned once.
func MakeReceiptNumber(donationID uint, completedAt time.Time) string {
	return fmt.Sprintf("AMF-%s-%06d", completedAt.Format("2006"), donationID)
}
