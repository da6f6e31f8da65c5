package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/amanahfoundation/charity-backend/models"
	"github.com/amanahfoundation/charity-backend/utils"
)

// ReceiptSender menghantar resit kepada penderma. Dipisahkan sebagai
// interface supaya boleh digantikan dalam test.
type ReceiptSender interface {
	SendReceipt(d *models.Donation) error
}

// DonationService menguruskan kitaran hayat derma: intake, reconciliation,
// expiry, retry dan penghantaran resit. Semua transisi status melalui
// service ini sahaja.
type DonationService struct {
	db          *gorm.DB
	gateway     PaymentGateway
	mailer      ReceiptSender
	environment string
}

// NewDonationService membuat instance baru DonationService
func NewDonationService(db *gorm.DB, gateway PaymentGateway, mailer ReceiptSender) *DonationService {
	env := models.EnvironmentSandbox
	if ts, ok := gateway.(*ToyyibPayService); ok && ts.config.IsProduction {
		env = models.EnvironmentProduction
	}
	return &DonationService{
		db:          db,
		gateway:     gateway,
		mailer:      mailer,
		environment: env,
	}
}

// CreateDonationInput ialah permintaan penderma dari borang derma.
type CreateDonationInput struct {
	Amount       int64  `json:"amount"` // dalam sen
	Currency     string `json:"currency"`
	ProjectID    *uint  `json:"project_id"`
	DonorName    string `json:"donor_name"`
	DonorEmail   string `json:"donor_email"`
	DonorPhone   string `json:"donor_phone"`
	IsAnonymous  bool   `json:"is_anonymous"`
	DonationType string `json:"donation_type"`
}

func (in *CreateDonationInput) validate() error {
	if in.Amount < 1 {
		return fmt.Errorf("%w: amount must be at least 1 sen", ErrValidation)
	}
	// Email sentiasa diperlukan untuk penghantaran resit, walaupun anonymous
	if in.DonorEmail == "" || !strings.Contains(in.DonorEmail, "@") {
		return fmt.Errorf("%w: donor email is required", ErrValidation)
	}
	if !in.IsAnonymous && in.DonorName == "" {
		return fmt.Errorf("%w: donor name is required for non-anonymous donations", ErrValidation)
	}
	switch models.DonationType(in.DonationType) {
	case "", models.DonationTypeOneTime, models.DonationTypeMonthly:
	default:
		return fmt.Errorf("%w: unknown donation type %q", ErrValidation, in.DonationType)
	}
	return nil
}

// CreateDonation memvalidasi input, membuat rekod derma pending dengan
// rujukan pembayaran baru, meminta bil dari gateway dan mengembalikan URL
// redirect untuk penderma.
func (s *DonationService) CreateDonation(in *CreateDonationInput) (*models.Donation, string, error) {
	if err := in.validate(); err != nil {
		return nil, "", err
	}

	var project *models.Project
	if in.ProjectID != nil {
		project = &models.Project{}
		if err := s.db.First(project, *in.ProjectID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, "", fmt.Errorf("%w: unknown project %d", ErrValidation, *in.ProjectID)
			}
			return nil, "", err
		}
	}

	currency := in.Currency
	if currency == "" {
		currency = "MYR"
	}
	donationType := models.DonationType(in.DonationType)
	if donationType == "" {
		donationType = models.DonationTypeOneTime
	}

	donation := &models.Donation{
		PaymentReference: utils.GeneratePaymentReference(time.Now()),
		DonorName:        in.DonorName,
		DonorEmail:       in.DonorEmail,
		DonorPhone:       in.DonorPhone,
		IsAnonymous:      in.IsAnonymous,
		ProjectID:        in.ProjectID,
		Project:          project,
		Amount:           in.Amount,
		Currency:         currency,
		DonationType:     donationType,
		PaymentStatus:    models.StatusPending,
		Environment:      s.environment,
	}

	if err := s.db.Create(donation).Error; err != nil {
		return nil, "", fmt.Errorf("failed to create donation: %w", err)
	}
	s.appendLog(donation.ID, models.LogEventCreated, map[string]interface{}{
		"amount":    donation.Amount,
		"currency":  donation.Currency,
		"reference": donation.PaymentReference,
	})

	bill, err := s.gateway.CreateBill(donation)
	if err != nil {
		s.appendLog(donation.ID, models.LogEventError, map[string]interface{}{
			"operation": "create_bill",
			"error":     err.Error(),
		})
		return nil, "", fmt.Errorf("%w: %v", ErrGateway, err)
	}

	if err := s.db.Model(donation).Updates(map[string]interface{}{
		"bill_code":        bill.BillCode,
		"payment_attempts": 1,
	}).Error; err != nil {
		return nil, "", fmt.Errorf("failed to persist bill code: %w", err)
	}
	donation.BillCode = bill.BillCode
	donation.PaymentAttempts = 1
	s.appendLog(donation.ID, models.LogEventBillCreated, map[string]interface{}{
		"bill_code":   bill.BillCode,
		"payment_url": bill.PaymentURL,
	})

	return donation, bill.PaymentURL, nil
}

// GetByReference mencari derma mengikut rujukan pembayaran.
func (s *DonationService) GetByReference(reference string) (*models.Donation, error) {
	var donation models.Donation
	err := s.db.Preload("Project").Where("payment_reference = ?", reference).First(&donation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, reference)
		}
		return nil, err
	}
	return &donation, nil
}

// ListDonations menyenaraikan derma, terbaru dahulu, dengan filter status
// pilihan.
func (s *DonationService) ListDonations(status models.PaymentStatus) ([]models.Donation, error) {
	var donations []models.Donation
	q := s.db.Preload("Project").Order("created_at DESC")
	if status != "" {
		q = q.Where("payment_status = ?", status)
	}
	if err := q.Find(&donations).Error; err != nil {
		return nil, err
	}
	return donations, nil
}

// GetLogs mengembalikan jejak audit untuk satu derma, tertua dahulu.
func (s *DonationService) GetLogs(donationID uint) ([]models.DonationLog, error) {
	var logs []models.DonationLog
	if err := s.db.Where("donation_id = ?", donationID).Order("created_at ASC").Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

// RecordCallback menulis event callback_received ke jejak audit. Webhook
// controller memanggil ini sebelum reconciliation supaya payload gateway
// sentiasa tersimpan walaupun reconciliation gagal.
func (s *DonationService) RecordCallback(reference string, payload map[string]string) {
	donation, err := s.GetByReference(reference)
	if err != nil {
		utils.ErrorLogger.Printf("callback for unknown reference %s: %v", reference, err)
		return
	}
	s.appendLog(donation.ID, models.LogEventCallbackReceived, payload)
}

// RefreshStatus menyemak semula status di gateway dan menyelaraskan rekod
// tempatan. Ini satu-satunya jalur transisi status: callback webhook dan
// butang "Refresh Status" di admin kedua-duanya melalui sini.
//
// Mengembalikan derma terkini dan true jika ada perubahan status.
func (s *DonationService) RefreshStatus(reference string) (*models.Donation, bool, error) {
	donation, err := s.GetByReference(reference)
	if err != nil {
		return nil, false, err
	}

	// Status terminal tidak berubah lagi; tiada gunanya menanyakan gateway.
	if donation.PaymentStatus.IsTerminal() {
		return donation, false, nil
	}

	result, err := s.gateway.QueryStatus(donation)
	if err != nil {
		s.appendLog(donation.ID, models.LogEventError, map[string]interface{}{
			"operation": "query_status",
			"error":     err.Error(),
		})
		return nil, false, fmt.Errorf("%w: %v", ErrGateway, err)
	}

	// Tiada perubahan: tiada mutasi, tiada log status_updated.
	if result.Status == donation.PaymentStatus {
		return donation, false, nil
	}

	// Transisi ke refunded tidak dilaksanakan; refund diuruskan di luar
	// sistem. Catat dan abaikan.
	if result.Status == models.StatusRefunded {
		s.appendLog(donation.ID, models.LogEventError, map[string]interface{}{
			"operation": "refresh_status",
			"error":     "gateway reported refunded; transition not implemented",
			"gateway":   result.Raw,
		})
		return donation, false, nil
	}

	if !donation.PaymentStatus.CanTransitionTo(result.Status) {
		s.appendLog(donation.ID, models.LogEventError, map[string]interface{}{
			"operation": "refresh_status",
			"error":     fmt.Sprintf("illegal transition %s -> %s", donation.PaymentStatus, result.Status),
		})
		return nil, false, fmt.Errorf("%w: cannot move %s donation to %s",
			ErrState, donation.PaymentStatus, result.Status)
	}

	switch result.Status {
	case models.StatusCompleted:
		if err := s.completeDonation(donation, result); err != nil {
			return nil, false, err
		}
	case models.StatusFailed:
		if err := s.failDonation(donation, result); err != nil {
			return nil, false, err
		}
	default:
		return donation, false, nil
	}

	return donation, true, nil
}

// completeDonation menandakan derma sebagai completed, menetapkan
// completed_at dan nombor resit, kemudian menghantar resit (best-effort).
func (s *DonationService) completeDonation(donation *models.Donation, result *StatusResult) error {
	now := time.Now()
	receiptNumber := models.MakeReceiptNumber(donation.ID, now)
	prior := donation.PaymentStatus

	// Update bersyarat: kalah perlumbaan dengan reconciliation serentak
	// mengembalikan ErrStateConflict, bukan menimpa.
	tx := s.db.Model(&models.Donation{}).
		Where("id = ? AND payment_status = ?", donation.ID, prior).
		Updates(map[string]interface{}{
			"payment_status": models.StatusCompleted,
			"completed_at":   now,
			"receipt_number": receiptNumber,
			"gateway_txn_id": result.TransactionID,
		})
	if tx.Error != nil {
		return fmt.Errorf("failed to complete donation: %w", tx.Error)
	}
	if tx.RowsAffected == 0 {
		return fmt.Errorf("%w: donation %s no longer %s", ErrStateConflict, donation.PaymentReference, prior)
	}

	donation.PaymentStatus = models.StatusCompleted
	donation.CompletedAt = &now
	donation.ReceiptNumber = &receiptNumber
	donation.GatewayTxnID = result.TransactionID

	// Kemaskini jumlah terkumpul projek
	if donation.ProjectID != nil {
		if err := s.db.Model(&models.Project{}).Where("id = ?", *donation.ProjectID).
			Update("collected_amount", gorm.Expr("collected_amount + ?", donation.Amount)).Error; err != nil {
			utils.ErrorLogger.Printf("failed to update project %d collected amount: %v", *donation.ProjectID, err)
		}
	}

	s.appendLog(donation.ID, models.LogEventStatusUpdated, map[string]interface{}{
		"from":           string(prior),
		"to":             string(models.StatusCompleted),
		"receipt_number": receiptNumber,
		"gateway":        result.Raw,
	})

	// Penghantaran resit best-effort; kegagalan email tidak membatalkan
	// transisi (admin boleh resend).
	s.sendReceipt(donation)
	return nil
}

func (s *DonationService) failDonation(donation *models.Donation, result *StatusResult) error {
	prior := donation.PaymentStatus

	tx := s.db.Model(&models.Donation{}).
		Where("id = ? AND payment_status = ?", donation.ID, prior).
		Updates(map[string]interface{}{
			"payment_status": models.StatusFailed,
			"failure_reason": result.Reason,
			"gateway_txn_id": result.TransactionID,
		})
	if tx.Error != nil {
		return fmt.Errorf("failed to mark donation failed: %w", tx.Error)
	}
	if tx.RowsAffected == 0 {
		return fmt.Errorf("%w: donation %s no longer %s", ErrStateConflict, donation.PaymentReference, prior)
	}

	donation.PaymentStatus = models.StatusFailed
	donation.FailureReason = result.Reason

	s.appendLog(donation.ID, models.LogEventStatusUpdated, map[string]interface{}{
		"from":    string(prior),
		"to":      string(models.StatusFailed),
		"reason":  result.Reason,
		"gateway": result.Raw,
	})
	return nil
}

// MarkExpired ialah override pentadbir: derma pending/failed ditandakan
// expired terus tanpa merujuk gateway. Tidak boleh diundur.
func (s *DonationService) MarkExpired(reference, reason string) (*models.Donation, error) {
	donation, err := s.GetByReference(reference)
	if err != nil {
		return nil, err
	}

	if !donation.PaymentStatus.CanTransitionTo(models.StatusExpired) {
		return nil, fmt.Errorf("%w: cannot expire a %s donation", ErrState, donation.PaymentStatus)
	}

	prior := donation.PaymentStatus
	tx := s.db.Model(&models.Donation{}).
		Where("id = ? AND payment_status = ?", donation.ID, prior).
		Updates(map[string]interface{}{
			"payment_status": models.StatusExpired,
			"failure_reason": reason,
		})
	if tx.Error != nil {
		return nil, fmt.Errorf("failed to expire donation: %w", tx.Error)
	}
	if tx.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: donation %s no longer %s", ErrStateConflict, reference, prior)
	}

	donation.PaymentStatus = models.StatusExpired
	donation.FailureReason = reason

	s.appendLog(donation.ID, models.LogEventMarkedExpired, map[string]interface{}{
		"from":   string(prior),
		"reason": reason,
	})
	return donation, nil
}

// RetryPayment membuat bil baru untuk derma pending/failed dan
// mengembalikan URL redirect baru. Baris derma yang sama digunakan semula;
// payment_attempts bertambah tepat satu setiap panggilan.
func (s *DonationService) RetryPayment(reference string) (*models.Donation, string, error) {
	donation, err := s.GetByReference(reference)
	if err != nil {
		return nil, "", err
	}

	if donation.PaymentStatus != models.StatusPending && donation.PaymentStatus != models.StatusFailed {
		return nil, "", fmt.Errorf("%w: cannot retry a %s donation", ErrState, donation.PaymentStatus)
	}

	bill, err := s.gateway.CreateBill(donation)
	if err != nil {
		s.appendLog(donation.ID, models.LogEventError, map[string]interface{}{
			"operation": "retry_create_bill",
			"error":     err.Error(),
		})
		return nil, "", fmt.Errorf("%w: %v", ErrGateway, err)
	}

	prior := donation.PaymentStatus
	tx := s.db.Model(&models.Donation{}).
		Where("id = ? AND payment_status = ?", donation.ID, prior).
		Updates(map[string]interface{}{
			"payment_status":   models.StatusPending,
			"bill_code":        bill.BillCode,
			"failure_reason":   "",
			"payment_attempts": gorm.Expr("payment_attempts + 1"),
		})
	if tx.Error != nil {
		return nil, "", fmt.Errorf("failed to record retry: %w", tx.Error)
	}
	if tx.RowsAffected == 0 {
		return nil, "", fmt.Errorf("%w: donation %s no longer %s", ErrStateConflict, reference, prior)
	}

	donation.PaymentStatus = models.StatusPending
	donation.BillCode = bill.BillCode
	donation.FailureReason = ""
	donation.PaymentAttempts++

	s.appendLog(donation.ID, models.LogEventRetryInitiated, map[string]interface{}{
		"from":      string(prior),
		"attempt":   donation.PaymentAttempts,
		"bill_code": bill.BillCode,
	})
	return donation, bill.PaymentURL, nil
}

// ResendReceipt menghantar semula resit yang sama kepada penderma. Nombor
// resit tidak pernah dijana semula; hanya receipt_sent_at ditimpa.
func (s *DonationService) ResendReceipt(reference string) (*models.Donation, error) {
	donation, err := s.GetByReference(reference)
	if err != nil {
		return nil, err
	}

	if donation.PaymentStatus != models.StatusCompleted || donation.ReceiptNumber == nil {
		return nil, fmt.Errorf("%w: receipt not available for a %s donation", ErrState, donation.PaymentStatus)
	}
	if donation.DonorEmail == "" {
		return nil, fmt.Errorf("%w: donation has no donor email", ErrState)
	}

	if s.mailer == nil {
		return nil, fmt.Errorf("%w: mailer not configured", ErrDelivery)
	}
	if err := s.mailer.SendReceipt(donation); err != nil {
		s.appendLog(donation.ID, models.LogEventError, map[string]interface{}{
			"operation": "resend_receipt",
			"error":     err.Error(),
		})
		return nil, fmt.Errorf("%w: %v", ErrDelivery, err)
	}

	now := time.Now()
	if err := s.db.Model(&models.Donation{}).Where("id = ?", donation.ID).
		Update("receipt_sent_at", now).Error; err != nil {
		return nil, err
	}
	donation.ReceiptSentAt = &now

	s.appendLog(donation.ID, models.LogEventReceiptSent, map[string]interface{}{
		"receipt_number": *donation.ReceiptNumber,
		"email":          donation.DonorEmail,
		"resend":         true,
	})
	return donation, nil
}

// sendReceipt percubaan penghantaran pertama selepas completed.
func (s *DonationService) sendReceipt(donation *models.Donation) {
	if s.mailer == nil {
		return
	}
	if err := s.mailer.SendReceipt(donation); err != nil {
		utils.ErrorLogger.Printf("failed to send receipt for %s: %v", donation.PaymentReference, err)
		s.appendLog(donation.ID, models.LogEventError, map[string]interface{}{
			"operation": "send_receipt",
			"error":     err.Error(),
		})
		return
	}

	now := time.Now()
	if err := s.db.Model(&models.Donation{}).Where("id = ?", donation.ID).
		Update("receipt_sent_at", now).Error; err != nil {
		utils.ErrorLogger.Printf("failed to record receipt_sent_at for %s: %v", donation.PaymentReference, err)
	}
	donation.ReceiptSentAt = &now

	s.appendLog(donation.ID, models.LogEventReceiptSent, map[string]interface{}{
		"receipt_number": *donation.ReceiptNumber,
		"email":          donation.DonorEmail,
	})
}

// appendLog menulis event ke jejak audit. Kegagalan menulis log tidak
// pernah menyekat transisi utama; hanya dicatat ke error logger.
func (s *DonationService) appendLog(donationID uint, event string, detail interface{}) {
	payload, err := json.Marshal(detail)
	if err != nil {
		payload = []byte(fmt.Sprintf(`{"marshal_error":%q}`, err.Error()))
	}

	entry := &models.DonationLog{
		DonationID: donationID,
		Event:      event,
		Detail:     string(payload),
	}
	if err := s.db.Create(entry).Error; err != nil {
		utils.ErrorLogger.Printf("failed to append donation log (donation=%d event=%s): %v",
			donationID, event, err)
	}
}
