package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/amanahfoundation/charity-backend/models"
	"github.com/amanahfoundation/charity-backend/services"
	"github.com/amanahfoundation/charity-backend/utils"
)

// DonationController menangani aliran derma awam: intake, semakan status
// oleh penderma, dan callback dari payment gateway.
type DonationController struct {
	svc *services.DonationService
}

// NewDonationController membuat instance baru DonationController
func NewDonationController(svc *services.DonationService) *DonationController {
	return &DonationController{svc: svc}
}

// CreateDonation menerima permintaan derma dan mengembalikan URL redirect
// ke halaman pembayaran gateway.
func (dc *DonationController) CreateDonation(c *gin.Context) {
	var input services.CreateDonationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	donation, paymentURL, err := dc.svc.CreateDonation(&input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.InfoLogger.Printf("Donation %s created (%s)", donation.PaymentReference,
		utils.FormatCurrencyMYR(donation.Amount))

	utils.RespondJSON(c, http.StatusCreated, "Donation created", gin.H{
		"payment_reference": donation.PaymentReference,
		"payment_url":       paymentURL,
		"status":            donation.PaymentStatus,
	})
}

// GetDonationByReference membolehkan penderma menyemak status derma mereka.
// Nama dipaparkan mengikut flag anonymous.
func (dc *DonationController) GetDonationByReference(c *gin.Context) {
	donation, err := dc.svc.GetByReference(c.Param("reference"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "OK", gin.H{
		"payment_reference": donation.PaymentReference,
		"donor_name":        donation.DisplayName(),
		"amount":            donation.Amount,
		"currency":          donation.Currency,
		"status":            donation.PaymentStatus,
		"receipt_number":    donation.ReceiptNumber,
		"created_at":        donation.CreatedAt,
		"completed_at":      donation.CompletedAt,
	})
}

// PaymentCallback menerima webhook dari ToyyibPay. Payload disimpan ke
// jejak audit dahulu, kemudian status diselaraskan melalui jalur
// reconciliation yang sama dengan butang Refresh Status di admin.
func (dc *DonationController) PaymentCallback(c *gin.Context) {
	reference := c.PostForm("order_id")
	if reference == "" {
		reference = c.PostForm("billExternalReferenceNo")
	}
	if reference == "" {
		utils.RespondError(c, http.StatusBadRequest, errors.New("missing payment reference in callback"))
		return
	}

	payload := map[string]string{
		"refno":     c.PostForm("refno"),
		"status":    c.PostForm("status"),
		"billcode":  c.PostForm("billcode"),
		"amount":    c.PostForm("amount"),
		"reason":    c.PostForm("reason"),
		"reference": reference,
	}
	dc.svc.RecordCallback(reference, payload)

	donation, changed, err := dc.svc.RefreshStatus(reference)
	if err != nil {
		// Gateway akan menghantar semula callback jika kita membalas ralat;
		// konflik state bermakna reconciliation lain sudah menang.
		if errors.Is(err, services.ErrStateConflict) {
			utils.RespondJSON(c, http.StatusOK, "Already reconciled", nil)
			return
		}
		respondServiceError(c, err)
		return
	}

	if changed {
		utils.InfoLogger.Printf("Callback moved donation %s to %s",
			donation.PaymentReference, donation.PaymentStatus)
	}
	utils.RespondJSON(c, http.StatusOK, "Callback processed", gin.H{
		"status":  donation.PaymentStatus,
		"changed": changed,
	})
}

// donationAdminView ialah baris senarai admin dengan flag stale yang
// dikira pada masa baca.
type donationAdminView struct {
	models.Donation
	Stale bool `json:"stale"`
}
