package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/amanahfoundation/charity-backend/models"
	"github.com/amanahfoundation/charity-backend/services"
	"github.com/amanahfoundation/charity-backend/utils"
)

// AdminDonationController menangani tindakan operator ke atas derma:
// senarai, refresh status, mark expired, retry dan resend resit.
type AdminDonationController struct {
	svc   *services.DonationService
	stats *services.StatsService
}

// NewAdminDonationController membuat instance baru AdminDonationController
func NewAdminDonationController(svc *services.DonationService, stats *services.StatsService) *AdminDonationController {
	return &AdminDonationController{svc: svc, stats: stats}
}

// ListDonations menyenaraikan derma dengan flag stale, filter status
// pilihan melalui query ?status=.
func (ac *AdminDonationController) ListDonations(c *gin.Context) {
	status := models.PaymentStatus(c.Query("status"))
	donations, err := ac.svc.ListDonations(status)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	now := time.Now()
	views := make([]donationAdminView, 0, len(donations))
	for _, d := range donations {
		views = append(views, donationAdminView{Donation: d, Stale: d.IsStale(now)})
	}

	utils.RespondJSON(c, http.StatusOK, "OK", views)
}

// GetDonation memaparkan satu derma beserta jejak auditnya.
func (ac *AdminDonationController) GetDonation(c *gin.Context) {
	donation, err := ac.svc.GetByReference(c.Param("reference"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	logs, err := ac.svc.GetLogs(donation.ID)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "OK", gin.H{
		"donation": donationAdminView{Donation: *donation, Stale: donation.IsStale(time.Now())},
		"logs":     logs,
	})
}

// RefreshStatus menanyakan gateway dan menyelaraskan status tempatan.
// Digunakan apabila webhook terlepas atau tidak dipercayai.
func (ac *AdminDonationController) RefreshStatus(c *gin.Context) {
	donation, changed, err := ac.svc.RefreshStatus(c.Param("reference"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	message := "No change"
	if changed {
		message = "Status updated"
	}
	utils.RespondJSON(c, http.StatusOK, message, gin.H{
		"status":  donation.PaymentStatus,
		"changed": changed,
	})
}

// MarkExpired override pentadbir untuk derma pending/failed yang stale.
func (ac *AdminDonationController) MarkExpired(c *gin.Context) {
	var input struct {
		Reason string `json:"reason"`
	}
	// Badan permintaan pilihan; tanpa badan, sebab lalai digunakan
	if c.Request.Body != nil && c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			utils.RespondError(c, http.StatusBadRequest, err)
			return
		}
	}
	if input.Reason == "" {
		input.Reason = "manually expired by admin"
	}

	donation, err := ac.svc.MarkExpired(c.Param("reference"), input.Reason)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.InfoLogger.Printf("Donation %s marked expired: %s", donation.PaymentReference, input.Reason)
	utils.RespondJSON(c, http.StatusOK, "Donation marked expired", gin.H{
		"status": donation.PaymentStatus,
	})
}

// RetryPayment membuat bil gateway baru untuk percubaan pembayaran
// seterusnya dan mengembalikan URL redirect baru.
func (ac *AdminDonationController) RetryPayment(c *gin.Context) {
	donation, paymentURL, err := ac.svc.RetryPayment(c.Param("reference"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "New payment attempt created", gin.H{
		"payment_url":      paymentURL,
		"payment_attempts": donation.PaymentAttempts,
		"status":           donation.PaymentStatus,
	})
}

// ResendReceipt menghantar semula resit yang sama; nombor resit tidak
// dijana semula.
func (ac *AdminDonationController) ResendReceipt(c *gin.Context) {
	donation, err := ac.svc.ResendReceipt(c.Param("reference"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Receipt resent", gin.H{
		"receipt_number":  donation.ReceiptNumber,
		"receipt_sent_at": donation.ReceiptSentAt,
	})
}

// GetDashboardStats metrik papan pemuka admin.
func (ac *AdminDonationController) GetDashboardStats(c *gin.Context) {
	stats, err := ac.stats.GetDashboardStats(time.Now())
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	projects, err := ac.stats.GetProjectStats()
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "OK", gin.H{
		"totals":   stats,
		"projects": projects,
	})
}

// GetDonationLogs memaparkan jejak audit untuk satu derma mengikut id.
func (ac *AdminDonationController) GetDonationLogs(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("donation_id"), 10, 32)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	logs, err := ac.svc.GetLogs(uint(id))
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "OK", logs)
}
