package Controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/amanahfoundation/charity-backend/controllers"
	"github.com/amanahfoundation/charity-backend/models"
	"github.com/amanahfoundation/charity-backend/services"
	"github.com/amanahfoundation/charity-backend/utils"
)

// stubGateway mengembalikan hasil tetap tanpa panggilan rangkaian.
type stubGateway struct {
	status models.PaymentStatus
	reason string
}

func (g *stubGateway) CreateBill(d *models.Donation) (*services.BillResult, error) {
	return &services.BillResult{
		BillCode:   "stub-bill",
		PaymentURL: "https://dev.toyyibpay.com/stub-bill",
	}, nil
}

func (g *stubGateway) QueryStatus(d *models.Donation) (*services.StatusResult, error) {
	return &services.StatusResult{
		Status: g.status,
		Reason: g.reason,
		Raw:    `[{"billpaymentStatus":"stub"}]`,
	}, nil
}

// racingStubGateway menukar status baris semasa QueryStatus supaya update
// bersyarat reconciliation kalah perlumbaan.
type racingStubGateway struct {
	stubGateway
	db *gorm.DB
}

func (g *racingStubGateway) QueryStatus(d *models.Donation) (*services.StatusResult, error) {
	g.db.Model(&models.Donation{}).Where("id = ?", d.ID).
		Update("payment_status", models.StatusFailed)
	return &services.StatusResult{Status: models.StatusCompleted, Raw: `[]`}, nil
}

type stubMailer struct{ sends int }

func (m *stubMailer) SendReceipt(d *models.Donation) error {
	m.sends++
	return nil
}

func setupTestDBForDonations(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:ctrl_%s?mode=memory&cache=shared",
		strings.NewReplacer("/", "_", " ", "_").Replace(t.Name()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}
	// Migrasi model yang diperlukan untuk aliran derma
	err = db.AutoMigrate(&models.Project{}, &models.Donation{}, &models.DonationLog{}, &models.FormSubmission{})
	if err != nil {
		panic(err)
	}
	return db
}

func setupDonationRouter(db *gorm.DB, gw services.PaymentGateway, mailer *stubMailer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.Default()

	svc := services.NewDonationService(db, gw, mailer)
	statsSvc := services.NewStatsService(db)
	donationCtrl := controllers.NewDonationController(svc)
	adminCtrl := controllers.NewAdminDonationController(svc, statsSvc)

	router.POST("/donations", donationCtrl.CreateDonation)
	router.GET("/donations/:reference", donationCtrl.GetDonationByReference)
	router.POST("/payments/callback", donationCtrl.PaymentCallback)

	router.GET("/admin/donations", adminCtrl.ListDonations)
	router.POST("/admin/donations/:reference/refresh", adminCtrl.RefreshStatus)
	router.POST("/admin/donations/:reference/expire", adminCtrl.MarkExpired)
	router.POST("/admin/donations/:reference/retry", adminCtrl.RetryPayment)
	router.POST("/admin/donations/:reference/resend-receipt", adminCtrl.ResendReceipt)
	router.GET("/admin/dashboard/stats", adminCtrl.GetDashboardStats)
	return router
}

func createTestDonation(t *testing.T, router *gin.Engine) string {
	t.Helper()
	payload := map[string]interface{}{
		"amount":       5000,
		"donor_name":   "Ali bin Abu",
		"donor_email":  "ali@example.com",
		"is_anonymous": false,
	}
	payloadBytes, err := json.Marshal(payload)
	require.NoError(t, err)

	req, err := http.NewRequest("POST", "/donations", bytes.NewBuffer(payloadBytes))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	reference, ok := data["payment_reference"].(string)
	require.True(t, ok)
	require.NotEmpty(t, reference)
	return reference
}

func TestCreateAndGetDonation(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForDonations(t)
	router := setupDonationRouter(db, &stubGateway{status: models.StatusPending}, &stubMailer{})

	reference := createTestDonation(t, router)

	req, err := http.NewRequest("GET", "/donations/"+reference, nil)
	assert.NoError(t, err)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "pending", data["status"])
	assert.Equal(t, "Ali bin Abu", data["donor_name"])
	assert.Nil(t, data["receipt_number"])
	assert.Nil(t, data["completed_at"])
}

func TestCreateDonation_InvalidPayload(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForDonations(t)
	router := setupDonationRouter(db, &stubGateway{}, &stubMailer{})

	// Jumlah sifar ditolak dengan 400
	payloadBytes, _ := json.Marshal(map[string]interface{}{
		"amount":      0,
		"donor_email": "ali@example.com",
		"donor_name":  "Ali",
	})
	req, _ := http.NewRequest("POST", "/donations", bytes.NewBuffer(payloadBytes))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetDonation_NotFound(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForDonations(t)
	router := setupDonationRouter(db, &stubGateway{}, &stubMailer{})

	req, _ := http.NewRequest("GET", "/donations/DN-00000000-FFFFFFFF", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetDonation_AnonymousDisplayName(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForDonations(t)
	router := setupDonationRouter(db, &stubGateway{}, &stubMailer{})

	payloadBytes, _ := json.Marshal(map[string]interface{}{
		"amount":       10000,
		"donor_name":   "Siti binti Ahmad",
		"donor_email":  "siti@example.com",
		"is_anonymous": true,
	})
	req, _ := http.NewRequest("POST", "/donations", bytes.NewBuffer(payloadBytes))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	var createResp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &createResp))
	reference := createResp["data"].(map[string]interface{})["payment_reference"].(string)

	req, _ = http.NewRequest("GET", "/donations/"+reference, nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Hamba Allah", resp["data"].(map[string]interface{})["donor_name"])
}

func TestPaymentCallback_CompletesDonation(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForDonations(t)
	gw := &stubGateway{status: models.StatusCompleted}
	mailer := &stubMailer{}
	router := setupDonationRouter(db, gw, mailer)

	reference := createTestDonation(t, router)

	form := url.Values{}
	form.Set("billExternalReferenceNo", reference)
	form.Set("status", "1")
	form.Set("billcode", "stub-bill")
	req, _ := http.NewRequest("POST", "/payments/callback", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "completed", data["status"])
	assert.Equal(t, true, data["changed"])

	// Resit dihantar dan nombor resit diberikan
	assert.Equal(t, 1, mailer.sends)
	var donation models.Donation
	require.NoError(t, db.Where("payment_reference = ?", reference).First(&donation).Error)
	require.NotNil(t, donation.ReceiptNumber)
	assert.Equal(t, models.MakeReceiptNumber(donation.ID, *donation.CompletedAt), *donation.ReceiptNumber)

	// Callback payload tersimpan dalam jejak audit
	var logCount int64
	require.NoError(t, db.Model(&models.DonationLog{}).
		Where("donation_id = ? AND event = ?", donation.ID, models.LogEventCallbackReceived).
		Count(&logCount).Error)
	assert.EqualValues(t, 1, logCount)
}

func TestPaymentCallback_AlreadyReconciled(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForDonations(t)
	gw := &racingStubGateway{db: db}
	router := setupDonationRouter(db, gw, &stubMailer{})

	reference := createTestDonation(t, router)

	// Reconciliation lain menang perlumbaan; callback membalas 200 supaya
	// gateway tidak menghantar semula
	form := url.Values{}
	form.Set("billExternalReferenceNo", reference)
	req, _ := http.NewRequest("POST", "/payments/callback", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Already reconciled", resp["message"])
}

func TestPaymentCallback_MissingReference(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForDonations(t)
	router := setupDonationRouter(db, &stubGateway{}, &stubMailer{})

	req, _ := http.NewRequest("POST", "/payments/callback", strings.NewReader(""))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminRefreshStatus(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForDonations(t)
	gw := &stubGateway{status: models.StatusPending}
	router := setupDonationRouter(db, gw, &stubMailer{})

	reference := createTestDonation(t, router)

	// Tiada perubahan semasa gateway masih pending
	req, _ := http.NewRequest("POST", "/admin/donations/"+reference+"/refresh", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "No change", resp["message"])

	// Gateway kini melaporkan berjaya
	gw.status = models.StatusCompleted
	req, _ = http.NewRequest("POST", "/admin/donations/"+reference+"/refresh", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Status updated", resp["message"])
	assert.Equal(t, "completed", resp["data"].(map[string]interface{})["status"])
}

func TestAdminMarkExpired(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForDonations(t)
	router := setupDonationRouter(db, &stubGateway{status: models.StatusPending}, &stubMailer{})

	reference := createTestDonation(t, router)

	// Badan kosong dibenarkan; sebab lalai digunakan
	req, _ := http.NewRequest("POST", "/admin/donations/"+reference+"/expire", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var donation models.Donation
	require.NoError(t, db.Where("payment_reference = ?", reference).First(&donation).Error)
	assert.Equal(t, models.StatusExpired, donation.PaymentStatus)
	assert.Equal(t, "manually expired by admin", donation.FailureReason)

	// Expire kali kedua ditolak dengan 409
	req, _ = http.NewRequest("POST", "/admin/donations/"+reference+"/expire", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAdminMarkExpiredWithReason(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForDonations(t)
	router := setupDonationRouter(db, &stubGateway{status: models.StatusPending}, &stubMailer{})

	reference := createTestDonation(t, router)

	payloadBytes, _ := json.Marshal(map[string]string{"reason": "stale for 25 hours"})
	req, _ := http.NewRequest("POST", "/admin/donations/"+reference+"/expire", bytes.NewBuffer(payloadBytes))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var donation models.Donation
	require.NoError(t, db.Where("payment_reference = ?", reference).First(&donation).Error)
	assert.Equal(t, models.StatusExpired, donation.PaymentStatus)
	assert.Equal(t, "stale for 25 hours", donation.FailureReason)
}

func TestAdminRetryPayment(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForDonations(t)
	gw := &stubGateway{status: models.StatusFailed, reason: "declined"}
	router := setupDonationRouter(db, gw, &stubMailer{})

	reference := createTestDonation(t, router)

	// Gagalkan dahulu melalui refresh
	req, _ := http.NewRequest("POST", "/admin/donations/"+reference+"/refresh", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	req, _ = http.NewRequest("POST", "/admin/donations/"+reference+"/retry", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "pending", data["status"])
	assert.EqualValues(t, 2, data["payment_attempts"])
	assert.NotEmpty(t, data["payment_url"])
}

func TestAdminResendReceipt(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForDonations(t)
	gw := &stubGateway{status: models.StatusPending}
	mailer := &stubMailer{}
	router := setupDonationRouter(db, gw, mailer)

	reference := createTestDonation(t, router)

	// Belum completed: resit belum wujud, 409
	req, _ := http.NewRequest("POST", "/admin/donations/"+reference+"/resend-receipt", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusConflict, w.Code)

	gw.status = models.StatusCompleted
	req, _ = http.NewRequest("POST", "/admin/donations/"+reference+"/refresh", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	req, _ = http.NewRequest("POST", "/admin/donations/"+reference+"/resend-receipt", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 2, mailer.sends)
}

func TestAdminListDonationsWithStaleFlag(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForDonations(t)
	router := setupDonationRouter(db, &stubGateway{}, &stubMailer{})

	reference := createTestDonation(t, router)

	// Undurkan created_at melebihi tetingkap staleness
	require.NoError(t, db.Model(&models.Donation{}).
		Where("payment_reference = ?", reference).
		Update("created_at", gorm.Expr("datetime('now', '-25 hours')")).Error)

	req, _ := http.NewRequest("GET", "/admin/donations?status=pending", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []struct {
			PaymentReference string `json:"payment_reference"`
			Stale            bool   `json:"stale"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, reference, resp.Data[0].PaymentReference)
	assert.True(t, resp.Data[0].Stale)
}

func TestAdminDashboardStats(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForDonations(t)
	gw := &stubGateway{status: models.StatusCompleted}
	router := setupDonationRouter(db, gw, &stubMailer{})

	reference := createTestDonation(t, router)
	req, _ := http.NewRequest("POST", "/admin/donations/"+reference+"/refresh", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	createTestDonation(t, router) // satu lagi kekal pending

	req, _ = http.NewRequest("GET", "/admin/dashboard/stats", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Data struct {
			Totals struct {
				TotalDonations int64 `json:"total_donations"`
				PendingCount   int64 `json:"pending_count"`
				CompletedCount int64 `json:"completed_count"`
				TotalCollected int64 `json:"total_collected"`
			} `json:"totals"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.EqualValues(t, 2, resp.Data.Totals.TotalDonations)
	assert.EqualValues(t, 1, resp.Data.Totals.PendingCount)
	assert.EqualValues(t, 1, resp.Data.Totals.CompletedCount)
	assert.EqualValues(t, 5000, resp.Data.Totals.TotalCollected)
}
