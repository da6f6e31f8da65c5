package services

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/amanahfoundation/charity-backend/models"
	"github.com/amanahfoundation/charity-backend/utils"
)

// PaymentGateway ialah kontrak dua-operasi yang digunakan oleh logik teras.
// Logik derma tidak pernah menganggap gateway tertentu; adapter lain boleh
// menggantikan ToyyibPay selagi kontrak ini dipenuhi.
type PaymentGateway interface {
	CreateBill(d *models.Donation) (*BillResult, error)
	QueryStatus(d *models.Donation) (*StatusResult, error)
}

// BillResult hasil pembuatan bil di gateway.
type BillResult struct {
	BillCode   string
	PaymentURL string
}

// StatusResult pandangan gateway terhadap status pembayaran.
type StatusResult struct {
	Status        models.PaymentStatus
	TransactionID string
	Reason        string // sebab kegagalan dari gateway, jika ada
	Raw           string // snapshot respons untuk jejak audit
}

// ToyyibPayConfig holds ToyyibPay configuration
type ToyyibPayConfig struct {
	SecretKey    string
	CategoryCode string
	IsProduction bool
	CallbackURL  string
	ReturnURL    string
}

// ToyyibPayService handles ToyyibPay API interactions
type ToyyibPayService struct {
	config     *ToyyibPayConfig
	httpClient *http.Client
	baseURL    string // override untuk test
}

var (
	toyyibPayService *ToyyibPayService
	toyyibPayOnce    sync.Once
)

// GetToyyibPayService returns singleton instance of ToyyibPayService
func GetToyyibPayService() *ToyyibPayService {
	toyyibPayOnce.Do(func() {
		cfg := &ToyyibPayConfig{
			SecretKey:    os.Getenv("TOYYIBPAY_SECRET_KEY"),
			CategoryCode: os.Getenv("TOYYIBPAY_CATEGORY_CODE"),
			IsProduction: os.Getenv("TOYYIBPAY_ENV") == "production",
			CallbackURL:  os.Getenv("PAYMENT_CALLBACK_URL"),
			ReturnURL:    os.Getenv("PAYMENT_RETURN_URL"),
		}
		toyyibPayService = NewToyyibPayService(cfg)
	})
	return toyyibPayService
}

// NewToyyibPayService creates a new instance of ToyyibPayService
func NewToyyibPayService(config *ToyyibPayConfig) *ToyyibPayService {
	return &ToyyibPayService{
		config: config,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ValidateConfig validates ToyyibPay configuration
func (ts *ToyyibPayService) ValidateConfig() error {
	if ts.config.SecretKey == "" {
		return fmt.Errorf("TOYYIBPAY_SECRET_KEY is not set")
	}
	if ts.config.CategoryCode == "" {
		return fmt.Errorf("TOYYIBPAY_CATEGORY_CODE is not set")
	}
	if ts.config.CallbackURL == "" {
		return fmt.Errorf("PAYMENT_CALLBACK_URL is not set")
	}
	return nil
}

// CreateBill membuat bil baru di ToyyibPay dan mengembalikan URL redirect
// untuk penderma membuat pembayaran FPX/kad.
func (ts *ToyyibPayService) CreateBill(d *models.Donation) (*BillResult, error) {
	endpoint := fmt.Sprintf("%s/index.php/api/createBill", ts.getBaseURL())

	billName := "Derma - Tabung Am"
	if d.ProjectID != nil && d.Project != nil {
		billName = "Derma - " + d.Project.Title.Get(models.LangMalay)
	}
	// ToyyibPay mengehadkan billName kepada 30 aksara; potong pada rune
	// supaya tajuk dengan aksara multi-byte tidak terkerat separuh
	if runes := []rune(billName); len(runes) > 30 {
		billName = string(runes[:30])
	}

	form := url.Values{}
	form.Set("userSecretKey", ts.config.SecretKey)
	form.Set("categoryCode", ts.config.CategoryCode)
	form.Set("billName", billName)
	form.Set("billDescription", fmt.Sprintf("Derma %s", d.PaymentReference))
	form.Set("billPriceSetting", "1") // jumlah tetap
	form.Set("billPayorInfo", "1")
	form.Set("billAmount", fmt.Sprintf("%d", d.Amount)) // dalam sen
	form.Set("billReturnUrl", ts.config.ReturnURL)
	form.Set("billCallbackUrl", ts.config.CallbackURL)
	form.Set("billExternalReferenceNo", d.PaymentReference)
	form.Set("billTo", d.DonorName)
	form.Set("billEmail", d.DonorEmail)
	form.Set("billPhone", d.DonorPhone)
	form.Set("billPaymentChannel", "2") // FPX dan kad

	utils.InfoLogger.Debugf("Creating ToyyibPay bill for %s (%d sen)", d.PaymentReference, d.Amount)

	resp, err := ts.httpClient.PostForm(endpoint, form)
	if err != nil {
		return nil, fmt.Errorf("error calling createBill: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ToyyibPay API error (status %d): %s", resp.StatusCode, string(body))
	}

	// Respons berjaya ialah array JSON: [{"BillCode":"abc123"}]
	var bills []struct {
		BillCode string `json:"BillCode"`
	}
	if err := json.Unmarshal(body, &bills); err != nil || len(bills) == 0 || bills[0].BillCode == "" {
		return nil, fmt.Errorf("ToyyibPay rejected bill creation: %s", string(body))
	}

	billCode := bills[0].BillCode
	return &BillResult{
		BillCode:   billCode,
		PaymentURL: fmt.Sprintf("%s/%s", ts.getBaseURL(), billCode),
	}, nil
}

// QueryStatus menyemak status transaksi terkini di ToyyibPay untuk bil
// derma yang diberi. Digunakan oleh reconciliation apabila webhook terlepas.
func (ts *ToyyibPayService) QueryStatus(d *models.Donation) (*StatusResult, error) {
	if d.BillCode == "" {
		return nil, fmt.Errorf("donation %s has no bill code", d.PaymentReference)
	}

	endpoint := fmt.Sprintf("%s/index.php/api/getBillTransactions", ts.getBaseURL())

	form := url.Values{}
	form.Set("billCode", d.BillCode)

	resp, err := ts.httpClient.PostForm(endpoint, form)
	if err != nil {
		return nil, fmt.Errorf("error calling getBillTransactions: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ToyyibPay API error (status %d): %s", resp.StatusCode, string(body))
	}

	var txns []struct {
		BillPaymentStatus    string `json:"billpaymentStatus"`
		BillPaymentInvoiceNo string `json:"billpaymentInvoiceNo"`
		BillPaymentChannel   string `json:"billPaymentChannel"`
		Reason               string `json:"reason"`
	}
	if err := json.Unmarshal(body, &txns); err != nil {
		return nil, fmt.Errorf("error unmarshaling response: %s", string(body))
	}

	// Bil tanpa sebarang transaksi masih pending di sisi gateway
	if len(txns) == 0 {
		return &StatusResult{Status: models.StatusPending, Raw: string(body)}, nil
	}

	// Ambil transaksi terkini (ToyyibPay menyusun dari yang terbaru)
	latest := txns[0]
	result := &StatusResult{
		Status:        ts.mapPaymentStatus(latest.BillPaymentStatus),
		TransactionID: latest.BillPaymentInvoiceNo,
		Raw:           string(body),
	}
	if result.Status == models.StatusFailed {
		result.Reason = latest.Reason
		if result.Reason == "" {
			result.Reason = fmt.Sprintf("gateway reported status %s via %s",
				latest.BillPaymentStatus, latest.BillPaymentChannel)
		}
	}
	return result, nil
}

// mapPaymentStatus maps ToyyibPay billpaymentStatus codes to internal status.
// 1 = berjaya, 2 = pending, 3 = gagal, 4 = pending (dalam proses bank).
func (ts *ToyyibPayService) mapPaymentStatus(code string) models.PaymentStatus {
	switch strings.TrimSpace(code) {
	case "1":
		return models.StatusCompleted
	case "2", "4":
		return models.StatusPending
	case "3":
		return models.StatusFailed
	default:
		return models.StatusPending
	}
}

// getBaseURL returns the appropriate ToyyibPay API base URL
func (ts *ToyyibPayService) getBaseURL() string {
	if ts.baseURL != "" {
		return ts.baseURL
	}
	if ts.config.IsProduction {
		return "https://toyyibpay.com"
	}
	return "https://dev.toyyibpay.com"
}
