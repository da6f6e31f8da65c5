package controllers

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/amanahfoundation/charity-backend/models"
	"github.com/amanahfoundation/charity-backend/utils"
)

// ExportController menjana fail eksport untuk dashboard admin.
type ExportController struct {
	DB *gorm.DB
}

// NewExportController membuat instance baru ExportController
func NewExportController(db *gorm.DB) *ExportController {
	return &ExportController{DB: db}
}

// ExportDonations mengeksport semua derma sebagai CSV, terbaru dahulu.
func (ec *ExportController) ExportDonations(c *gin.Context) {
	var donations []models.Donation
	if err := ec.DB.Preload("Project").Order("created_at DESC").Find(&donations).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	filename := fmt.Sprintf("donations-%s.csv", time.Now().Format("20060102-150405"))
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))

	w := csv.NewWriter(c.Writer)
	defer w.Flush()

	header := []string{"Reference", "Donor", "Email", "Phone", "Anonymous", "Fund",
		"Amount (RM)", "Currency", "Status", "Method", "Attempts", "Receipt No",
		"Created At", "Completed At", "Failure Reason"}
	if err := w.Write(header); err != nil {
		utils.ErrorLogger.Printf("error writing CSV header: %v", err)
		return
	}

	for _, d := range donations {
		fund := "General Fund"
		if d.Project != nil {
			fund = d.Project.Title.Get(models.LangEnglish)
		}
		receiptNo := ""
		if d.ReceiptNumber != nil {
			receiptNo = *d.ReceiptNumber
		}
		completedAt := ""
		if d.CompletedAt != nil {
			completedAt = d.CompletedAt.Format(time.RFC3339)
		}

		row := []string{
			d.PaymentReference,
			d.DisplayName(),
			d.DonorEmail,
			d.DonorPhone,
			fmt.Sprintf("%t", d.IsAnonymous),
			fund,
			fmt.Sprintf("%.2f", float64(d.Amount)/100),
			d.Currency,
			string(d.PaymentStatus),
			d.PaymentMethod,
			fmt.Sprintf("%d", d.PaymentAttempts),
			receiptNo,
			d.CreatedAt.Format(time.RFC3339),
			completedAt,
			d.FailureReason,
		}
		if err := w.Write(row); err != nil {
			utils.ErrorLogger.Printf("error writing CSV row: %v", err)
			return
		}
	}
}

// ExportFormSubmissions mengeksport mesej borang hubungi sebagai CSV atau
// XLSX mengikut query ?format=.
func (ec *ExportController) ExportFormSubmissions(c *gin.Context) {
	var submissions []models.FormSubmission
	if err := ec.DB.Order("created_at DESC").Find(&submissions).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	switch c.DefaultQuery("format", "csv") {
	case "xlsx":
		ec.writeSubmissionsXLSX(c, submissions)
	case "csv":
		ec.writeSubmissionsCSV(c, submissions)
	default:
		utils.RespondError(c, http.StatusBadRequest,
			fmt.Errorf("unsupported export format %q", c.Query("format")))
	}
}

func (ec *ExportController) writeSubmissionsCSV(c *gin.Context, submissions []models.FormSubmission) {
	filename := fmt.Sprintf("form-submissions-%s.csv", time.Now().Format("20060102-150405"))
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))

	w := csv.NewWriter(c.Writer)
	defer w.Flush()

	if err := w.Write([]string{"Name", "Email", "Phone", "Subject", "Message", "Read", "Submitted At"}); err != nil {
		utils.ErrorLogger.Printf("error writing CSV header: %v", err)
		return
	}
	for _, s := range submissions {
		row := []string{s.Name, s.Email, s.Phone, s.Subject, s.Message,
			fmt.Sprintf("%t", s.Read), s.CreatedAt.Format(time.RFC3339)}
		if err := w.Write(row); err != nil {
			utils.ErrorLogger.Printf("error writing CSV row: %v", err)
			return
		}
	}
}

func (ec *ExportController) writeSubmissionsXLSX(c *gin.Context, submissions []models.FormSubmission) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Submissions"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Name", "Email", "Phone", "Subject", "Message", "Read", "Submitted At"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for rowIdx, s := range submissions {
		values := []interface{}{s.Name, s.Email, s.Phone, s.Subject, s.Message,
			s.Read, s.CreatedAt.Format(time.RFC3339)}
		for colIdx, v := range values {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	filename := fmt.Sprintf("form-submissions-%s.xlsx", time.Now().Format("20060102-150405"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))

	if err := f.Write(c.Writer); err != nil {
		utils.ErrorLogger.Printf("error writing XLSX export: %v", err)
	}
}
