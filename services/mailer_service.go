package services

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"
	"gopkg.in/gomail.v2"

	"github.com/amanahfoundation/charity-backend/config"
	"github.com/amanahfoundation/charity-backend/models"
	"github.com/amanahfoundation/charity-backend/utils"
)

// MailerService menghantar resit rasmi derma melalui SMTP dengan lampiran
// PDF.
type MailerService struct {
	host     string
	port     int
	username string
	password string
	from     string
}

// NewMailerService membuat instance baru MailerService dari konfigurasi.
func NewMailerService(cfg *config.Config) *MailerService {
	return &MailerService{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.SMTPUser,
		password: cfg.SMTPPassword,
		from:     cfg.MailFrom,
	}
}

// SendReceipt menghantar emel resit untuk derma completed. Pemanggil
// bertanggungjawab memastikan receipt_number dan email penderma wujud.
func (m *MailerService) SendReceipt(d *models.Donation) error {
	if d.ReceiptNumber == nil {
		return fmt.Errorf("donation %s has no receipt number", d.PaymentReference)
	}

	pdf, err := m.buildReceiptPDF(d)
	if err != nil {
		return fmt.Errorf("error building receipt PDF: %w", err)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", d.DonorEmail)
	msg.SetHeader("Subject", fmt.Sprintf("Resit Derma %s / Donation Receipt %s",
		*d.ReceiptNumber, *d.ReceiptNumber))
	msg.SetBody("text/plain", m.receiptBody(d))
	msg.Attach(fmt.Sprintf("%s.pdf", *d.ReceiptNumber),
		gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(pdf)
			return err
		}))

	dialer := gomail.NewDialer(m.host, m.port, m.username, m.password)
	if err := dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("error sending receipt email: %w", err)
	}

	utils.InfoLogger.Printf("Receipt %s sent to %s", *d.ReceiptNumber, d.DonorEmail)
	return nil
}

func (m *MailerService) receiptBody(d *models.Donation) string {
	target := "Tabung Am / General Fund"
	if d.Project != nil {
		target = d.Project.Title.Get(models.LangMalay)
	}
	return fmt.Sprintf(
		"Assalamualaikum / Greetings %s,\n\n"+
			"Terima kasih atas sumbangan anda. Thank you for your donation.\n\n"+
			"No. Resit / Receipt No : %s\n"+
			"Rujukan / Reference    : %s\n"+
			"Jumlah / Amount        : %s\n"+
			"Tabung / Fund          : %s\n\n"+
			"Resit rasmi dilampirkan. The official receipt is attached.\n",
		d.DisplayName(), *d.ReceiptNumber, d.PaymentReference,
		utils.FormatCurrencyMYR(d.Amount), target)
}

// buildReceiptPDF menjana resit PDF satu muka.
func (m *MailerService) buildReceiptPDF(d *models.Donation) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Yayasan Amanah Foundation")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 8, "Resit Rasmi Derma / Official Donation Receipt")
	pdf.Ln(14)

	completedAt := ""
	if d.CompletedAt != nil {
		completedAt = d.CompletedAt.Format("02 Jan 2006 15:04 MST")
	}
	target := "Tabung Am / General Fund"
	if d.Project != nil {
		target = d.Project.Title.Get(models.LangMalay)
	}

	rows := [][2]string{
		{"No. Resit / Receipt No", *d.ReceiptNumber},
		{"Rujukan / Reference", d.PaymentReference},
		{"Nama / Name", d.DisplayName()},
		{"Jumlah / Amount", utils.FormatCurrencyMYR(d.Amount)},
		{"Tabung / Fund", target},
		{"Tarikh / Date", completedAt},
		{"Kaedah / Method", d.PaymentMethod},
	}

	pdf.SetFont("Helvetica", "", 10)
	for _, row := range rows {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(55, 8, row[0], "1", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(120, 8, row[1], "1", 1, "L", false, 0, "")
	}

	pdf.Ln(10)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.MultiCell(0, 5,
		fmt.Sprintf("Dijana pada %s. Resit ini dijana secara automatik dan tidak memerlukan tandatangan.",
			time.Now().Format("02 Jan 2006 15:04")), "", "L", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
