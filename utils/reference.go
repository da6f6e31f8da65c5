package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GeneratePaymentReference menjana rujukan pembayaran unik yang dipaparkan
// kepada penderma dan digunakan untuk mengaitkan callback gateway.
// Contoh: DN-20250817-4F9A2C1B
func GeneratePaymentReference(now time.Time) string {
	suffix := strings.ToUpper(uuid.New().String()[:8])
	return fmt.Sprintf("DN-%s-%s", now.Format("20060102"), suffix)
}
