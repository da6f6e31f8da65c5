package services

import "errors"

// Ralat sentinel yang dipetakan ke status HTTP di lapisan controller.
var (
	// ErrValidation input tidak sah (amount < 1, field penderma hilang)
	ErrValidation = errors.New("validation error")
	// ErrNotFound rujukan pembayaran tidak dikenali
	ErrNotFound = errors.New("donation not found")
	// ErrGateway payment gateway tidak dapat dihubungi atau menolak permintaan
	ErrGateway = errors.New("payment gateway error")
	// ErrState operasi tidak dibenarkan pada status semasa derma
	ErrState = errors.New("invalid donation state")
	// ErrStateConflict transisi kalah perlumbaan dengan update serentak
	ErrStateConflict = errors.New("donation state changed concurrently")
	// ErrDelivery penghantaran email resit gagal
	ErrDelivery = errors.New("receipt delivery failed")
)
