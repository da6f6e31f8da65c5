package config

import (
	"fmt"
	"os"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// Config menyimpan semua konfigurasi aplikasi dari environment variables.
type Config struct {
	Port string

	// ToyyibPay
	ToyyibPaySecretKey    string
	ToyyibPayCategoryCode string
	ToyyibPayEnvironment  string // sandbox | production
	CallbackURL           string
	ReturnURL             string

	// SMTP untuk penghantaran resit
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	MailFrom     string

	// Translation API untuk skrip backfill
	TranslateAPIURL string
	TranslateAPIKey string
}

// Load membaca konfigurasi dari environment. Nilai wajib yang kosong
// dibiarkan kepada pemanggil untuk divalidasi.
func Load() *Config {
	cfg := &Config{
		Port:                  getEnv("PORT", "8080"),
		ToyyibPaySecretKey:    os.Getenv("TOYYIBPAY_SECRET_KEY"),
		ToyyibPayCategoryCode: os.Getenv("TOYYIBPAY_CATEGORY_CODE"),
		ToyyibPayEnvironment:  getEnv("TOYYIBPAY_ENV", "sandbox"),
		CallbackURL:           os.Getenv("PAYMENT_CALLBACK_URL"),
		ReturnURL:             os.Getenv("PAYMENT_RETURN_URL"),
		SMTPHost:              getEnv("SMTP_HOST", "localhost"),
		SMTPPort:              25,
		SMTPUser:              os.Getenv("SMTP_USER"),
		SMTPPassword:          os.Getenv("SMTP_PASSWORD"),
		MailFrom:              getEnv("MAIL_FROM", "resit@amanahfoundation.org.my"),
		TranslateAPIURL:       getEnv("TRANSLATE_API_URL", "https://translation.googleapis.com/language/translate/v2"),
		TranslateAPIKey:       os.Getenv("TRANSLATE_API_KEY"),
	}

	if port := os.Getenv("SMTP_PORT"); port != "" {
		fmt.Sscanf(port, "%d", &cfg.SMTPPort)
	}

	return cfg
}

// InitDB membuka koneksi MySQL berdasarkan environment variables.
func InitDB() (*gorm.DB, error) {
	user := getEnv("DB_USER", "root")
	pass := os.Getenv("DB_PASSWORD")
	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "3306")
	name := getEnv("DB_NAME", "amanah_foundation")

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		user, pass, host, port, name)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
