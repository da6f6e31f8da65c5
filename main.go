package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/amanahfoundation/charity-backend/config"
	"github.com/amanahfoundation/charity-backend/models"
	"github.com/amanahfoundation/charity-backend/router"
	"github.com/amanahfoundation/charity-backend/services"
	"github.com/amanahfoundation/charity-backend/utils"
)

func init() {
	// Load .env sebelum apa-apa membaca environment
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or error loading: %v", err)
	}

	utils.InitLogger()
}

func main() {
	cfg := config.Load()

	// Initialize DB
	db, err := config.InitDB()
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}
	utils.InitDB(db)

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	autoMigrate(db)

	// Gateway dan mailer
	gateway := services.GetToyyibPayService()
	if err := gateway.ValidateConfig(); err != nil {
		utils.ErrorLogger.Printf("Warning: ToyyibPay config incomplete: %v", err)
	}
	mailer := services.NewMailerService(cfg)

	donationSvc := services.NewDonationService(db, gateway, mailer)
	statsSvc := services.NewStatsService(db)

	r := router.SetupRouter(db, donationSvc, statsSvc)

	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		utils.ErrorLogger.Printf("Failed to set trusted proxies: %v", err)
	}

	utils.InfoLogger.Printf("Listening on port %s (%s)", cfg.Port, cfg.ToyyibPayEnvironment)
	if err := r.Run(":" + cfg.Port); err != nil {
		utils.ErrorLogger.Fatal(err)
	}
}

func autoMigrate(db *gorm.DB) {
	err := db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.Post{},
		&models.Donation{},
		&models.DonationLog{},
		&models.FormSubmission{},
	)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}
	utils.InfoLogger.Println("AutoMigrate completed.")
}
