package router

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/amanahfoundation/charity-backend/controllers"
	"github.com/amanahfoundation/charity-backend/middlewares"
	"github.com/amanahfoundation/charity-backend/services"
)

// SetupRouter mendaftarkan semua route awam dan admin.
func SetupRouter(db *gorm.DB, donationSvc *services.DonationService, statsSvc *services.StatsService) *gin.Engine {
	r := gin.Default()

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.NewRateLimiter(50, 1).RateLimit())

	// Inisialisasi controller
	userCtrl := controllers.NewUserController(db)
	donationCtrl := controllers.NewDonationController(donationSvc)
	adminDonationCtrl := controllers.NewAdminDonationController(donationSvc, statsSvc)
	contentCtrl := controllers.NewContentController(db)
	formCtrl := controllers.NewFormController(db)
	exportCtrl := controllers.NewExportController(db)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// Login dan intake derma dengan rate limit ketat
	public := r.Group("/")
	public.Use(middlewares.DonationRateLimiter())
	{
		public.POST("/login", userCtrl.Login)
		// Penderma di-redirect ke halaman pembayaran gateway selepas ini
		public.POST("/donations", donationCtrl.CreateDonation)
	}

	// Penderma semak status derma mereka sendiri
	r.GET("/donations/:reference", donationCtrl.GetDonationByReference)

	// Webhook dari payment gateway; status sebenar tetap disahkan semula
	// terhadap gateway melalui jalur reconciliation
	r.POST("/payments/callback", donationCtrl.PaymentCallback)

	// Kandungan awam dwibahasa (?lang=en|ms)
	r.GET("/projects", contentCtrl.ListProjects)
	r.GET("/projects/:slug", contentCtrl.GetProjectBySlug)
	r.GET("/posts", contentCtrl.ListPosts)
	r.GET("/posts/:slug", contentCtrl.GetPostBySlug)

	// Borang hubungi kami
	r.POST("/contact", formCtrl.SubmitForm)

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	auth := r.Group("/admin")
	auth.Use(middlewares.AuthMiddleware())

	auth.GET("/profile", userCtrl.GetProfile)
	auth.POST("/users", middlewares.RequireAdmin(), userCtrl.Register)

	// DONATIONS (admin/editor boleh lihat; tindakan status admin sahaja)
	auth.GET("/donations", adminDonationCtrl.ListDonations)
	auth.GET("/donations/:reference", adminDonationCtrl.GetDonation)
	auth.GET("/donation-logs/:donation_id", adminDonationCtrl.GetDonationLogs)

	actions := auth.Group("/donations")
	actions.Use(middlewares.RequireAdmin())
	{
		actions.POST("/:reference/refresh", adminDonationCtrl.RefreshStatus)
		actions.POST("/:reference/expire", adminDonationCtrl.MarkExpired)
		actions.POST("/:reference/retry", adminDonationCtrl.RetryPayment)
	}

	// Resend resit dengan middleware logger
	receiptGroup := auth.Group("/donations")
	receiptGroup.Use(middlewares.RequireAdmin(), middlewares.ReceiptLoggerMiddleware())
	{
		receiptGroup.POST("/:reference/resend-receipt", adminDonationCtrl.ResendReceipt)
	}

	// KANDUNGAN (projek & blog)
	auth.POST("/projects", contentCtrl.CreateProject)
	auth.PATCH("/projects/:slug", contentCtrl.UpdateProject)
	auth.POST("/posts", contentCtrl.CreatePost)
	auth.PATCH("/posts/:slug", contentCtrl.UpdatePost)

	// BORANG
	auth.GET("/forms", formCtrl.ListSubmissions)
	auth.PATCH("/forms/:submission_id/read", formCtrl.MarkSubmissionRead)

	// EKSPORT & STATISTIK
	auth.GET("/donations-export", exportCtrl.ExportDonations)
	auth.GET("/forms-export", exportCtrl.ExportFormSubmissions)
	auth.GET("/dashboard/stats", adminDonationCtrl.GetDashboardStats)

	return r
}
