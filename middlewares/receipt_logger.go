package middlewares

import (
	"github.com/gin-gonic/gin"

	"github.com/amanahfoundation/charity-backend/utils"
)

// ReceiptLoggerMiddleware mencatat setiap percubaan penghantaran semula
// resit oleh admin.
func ReceiptLoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		reference := c.Param("reference")
		utils.InfoLogger.Printf("Resending receipt for donation %s", reference)

		c.Next()

		if c.Writer.Status() == 200 {
			utils.InfoLogger.Printf("Receipt resent successfully for donation %s", reference)
		} else {
			utils.ErrorLogger.Printf("Failed to resend receipt for donation %s (status %d)",
				reference, c.Writer.Status())
		}
	}
}
