package routes

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/gatepass/internal/container"
	"github.com/joshua-takyi/gatepass/internal/handlers"
	"github.com/joshua-takyi/gatepass/internal/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// SetupRoutes configures all routes with the dependency container
func SetupRoutes(container *container.Container) *gin.Engine {
	if container.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     container.Config.CORSAllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "X-Request-ID"},
		AllowCredentials: true,
	}))

	r.Use(otelgin.Middleware(container.Config.ServiceName))
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(container.Logger))
	r.Use(middleware.ErrorHandler(container.Logger))
	r.Use(gin.Recovery())

	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status":  "OK",
				"service": container.Config.ServiceName,
			})
		})

		v1.GET("/prices", handlers.GetPrices(container.PricingService))
		v1.GET("/tickets/:serial/download", handlers.DownloadTicket(container.TicketService))

		paymentRoutes := v1.Group("/payment")
		{
			paymentRoutes.POST("/create-order", handlers.CreateOrder(container.BookingService))
			paymentRoutes.POST("/verify-payment", handlers.VerifyPayment(container.BookingService))
		}

		v1.POST("/admin/login", handlers.AdminLogin(container.AdminService))
	}

	admin := v1.Group("/admin")
	admin.Use(middleware.AdminAuth(container.Tokens, container.Logger))
	{
		admin.GET("/bookings", handlers.ListBookings(container.AdminService))
		admin.DELETE("/bookings", handlers.PurgeBookings(container.AdminService))
		admin.PUT("/prices", handlers.UpdatePrices(container.PricingService))
		admin.POST("/verify-qr", handlers.VerifyQR(container.AdminService))
		admin.GET("/tickets/:serial/download", handlers.AdminDownloadTicket(container.TicketService))
	}

	return r
}
