package routes

import (
	"fmt"
	"net/http"
	"time"

	"venuebook/handlers"
	"venuebook/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Options carries the settings route registration depends on.
type Options struct {
	AdminSecret []byte
	// CancellationRequestsPerMin caps code requests per client IP.
	CancellationRequestsPerMin int
	// ConfirmAttemptsPerMin caps code confirmations per booking, whoever sends them.
	ConfirmAttemptsPerMin int
	// TrustedProxies are the only peers whose forwarding headers set the client IP.
	TrustedProxies []string
}

// RegisterBookingRoutes registers the public reservation endpoints.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle, opts Options) {
	api := r.Group("/api/bookings")
	{
		api.POST("", hb.CreateBookingHandler)
		api.GET("", hb.ListBookingsByPhoneHandler)
		api.GET("/:id", hb.GetBookingHandler)

		api.POST("/:id/cancellation", middleware.RateLimitMiddleware(opts.CancellationRequestsPerMin), hb.RequestCancellationHandler)
		api.POST("/:id/cancellation/confirm", middleware.RateLimitByKey(opts.ConfirmAttemptsPerMin, middleware.ParamKey("id")), hb.ConfirmCancellationHandler)
	}
}

// RegisterVenueRoutes registers availability queries and the admin venue listing.
func RegisterVenueRoutes(r *gin.Engine, hb *handlers.HandlerBundle, opts Options) {
	api := r.Group("/api/venues/:venueId")
	{
		api.GET("/unavailable-dates", hb.ListUnavailableDatesHandler)
		api.GET("/availability", hb.CheckAvailabilityHandler)
		api.GET("/bookings", middleware.JWTAuthAdminMiddleware(opts.AdminSecret), hb.AdminHandler.ListVenueBookingsHandler)
	}
}

// RegisterAdminRoutes sets up endpoints for admin operations.
func RegisterAdminRoutes(r *gin.Engine, hb *handlers.HandlerBundle, opts Options) {
	adminGroup := r.Group("/api/admin")
	{
		adminGroup.Use(middleware.JWTAuthAdminMiddleware(opts.AdminSecret))
		adminGroup.PATCH("/bookings/:id/status", hb.AdminHandler.UpdateStatusHandler)
		adminGroup.DELETE("/bookings/:id", hb.AdminHandler.DeleteBookingHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/health", hb.HealthHandler)
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle, opts Options) error {
	if err := r.SetTrustedProxies(opts.TrustedProxies); err != nil {
		return fmt.Errorf("invalid trusted proxies: %w", err)
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterBookingRoutes(r, hb, opts)
	RegisterVenueRoutes(r, hb, opts)
	RegisterAdminRoutes(r, hb, opts)
	RegisterHealthRoute(r, hb)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "route not found"})
	})
	return nil
}
