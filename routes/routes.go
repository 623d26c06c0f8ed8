// File: /routes/routes.go
package routes

import (
	"net/http"
	"strings"

	"carrental-api/config"
	"carrental-api/controllers"
	"carrental-api/middleware"
	"carrental-api/models"
	"carrental-api/services"
	"github.com/gin-gonic/gin"
)

// Services bundles what the HTTP layer needs.
type Services struct {
	Auth     *services.AuthService
	Cars     *services.CarService
	Bookings *services.BookingService
	Owner    *services.OwnerService
	Users    middleware.UserLoader
}

// NewRouter builds the engine with the global middleware chain and all routes.
func NewRouter(cfg *config.Config, svc Services) *gin.Engine {
	r := gin.New()
	r.MaxMultipartMemory = 8 << 20

	r.Use(middleware.Recovery())
	r.Use(SetupCORS(strings.Split(cfg.CORSOrigin, ",")))
	r.Use(middleware.RequestLogger())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.ErrorHandler())

	SetupRoutes(r, cfg, svc)
	return r
}

func SetupRoutes(r *gin.Engine, cfg *config.Config, svc Services) {
	authController := controllers.NewAuthController(svc.Auth, controllers.CookieOptions{
		Secure: cfg.IsProduction(),
		MaxAge: svc.Auth.TokenTTL(),
	})
	carController := controllers.NewCarController(svc.Cars)
	bookingController := controllers.NewBookingController(svc.Bookings)
	ownerController := controllers.NewOwnerController(svc.Owner)

	requireAuth := middleware.AuthMiddleware(svc.Auth, svc.Users)
	requireOwner := middleware.RequireRole(models.RoleOwner)

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Car rental API is running")
	})

	api := r.Group("/api")
	api.Use(middleware.NoCache())
	api.Use(middleware.ValidateJSON())

	user := api.Group("/user")
	{
		limited := user.Group("", middleware.RateLimit(cfg.AuthRateLimitPerMinute, cfg.AuthRateLimitPerMinute))
		limited.POST("/register", authController.Register)
		limited.POST("/login", authController.Login)

		user.GET("/cars", carController.ListCars)
		user.GET("/cars/:id", carController.GetCar)

		user.GET("/me", requireAuth, authController.Me)
		user.POST("/logout", requireAuth, authController.Logout)
	}

	booking := api.Group("/booking", requireAuth)
	{
		booking.POST("/check-availability-of-car", bookingController.CheckAvailability)
		booking.POST("/create", bookingController.CreateBooking)
		booking.GET("/user", bookingController.UserBookings)
		booking.GET("/owner", bookingController.OwnerBookings)
		booking.PUT("/change-status", bookingController.ChangeStatus)
	}

	owner := api.Group("/owner", requireAuth)
	{
		owner.POST("/add-car", requireOwner, ownerController.AddCar)
		owner.GET("/cars", requireOwner, ownerController.ListCars)
		owner.POST("/toggle-car", requireOwner, ownerController.ToggleCar)
		owner.POST("/delete-car", requireOwner, ownerController.DeleteCar)
		owner.GET("/dashboard", requireOwner, ownerController.Dashboard)
		owner.POST("/update-image", ownerController.UpdateUserImage)
	}
}
