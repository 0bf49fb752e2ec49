package routes

import (
	"log"
	"time"

	"github.com/Thinura66/VehicleRental-Backend/internal/api/handlers"
	"github.com/Thinura66/VehicleRental-Backend/internal/api/middleware"
	"github.com/Thinura66/VehicleRental-Backend/internal/config"
	"github.com/Thinura66/VehicleRental-Backend/internal/repository"
	"github.com/Thinura66/VehicleRental-Backend/internal/services"
	"github.com/Thinura66/VehicleRental-Backend/pkg/cache"
	"github.com/Thinura66/VehicleRental-Backend/pkg/cleanup"
	"github.com/Thinura66/VehicleRental-Backend/pkg/email"
	"github.com/Thinura66/VehicleRental-Backend/pkg/ratelimit"
	"github.com/Thinura66/VehicleRental-Backend/pkg/redis"
	"github.com/Thinura66/VehicleRental-Backend/pkg/storage"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
)

// SetupRoutes wires repositories, services and handlers onto the router.
func SetupRoutes(router *gin.Engine, db *mongo.Database, redisClient *redis.Client, cfg *config.Config) {
	// Repositories
	userRepo := repository.NewUserRepository(db)
	vehicleRepo := repository.NewVehicleRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	reviewRepo := repository.NewReviewRepository(db)

	// Email is optional; the reset flow degrades to logging without it
	var emailService *email.EmailService
	if svc := email.NewEmailService(cfg.SMTP, cfg.AppURL); svc.Configured() {
		emailService = svc
	} else {
		log.Println("SMTP not configured, password reset emails disabled")
	}

	// Services
	authService := services.NewAuthService(userRepo, emailService)
	userService := services.NewUserService(userRepo)
	vehicleService := services.NewVehicleService(vehicleRepo)
	bookingService := services.NewBookingService(bookingRepo, vehicleRepo)
	reviewService := services.NewReviewService(reviewRepo, bookingRepo, vehicleService)

	if redisClient != nil {
		vehicleService.SetCacheManager(cache.NewDefaultCacheManager(redisClient))
	}

	if mediaStore, err := storage.NewS3Store(cfg.AWS); err == nil {
		vehicleService.SetMediaStore(mediaStore)
	} else {
		log.Printf("S3 not configured (%v), using local media storage", err)
		if local, lerr := storage.NewLocalStore("uploads", cfg.AppURL); lerr == nil {
			vehicleService.SetMediaStore(local)
		} else {
			log.Printf("local media storage unavailable: %v", lerr)
		}
	}

	// Expired reset tokens are swept hourly
	cleanupService := cleanup.NewCleanupService(userRepo, time.Hour)
	go cleanupService.Start()

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, userService)
	userHandler := handlers.NewUserHandler(userService)
	vehicleHandler := handlers.NewVehicleHandler(vehicleService)
	bookingHandler := handlers.NewBookingHandler(bookingService)
	reviewHandler := handlers.NewReviewHandler(reviewService)
	healthHandler := handlers.NewHealthHandler(db, redisClient)

	// Rate limiting backed by Redis, in-memory when Redis is down
	rateLimitConfig := ratelimit.DefaultConfig()
	var limiter ratelimit.RateLimiter
	if redisClient != nil && redisClient.IsConnected() {
		limiter = ratelimit.NewRedisRateLimiter(redisClient.GetClient(), rateLimitConfig)
	} else {
		limiter = ratelimit.NewMemoryRateLimiter(rateLimitConfig)
	}

	api := router.Group("/api/v1")
	api.Use(middleware.RateLimitMiddleware(limiter, rateLimitConfig))

	api.GET("/health", healthHandler.HealthCheck)

	// Public routes
	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/logout", authHandler.Logout)
		auth.POST("/forgot-password", authHandler.ForgotPassword)
		auth.POST("/reset-password", authHandler.ResetPassword)
	}

	// The catalog is browsable without an account
	api.GET("/vehicles", vehicleHandler.GetVehicles)
	api.GET("/vehicles/:id", vehicleHandler.GetVehicle)
	api.GET("/vehicles/:id/reviews", reviewHandler.GetVehicleReviews)
	api.GET("/bookings/availability", bookingHandler.CheckAvailability)

	// Protected routes
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware())
	{
		protected.POST("/auth/refresh", authHandler.RefreshToken)
		protected.GET("/auth/profile", authHandler.GetProfile)
		protected.POST("/auth/change-password", userHandler.ChangePassword)

		bookings := protected.Group("/bookings")
		{
			bookings.POST("", bookingHandler.CreateBooking)
			bookings.GET("", bookingHandler.GetBookings)
			bookings.GET("/stats", middleware.AdminOnly(), bookingHandler.GetStats)
			bookings.GET("/:id", bookingHandler.GetBooking)
			bookings.PUT("/:id/status", middleware.AdminOnly(), bookingHandler.UpdateStatus)
			bookings.PATCH("/:id/status", middleware.AdminOnly(), bookingHandler.UpdateStatus)
			bookings.PUT("/:id/cancel", bookingHandler.CancelBooking)
			bookings.POST("/:id/cancel", bookingHandler.CancelBooking)
		}

		reviews := protected.Group("/reviews")
		{
			reviews.POST("", reviewHandler.CreateReview)
			reviews.PUT("/:id", reviewHandler.UpdateReview)
			reviews.PATCH("/:id", reviewHandler.UpdateReview)
			reviews.DELETE("/:id", reviewHandler.DeleteReview)
			reviews.PUT("/:id/response", middleware.AdminOnly(), reviewHandler.RespondToReview)
			reviews.POST("/:id/respond", middleware.AdminOnly(), reviewHandler.RespondToReview)
		}

		users := protected.Group("/users")
		{
			users.GET("", middleware.AdminOnly(), userHandler.GetUsers)
			users.GET("/:id", userHandler.GetUser)
			users.PATCH("/:id", userHandler.UpdateUser)
			users.DELETE("/:id", middleware.AdminOnly(), userHandler.DeleteUser)
		}

		vehicles := protected.Group("/vehicles")
		vehicles.Use(middleware.AdminOnly())
		{
			vehicles.POST("", vehicleHandler.CreateVehicle)
			vehicles.PUT("/:id", vehicleHandler.UpdateVehicle)
			vehicles.PATCH("/:id", vehicleHandler.UpdateVehicle)
			vehicles.DELETE("/:id", vehicleHandler.DeleteVehicle)
			vehicles.POST("/:id/images", vehicleHandler.UploadImage)
			vehicles.DELETE("/:id/images/:filename", vehicleHandler.DeleteImage)
		}
	}
}
