package main

import (
	"log"
	"mime"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/immuneplus/immuneplus_backend/config"
	"github.com/immuneplus/immuneplus_backend/middleware"
	"github.com/immuneplus/immuneplus_backend/repositories"
	"github.com/immuneplus/immuneplus_backend/routes"
	"github.com/immuneplus/immuneplus_backend/services"
	"github.com/immuneplus/immuneplus_backend/websocket"
)

// CustomValidator is a custom validator for Echo
type CustomValidator struct {
	validator *validator.Validate
}

// Validate validates the request body
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

func main() {
	// Load .env file
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: .env file not found")
	}

	// Ensure correct MIME type for SVG files
	_ = mime.AddExtensionType(".svg", "image/svg+xml")

	// Initialize Firebase
	config.InitFirebase()

	// Connect to Redis
	redisClient := config.ConnectRedis()

	// Connect to database
	client := config.ConnectDB()
	db := config.GetDatabase(client)

	// Create WebSocket hub for the admin live feed
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Create a new Echo instance
	e := echo.New()

	// Initialize custom validator
	customValidator := &CustomValidator{validator: validator.New()}
	e.Validator = customValidator

	// Initialize rate limiter
	rateLimiter := middleware.NewRateLimiter()

	// Middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.Secure())
	e.Use(rateLimiter.RateLimit())
	e.Use(middleware.SecurityHeaders())

	e.Match([]string{"GET", "HEAD"}, "/", func(c echo.Context) error {
		return c.JSON(200, map[string]string{
			"status":  "OK",
			"message": "ImmunePlus Backend is running",
			"version": "1.0",
		})
	})

	e.Match([]string{"GET", "HEAD"}, "/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{
			"status":   "healthy",
			"database": "connected",
		})
	})

	e.Use(httpsRedirect())

	// Initialize local file storage for license images and pictures
	storage, err := services.NewLocalStorage()
	if err != nil {
		log.Fatalf("Failed to initialize file storage: %v", err)
	}

	// Initialize repositories
	profileRepo := repositories.NewProfileRepository(db)
	counterRepo := repositories.NewCounterRepository(db)

	// OTP store: Redis when available, in-memory otherwise
	var otpStore services.OTPStore
	if redisClient != nil {
		otpStore = services.NewRedisOTPStore(redisClient)
	} else {
		otpStore = services.NewMemoryOTPStore()
	}

	// Initialize services
	smsService := services.NewSMSService()
	issuer := services.NewOTPIssuer(otpStore, smsService)
	verifier := services.NewOnboardingVerifier(otpStore, profileRepo, counterRepo)

	// Register routes
	routes.RegisterUserRoutes(e, db, issuer, verifier)
	routes.RegisterPharmacyRoutes(e, db, profileRepo, issuer, verifier, storage, wsHub)
	routes.RegisterDeliveryRoutes(e, db, profileRepo, issuer, verifier, counterRepo, storage, wsHub)
	routes.RegisterCategoryRoutes(e, db, counterRepo, storage)
	routes.RegisterPosterRoutes(e, db, counterRepo, storage)

	// Register admin routes AFTER general routes to avoid conflicts
	routes.RegisterAdminRoutes(e, db, wsHub)

	// Serve uploaded images
	e.Static("/uploads", "uploads")

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	e.Logger.Fatal(e.Start(":" + port))
}

func httpsRedirect() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Header.Get("X-Forwarded-Proto") == "http" {
				return c.Redirect(301, "https://"+c.Request().Host+c.Request().RequestURI)
			}
			return next(c)
		}
	}
}
