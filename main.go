package main

import (
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/streadway/amqp"

	"flashcards/internal/handlers"
	"flashcards/internal/middleware"
	"flashcards/internal/models"
	"flashcards/internal/repositories"
	"flashcards/internal/services"
	"flashcards/pkg/rabbitmq"

	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func main() {
	// --- Configuration ---
	// Set up Viper to read configuration from environment variables
	viper.SetDefault("APP_PORT", ":8080")
	viper.SetDefault("DATABASE_DSN", "file:flashcards.db")
	viper.SetDefault("JWT_SECRET", "change-me-in-prod")
	viper.SetDefault("TOKEN_TTL_MINUTES", 30)
	viper.SetDefault("RABBITMQ_URL", "")
	viper.AutomaticEnv() // Load environment variables

	appPort := viper.GetString("APP_PORT")
	databaseDSN := viper.GetString("DATABASE_DSN")
	jwtSecret := viper.GetString("JWT_SECRET")
	tokenTTL := time.Duration(viper.GetInt("TOKEN_TTL_MINUTES")) * time.Minute
	rabbitMQURL := viper.GetString("RABBITMQ_URL")

	// --- Initialize Database ---
	db, err := openDatabase(databaseDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	err = db.AutoMigrate(&models.User{}, &models.Card{}, &models.Progress{}, &models.UserCardProgress{})
	if err != nil {
		log.Fatalf("Failed to auto-migrate database: %v", err)
	}

	// --- Initialize RabbitMQ Client (optional) ---
	// The broker carries best-effort study events; the app runs fine
	// without one.
	var mqClient *rabbitmq.Client
	if rabbitMQURL != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: rabbitMQURL})
		if err != nil {
			log.Printf("Warning: RabbitMQ unavailable, study events disabled: %v", err)
			mqClient = nil
		} else {
			defer mqClient.Close() // Ensure the connection is closed on exit
		}
	}

	// --- Initialize Repositories ---
	userRepo := repositories.NewGORMUserRepository(db)
	cardRepo := repositories.NewGORMCardRepository(db)
	progressRepo := repositories.NewGORMProgressRepository(db)

	// Promote the earliest registered user if no admin exists yet.
	if err := bootstrapAdmin(db); err != nil {
		log.Printf("Warning: admin bootstrap failed: %v", err)
	}

	// --- Initialize Services ---
	authService := services.NewAuthService(userRepo, mqClient, jwtSecret, tokenTTL)
	userService := services.NewUserService(userRepo)
	cardService := services.NewCardService(cardRepo)
	progressService := services.NewProgressService(progressRepo, cardRepo, userRepo, mqClient)

	// --- Initialize Handlers ---
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	cardHandler := handlers.NewCardHandler(cardService)
	progressHandler := handlers.NewProgressHandler(progressService)

	// --- Initialize Fiber App ---
	app := fiber.New()

	// --- Middleware ---
	app.Use(logger.New()) // Request logger

	// --- API Routes ---
	apiV1 := app.Group("/api/v1")

	// Authentication routes (public)
	authHandler.RegisterRoutes(apiV1)

	// Authenticated routes
	protected := apiV1.Group("", middleware.AuthRequired(authService))
	cardHandler.RegisterRoutes(protected)
	progressHandler.RegisterRoutes(protected)

	// Admin routes
	admin := protected.Group("", middleware.AdminRequired())
	cardHandler.RegisterAdminRoutes(admin)
	userHandler.RegisterRoutes(admin)
	progressHandler.RegisterAdminRoutes(admin)

	// --- Health Check Endpoint ---
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// --- Start RabbitMQ Consumer in a Goroutine ---
	// Logs study events; a real deployment would fan these out to
	// notification or analytics workers.
	if mqClient != nil {
		go func() {
			log.Println("Starting RabbitMQ consumer for study events...")
			messageHandler := func(msg amqp.Delivery) error {
				log.Printf("Received study event (Tag: %d): %s", msg.DeliveryTag, string(msg.Body))
				return nil // Return nil to acknowledge
			}
			if consumerErr := mqClient.ConsumeStudyEvents(messageHandler); consumerErr != nil {
				log.Printf("Failed to start RabbitMQ consumer: %v", consumerErr)
			}
		}()
	}

	// --- Start HTTP Server ---
	log.Printf("Starting server on port %s", appPort)

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(appPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}

	log.Println("Server gracefully stopped")
}

// openDatabase opens the configured database. A postgres-style DSN selects
// the postgres driver; anything else is treated as a SQLite path.
// TranslateError is enabled so unique-constraint violations surface as
// gorm.ErrDuplicatedKey on both drivers.
func openDatabase(dsn string) (*gorm.DB, error) {
	cfg := &gorm.Config{TranslateError: true}
	if strings.HasPrefix(dsn, "postgres://") || strings.Contains(dsn, "host=") {
		return gorm.Open(postgres.Open(dsn), cfg)
	}
	return gorm.Open(sqlite.Open(dsn), cfg)
}

// bootstrapAdmin promotes the earliest registered user to admin when the
// system has users but no admin, so a fresh install is never locked out of
// the management endpoints.
func bootstrapAdmin(db *gorm.DB) error {
	var adminCount int64
	if err := db.Model(&models.User{}).Where("is_admin = ?", true).Count(&adminCount).Error; err != nil {
		return err
	}
	if adminCount > 0 {
		return nil
	}

	var first models.User
	err := db.Order("created_at ASC").First(&first).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil // no users yet; the first registration can be promoted later
		}
		return err
	}

	first.IsAdmin = true
	if err := db.Save(&first).Error; err != nil {
		return err
	}
	log.Printf("Promoted user %s to admin (no admin existed)", first.Username)
	return nil
}
