package main

import (
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/wardlink/wardlink-backend/database"
	"github.com/wardlink/wardlink-backend/internal/i18n"
	"github.com/wardlink/wardlink-backend/internal/models"
	"github.com/wardlink/wardlink-backend/internal/routes"
	"github.com/wardlink/wardlink-backend/internal/services"
	"github.com/wardlink/wardlink-backend/internal/session"
	"github.com/wardlink/wardlink-backend/internal/storage"
	"github.com/wardlink/wardlink-backend/internal/ussd"
)

const version = "1.0.0"

func main() {
	// Load .env file for local development
	if os.Getenv("INSTANCE_CONNECTION_NAME") == "" {
		err := godotenv.Load(".env")
		if err != nil {
			err = godotenv.Load("environments/.env.development")
			if err != nil {
				log.Println("⚠️  No .env file found - checking environment variables")
			}
		}
	}

	// Initialize storage
	var store storage.Store

	if os.Getenv("USE_MEMORY_STORE") == "true" {
		log.Println("⚠️  Using in-memory storage (not for production!)")
		store = storage.NewMemoryStore()
	} else {
		log.Println("📦 Connecting to PostgreSQL database...")
		database.Connect()

		log.Println("🔄 Running database migrations...")
		err := database.DB.AutoMigrate(
			&models.Member{},
			&models.Issue{},
			&models.BursaryApplication{},
			&models.Announcement{},
			&models.Project{},
			&models.SessionLog{},
		)
		if err != nil {
			log.Fatal("Failed to migrate database:", err)
		}
		log.Println("✅ Database migrations completed!")

		store = storage.NewDatabaseStore(database.DB)
		log.Println("✅ Using PostgreSQL database storage")
	}
	storage.SetStore(store)

	// SMS confirmations are optional; the dialog works without them.
	var notifier ussd.Notifier
	smsService, err := services.NewSMSService()
	if err != nil {
		log.Printf("⚠️  SMS service not initialized: %v", err)
	} else {
		notifier = smsService
		log.Println("✅ SMS service initialized")
	}

	// Session store with the gateway dialog bounds
	sessions := session.NewStore(session.Config{
		MaxSessions:     getEnvInt("MAX_SESSIONS", session.DefaultMaxSessions),
		TTL:             time.Duration(getEnvInt("SESSION_TTL_MINUTES", 10)) * time.Minute,
		CleanupInterval: time.Duration(getEnvInt("CLEANUP_INTERVAL_MINUTES", 2)) * time.Minute,
	})
	sessions.Start()

	texts := i18n.NewProvider()
	engine := ussd.NewEngine(sessions, store, texts, notifier)

	log.Println("✅ All services initialized")

	// Create fiber app
	app := fiber.New(fiber.Config{
		AppName: "WardLink USSD Backend v" + version,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, OPTIONS",
	}))

	// Service status endpoint
	app.Get("/", func(c *fiber.Ctx) error {
		response := fiber.Map{
			"service":     "WardLink USSD Backend",
			"version":     version,
			"status":      "healthy",
			"environment": getEnvironment(),
			"storage":     getStorageType(),
			"sessions":    sessions.GetStats(),
			"sms": fiber.Map{
				"configured": notifier != nil,
			},
		}

		if os.Getenv("USE_MEMORY_STORE") != "true" && database.DB != nil {
			sqlDB, err := database.DB.DB()
			dbStatus := "connected"
			if err != nil {
				dbStatus = "error: " + err.Error()
			} else if err := sqlDB.Ping(); err != nil {
				dbStatus = "error: " + err.Error()
			}

			var memberCount, issueCount, bursaryCount int64
			database.DB.Model(&models.Member{}).Count(&memberCount)
			database.DB.Model(&models.Issue{}).Count(&issueCount)
			database.DB.Model(&models.BursaryApplication{}).Count(&bursaryCount)

			response["database"] = fiber.Map{
				"status":    dbStatus,
				"members":   memberCount,
				"issues":    issueCount,
				"bursaries": bursaryCount,
			}
		}

		return c.JSON(response)
	})

	// Setup routes
	routes.SetupRoutes(app, engine, sessions, version)

	// Get port from environment or use default
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Handle graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("\n🛑 Gracefully shutting down...")
		log.Println("⏹️  Stopping session cleanup...")
		sessions.Stop()
		log.Println("⏹️  Shutting down server...")
		_ = app.Shutdown()
	}()

	// Start server
	log.Println("========================================")
	log.Printf("🚀 WardLink USSD Backend starting on port %s", port)
	log.Printf("📊 Storage: %s", getStorageType())
	log.Printf("🌍 Environment: %s", getEnvironment())
	log.Printf("📱 SMS confirmations: %s", getSMSStatus(notifier))
	log.Println("========================================")

	log.Fatal(app.Listen(":" + port))
}

func getEnvironment() string {
	if os.Getenv("INSTANCE_CONNECTION_NAME") != "" {
		return "Production (Cloud Run)"
	}
	return "Development (Local)"
}

func getStorageType() string {
	if os.Getenv("USE_MEMORY_STORE") == "true" {
		return "In-Memory (Testing)"
	}
	return "PostgreSQL Database"
}

func getSMSStatus(notifier ussd.Notifier) string {
	if notifier == nil {
		return "Not configured"
	}
	return "Configured"
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
