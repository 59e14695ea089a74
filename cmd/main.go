package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"snacktrack/internal/analytics"
	"snacktrack/internal/caching"
	"snacktrack/internal/handlers"
	"snacktrack/internal/jobs"
	"snacktrack/internal/jobs/background"
	"snacktrack/internal/lookup"
	"snacktrack/internal/middleware"
	"snacktrack/internal/repositories"
	"snacktrack/internal/services"
	"snacktrack/pkg/database"
)

const version = "1.0.0"

func main() {
	// Database connection
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}
	pool, err := database.NewPool(databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	// Token verification: JWKS endpoint in production, shared secret for
	// local development.
	var verifier *middleware.TokenVerifier
	if jwksURL := os.Getenv("JWKS_URL"); jwksURL != "" {
		verifier, err = middleware.NewJWKSVerifier(jwksURL)
		if err != nil {
			log.Fatalf("Failed to fetch JWKS from %s: %v", jwksURL, err)
		}
	} else {
		jwtSecret := os.Getenv("JWT_SECRET")
		if jwtSecret == "" {
			log.Fatal("Either JWKS_URL or JWT_SECRET must be set")
		}
		log.Printf("WARNING: Using shared-secret token verification")
		verifier = middleware.NewSecretVerifier(jwtSecret)
	}

	// Redis configuration
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	redisPassword := os.Getenv("REDIS_PASSWORD")
	redisDB := 0
	if redisDBStr := os.Getenv("REDIS_DB"); redisDBStr != "" {
		if db, err := strconv.Atoi(redisDBStr); err == nil {
			redisDB = db
		}
	}

	// MinIO configuration
	minioEndpoint := os.Getenv("MINIO_ENDPOINT")
	if minioEndpoint == "" {
		minioEndpoint = "localhost:9000"
	}
	minioAccessKey := os.Getenv("MINIO_ACCESS_KEY")
	if minioAccessKey == "" {
		minioAccessKey = "minioadmin"
	}
	minioSecretKey := os.Getenv("MINIO_SECRET_KEY")
	if minioSecretKey == "" {
		minioSecretKey = "minioadmin"
	}
	useSSL := os.Getenv("MINIO_USE_SSL") == "true"

	minioSvc, err := services.NewMinioService(minioEndpoint, minioAccessKey, minioSecretKey, useSSL)
	if err != nil {
		log.Fatalf("Failed to initialize MinIO service: %v", err)
	}
	if err := minioSvc.EnsureBucketExists(context.Background(), services.LabelImageBucket); err != nil {
		log.Printf("WARN: could not ensure label image bucket exists: %v", err)
	}

	// Repositories
	inventoryRepo := repositories.NewInventoryRepo(pool)
	locationRepo := repositories.NewLocationRepo(pool)
	categoryRepo := repositories.NewCategoryRepo(pool)
	productRepo := repositories.NewProductRepo(pool)

	// Cache and external lookup
	cacheSvc := caching.NewRedisCacheService(redisAddr, redisPassword, redisDB)
	lookupClient := lookup.NewClient(os.Getenv("FOOD_API_BASE_URL"))

	// Services
	store := services.NewInventoryStore(inventoryRepo, locationRepo, productRepo, cacheSvc)
	locationSvc := services.NewLocationService(locationRepo, inventoryRepo, cacheSvc)
	categorySvc := services.NewCategoryService(categoryRepo)
	productSvc := services.NewProductService(productRepo, cacheSvc, lookupClient, minioSvc)
	statsSvc := analytics.NewStatsService(inventoryRepo, locationRepo, productRepo, cacheSvc)
	alertSvc := jobs.NewExpiryAlertService(inventoryRepo)

	// Background jobs
	scheduler, err := background.NewJobScheduler(statsSvc, alertSvc, inventoryRepo)
	if err != nil {
		log.Fatalf("Failed to create job scheduler: %v", err)
	}
	scheduler.Start()
	defer func() {
		if err := scheduler.Stop(); err != nil {
			log.Printf("Failed to stop job scheduler: %v", err)
		}
	}()

	// Handlers
	inventoryHandlers := handlers.NewInventoryHandlers(store)
	locationHandlers := handlers.NewLocationHandlers(locationSvc)
	categoryHandlers := handlers.NewCategoryHandlers(categorySvc)
	productHandlers := handlers.NewProductHandlers(productSvc)
	statsHandlers := handlers.NewStatsHandlers(statsSvc)
	healthHandlers := handlers.NewHealthHandlers(pool, cacheSvc)

	// Echo instance
	e := echo.New()
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RemoveTrailingSlash())

	// Health endpoints (no auth required)
	e.GET("/health", healthHandlers.HealthCheck)
	e.GET("/health/ready", healthHandlers.ReadinessCheck)
	e.GET("/health/live", healthHandlers.LivenessCheck)

	// Protected API routes
	v1 := e.Group("/v1")
	v1.Use(middleware.JWTMiddleware(verifier))

	v1.GET("/inventory", inventoryHandlers.ListInventory)
	v1.GET("/inventory/search", inventoryHandlers.ListInventory)
	v1.POST("/inventory", inventoryHandlers.CreateInventory)
	v1.POST("/inventory/reload", inventoryHandlers.ReloadInventory)
	v1.PUT("/inventory/:id/quantity", inventoryHandlers.UpdateQuantity)
	v1.DELETE("/inventory/:id", inventoryHandlers.DeleteInventory)

	v1.GET("/locations", locationHandlers.ListLocations)
	v1.POST("/locations", locationHandlers.CreateLocation)
	v1.PUT("/locations/:id", locationHandlers.UpdateLocation)
	v1.DELETE("/locations/:id", locationHandlers.DeleteLocation)

	v1.GET("/categories", categoryHandlers.ListCategories)
	v1.POST("/categories", categoryHandlers.CreateCategory)
	v1.PUT("/categories/:id", categoryHandlers.UpdateCategory)
	v1.DELETE("/categories/:id", categoryHandlers.DeleteCategory)

	v1.GET("/products/:barcode", productHandlers.GetProduct)
	v1.POST("/products/:barcode/image", productHandlers.UploadLabelImage)
	v1.GET("/products/:barcode/image-url", productHandlers.GetLabelImageURL)

	v1.GET("/stats", statsHandlers.GetStats)
	v1.GET("/stats/expiring", statsHandlers.GetExpiringItems)

	// Start server
	portStr := os.Getenv("PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		log.Fatalf("Invalid port %s: %v", portStr, err)
	}

	log.Printf("SnackTrack server v%s starting on port %d", version, port)
	e.Logger.Fatal(e.Start(fmt.Sprintf(":%d", port)))
}
