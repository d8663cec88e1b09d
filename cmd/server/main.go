package main

import (
	"log"
	"net/http"
	"os"

	_ "imagify/docs" // swagger docs

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"imagify/internal/auth"
	"imagify/internal/cache"
	"imagify/internal/config"
	"imagify/internal/db"
	"imagify/internal/gateway"
	"imagify/internal/handler"
	"imagify/internal/imagegen"
	"imagify/internal/model"
	"imagify/internal/repository"
	"imagify/internal/router"
	"imagify/internal/service"
)

// @title Imagify API
// @version 1.0
// @description Image generation SaaS backend with credit purchases and JWT authentication.
// @host localhost:5000
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()

	e := echo.New()
	e.Use(middleware.RequestID())

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	// Drop tables if RESET_DB environment variable is set
	if os.Getenv("RESET_DB") == "true" {
		log.Println("RESET_DB=true detected, dropping all tables...")
		tables := []interface{}{
			&model.SettlementLog{},
			&model.Transaction{},
			&model.User{},
		}
		for _, table := range tables {
			if err := gormDB.Migrator().DropTable(table); err != nil {
				log.Printf("Warning: Failed to drop table (may not exist): %v", err)
			}
		}
		log.Println("Tables dropped")
	}

	// Run migrations for all models
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Transaction{},
		&model.SettlementLog{},
	); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	txnRepo := repository.NewTransactionRepository(gormDB)
	logRepo := repository.NewSettlementLogRepository(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	tokenStore := auth.NewTokenStore(cacheClient)

	// External collaborators
	gatewayClient := gateway.NewRazorpay(cfg.RazorpayKeyID, cfg.RazorpayKeySecret)
	imageClient := imagegen.New(cfg.ImageAPIURL, cfg.ImageAPIKey)

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtService, tokenStore, cfg.SignupCredits)
	userService := service.NewUserService(userRepo, cacheClient)
	billingService := service.NewBillingService(userRepo, txnRepo, logRepo, gatewayClient, cacheClient, cfg.Currency)
	imageService := service.NewImageService(userRepo, imageClient, cacheClient)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	billingHandler := handler.NewBillingHandler(billingService)
	imageHandler := handler.NewImageHandler(imageService)

	// Register routes
	router.Register(
		e,
		cfg,
		authHandler,
		userHandler,
		billingHandler,
		imageHandler,
	)

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}
