package main

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"imagify/internal/config"
	"imagify/internal/db"
	"imagify/internal/model"
	"imagify/internal/repository"
)

// seedUser is a demo user fixture for local development.
type seedUser struct {
	Name     string
	Email    string
	Password string
	Credits  int64
}

var seedUsers = []seedUser{
	{Name: "Demo User", Email: "demo@imagify.local", Password: "demo-password", Credits: 5},
	{Name: "Power User", Email: "power@imagify.local", Password: "power-password", Credits: 500},
	{Name: "Broke User", Email: "broke@imagify.local", Password: "broke-password", Credits: 0},
}

func main() {
	log.Println("Starting seed script...")

	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	// Run migrations to ensure schema is up to date
	if err := gormDB.AutoMigrate(&model.User{}, &model.Transaction{}, &model.SettlementLog{}); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	userRepo := repository.NewUserRepository(gormDB)
	ctx := context.Background()

	log.Println("Seeding demo users...")
	created, skipped, err := seedDemoUsers(ctx, userRepo)
	if err != nil {
		log.Fatalf("Failed to seed users: %v", err)
	}

	log.Printf("Seed completed successfully!")
	log.Printf("  - New users created: %d", created)
	log.Printf("  - Existing users skipped: %d", skipped)
}

// seedDemoUsers creates the demo users, skipping any email already registered.
func seedDemoUsers(ctx context.Context, repo repository.UserRepository) (created int, skipped int, err error) {
	for _, fixture := range seedUsers {
		existing, err := repo.FindByEmail(ctx, fixture.Email)
		if err != nil && err != gorm.ErrRecordNotFound {
			return created, skipped, fmt.Errorf("error checking user %s: %w", fixture.Email, err)
		}
		if existing != nil {
			skipped++
			continue
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(fixture.Password), bcrypt.DefaultCost)
		if err != nil {
			return created, skipped, fmt.Errorf("error hashing password for %s: %w", fixture.Email, err)
		}

		user := &model.User{
			Name:          fixture.Name,
			Email:         fixture.Email,
			PasswordHash:  string(hashed),
			CreditBalance: fixture.Credits,
		}
		if err := repo.Create(ctx, user); err != nil {
			return created, skipped, fmt.Errorf("error creating user %s: %w", fixture.Email, err)
		}
		created++
	}

	return created, skipped, nil
}
