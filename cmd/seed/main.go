package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	_ "github.com/joho/godotenv/autoload"
	"gorm.io/gorm"

	"github.com/sjperalta/condominio-api/internal/config"
	"github.com/sjperalta/condominio-api/internal/database"
	"github.com/sjperalta/condominio-api/internal/models"
	"github.com/sjperalta/condominio-api/internal/repository"
	"github.com/sjperalta/condominio-api/internal/services"
)

// Seeds the reference data the API needs to operate: the building floors,
// the singleton balance and due-config rows, and an initial admin account.
// Safe to run multiple times.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	ctx := context.Background()
	repos := repository.NewRepositories(db)

	// Floors 0..N-1 (0 = ground floor)
	created := 0
	for n := 0; n < cfg.SeedFloorCount; n++ {
		_, err := repos.Floor.FindByNumber(ctx, n)
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Fatalf("Failed to look up floor %d: %v", n, err)
		}
		floor := &models.Floor{FloorNumber: n}
		if err := repos.Floor.Create(ctx, floor); err != nil {
			log.Fatalf("Failed to create floor %d: %v", n, err)
		}
		created++
	}
	fmt.Printf("Floors: %d created, %d total\n", created, cfg.SeedFloorCount)

	// Singleton rows (FirstOrCreate inside the repository)
	balance, err := repos.System.GetBalance(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize system balance: %v", err)
	}
	fmt.Printf("System balance: L %.2f\n", balance.TotalBalance)

	dueConfig, err := repos.System.GetMonthlyDueConfig(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize monthly due config: %v", err)
	}
	fmt.Printf("Monthly due: L %.2f\n", dueConfig.Required)

	// Initial admin account
	if cfg.SeedAdminPassword == "" {
		fmt.Println("SEED_ADMIN_PASSWORD not set, skipping admin user")
		return
	}

	if _, err := repos.User.FindByEmail(ctx, cfg.SeedAdminEmail); err == nil {
		fmt.Printf("Admin user already exists: %s\n", cfg.SeedAdminEmail)
		return
	}

	hashed, err := services.HashPassword(cfg.SeedAdminPassword)
	if err != nil {
		log.Fatalf("Failed to hash admin password: %v", err)
	}

	admin := &models.User{
		Email:             cfg.SeedAdminEmail,
		EncryptedPassword: hashed,
		FullName:          "Administrador",
		Role:              models.RoleAdmin,
		Status:            models.StatusActive,
	}
	if err := repos.User.Create(ctx, admin); err != nil {
		log.Fatalf("Failed to create admin user: %v", err)
	}
	fmt.Printf("Admin user created: %s\n", cfg.SeedAdminEmail)
}
