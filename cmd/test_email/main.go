package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/sjperalta/condominio-api/internal/config"
	"github.com/sjperalta/condominio-api/internal/models"
	"github.com/sjperalta/condominio-api/internal/services"
	"github.com/sjperalta/condominio-api/pkg/logger"
)

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger.Setup("development")

	if cfg.ResendAPIKey == "" {
		log.Fatal("RESEND_API_KEY is not set")
	}

	// Initialize email service
	emailService := services.NewEmailService(cfg)

	toEmail := os.Getenv("TEST_EMAIL_TO")
	if toEmail == "" {
		toEmail = "test@example.com"
		log.Println("TEST_EMAIL_TO not set, using test@example.com. Emails might mock or fail if domain not verified.")
	}

	user := &models.User{
		FullName: "Usuario de Prueba",
		Email:    toEmail,
	}

	// Send Account Created email
	log.Printf("Sending Account Created email to %s...", toEmail)
	if err := emailService.SendAccountCreated(context.Background(), user); err != nil {
		log.Fatalf("Failed to send Account Created email: %v", err)
	}
	log.Println("Account Created email sent successfully!")

	// Send Dues Summary email
	log.Printf("Sending Dues Summary email to %s...", toEmail)
	rows := []services.DuesSummaryRow{
		{FloorName: "Planta Baja", Remaining: "L 200.00"},
		{FloorName: "Piso 1", Remaining: "L 150.00"},
	}
	if err := emailService.SendDuesSummary(context.Background(), user, "2026-08", rows); err != nil {
		log.Fatalf("Failed to send Dues Summary email: %v", err)
	}
	log.Println("Dues Summary email sent successfully!")

	// Send Low Balance alert
	log.Printf("Sending Low Balance alert to %s...", toEmail)
	if err := emailService.SendLowBalanceAlert(context.Background(), user, 120.50); err != nil {
		log.Fatalf("Failed to send Low Balance alert: %v", err)
	}
	log.Println("Low Balance alert sent successfully!")
}
