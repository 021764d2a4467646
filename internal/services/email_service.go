package services

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"

	"github.com/resend/resend-go/v2"
	"github.com/sjperalta/condominio-api/internal/config"
	"github.com/sjperalta/condominio-api/internal/models"
	"github.com/sjperalta/condominio-api/pkg/logger"
)

//go:embed templates/email/*.html
var emailTemplates embed.FS

type EmailService struct {
	config       *config.Config
	resendClient *resend.Client
}

func NewEmailService(cfg *config.Config) *EmailService {
	client := resend.NewClient(cfg.ResendAPIKey)
	return &EmailService{
		config:       cfg,
		resendClient: client,
	}
}

func (s *EmailService) SendAccountCreated(ctx context.Context, user *models.User) error {
	data := struct {
		Name   string
		AppURL string
	}{
		Name:   user.FullName,
		AppURL: s.config.AppURL,
	}

	body, err := s.renderTemplate("account_created.html", data)
	if err != nil {
		return err
	}

	params := &resend.SendEmailRequest{
		From:    s.config.FromEmail,
		To:      []string{user.Email},
		Subject: "Bienvenido al portal del condominio",
		Html:    body,
	}
	_, err = s.resendClient.Emails.Send(params)
	if err != nil {
		logger.Error(fmt.Sprintf("Failed to send email to %s: %v", user.Email, err))
		return err
	}

	logger.Info(fmt.Sprintf("📧 [Email Sent] To: %s | Subject: Bienvenido al portal del condominio", user.Email))
	return nil
}

// DuesSummaryRow is one floor's outstanding dues line in the daily summary
type DuesSummaryRow struct {
	FloorName string
	Remaining string
}

// SendDuesSummary emails an admin the floors with incomplete dues for a month
func (s *EmailService) SendDuesSummary(ctx context.Context, admin *models.User, month string, rows []DuesSummaryRow) error {
	data := struct {
		Name   string
		Month  string
		Rows   []DuesSummaryRow
		AppURL string
	}{
		Name:   admin.FullName,
		Month:  month,
		Rows:   rows,
		AppURL: s.config.AppURL,
	}

	body, err := s.renderTemplate("dues_summary.html", data)
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("Cuotas pendientes de %s (%d pisos)", month, len(rows))
	params := &resend.SendEmailRequest{
		From:    s.config.FromEmail,
		To:      []string{admin.Email},
		Subject: subject,
		Html:    body,
	}
	_, err = s.resendClient.Emails.Send(params)
	if err != nil {
		logger.Error(fmt.Sprintf("Failed to send email to %s: %v", admin.Email, err))
		return err
	}

	logger.Info(fmt.Sprintf("📧 [Email Sent] To: %s | Subject: %s", admin.Email, subject))
	return nil
}

// SendLowBalanceAlert emails an admin when the fund balance falls under the threshold
func (s *EmailService) SendLowBalanceAlert(ctx context.Context, admin *models.User, balance float64) error {
	data := struct {
		Name    string
		Balance string
		AppURL  string
	}{
		Name:    admin.FullName,
		Balance: fmt.Sprintf("L%.2f", balance),
		AppURL:  s.config.AppURL,
	}

	body, err := s.renderTemplate("low_balance.html", data)
	if err != nil {
		return err
	}

	params := &resend.SendEmailRequest{
		From:    s.config.FromEmail,
		To:      []string{admin.Email},
		Subject: "Alerta: balance bajo del fondo",
		Html:    body,
	}
	_, err = s.resendClient.Emails.Send(params)
	if err != nil {
		logger.Error(fmt.Sprintf("Failed to send email to %s: %v", admin.Email, err))
		return err
	}

	logger.Info(fmt.Sprintf("📧 [Email Sent] To: %s | Subject: Alerta: balance bajo del fondo", admin.Email))
	return nil
}

func (s *EmailService) renderTemplate(name string, data interface{}) (string, error) {
	tmpl, err := template.ParseFS(emailTemplates, "templates/email/"+name)
	if err != nil {
		return "", fmt.Errorf("failed to parse template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}

	return buf.String(), nil
}
