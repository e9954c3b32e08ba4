package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mailgun/mailgun-go/v4"

	"github.com/username/plusvalia/src/config"
	"github.com/username/plusvalia/src/logger"
)

func NewEmailService() EmailService {
	if config.Cfg == nil {
		logger.L.Error("Configuration (config.Cfg) is nil. Email service will default to mock.")
		return &MockEmailService{}
	}

	provider := strings.ToLower(config.Cfg.EmailServiceProvider)
	logger.L.Info("Initializing email service", "provider", provider)

	switch provider {
	case "mailgun":
		if config.Cfg.MailgunDomain == "" || config.Cfg.MailgunPrivateAPIKey == "" || config.Cfg.RecipientEmail == "" {
			logger.L.Warn("Mailgun configuration incomplete (Domain, API Key, or RecipientEmail missing). Falling back to MockEmailService.")
			return &MockEmailService{}
		}
		mg := mailgun.NewMailgun(config.Cfg.MailgunDomain, config.Cfg.MailgunPrivateAPIKey)
		logger.L.Info("Mailgun client initialized", "domain", config.Cfg.MailgunDomain)
		return &MailgunEmailService{
			mg:             mg,
			senderEmail:    config.Cfg.SenderEmail,
			recipientEmail: config.Cfg.RecipientEmail,
		}
	default:
		logger.L.Info("Defaulting to MockEmailService.")
		return &MockEmailService{}
	}
}

type MailgunEmailService struct {
	mg             *mailgun.MailgunImpl
	senderEmail    string
	recipientEmail string
}

func (s *MailgunEmailService) SendUploadSummary(summary *UploadSummary) error {
	subject := "Plusvalia: statement processed"
	body := fmt.Sprintf(
		"Statement upload %s processed.\n\nEntries parsed: %d\nOperations stored: %d\nDuplicates skipped: %d\nInstruments: %d\n",
		summary.UploadID, summary.EntriesParsed, summary.OperationsStored,
		summary.OperationsSkipped, summary.Instruments)

	message := s.mg.NewMessage(s.senderEmail, subject, body, s.recipientEmail)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	resp, id, err := s.mg.Send(ctx, message)
	if err != nil {
		return fmt.Errorf("mailgun send failed: %w", err)
	}
	logger.L.Info("Upload summary email sent", "id", id, "response", resp)
	return nil
}

// MockEmailService logs instead of sending. Used when no provider is
// configured.
type MockEmailService struct{}

func (s *MockEmailService) SendUploadSummary(summary *UploadSummary) error {
	logger.L.Info("MockEmailService: skipping upload summary email",
		"uploadID", summary.UploadID, "stored", summary.OperationsStored)
	return nil
}
