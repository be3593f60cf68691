package mail

import (
	"context"
	"fmt"
	netmail "net/mail"

	"harvin-platform/internal/common/aws"
	"harvin-platform/internal/common/config"
)

const (
	ProviderSMTP = "smtp"
	ProviderSES  = "ses"
)

// NewTransport builds the transport selected by cfg.Mail.Provider. It returns nil, nil when
// that provider is not configured; callers treat this as "sending disabled".
func NewTransport(ctx context.Context, cfg *config.Config) (Transport, error) {
	switch cfg.Mail.Provider {
	case ProviderSES:
		if !cfg.Mail.SES.Configured() {
			return nil, nil
		}
		client, err := aws.NewSESClient(ctx, cfg.Mail.SES.Region)
		if err != nil {
			return nil, fmt.Errorf("create ses client: %w", err)
		}
		return NewSESTransport(client), nil
	case ProviderSMTP, "":
		if !cfg.SMTP.Configured() {
			return nil, nil
		}
		return NewSMTPTransport(cfg.SMTP), nil
	default:
		return nil, fmt.Errorf("unknown mail provider %q", cfg.Mail.Provider)
	}
}

// Sender is the From address for the configured provider.
func Sender(cfg *config.Config) netmail.Address {
	addr := cfg.SMTP.User
	if cfg.Mail.Provider == ProviderSES {
		addr = cfg.Mail.SES.FromEmail
	}
	return netmail.Address{Name: cfg.Mail.FromName, Address: addr}
}
