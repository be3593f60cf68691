package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"time"

	"harvin-platform/internal/common/config"
)

const implicitTLSPort = 465

// SMTPTransport speaks SMTP with implicit TLS on port 465 and mandatory STARTTLS otherwise.
// Certificates are always verified.
type SMTPTransport struct {
	host     string
	port     int
	username string
	password string
	timeout  time.Duration
	now      func() time.Time
}

func NewSMTPTransport(cfg config.SMTPConfig) *SMTPTransport {
	return &SMTPTransport{
		host:     cfg.Host,
		port:     cfg.Port,
		username: cfg.User,
		password: cfg.Pass,
		timeout:  30 * time.Second,
		now:      time.Now,
	}
}

func (t *SMTPTransport) Name() string {
	return "smtp"
}

// Verify connects, negotiates TLS and authenticates, then quits.
func (t *SMTPTransport) Verify(ctx context.Context) error {
	client, err := t.connect(ctx)
	if err != nil {
		return err
	}
	defer client.Close()
	return client.Quit()
}

func (t *SMTPTransport) Send(ctx context.Context, msg Message) error {
	body, err := BuildMIME(msg, t.now())
	if err != nil {
		return err
	}

	client, err := t.connect(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.Mail(msg.From.Address); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err := client.Rcpt(msg.To); err != nil {
		return fmt.Errorf("failed to set recipient %s: %w", msg.To, err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to open data writer: %w", err)
	}
	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	return client.Quit()
}

func (t *SMTPTransport) connect(ctx context.Context) (*smtp.Client, error) {
	addr := net.JoinHostPort(t.host, strconv.Itoa(t.port))
	tlsConfig := &tls.Config{ServerName: t.host, MinVersion: tls.VersionTLS12}

	if deadline, ok := ctx.Deadline(); !ok || time.Until(deadline) > t.timeout {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	var (
		conn net.Conn
		err  error
	)
	if t.port == implicitTLSPort {
		dialer := &tls.Dialer{Config: tlsConfig}
		conn, err = dialer.DialContext(ctx, "tcp", addr)
	} else {
		var dialer net.Dialer
		conn, err = dialer.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, t.host)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to start SMTP session: %w", err)
	}

	if t.port != implicitTLSPort {
		if ok, _ := client.Extension("STARTTLS"); !ok {
			client.Close()
			return nil, fmt.Errorf("SMTP server %s does not support STARTTLS", addr)
		}
		if err := client.StartTLS(tlsConfig); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to start TLS: %w", err)
		}
	}

	if t.username != "" && t.password != "" {
		if err := client.Auth(smtp.PlainAuth("", t.username, t.password, t.host)); err != nil {
			client.Close()
			return nil, fmt.Errorf("SMTP authentication failed: %w", err)
		}
	}

	return client, nil
}
