package mail

import (
	"bufio"
	"context"
	"errors"
	"io"
	"mime"
	"mime/quotedprintable"
	"net"
	netmail "net/mail"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"harvin-platform/internal/common/config"
)

func sampleMessage() Message {
	return Message{
		From:    netmail.Address{Name: "HarvinAI", Address: "hello@harvinai.com"},
		To:      "asha@acme.io",
		Subject: "🚀 New early access request — Asha from Acme",
		HTML:    "<p>Hi Asha, thanks — we’ll be in touch.</p>",
	}
}

// ==========================
// MIME
// ==========================

func TestBuildMIME(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	raw, err := BuildMIME(sampleMessage(), now)
	require.NoError(t, err)

	parsed, err := netmail.ReadMessage(strings.NewReader(string(raw)))
	require.NoError(t, err)

	assert.Equal(t, `"HarvinAI" <hello@harvinai.com>`, parsed.Header.Get("From"))
	assert.Equal(t, "asha@acme.io", parsed.Header.Get("To"))
	assert.Equal(t, "text/html; charset=UTF-8", parsed.Header.Get("Content-Type"))
	assert.Contains(t, parsed.Header.Get("Message-ID"), "@harvinai.com>")

	date, err := parsed.Header.Date()
	require.NoError(t, err)
	assert.True(t, now.Equal(date))

	subject, err := new(mime.WordDecoder).DecodeHeader(parsed.Header.Get("Subject"))
	require.NoError(t, err)
	assert.Equal(t, sampleMessage().Subject, subject)

	body, err := io.ReadAll(quotedPrintableReader(parsed.Body))
	require.NoError(t, err)
	assert.Equal(t, sampleMessage().HTML, string(body))
}

// ==========================
// SES
// ==========================

type MockSES struct {
	mock.Mock
}

func (m *MockSES) SendEmail(ctx context.Context, params *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*ses.SendEmailOutput)
	return out, args.Error(1)
}

func (m *MockSES) GetSendQuota(ctx context.Context, params *ses.GetSendQuotaInput, _ ...func(*ses.Options)) (*ses.GetSendQuotaOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*ses.GetSendQuotaOutput)
	return out, args.Error(1)
}

func TestSESTransport_Send(t *testing.T) {
	ctx := context.Background()
	client := new(MockSES)
	client.On("SendEmail", ctx, mock.MatchedBy(func(in *ses.SendEmailInput) bool {
		return *in.Source == `"HarvinAI" <hello@harvinai.com>` &&
			in.Destination.ToAddresses[0] == "asha@acme.io" &&
			*in.Message.Subject.Data == sampleMessage().Subject &&
			*in.Message.Body.Html.Data == sampleMessage().HTML
	})).Return(&ses.SendEmailOutput{}, nil)

	transport := NewSESTransport(client)
	assert.Equal(t, "ses", transport.Name())
	require.NoError(t, transport.Send(ctx, sampleMessage()))
	client.AssertExpectations(t)
}

func TestSESTransport_Errors(t *testing.T) {
	ctx := context.Background()
	denied := errors.New("AccessDenied")

	client := new(MockSES)
	client.On("GetSendQuota", ctx, mock.Anything).Return(nil, denied)
	client.On("SendEmail", ctx, mock.Anything).Return(nil, denied)

	transport := NewSESTransport(client)
	assert.ErrorIs(t, transport.Verify(ctx), denied)
	assert.ErrorIs(t, transport.Send(ctx, sampleMessage()), denied)
}

// ==========================
// SMTP
// ==========================

// fakeSMTPServer answers EHLO without advertising STARTTLS, then hangs up.
func fakeSMTPServer(t *testing.T) (host string, port int) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func(c net.Conn) {
				defer c.Close()
				r := bufio.NewReader(c)
				io.WriteString(c, "220 fake ESMTP\r\n")
				for {
					line, err := r.ReadString('\n')
					if err != nil {
						return
					}
					switch {
					case strings.HasPrefix(line, "EHLO"):
						io.WriteString(c, "250-fake\r\n250 AUTH PLAIN\r\n")
					case strings.HasPrefix(line, "QUIT"):
						io.WriteString(c, "221 bye\r\n")
						return
					default:
						io.WriteString(c, "250 ok\r\n")
					}
				}
			}(conn)
		}
	}()

	h, p, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	port, err = strconv.Atoi(p)
	require.NoError(t, err)
	return h, port
}

func TestSMTPTransport_RequiresSTARTTLS(t *testing.T) {
	host, port := fakeSMTPServer(t)
	transport := NewSMTPTransport(config.SMTPConfig{Host: host, Port: port, User: "u", Pass: "p"})

	err := transport.Verify(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STARTTLS")

	err = transport.Send(context.Background(), sampleMessage())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STARTTLS")
}

func TestSMTPTransport_Unreachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().(*net.TCPAddr)
	ln.Close()

	transport := NewSMTPTransport(config.SMTPConfig{Host: "127.0.0.1", Port: addr.Port, User: "u"})
	err = transport.Verify(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect")
}

// ==========================
// Factory
// ==========================

func TestNewTransport(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		cfg      config.Config
		wantName string
		wantErr  bool
	}{
		{
			name: "smtp unconfigured",
			cfg:  config.Config{Mail: config.MailConfig{Provider: "smtp"}, SMTP: config.SMTPConfig{Host: "smtp.x.com"}},
		},
		{
			name:     "smtp configured",
			cfg:      config.Config{Mail: config.MailConfig{Provider: "smtp"}, SMTP: config.SMTPConfig{Host: "smtp.x.com", User: "u", Port: 587}},
			wantName: "smtp",
		},
		{
			name: "ses unconfigured",
			cfg:  config.Config{Mail: config.MailConfig{Provider: "ses", SES: config.SESConfig{Region: "ap-south-1"}}},
		},
		{
			name:    "unknown provider",
			cfg:     config.Config{Mail: config.MailConfig{Provider: "pigeon"}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport, err := NewTransport(ctx, &tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.wantName == "" {
				assert.Nil(t, transport)
				return
			}
			require.NotNil(t, transport)
			assert.Equal(t, tt.wantName, transport.Name())
		})
	}
}

func TestSender(t *testing.T) {
	cfg := &config.Config{
		SMTP: config.SMTPConfig{User: "smtp@harvinai.com"},
		Mail: config.MailConfig{FromName: "HarvinAI", SES: config.SESConfig{FromEmail: "ses@harvinai.com"}},
	}
	assert.Equal(t, "smtp@harvinai.com", Sender(cfg).Address)

	cfg.Mail.Provider = ProviderSES
	assert.Equal(t, "ses@harvinai.com", Sender(cfg).Address)
	assert.Equal(t, "HarvinAI", Sender(cfg).Name)
}

func quotedPrintableReader(r io.Reader) io.Reader {
	return quotedprintable.NewReader(r)
}
