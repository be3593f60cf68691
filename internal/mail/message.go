// Package mail sends HTML email through SMTP or Amazon SES.
package mail

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"mime/quotedprintable"
	netmail "net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Message is a single HTML email with one recipient.
type Message struct {
	From    netmail.Address
	To      string
	Subject string
	HTML    string
}

// Transport delivers messages. Verify checks reachability and credentials without sending.
type Transport interface {
	Name() string
	Verify(ctx context.Context) error
	Send(ctx context.Context, msg Message) error
}

// BuildMIME renders msg as an RFC 5322 message with a quoted-printable HTML body.
func BuildMIME(msg Message, now time.Time) ([]byte, error) {
	var buf bytes.Buffer

	header := func(key, value string) {
		buf.WriteString(key)
		buf.WriteString(": ")
		buf.WriteString(value)
		buf.WriteString("\r\n")
	}

	header("From", msg.From.String())
	header("To", msg.To)
	header("Subject", mime.QEncoding.Encode("utf-8", msg.Subject))
	header("Date", now.Format(time.RFC1123Z))
	header("Message-ID", messageID(msg.From.Address))
	header("MIME-Version", "1.0")
	header("Content-Type", "text/html; charset=UTF-8")
	header("Content-Transfer-Encoding", "quoted-printable")
	buf.WriteString("\r\n")

	qp := quotedprintable.NewWriter(&buf)
	if _, err := qp.Write([]byte(msg.HTML)); err != nil {
		return nil, fmt.Errorf("encode body: %w", err)
	}
	if err := qp.Close(); err != nil {
		return nil, fmt.Errorf("encode body: %w", err)
	}

	return buf.Bytes(), nil
}

func messageID(from string) string {
	domain := "localhost"
	if at := strings.LastIndex(from, "@"); at >= 0 && at < len(from)-1 {
		domain = from[at+1:]
	}
	return fmt.Sprintf("<%s@%s>", uuid.NewString(), domain)
}
