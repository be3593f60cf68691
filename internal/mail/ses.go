package mail

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// SESAPI is the part of the SES client the transport uses.
type SESAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
	GetSendQuota(ctx context.Context, params *ses.GetSendQuotaInput, optFns ...func(*ses.Options)) (*ses.GetSendQuotaOutput, error)
}

// SESTransport sends through the SES SendEmail API.
type SESTransport struct {
	client SESAPI
}

func NewSESTransport(client SESAPI) *SESTransport {
	return &SESTransport{client: client}
}

func (t *SESTransport) Name() string {
	return "ses"
}

// Verify reads the account send quota, which fails on bad credentials or region.
func (t *SESTransport) Verify(ctx context.Context) error {
	if _, err := t.client.GetSendQuota(ctx, &ses.GetSendQuotaInput{}); err != nil {
		return fmt.Errorf("ses quota check failed: %w", err)
	}
	return nil
}

func (t *SESTransport) Send(ctx context.Context, msg Message) error {
	_, err := t.client.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{msg.To},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(msg.Subject), Charset: aws.String("UTF-8")},
			Body: &types.Body{
				Html: &types.Content{Data: aws.String(msg.HTML), Charset: aws.String("UTF-8")},
			},
		},
		Source: aws.String(msg.From.String()),
	})
	if err != nil {
		return fmt.Errorf("ses send to %s failed: %w", msg.To, err)
	}
	return nil
}
