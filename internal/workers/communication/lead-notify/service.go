package leadnotify

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"harvin-platform/internal/common/errors"
	"harvin-platform/internal/common/logger"
	"harvin-platform/internal/common/metrics"
	"harvin-platform/internal/common/observability"
	"harvin-platform/internal/leads"
	"harvin-platform/internal/mail"
	"harvin-platform/internal/models"
)

// ServiceInterface is what the HTTP API and the Zeebe handler depend on.
type ServiceInterface interface {
	Execute(ctx context.Context, input *Input) (*Output, error)
}

// Service sends the admin notification and the submitter acknowledgment for a lead request.
type Service struct {
	config    *Config
	transport mail.Transport
	recorder  leads.Recorder
	obs       *observability.Observability
	logger    logger.Logger
	now       func() time.Time
}

func NewService(deps ServiceDependencies, config *Config, obs *observability.Observability) *Service {
	recorder := deps.Recorder
	if recorder == nil {
		recorder = leads.NoopRecorder{}
	}
	return &Service{
		config:    config,
		transport: deps.Transport,
		recorder:  recorder,
		obs:       obs,
		logger:    deps.Logger,
		now:       time.Now,
	}
}

// Execute validates input and sends both emails concurrently. It returns Skipped when no
// transport is configured. Either send failing fails the whole call; nothing is retried.
func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	ctx, span := otel.Tracer("lead-notify").Start(ctx, "leadnotify.Execute", trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()

	start := s.now()
	req := normalize(*input)
	span.SetAttributes(attribute.String("lead.type", string(req.Type)))

	out, outcome, err := s.execute(ctx, req)

	metrics.NotificationsTotal.WithLabelValues(string(req.Type), outcome).Inc()
	s.obs.RecordDispatch(ctx, s.now().Sub(start), string(req.Type), outcome)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
	}
	return out, err
}

func (s *Service) execute(ctx context.Context, req models.LeadRequest) (*Output, string, error) {
	if missing := missingFields(req); len(missing) > 0 {
		return nil, "invalid", errors.NewValidationError("Missing required fields", strings.Join(missing, ", "))
	}

	if s.transport == nil {
		s.logger.Warn("Mail transport not configured, skipping email send", map[string]interface{}{
			"type": string(req.Type),
		})
		return &Output{OK: true, Skipped: true}, "skipped", nil
	}

	if err := s.transport.Verify(ctx); err != nil {
		s.logger.Error("Mail transport verification failed", map[string]interface{}{
			"transport": s.transport.Name(),
			"error":     err.Error(),
		})
		return nil, "unavailable", errors.NewTransportUnavailableError(s.transport.Name(), err)
	}

	admin, user, err := s.compose(req)
	if err != nil {
		return nil, "failed", errors.NewInternalError(err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.transport.Send(gctx, admin) })
	g.Go(func() error { return s.transport.Send(gctx, user) })
	if err := g.Wait(); err != nil {
		s.logger.Error("Lead notification send failed", map[string]interface{}{
			"transport": s.transport.Name(),
			"type":      string(req.Type),
			"error":     err.Error(),
		})
		return nil, "failed", errors.NewNotificationSendFailedError(string(req.Type), err)
	}

	sentAt := s.now().UTC()
	out := &Output{OK: true, SentAt: sentAt.Format(time.RFC3339)}

	rec, err := s.recorder.Record(ctx, req)
	if err != nil {
		recErr := errors.NewLeadRecordFailedError(err)
		metrics.LeadRecordFailures.Inc()
		s.logger.Warn("Lead delivered but audit record failed", map[string]interface{}{
			"type":      string(req.Type),
			"errorCode": string(recErr.Code),
			"error":     recErr.Details,
		})
	} else {
		out.LeadID = rec.ID
	}

	s.logger.Info("Lead notification sent", map[string]interface{}{
		"transport": s.transport.Name(),
		"type":      string(req.Type),
		"leadId":    out.LeadID,
	})
	return out, "sent", nil
}

func (s *Service) compose(req models.LeadRequest) (admin, user mail.Message, err error) {
	now := s.now().In(s.config.Location)

	adminHTML, err := renderAdmin(req, now)
	if err != nil {
		return admin, user, err
	}
	userHTML, err := renderUser(req, now)
	if err != nil {
		return admin, user, err
	}

	admin = mail.Message{From: s.config.From, To: s.config.AdminEmail, Subject: adminSubject(req), HTML: adminHTML}
	user = mail.Message{From: s.config.From, To: req.Email, Subject: userSubject(req), HTML: userHTML}
	return admin, user, nil
}

func normalize(in models.LeadRequest) models.LeadRequest {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Company = strings.TrimSpace(in.Company)
	in.Role = strings.TrimSpace(in.Role)
	in.Message = strings.TrimSpace(in.Message)
	if in.Type != models.NotificationTalkToSales {
		in.Type = models.NotificationEarlyAccess
	}
	return in
}

func missingFields(req models.LeadRequest) []string {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"name", req.Name},
		{"email", req.Email},
		{"company", req.Company},
		{"role", req.Role},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}
