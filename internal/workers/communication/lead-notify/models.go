package leadnotify

import (
	"harvin-platform/internal/common/logger"
	"harvin-platform/internal/leads"
	"harvin-platform/internal/mail"
	"harvin-platform/internal/models"
)

// Input is the lead form submission. It is also the shape of the Zeebe job variables.
type Input = models.LeadRequest

type Output struct {
	OK      bool   `json:"ok"`
	Skipped bool   `json:"skipped,omitempty"`
	LeadID  string `json:"leadId,omitempty"`
	SentAt  string `json:"sentAt,omitempty"`
}

// ServiceDependencies groups collaborators. A nil Transport means mail is not configured.
// A nil Recorder disables auditing.
type ServiceDependencies struct {
	Transport mail.Transport
	Recorder  leads.Recorder
	Logger    logger.Logger
}
