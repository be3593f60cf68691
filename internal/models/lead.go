package models

import "time"

// NotificationType selects the email copy for a lead request.
type NotificationType string

const (
	NotificationEarlyAccess NotificationType = "early-access"
	NotificationTalkToSales NotificationType = "talk-to-sales"
)

// LeadRequest is the marketing form submission handed to the dispatcher.
type LeadRequest struct {
	Name    string           `json:"name"`
	Email   string           `json:"email"`
	Company string           `json:"company"`
	Role    string           `json:"role"`
	Message string           `json:"message,omitempty"`
	Type    NotificationType `json:"type"`
}

// IsSales reports whether the request came from the sales form. Any other type is early access.
func (r LeadRequest) IsSales() bool {
	return r.Type == NotificationTalkToSales
}

// LeadRecord is one audited submission.
type LeadRecord struct {
	ID        string
	Request   LeadRequest
	CreatedAt time.Time
}
