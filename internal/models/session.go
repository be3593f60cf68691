package models

import "strings"

// SessionIdentity is the signed-in user stored under "session-identity".
type SessionIdentity struct {
	Type  string `json:"type"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// FirstName returns the first word of Name, or "there" when Name is blank.
func (s SessionIdentity) FirstName() string {
	if fields := strings.Fields(s.Name); len(fields) > 0 {
		return fields[0]
	}
	return "there"
}
