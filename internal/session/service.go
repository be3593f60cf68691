// Package session manages the signed-in identity of a client and the dashboard view built from it.
package session

import (
	"context"
	"encoding/json"
	"strings"

	"harvin-platform/internal/clientstate"
	apperrors "harvin-platform/internal/common/errors"
	"harvin-platform/internal/common/logger"
	"harvin-platform/internal/models"
	"harvin-platform/internal/onboarding"
)

const defaultIdentityType = "oauth"

// DemoIdentity is written by the "try the demo" sign-in.
var DemoIdentity = models.SessionIdentity{
	Type:  "demo",
	Name:  "Demo User",
	Email: "demo@harvinai.com",
}

// Dashboard is what the dashboard page renders for a signed-in client.
type Dashboard struct {
	Intent    onboarding.Intent        `json:"-"`
	FirstName string                   `json:"firstName"`
	Identity  models.SessionIdentity   `json:"user"`
	Answers   models.OnboardingAnswers `json:"answers"`
	GoalLabel string                   `json:"goalLabel,omitempty"`
	Completed bool                     `json:"onboardingCompleted"`
}

type Service struct {
	store  clientstate.Store
	logger logger.Logger
}

func NewService(store clientstate.Store, log logger.Logger) *Service {
	return &Service{store: store, logger: log}
}

// SignIn stores identity for the client. Type defaults to "oauth".
func (s *Service) SignIn(ctx context.Context, clientID string, identity models.SessionIdentity) (models.SessionIdentity, error) {
	identity.Name = strings.TrimSpace(identity.Name)
	identity.Email = strings.TrimSpace(identity.Email)
	identity.Type = strings.TrimSpace(identity.Type)

	if identity.Name == "" || identity.Email == "" {
		return models.SessionIdentity{}, apperrors.NewValidationError("Name and email are required", "")
	}
	if identity.Type == "" {
		identity.Type = defaultIdentityType
	}

	raw, err := json.Marshal(identity)
	if err != nil {
		return models.SessionIdentity{}, apperrors.NewInternalError(err)
	}
	if err := s.store.Set(ctx, clientID, clientstate.IdentityKey, raw); err != nil {
		return models.SessionIdentity{}, apperrors.NewStateStoreError("save session identity", err)
	}

	s.logger.Info("Client signed in", map[string]interface{}{
		"client_id": clientID,
		"type":      identity.Type,
	})
	return identity, nil
}

func (s *Service) SignInDemo(ctx context.Context, clientID string) (models.SessionIdentity, error) {
	return s.SignIn(ctx, clientID, DemoIdentity)
}

// Current returns the client's identity, or nil when signed out.
func (s *Service) Current(ctx context.Context, clientID string) (*models.SessionIdentity, error) {
	raw, err := s.store.Get(ctx, clientID, clientstate.IdentityKey)
	if err != nil {
		return nil, apperrors.NewStateStoreError("load session identity", err)
	}
	if len(raw) == 0 {
		return nil, nil
	}

	var identity models.SessionIdentity
	if err := json.Unmarshal(raw, &identity); err != nil {
		s.logger.Warn("Discarding unreadable session identity", map[string]interface{}{
			"client_id": clientID,
			"error":     err.Error(),
		})
		return nil, nil
	}
	return &identity, nil
}

// Logout removes both the identity and the onboarding record.
func (s *Service) Logout(ctx context.Context, clientID string) error {
	if err := s.store.Delete(ctx, clientID, clientstate.IdentityKey, clientstate.StateKey); err != nil {
		return apperrors.NewStateStoreError("logout", err)
	}
	s.logger.Info("Client signed out", map[string]interface{}{"client_id": clientID})
	return nil
}

// Dashboard builds the dashboard view. Signed-out clients get IntentSignIn and nothing else.
func (s *Service) Dashboard(ctx context.Context, clientID string) (Dashboard, error) {
	identity, err := s.Current(ctx, clientID)
	if err != nil {
		return Dashboard{}, err
	}
	if identity == nil {
		return Dashboard{Intent: onboarding.IntentSignIn}, nil
	}

	raw, err := s.store.Get(ctx, clientID, clientstate.StateKey)
	if err != nil {
		return Dashboard{}, apperrors.NewStateStoreError("load onboarding state", err)
	}
	state, _ := onboarding.DecodeRecord(raw)

	return Dashboard{
		FirstName: identity.FirstName(),
		Identity:  *identity,
		Answers:   state.Answers,
		GoalLabel: onboarding.GoalLabel(state.Answers.Goal),
		Completed: state.Completed,
	}, nil
}
