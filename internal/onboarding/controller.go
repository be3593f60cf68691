package onboarding

import (
	"context"
	"encoding/json"

	"harvin-platform/internal/clientstate"
	apperrors "harvin-platform/internal/common/errors"
	"harvin-platform/internal/common/logger"
	"harvin-platform/internal/common/metrics"
	"harvin-platform/internal/models"
)

// Result is what a wizard command reports back to the caller.
type Result struct {
	State      models.WizardState `json:"state"`
	Step       Step               `json:"step"`
	CanProceed bool               `json:"canProceed"`
	Intent     Intent             `json:"-"`
	Ignored    bool               `json:"ignored,omitempty"`
}

// Controller loads a client's wizard record, applies one transition and saves the result.
type Controller struct {
	store  clientstate.Store
	gate   NavigationGate
	logger logger.Logger
}

func NewController(store clientstate.Store, gate NavigationGate, log logger.Logger) *Controller {
	return &Controller{store: store, gate: gate, logger: log}
}

// Load returns the restored wizard without saving it.
func (c *Controller) Load(ctx context.Context, clientID string) (Result, error) {
	out, err := c.restore(ctx, clientID)
	if err != nil {
		return Result{}, err
	}
	return newResult(out), nil
}

func (c *Controller) Next(ctx context.Context, clientID string) (Result, error) {
	return c.apply(ctx, clientID, "next", true, func(s models.WizardState) (Outcome, error) {
		return Next(s)
	})
}

func (c *Controller) Back(ctx context.Context, clientID string) (Result, error) {
	return c.apply(ctx, clientID, "back", true, func(s models.WizardState) (Outcome, error) {
		return Back(s), nil
	})
}

func (c *Controller) Skip(ctx context.Context, clientID string) (Result, error) {
	return c.apply(ctx, clientID, "skip", false, Skip)
}

func (c *Controller) Set(ctx context.Context, clientID string, p Patch) (Result, error) {
	return c.apply(ctx, clientID, "set", false, func(s models.WizardState) (Outcome, error) {
		return Set(s, p)
	})
}

func (c *Controller) Toggle(ctx context.Context, clientID string, key SetKey, value string) (Result, error) {
	return c.apply(ctx, clientID, "toggle", false, func(s models.WizardState) (Outcome, error) {
		return Toggle(s, key, value)
	})
}

func (c *Controller) ToggleCatalog(ctx context.Context, clientID string, catalog IndustryCatalog) (Result, error) {
	return c.apply(ctx, clientID, "toggle_catalog", false, func(s models.WizardState) (Outcome, error) {
		return ToggleCatalog(s, catalog)
	})
}

// apply runs one transition. Step moves between pages pass the navigation gate first;
// a command arriving inside the lock window is dropped without an error.
func (c *Controller) apply(
	ctx context.Context,
	clientID, name string,
	gated bool,
	transition func(models.WizardState) (Outcome, error),
) (Result, error) {
	current, err := c.restore(ctx, clientID)
	if err != nil {
		c.record(name, "error")
		return Result{}, err
	}

	out, err := transition(current.State)
	if err != nil {
		c.record(name, "rejected")
		c.logger.Debug("Onboarding command rejected", map[string]interface{}{
			"client_id":  clientID,
			"transition": name,
			"step":       current.State.Step,
			"error":      err.Error(),
		})
		return Result{}, err
	}

	if !out.Changed {
		c.record(name, "noop")
		return newResult(out), nil
	}

	if gated && !out.State.Completed {
		ok, err := c.gate.Acquire(ctx, clientID)
		if err != nil {
			c.record(name, "error")
			return Result{}, apperrors.NewStateStoreError("navigation lock", err)
		}
		if !ok {
			c.record(name, "ignored")
			res := newResult(current)
			res.Ignored = true
			return res, nil
		}
	}

	if err := c.save(ctx, clientID, out.State); err != nil {
		c.record(name, "error")
		return Result{}, err
	}

	outcome := "applied"
	if out.State.Completed {
		outcome = "completed"
		c.logger.Info("Onboarding completed", map[string]interface{}{
			"client_id":  clientID,
			"transition": name,
			"persona":    string(out.State.Answers.Persona),
			"goal":       string(out.State.Answers.Goal),
		})
	}
	c.record(name, outcome)
	return newResult(out), nil
}

func (c *Controller) restore(ctx context.Context, clientID string) (Outcome, error) {
	raw, err := c.store.Get(ctx, clientID, clientstate.StateKey)
	if err != nil {
		return Outcome{}, apperrors.NewStateStoreError("load onboarding state", err)
	}

	rawIdentity, err := c.store.Get(ctx, clientID, clientstate.IdentityKey)
	if err != nil {
		return Outcome{}, apperrors.NewStateStoreError("load session identity", err)
	}

	var identity *models.SessionIdentity
	if len(rawIdentity) > 0 {
		var id models.SessionIdentity
		if err := json.Unmarshal(rawIdentity, &id); err == nil {
			identity = &id
		} else {
			c.logger.Warn("Discarding unreadable session identity", map[string]interface{}{
				"client_id": clientID,
				"error":     err.Error(),
			})
		}
	}

	return Restore(raw, identity), nil
}

func (c *Controller) save(ctx context.Context, clientID string, state models.WizardState) error {
	raw, err := encodeRecord(state)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if err := c.store.Set(ctx, clientID, clientstate.StateKey, raw); err != nil {
		return apperrors.NewStateStoreError("save onboarding state", err)
	}
	return nil
}

func (c *Controller) record(transition, outcome string) {
	metrics.OnboardingTransitions.WithLabelValues(transition, outcome).Inc()
}

func newResult(out Outcome) Result {
	return Result{
		State:      out.State,
		Step:       StepInfo(out.State.Step),
		CanProceed: CanProceed(out.State),
		Intent:     out.Intent,
	}
}
