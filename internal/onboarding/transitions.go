// Package onboarding implements the HarvinAI onboarding wizard: a four step questionnaire
// whose state is a single record per client, rewritten whole after every mutation.
//
// The transition functions in this file are pure. They take a state, return the next one
// together with an Intent telling the caller where to navigate, and never touch storage.
// Controller wires them to a Store and a NavigationGate.
package onboarding

import (
	"fmt"
	"slices"
	"strings"

	apperrors "harvin-platform/internal/common/errors"
	"harvin-platform/internal/models"
)

// Intent is a navigation request produced by a transition. The caller performs it.
type Intent string

const (
	IntentNone       Intent = ""
	IntentOnboarding Intent = "onboarding"
	IntentDashboard  Intent = "dashboard"
	IntentSignIn     Intent = "signin"
)

// Path returns the route an intent navigates to.
func (i Intent) Path() string {
	switch i {
	case IntentOnboarding:
		return "/onboarding"
	case IntentDashboard:
		return "/dashboard"
	case IntentSignIn:
		return "/signin"
	}
	return ""
}

// Outcome is the result of a transition. Changed is false for no-ops, which need no save.
type Outcome struct {
	State   models.WizardState
	Intent  Intent
	Changed bool
}

// Patch is a shallow update of the answer record. Nil fields are left untouched.
type Patch struct {
	FullName          *string         `json:"fullName,omitempty"`
	Email             *string         `json:"email,omitempty"`
	Persona           *models.Persona `json:"persona,omitempty"`
	CompanyName       *string         `json:"companyName,omitempty"`
	JobRole           *string         `json:"jobRole,omitempty"`
	HeardFrom         *[]string       `json:"heardFrom,omitempty"`
	Goal              *models.Goal    `json:"goal,omitempty"`
	Industries        *[]string       `json:"industries,omitempty"`
	GeoFocus          *[]string       `json:"geoFocus,omitempty"`
	CompanyStage      *string         `json:"companyStage,omitempty"`
	RevenueRange      *string         `json:"revenueRange,omitempty"`
	BusinessModel     *string         `json:"businessModel,omitempty"`
	TechStackInterest *bool           `json:"techStackInterest,omitempty"`
	TechCategories    *[]string       `json:"techCategories,omitempty"`
	CompaniesToTrack  *string         `json:"companiesToTrack,omitempty"`
}

func clampStep(step int) int {
	return max(0, min(step, LastStep))
}

// Restore rebuilds the wizard from a persisted record. Unreadable records count as absent.
// Session values fill fullName and email only while those answers are empty.
func Restore(raw []byte, identity *models.SessionIdentity) Outcome {
	state, _ := DecodeRecord(raw)
	if state.Completed {
		return Outcome{State: state, Intent: IntentDashboard}
	}

	state.Step = clampStep(state.Step)
	if identity != nil {
		if state.Answers.FullName == "" {
			state.Answers.FullName = identity.Name
		}
		if state.Answers.Email == "" {
			state.Answers.Email = identity.Email
		}
	}

	return Outcome{State: state}
}

// CanProceed reports whether the current step's required answers are present.
func CanProceed(state models.WizardState) bool {
	a := state.Answers
	switch state.Step {
	case 0:
		return strings.TrimSpace(a.FullName) != "" && strings.TrimSpace(a.Email) != "" && a.Persona != ""
	case 1:
		return a.Goal != ""
	default:
		return true
	}
}

func completedOutcome(state models.WizardState) Outcome {
	return Outcome{State: state, Intent: IntentDashboard}
}

// Next advances one step. Leaving the last step completes the wizard.
func Next(state models.WizardState) (Outcome, error) {
	if state.Completed {
		return completedOutcome(state), nil
	}
	if !CanProceed(state) {
		return Outcome{State: state}, apperrors.NewPreconditionNotMetError(state.Step, missingFor(state))
	}

	next := models.WizardState{Step: state.Step + 1, Answers: state.Answers.Clone()}
	if next.Step > LastStep {
		next.Completed = true
		return Outcome{State: next, Intent: IntentDashboard, Changed: true}, nil
	}
	return Outcome{State: next, Changed: true}, nil
}

func missingFor(state models.WizardState) string {
	a := state.Answers
	var missing []string
	switch state.Step {
	case 0:
		if strings.TrimSpace(a.FullName) == "" {
			missing = append(missing, "fullName")
		}
		if strings.TrimSpace(a.Email) == "" {
			missing = append(missing, "email")
		}
		if a.Persona == "" {
			missing = append(missing, "persona")
		}
	case 1:
		missing = append(missing, "goal")
	}
	return "missing: " + strings.Join(missing, ", ")
}

// Back retreats one step. It is a no-op on the first step.
func Back(state models.WizardState) Outcome {
	if state.Completed {
		return completedOutcome(state)
	}
	if state.Step <= 0 {
		return Outcome{State: state}
	}
	return Outcome{
		State:   models.WizardState{Step: state.Step - 1, Answers: state.Answers.Clone()},
		Changed: true,
	}
}

// Skip commits defaults for unanswered refinement fields and completes the wizard.
// Only the refinement step offers it. Answers already given, including an explicit
// techStackInterest of false, are kept.
func Skip(state models.WizardState) (Outcome, error) {
	if state.Completed {
		return completedOutcome(state), nil
	}
	if state.Step != LastStep {
		return Outcome{State: state}, apperrors.NewSkipNotAllowedError(state.Step)
	}

	a := state.Answers.Clone()
	if a.CompanyStage == "" {
		a.CompanyStage = DefaultCompanyStage
	}
	if a.RevenueRange == "" {
		a.RevenueRange = DefaultRevenueRange
	}
	if a.BusinessModel == "" {
		a.BusinessModel = DefaultBusinessModel
	}
	if a.TechStackInterest == nil {
		no := false
		a.TechStackInterest = &no
	}
	if a.CompaniesToTrack == nil {
		empty := ""
		a.CompaniesToTrack = &empty
	}
	normalize(&a)

	return Outcome{
		State:   models.WizardState{Step: LastStep + 1, Answers: a, Completed: true},
		Intent:  IntentDashboard,
		Changed: true,
	}, nil
}

// Set merges p into the answers without moving the step. Choosing a persona also applies
// the persona rules: freelancers get the fixed job role, and the persona's default goal is
// filled in when no goal has been chosen yet.
func Set(state models.WizardState, p Patch) (Outcome, error) {
	if state.Completed {
		return completedOutcome(state), nil
	}
	if err := p.validate(); err != nil {
		return Outcome{State: state}, err
	}

	a := state.Answers.Clone()
	p.applyTo(&a)

	if p.Persona != nil && *p.Persona != "" {
		if *p.Persona == models.PersonaFreelancer {
			a.JobRole = FreelancerJobRole
		}
		if a.Goal == "" {
			a.Goal = DefaultGoal(*p.Persona)
		}
	}
	normalize(&a)

	return Outcome{
		State:   models.WizardState{Step: state.Step, Answers: a},
		Changed: true,
	}, nil
}

// Toggle removes value from the set at key if present, otherwise appends it.
func Toggle(state models.WizardState, key SetKey, value string) (Outcome, error) {
	if state.Completed {
		return completedOutcome(state), nil
	}
	catalog, ok := catalogFor(key)
	if !ok {
		return Outcome{State: state}, apperrors.NewInvalidValueError(string(key), "not a multi-select field")
	}
	if !slices.Contains(catalog, value) {
		return Outcome{State: state}, apperrors.NewInvalidValueError(string(key), fmt.Sprintf("unknown option %q", value))
	}

	a := state.Answers.Clone()
	set := field(&a, key)
	if i := slices.Index(*set, value); i >= 0 {
		*set = slices.Delete(*set, i, i+1)
	} else {
		*set = append(*set, value)
	}
	normalize(&a)

	return Outcome{
		State:   models.WizardState{Step: state.Step, Answers: a},
		Changed: true,
	}, nil
}

// ToggleCatalog selects every industry of catalog, or deselects them all when every one
// is already selected. Industries from the other catalog are untouched.
func ToggleCatalog(state models.WizardState, catalog IndustryCatalog) (Outcome, error) {
	if state.Completed {
		return completedOutcome(state), nil
	}
	entries, ok := catalog.entries()
	if !ok {
		return Outcome{State: state}, apperrors.NewInvalidValueError("catalog", fmt.Sprintf("unknown catalog %q", catalog))
	}

	a := state.Answers.Clone()
	allSelected := true
	for _, e := range entries {
		if !slices.Contains(a.Industries, e) {
			allSelected = false
			break
		}
	}

	if allSelected {
		a.Industries = slices.DeleteFunc(a.Industries, func(s string) bool {
			return slices.Contains(entries, s)
		})
	} else {
		a.Industries = union(a.Industries, entries)
	}

	return Outcome{
		State:   models.WizardState{Step: state.Step, Answers: a},
		Changed: true,
	}, nil
}

// normalize enforces rules that tie fields together regardless of how they were set.
func normalize(a *models.OnboardingAnswers) {
	if a.TechStackInterest != nil && !*a.TechStackInterest {
		a.TechCategories = nil
	}
}

func union(base, add []string) []string {
	out := slices.Clone(base)
	for _, v := range add {
		if !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}

func dedupe(in []string) []string {
	if in == nil {
		return nil
	}
	return union(make([]string, 0, len(in)), in)
}

func (p Patch) validate() error {
	if p.Persona != nil && *p.Persona != "" && !p.Persona.Valid() {
		return apperrors.NewInvalidValueError("persona", fmt.Sprintf("unknown persona %q", *p.Persona))
	}
	if p.Goal != nil && *p.Goal != "" && !p.Goal.Valid() {
		return apperrors.NewInvalidValueError("goal", fmt.Sprintf("unknown goal %q", *p.Goal))
	}

	choices := []struct {
		name    string
		value   *string
		options []string
	}{
		{"companyStage", p.CompanyStage, CompanyStages},
		{"revenueRange", p.RevenueRange, RevenueRanges},
		{"businessModel", p.BusinessModel, BusinessModels},
	}
	for _, c := range choices {
		if c.value != nil && *c.value != "" && !slices.Contains(c.options, *c.value) {
			return apperrors.NewInvalidValueError(c.name, fmt.Sprintf("unknown option %q", *c.value))
		}
	}

	sets := []struct {
		key    SetKey
		values *[]string
	}{
		{KeyHeardFrom, p.HeardFrom},
		{KeyIndustries, p.Industries},
		{KeyGeoFocus, p.GeoFocus},
		{KeyTechCategories, p.TechCategories},
	}
	for _, s := range sets {
		if s.values == nil {
			continue
		}
		catalog, _ := catalogFor(s.key)
		for _, v := range *s.values {
			if !slices.Contains(catalog, v) {
				return apperrors.NewInvalidValueError(string(s.key), fmt.Sprintf("unknown option %q", v))
			}
		}
	}

	return nil
}

func (p Patch) applyTo(a *models.OnboardingAnswers) {
	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	setSet := func(dst *[]string, src *[]string) {
		if src != nil {
			*dst = dedupe(*src)
		}
	}

	setString(&a.FullName, p.FullName)
	setString(&a.Email, p.Email)
	setString(&a.CompanyName, p.CompanyName)
	setString(&a.JobRole, p.JobRole)
	setString(&a.CompanyStage, p.CompanyStage)
	setString(&a.RevenueRange, p.RevenueRange)
	setString(&a.BusinessModel, p.BusinessModel)
	setSet(&a.HeardFrom, p.HeardFrom)
	setSet(&a.Industries, p.Industries)
	setSet(&a.GeoFocus, p.GeoFocus)
	setSet(&a.TechCategories, p.TechCategories)

	if p.Persona != nil {
		a.Persona = *p.Persona
	}
	if p.Goal != nil {
		a.Goal = *p.Goal
	}
	if p.TechStackInterest != nil {
		v := *p.TechStackInterest
		a.TechStackInterest = &v
	}
	if p.CompaniesToTrack != nil {
		v := *p.CompaniesToTrack
		a.CompaniesToTrack = &v
	}
}
