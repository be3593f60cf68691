package models

// Persona is the user's self-described professional category.
type Persona string

const (
	PersonaSaaS       Persona = "saas"
	PersonaAgency     Persona = "agency"
	PersonaInvestor   Persona = "investor"
	PersonaFreelancer Persona = "freelancer"
	PersonaOther      Persona = "other"
)

// Valid reports whether p is one of the known personas.
func (p Persona) Valid() bool {
	switch p {
	case PersonaSaaS, PersonaAgency, PersonaInvestor, PersonaFreelancer, PersonaOther:
		return true
	}
	return false
}

// Goal is the primary use case driving later questions.
type Goal string

const (
	GoalOutreach Goal = "outreach"
	GoalResearch Goal = "research"
	GoalTrends   Goal = "trends"
)

func (g Goal) Valid() bool {
	switch g {
	case GoalOutreach, GoalResearch, GoalTrends:
		return true
	}
	return false
}

// OnboardingAnswers is the partial answer record collected by the wizard.
// Empty strings and nil slices mean "not answered".
type OnboardingAnswers struct {
	FullName    string   `json:"fullName,omitempty"`
	Email       string   `json:"email,omitempty"`
	Persona     Persona  `json:"persona,omitempty"`
	CompanyName string   `json:"companyName,omitempty"`
	JobRole     string   `json:"jobRole,omitempty"`
	HeardFrom   []string `json:"heardFrom"`

	Goal Goal `json:"goal,omitempty"`

	Industries []string `json:"industries"`
	GeoFocus   []string `json:"geoFocus"`

	CompanyStage      string   `json:"companyStage,omitempty"`
	RevenueRange      string   `json:"revenueRange,omitempty"`
	BusinessModel     string   `json:"businessModel,omitempty"`
	TechStackInterest *bool    `json:"techStackInterest,omitempty"`
	TechCategories    []string `json:"techCategories"`
	CompaniesToTrack  *string  `json:"companiesToTrack,omitempty"`
}

// Clone returns a deep copy so transitions never alias the caller's slices.
func (a OnboardingAnswers) Clone() OnboardingAnswers {
	out := a
	out.HeardFrom = cloneStrings(a.HeardFrom)
	out.Industries = cloneStrings(a.Industries)
	out.GeoFocus = cloneStrings(a.GeoFocus)
	out.TechCategories = cloneStrings(a.TechCategories)
	if a.TechStackInterest != nil {
		v := *a.TechStackInterest
		out.TechStackInterest = &v
	}
	if a.CompaniesToTrack != nil {
		v := *a.CompaniesToTrack
		out.CompaniesToTrack = &v
	}
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

// WizardState is the persisted "onboarding-state" record.
type WizardState struct {
	Step      int               `json:"step"`
	Answers   OnboardingAnswers `json:"answers"`
	Completed bool              `json:"completed,omitempty"`
}
