package onboarding

import (
	"slices"

	"harvin-platform/internal/models"
)

const (
	// LastStep is the index of the optional refinement step.
	LastStep = 3

	// FreelancerJobRole replaces jobRole when the freelancer persona is chosen.
	FreelancerJobRole = "Freelancer/Independent"

	DefaultCompanyStage  = "All Stages"
	DefaultRevenueRange  = "All Sizes"
	DefaultBusinessModel = "All Models"
)

var (
	JobRoles = []string{
		"Founder / CEO", "Co-Founder / CTO", "Head of Sales", "Sales Manager",
		"Account Executive", "Business Development", "Marketing Lead",
		"Growth Manager", "Product Manager", "Consultant", "Other",
	}

	HeardFrom = []string{
		"LinkedIn", "Twitter / X", "Google Search", "Friend / Colleague",
		"Product Hunt", "Newsletter", "YouTube", "Podcast", "Other",
	}

	EcommerceIndustries = []string{
		"Fashion & Apparel", "Footwear", "Fashion Accessories", "Jewelry",
		"Beauty & Personal Care", "Food & Beverage", "Home & Living",
		"Health & Wellness", "Baby & Kids", "Pet Products",
		"Electronics & Tech", "Outdoor & Recreation", "Office & Stationery",
	}

	DigitalIndustries = []string{
		"EdTech", "FinTech", "Health & Wellness Services", "Telecom",
		"Streaming / OTT", "Music & Audio Streaming", "Gaming",
		"News & Media", "Insurance", "Travel & Ticketing",
		"Food Delivery", "Transportation Booking",
	}

	GeoRegions = []string{
		"United States & Canada", "Europe", "India", "China",
		"Southeast Asia", "Global / All Regions", "Japan",
		"South Korea", "Australia & New Zealand", "Latin America",
		"Middle East & Africa",
	}

	CompanyStages  = []string{"Early Stage", "Growth Stage", "Late Stage", "Public", DefaultCompanyStage}
	RevenueRanges  = []string{"<$10M", "$10M–$100M", "$100M+", DefaultRevenueRange}
	BusinessModels = []string{"Subscription", "Marketplace", "One-time Purchase", DefaultBusinessModel}

	TechCategories = []string{
		"Shopify", "WooCommerce", "Magento", "BigCommerce", "Custom Stack",
		"React / Next.js", "Node.js", "Python / Django", "AWS", "GCP",
		"Stripe", "Razorpay", "Segment", "Mixpanel", "HubSpot",
	}
)

// IndustryCatalog names one of the two industry groups offered with "Select All".
type IndustryCatalog string

const (
	CatalogEcommerce IndustryCatalog = "ecommerce"
	CatalogDigital   IndustryCatalog = "digital"
)

func (c IndustryCatalog) entries() ([]string, bool) {
	switch c {
	case CatalogEcommerce:
		return EcommerceIndustries, true
	case CatalogDigital:
		return DigitalIndustries, true
	}
	return nil, false
}

// SetKey names a multi-select answer field.
type SetKey string

const (
	KeyHeardFrom      SetKey = "heardFrom"
	KeyIndustries     SetKey = "industries"
	KeyGeoFocus       SetKey = "geoFocus"
	KeyTechCategories SetKey = "techCategories"
)

// catalogFor returns the allowed values of a multi-select field.
func catalogFor(key SetKey) ([]string, bool) {
	switch key {
	case KeyHeardFrom:
		return HeardFrom, true
	case KeyIndustries:
		return slices.Concat(EcommerceIndustries, DigitalIndustries), true
	case KeyGeoFocus:
		return GeoRegions, true
	case KeyTechCategories:
		return TechCategories, true
	}
	return nil, false
}

func field(a *models.OnboardingAnswers, key SetKey) *[]string {
	switch key {
	case KeyHeardFrom:
		return &a.HeardFrom
	case KeyIndustries:
		return &a.Industries
	case KeyGeoFocus:
		return &a.GeoFocus
	case KeyTechCategories:
		return &a.TechCategories
	}
	return nil
}

// DefaultGoal maps a persona to the goal pre-selected for it. "other" has none.
func DefaultGoal(p models.Persona) models.Goal {
	switch p {
	case models.PersonaSaaS, models.PersonaAgency:
		return models.GoalOutreach
	case models.PersonaInvestor:
		return models.GoalTrends
	case models.PersonaFreelancer:
		return models.GoalResearch
	}
	return ""
}

// GoalLabel is the dashboard wording for a goal.
func GoalLabel(g models.Goal) string {
	switch g {
	case models.GoalOutreach:
		return "Finding companies to outreach"
	case models.GoalResearch:
		return "Competitive research"
	case models.GoalTrends:
		return "Tracking market trends"
	}
	return ""
}

// Step describes one wizard page.
type Step struct {
	Index    int    `json:"index"`
	Number   string `json:"number"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Optional bool   `json:"optional"`
	Progress int    `json:"progress"`
}

var steps = [LastStep + 1]Step{
	{Index: 0, Number: "01", Title: "Basic Information", Subtitle: "Tell us a bit about yourself"},
	{Index: 1, Number: "02", Title: "Primary Goal", Subtitle: "What will you use HarvinAI for?"},
	{Index: 2, Number: "03", Title: "Industry & Geographic Focus", Subtitle: "What sectors and regions interest you?"},
	{Index: 3, Number: "04", Title: "Deep Dive & Refinement", Subtitle: "Fine-tune your preferences (optional)", Optional: true},
}

// StepInfo returns the descriptor for step, clamped to the valid range.
func StepInfo(step int) Step {
	s := steps[clampStep(step)]
	s.Progress = (s.Index + 1) * 100 / len(steps)
	return s
}
