package onboarding

import (
	"encoding/json"

	"harvin-platform/internal/common/validation"
	"harvin-platform/internal/models"
)

// recordSchema describes a well-formed "onboarding-state" value. Out-of-range steps are
// accepted here and clamped on restore; anything with the wrong shape is discarded.
const recordSchema = `{
	"type": "object",
	"properties": {
		"step": {"type": "integer"},
		"completed": {"type": "boolean"},
		"answers": {
			"type": "object",
			"properties": {
				"fullName": {"type": "string"},
				"email": {"type": "string"},
				"persona": {"enum": ["", "saas", "agency", "investor", "freelancer", "other"]},
				"companyName": {"type": "string"},
				"jobRole": {"type": "string"},
				"heardFrom": {"type": ["array", "null"], "items": {"type": "string"}},
				"goal": {"enum": ["", "outreach", "research", "trends"]},
				"industries": {"type": ["array", "null"], "items": {"type": "string"}},
				"geoFocus": {"type": ["array", "null"], "items": {"type": "string"}},
				"companyStage": {"type": "string"},
				"revenueRange": {"type": "string"},
				"businessModel": {"type": "string"},
				"techStackInterest": {"type": "boolean"},
				"techCategories": {"type": ["array", "null"], "items": {"type": "string"}},
				"companiesToTrack": {"type": "string"}
			}
		}
	}
}`

var recordValidator = validation.MustDocumentValidator(recordSchema)

// DecodeRecord parses a persisted "onboarding-state" value. ok is false for anything that
// should be treated as absent.
func DecodeRecord(raw []byte) (state models.WizardState, ok bool) {
	if len(raw) == 0 {
		return state, false
	}
	if err := recordValidator.Validate(raw); err != nil {
		return state, false
	}
	if err := json.Unmarshal(raw, &state); err != nil {
		return models.WizardState{}, false
	}
	return state, true
}

func encodeRecord(state models.WizardState) ([]byte, error) {
	return json.Marshal(state)
}
