package leadnotify

import "harvin-platform/internal/common/validation"

// GetInputSchema checks job variable types. Presence of the required fields is checked
// by the service after trimming, so blank strings pass here.
func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type: "object",
		Properties: map[string]validation.Property{
			"name":    {Type: "string", MaxLength: intPtr(200)},
			"email":   {Type: "string", MaxLength: intPtr(254)},
			"company": {Type: "string", MaxLength: intPtr(200)},
			"role":    {Type: "string", MaxLength: intPtr(200)},
			"message": {Type: "string", MaxLength: intPtr(5000)},
			"type":    {Type: "string", Description: "early-access or talk-to-sales; anything else is treated as early-access"},
		},
		AdditionalProperties: true,
	}
}

func GetOutputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type: "object",
		Properties: map[string]validation.Property{
			"ok":      {Type: "boolean"},
			"skipped": {Type: "boolean"},
			"leadId":  {Type: "string"},
			"sentAt":  {Type: "string"},
		},
	}
}

func intPtr(i int) *int {
	return &i
}
