package budget

// validate runs the independent post-hoc consistency check. It recomputes
// the token cost from the actual returned payload as a cross-check of the
// packer's running total; the packer's total stays the source of truth.
func validate(packed *PackedContext) *ValidatedContext {
	payload := struct {
		Critical  *Fields `json:"critical"`
		Important *Fields `json:"important"`
		Optional  *Fields `json:"optional"`
	}{packed.Critical, packed.Important, packed.Optional}

	tokens := EstimateValue(payload)
	issues := []Issue{}
	valid := true

	if tokens > packed.Metadata.AvailableTokens {
		valid = false
		issues = append(issues, Issue{
			Type:    IssueSizeExceeded,
			Message: "packed payload re-estimates above the available budget",
		})
	}
	// Advisory only: a well-formed result is still returned, but an empty
	// critical bucket likely cannot satisfy the caller's intent.
	if packed.Critical.Len() == 0 {
		issues = append(issues, Issue{
			Type:    IssueMissingCritical,
			Message: "no critical fields survived packing",
		})
	}

	return &ValidatedContext{
		PackedContext: *packed,
		Validation: ValidationReport{
			IsValid: valid,
			Issues:  issues,
			Tokens:  tokens,
		},
	}
}
