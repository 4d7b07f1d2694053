package budget

const (
	fallbackReason  = "optimization_failure"
	fallbackMessage = "Context optimization failed; only minimal information is preserved."
)

// minimalContext is the last-resort result used when any pipeline stage
// fails unexpectedly. It must itself be exception-free so the public
// entry point always returns a well-formed value.
func minimalContext(raw *Fields, available int) *ValidatedContext {
	critical := NewFields()
	critical.Set("essential", fallbackMessage)
	total := EstimateValue(critical)
	packed := &PackedContext{
		Critical:       critical,
		Important:      NewFields(),
		Optional:       NewFields(),
		CompressionLog: []LogEntry{},
		Metadata: PackedMetadata{
			TotalTokens:      total,
			AvailableTokens:  available,
			UtilizationRatio: utilization(total, available),
			IsMinimal:        true,
			OriginalTokens:   safeEstimate(raw),
			FallbackReason:   fallbackReason,
		},
	}
	return validate(packed)
}

// safeEstimate tolerates the raw context itself being the failure source.
func safeEstimate(raw *Fields) (tokens int) {
	defer func() {
		if recover() != nil {
			tokens = 0
		}
	}()
	return EstimateValue(raw)
}
