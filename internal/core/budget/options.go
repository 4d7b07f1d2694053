package budget

import "fmt"

// OptimizerOptions configures an Optimizer. The token budget is fixed at
// construction; everything else is an injectable collaborator so the
// allocator is testable without real logging or metrics backends.
type OptimizerOptions struct {
	// MaxContextTokens is the total window size the downstream prompt may
	// occupy, in estimator tokens.
	MaxContextTokens int
	// ReserveTokens is held back from the window (for the prompt scaffold
	// and the model's reply). Available budget is max minus reserve.
	ReserveTokens int

	// Strategies resolves caller categories. Defaults to the built-in
	// registry.
	Strategies StrategyProvider
	// Logger receives optimization lifecycle events and compression
	// warnings. Defaults to a no-op.
	Logger Logger
	// Metrics receives size and per-field action counters. Defaults to a
	// no-op.
	Metrics Metrics
}

// setDefaults applies reasonable defaults while keeping every knob
// optional.
func (o *OptimizerOptions) setDefaults() {
	if o.MaxContextTokens <= 0 {
		o.MaxContextTokens = 8000
	}
	if o.ReserveTokens <= 0 {
		o.ReserveTokens = 500
	}
	if o.Strategies == nil {
		o.Strategies = NewRegistry()
	}
	if o.Logger == nil {
		o.Logger = &NoOpLogger{}
	}
	if o.Metrics == nil {
		o.Metrics = &NoOpMetrics{}
	}
}

// validate performs lightweight validation of user supplied options.
func (o *OptimizerOptions) validate() error {
	if o.ReserveTokens >= o.MaxContextTokens {
		return fmt.Errorf("budget: reserve tokens (%d) must be smaller than max context tokens (%d)",
			o.ReserveTokens, o.MaxContextTokens)
	}
	return nil
}
