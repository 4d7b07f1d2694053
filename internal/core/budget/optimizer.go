package budget

import (
	"context"
	"fmt"
	"time"
)

// Optimizer packs raw context into the configured token budget. It is
// immutable after construction: concurrent Optimize calls share only the
// fixed configuration and may run fully in parallel.
type Optimizer struct {
	strategies StrategyProvider
	logger     Logger
	metrics    Metrics
	dispatcher *Dispatcher
	available  int
}

// NewOptimizer validates the options and fixes the available budget
// (max minus reserve) once.
func NewOptimizer(opts OptimizerOptions) (*Optimizer, error) {
	opts.setDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return &Optimizer{
		strategies: opts.Strategies,
		logger:     opts.Logger,
		metrics:    opts.Metrics,
		dispatcher: newDispatcher(opts.Logger),
		available:  opts.MaxContextTokens - opts.ReserveTokens,
	}, nil
}

// AvailableTokens reports the fixed budget Optimize packs against.
func (o *Optimizer) AvailableTokens() int {
	return o.available
}

// Optimize partitions, packs, and validates the raw context for the given
// caller category. It always returns a well-formed result: validation
// findings are attached as advisory data, and any unexpected failure in
// the pipeline yields the minimal fallback result instead of an error.
func (o *Optimizer) Optimize(ctx context.Context, raw *Fields, category string) (result *ValidatedContext) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error(ctx, "context optimization failed, returning minimal fallback",
				fmt.Errorf("panic: %v", r), Field("category", category))
			o.metrics.RecordFallback()
			result = minimalContext(raw, o.available)
		}
	}()

	if raw == nil {
		raw = NewFields()
	}
	o.logger.Info(ctx, "context optimization started",
		Field("category", category), Field("fields", raw.Len()), Field("available", o.available))

	strategy := o.strategies.StrategyFor(category)
	part := partition(raw, strategy)
	p := &packer{dispatcher: o.dispatcher, available: o.available}
	packed := p.pack(ctx, part, strategy)
	validated := validate(packed)

	o.metrics.RecordOptimization(part.Metadata.OriginalTokens, packed.Metadata.TotalTokens, time.Since(start))
	for _, entry := range packed.CompressionLog {
		o.metrics.RecordFieldAction(entry.Action)
	}
	o.logger.Info(ctx, "context optimization finished",
		Field("category", category),
		Field("strategy", strategy.Name),
		Field("originalTokens", part.Metadata.OriginalTokens),
		Field("totalTokens", packed.Metadata.TotalTokens),
		Field("utilization", packed.Metadata.UtilizationRatio),
		Field("issues", len(validated.Validation.Issues)))

	return validated
}
