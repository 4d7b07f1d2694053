// Package budget packs an arbitrary context mapping into a hard token
// budget before it is handed to a language-model prompt.
//
// Fields are classified into three priority tiers (critical, important,
// optional) by a per-category Strategy, then packed greedily against the
// available budget. Critical and important fields that do not fit as-is are
// lossily compressed by shape-specific reducers; optional fields are
// included or dropped outright. Every input field ends up with exactly one
// entry in the compression log, making each omission explainable.
//
// The entry point never fails: per-field compression errors fall back to a
// generic reducer, and any unexpected panic in the pipeline yields a
// minimal single-field result instead of an error.
//
// Token counts are a heuristic currency (roughly four characters per
// token over a canonical JSON serialization). They are reproducible and
// monotonic with payload size, not tokenizer-accurate.
//
// # Usage
//
//	opt, err := budget.NewOptimizer(budget.OptimizerOptions{
//	    MaxContextTokens: 8000,
//	    ReserveTokens:    500,
//	})
//	if err != nil {
//	    return err
//	}
//	result := opt.Optimize(ctx, fields, "code-review")
//
// Optimize is safe to call from multiple goroutines; each invocation is
// independent and only shares the immutable configuration.
package budget
