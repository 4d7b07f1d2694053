package budget

import (
	"context"
	"sort"
)

// packer runs the greedy allocation: tiers in priority order, one running
// token counter shared across tiers, one terminal log entry per field.
type packer struct {
	dispatcher *Dispatcher
	available  int
}

func (p *packer) pack(ctx context.Context, part *PartitionedContext, strategy Strategy) *PackedContext {
	packed := &PackedContext{
		Critical:       NewFields(),
		Important:      NewFields(),
		Optional:       NewFields(),
		CompressionLog: []LogEntry{},
	}

	used := 0
	// Critical fields go first, in the strategy's declared order. They are
	// assumed few, so all are attempted rather than sorted by weight.
	for _, key := range orderByDeclaration(part.Critical, strategy.CriticalFields) {
		value, _ := part.Critical.Get(key)
		used = p.packField(ctx, packed, packed.Critical, key, value, TierCritical, used, true)
	}
	// Important and optional fields compete for the remainder in weight
	// order; ties keep raw-input order. Optional fields are never
	// compressed: their marginal value does not justify schema distortion.
	for _, key := range orderByWeight(part.Important, strategy) {
		value, _ := part.Important.Get(key)
		used = p.packField(ctx, packed, packed.Important, key, value, TierImportant, used, true)
	}
	for _, key := range orderByWeight(part.Optional, strategy) {
		value, _ := part.Optional.Get(key)
		used = p.packField(ctx, packed, packed.Optional, key, value, TierOptional, used, false)
	}

	packed.Metadata = PackedMetadata{
		TotalTokens:      used,
		AvailableTokens:  p.available,
		UtilizationRatio: utilization(used, p.available),
	}
	return packed
}

// packField applies the include / compress / skip procedure for a single
// field and returns the updated running total. A field that cannot fit
// even compressed is skipped and logged, never an error.
func (p *packer) packField(ctx context.Context, packed *PackedContext, bucket *Fields, key string, value any, tier Tier, used int, allowCompression bool) int {
	tokens := EstimateValue(value)
	if used+tokens <= p.available {
		bucket.Set(key, value)
		packed.CompressionLog = append(packed.CompressionLog, LogEntry{
			Key: key, Tier: tier, Action: ActionIncluded, TokensBefore: tokens,
		})
		return used + tokens
	}
	if allowCompression {
		compressed := p.dispatcher.Compress(ctx, value, key, tier)
		compressedTokens := EstimateValue(compressed)
		if used+compressedTokens <= p.available {
			bucket.Set(key, compressed)
			packed.CompressionLog = append(packed.CompressionLog, LogEntry{
				Key: key, Tier: tier, Action: ActionCompressed,
				TokensBefore: tokens, TokensAfter: compressedTokens,
			})
			return used + compressedTokens
		}
	}
	packed.CompressionLog = append(packed.CompressionLog, LogEntry{
		Key: key, Tier: tier, Action: ActionSkipped,
		TokensBefore: tokens, Reason: ReasonInsufficientSpace,
	})
	return used
}

// orderByDeclaration yields the bucket's keys in the order the strategy
// declared them.
func orderByDeclaration(bucket *Fields, declared []string) []string {
	keys := make([]string, 0, bucket.Len())
	seen := make(map[string]bool, bucket.Len())
	for _, key := range declared {
		if _, ok := bucket.Get(key); ok && !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}
	return keys
}

// orderByWeight yields the bucket's keys sorted by configured weight
// descending. The sort is stable over insertion order, and missing
// weights count as zero.
func orderByWeight(bucket *Fields, strategy Strategy) []string {
	keys := bucket.Keys()
	sort.SliceStable(keys, func(i, j int) bool {
		return strategy.weightOf(keys[i]) > strategy.weightOf(keys[j])
	})
	return keys
}

func utilization(used, available int) float64 {
	if available <= 0 {
		return 0
	}
	return float64(used) / float64(available)
}
