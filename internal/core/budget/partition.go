package budget

import "time"

// partition classifies every raw field into exactly one tier bucket,
// walking keys in their insertion order so later tie-breaking stays
// stable. Unknown fields land in the optional catch-all.
func partition(raw *Fields, strategy Strategy) *PartitionedContext {
	part := &PartitionedContext{
		Critical:  NewFields(),
		Important: NewFields(),
		Optional:  NewFields(),
		Metadata: PartitionMetadata{
			OriginalTokens: EstimateValue(raw),
			StrategyUsed:   strategy.Name,
			Timestamp:      time.Now().UTC(),
		},
	}
	for _, key := range raw.Keys() {
		value, _ := raw.Get(key)
		switch strategy.tierFor(key) {
		case TierCritical:
			part.Critical.Set(key, value)
		case TierImportant:
			part.Important.Set(key, value)
		default:
			part.Optional.Set(key, value)
		}
	}
	return part
}
