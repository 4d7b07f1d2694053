package budget

import "encoding/json"

// EstimateTokens approximates the token cost of a string. The heuristic is
// intentionally simple (roughly four characters per token, rounded up)
// which keeps the estimator fast while staying monotonic with payload size
// and reproducible across runs.
func EstimateTokens(text string) int {
	if len(text) == 0 {
		return 0
	}
	return (len(text) + 3) / 4
}

// EstimateValue approximates the token cost of an arbitrary value by
// serializing it to canonical JSON first. Values that cannot be serialized
// cost nothing.
func EstimateValue(value any) int {
	return EstimateTokens(string(canonicalJSON(value)))
}

// canonicalJSON pins the serialized form used for all token estimates.
// encoding/json sorts plain map keys and Fields preserves its own insertion
// order, so the same value always serializes to the same bytes.
func canonicalJSON(value any) []byte {
	if value == nil {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return nil
	}
	return data
}
