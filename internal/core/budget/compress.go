package budget

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

const (
	patchPrefixLen         = 400
	symbolRetainCount      = 10
	patternRetainCount     = 10
	patternConfidenceFloor = 0.5
	historyRetainCount     = 10
	historyKeyCap          = 10
	historyValueCap        = 100
)

// tierCaps bound the generic reducer. Generosity follows priority:
// critical > important > optional.
type tierCaps struct {
	maxStringLen  int
	maxArrayItems int
	maxMapKeys    int
}

var genericTierCaps = map[Tier]tierCaps{
	TierCritical:  {maxStringLen: 2000, maxArrayItems: 20, maxMapKeys: 20},
	TierImportant: {maxStringLen: 1000, maxArrayItems: 10, maxMapKeys: 10},
	TierOptional:  {maxStringLen: 500, maxArrayItems: 5, maxMapKeys: 5},
}

type compressFunc func(value any) (any, error)

// Dispatcher routes a field to its shape-specific reducer by field name,
// with a generic tier-capped fallback for everything else. It is an
// explicit registry so routing stays auditable; no runtime type sniffing
// decides the reducer.
type Dispatcher struct {
	logger   Logger
	reducers map[string]compressFunc
}

func newDispatcher(logger Logger) *Dispatcher {
	return &Dispatcher{
		logger: logger,
		reducers: map[string]compressFunc{
			"changes":        compressChangeRecords,
			"baseChanges":    compressChangeRecords,
			"localChanges":   compressChangeRecords,
			"remoteChanges":  compressChangeRecords,
			"recentChanges":  compressChangeRecords,
			"symbols":        compressRankedSymbols,
			"relatedSymbols": compressRankedSymbols,
			"targetSymbols":  compressRankedSymbols,
			"patterns":       compressPatterns,
			"insights":       compressPatterns,
			"fileChanges":    compressFileAggregates,
			"modifiedFiles":  compressFileAggregates,
			"history":        compressHistory,
			"fileHistory":    compressHistory,
			"recentCommits":  compressHistory,
		},
	}
}

// Compress lossily reduces a value. It never fails: reducer errors and
// panics are reported as warnings and re-routed to the generic fallback.
func (d *Dispatcher) Compress(ctx context.Context, value any, key string, tier Tier) (result any) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Warn(ctx, "compression reducer panicked, using generic fallback",
				Field("key", key), Field("tier", tier), Field("panic", r))
			result = genericCompress(value, tier)
		}
	}()
	reducer, ok := d.reducers[key]
	if !ok {
		return genericCompress(value, tier)
	}
	reduced, err := reducer(value)
	if err != nil {
		d.logger.Warn(ctx, "compression reducer failed, using generic fallback",
			Field("key", key), Field("tier", tier), Field("error", err))
		return genericCompress(value, tier)
	}
	return reduced
}

// compressChangeRecords reduces diff/patch-bearing records: small
// structured metadata survives as-is, patch text is truncated to a prefix,
// and raw file content is replaced by a derived summary.
func compressChangeRecords(value any) (any, error) {
	records, err := objectList(value)
	if err != nil {
		return nil, err
	}
	reduced := make([]any, 0, len(records))
	for _, record := range records {
		entry := map[string]any{}
		copyFields(entry, record, "path", "file", "name", "status", "additions", "deletions", "language")
		if patch, ok := stringField(record, "patch", "diff"); ok {
			entry["patch"] = truncate(patch, patchPrefixLen)
		}
		if content, ok := stringField(record, "content"); ok {
			entry["contentSummary"] = summarizeContent(content)
		}
		reduced = append(reduced, entry)
	}
	return reduced, nil
}

// compressRankedSymbols keeps the top entries by relevance and flattens
// each survivor to a one-line descriptor.
func compressRankedSymbols(value any) (any, error) {
	records, err := objectList(value)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(records, func(i, j int) bool {
		return relevanceOf(records[i]) > relevanceOf(records[j])
	})
	if len(records) > symbolRetainCount {
		records = records[:symbolRetainCount]
	}
	reduced := make([]any, 0, len(records))
	for _, record := range records {
		reduced = append(reduced, symbolDescriptor(record))
	}
	return reduced, nil
}

// compressPatterns keeps high-confidence entries only, sorted by
// confidence, capped, and stripped to identifying fields.
func compressPatterns(value any) (any, error) {
	records, err := objectList(value)
	if err != nil {
		return nil, err
	}
	kept := make([]map[string]any, 0, len(records))
	for _, record := range records {
		if numberField(record, "confidence") > patternConfidenceFloor {
			kept = append(kept, record)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return numberField(kept[i], "confidence") > numberField(kept[j], "confidence")
	})
	if len(kept) > patternRetainCount {
		kept = kept[:patternRetainCount]
	}
	reduced := make([]any, 0, len(kept))
	for _, record := range kept {
		entry := map[string]any{}
		copyFields(entry, record, "name", "count", "confidence")
		reduced = append(reduced, entry)
	}
	return reduced, nil
}

// compressFileAggregates collapses per-file records into summary
// statistics plus a content-free listing.
func compressFileAggregates(value any) (any, error) {
	records, err := objectList(value)
	if err != nil {
		return nil, err
	}
	statuses := map[string]int{}
	var additions, deletions float64
	listing := make([]any, 0, len(records))
	for _, record := range records {
		status, _ := stringField(record, "status")
		statuses[status]++
		additions += numberField(record, "additions")
		deletions += numberField(record, "deletions")
		path, _ := stringField(record, "path", "file", "name")
		listing = append(listing, map[string]any{"path": path, "status": status})
	}
	return map[string]any{
		"summary": map[string]any{
			"files":          len(records),
			"statuses":       statuses,
			"totalAdditions": additions,
			"totalDeletions": deletions,
		},
		"files": listing,
	}, nil
}

// compressHistory caps time-series data to the most recent items. Arrays
// keep the tail; mapping-shaped history keeps a bounded set of keys with
// truncated string values.
func compressHistory(value any) (any, error) {
	switch typed := value.(type) {
	case []any:
		if len(typed) <= historyRetainCount {
			return typed, nil
		}
		return typed[len(typed)-historyRetainCount:], nil
	case map[string]any:
		keys := sortedKeys(typed)
		if len(keys) > historyKeyCap {
			keys = keys[:historyKeyCap]
		}
		reduced := make(map[string]any, len(keys))
		for _, key := range keys {
			if text, ok := typed[key].(string); ok {
				reduced[key] = truncate(text, historyValueCap)
			} else {
				reduced[key] = typed[key]
			}
		}
		return reduced, nil
	default:
		return nil, fmt.Errorf("history value is %T, expected array or object", value)
	}
}

// genericCompress applies tier-dependent caps to any value: strings are
// truncated, arrays are shortened, mappings keep a bounded sorted key set
// with values reduced under the same tier. Unrecognized shapes pass
// through unchanged.
func genericCompress(value any, tier Tier) any {
	caps, ok := genericTierCaps[tier]
	if !ok {
		caps = genericTierCaps[TierOptional]
	}
	switch typed := value.(type) {
	case string:
		return truncate(typed, caps.maxStringLen)
	case []any:
		if len(typed) <= caps.maxArrayItems {
			return typed
		}
		return typed[:caps.maxArrayItems]
	case map[string]any:
		keys := sortedKeys(typed)
		if len(keys) > caps.maxMapKeys {
			keys = keys[:caps.maxMapKeys]
		}
		reduced := make(map[string]any, len(keys))
		for _, key := range keys {
			reduced[key] = genericCompress(typed[key], tier)
		}
		return reduced
	default:
		return value
	}
}

// summarizeContent derives a small description of file content instead of
// retaining the content itself.
func summarizeContent(content string) map[string]any {
	return map[string]any{
		"lines":       strings.Count(content, "\n") + 1,
		"bytes":       len(content),
		"hasTests":    looksLikeTests(content),
		"hasComments": looksLikeComments(content),
	}
}

func looksLikeTests(content string) bool {
	for _, marker := range []string{"func Test", "describe(", "it(", "#[test]", "assert", "expect("} {
		if strings.Contains(content, marker) {
			return true
		}
	}
	return false
}

func looksLikeComments(content string) bool {
	for _, marker := range []string{"//", "/*", "# "} {
		if strings.Contains(content, marker) {
			return true
		}
	}
	return false
}

func symbolDescriptor(record map[string]any) string {
	kind, _ := stringField(record, "kind", "type")
	name, _ := stringField(record, "name")
	file, _ := stringField(record, "file", "path")
	var builder strings.Builder
	if kind != "" {
		builder.WriteString(kind)
		builder.WriteByte(' ')
	}
	builder.WriteString(name)
	if file != "" {
		builder.WriteString(" (")
		builder.WriteString(file)
		if line := numberField(record, "line"); line > 0 {
			fmt.Fprintf(&builder, ":%d", int(line))
		}
		builder.WriteByte(')')
	}
	return builder.String()
}

func relevanceOf(record map[string]any) float64 {
	if score := numberField(record, "relevance"); score != 0 {
		return score
	}
	return numberField(record, "score")
}

// objectList coerces a decoded JSON array of objects. Anything else is an
// error so the dispatcher can fall back to the generic reducer.
func objectList(value any) ([]map[string]any, error) {
	items, ok := value.([]any)
	if !ok {
		return nil, fmt.Errorf("value is %T, expected an array of objects", value)
	}
	records := make([]map[string]any, 0, len(items))
	for i, item := range items {
		record, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("element %d is %T, expected an object", i, item)
		}
		records = append(records, record)
	}
	return records, nil
}

func copyFields(dst, src map[string]any, names ...string) {
	for _, name := range names {
		if value, ok := src[name]; ok {
			dst[name] = value
		}
	}
}

func stringField(record map[string]any, names ...string) (string, bool) {
	for _, name := range names {
		if text, ok := record[name].(string); ok {
			return text, true
		}
	}
	return "", false
}

func numberField(record map[string]any, name string) float64 {
	if number, ok := record[name].(float64); ok {
		return number
	}
	return 0
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func truncate(text string, limit int) string {
	if limit <= 0 || len(text) <= limit {
		return text
	}
	cut := text[:limit]
	// Back off a partially sliced rune at the boundary.
	for len(cut) > 0 && !utf8.ValidString(cut) {
		cut = cut[:len(cut)-1]
	}
	return cut + "…"
}
