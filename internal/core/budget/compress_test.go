package budget

import (
	"context"
	"strings"
	"sync"
	"testing"
)

// recordingLogger captures warnings so tests can assert on reducer
// failure reporting without a real backend.
type recordingLogger struct {
	NoOpLogger
	mu    sync.Mutex
	warns []string
}

func (l *recordingLogger) Warn(_ context.Context, msg string, _ ...LogField) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, msg)
}

func (l *recordingLogger) warnCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.warns)
}

func TestCompressPatternsFiltersSortsAndCaps(t *testing.T) {
	// 50 entries, 30 of them at or below the confidence floor.
	patterns := make([]any, 0, 50)
	for i := 0; i < 50; i++ {
		confidence := 0.2
		if i >= 30 {
			confidence = 0.55 + float64(i-30)/100
		}
		patterns = append(patterns, map[string]any{
			"name":       "pattern",
			"count":      float64(i),
			"confidence": confidence,
			"examples":   []any{"should be stripped"},
		})
	}

	reduced, err := compressPatterns(patterns)
	if err != nil {
		t.Fatalf("compressPatterns returned error: %v", err)
	}
	entries := reduced.([]any)
	if len(entries) > patternRetainCount {
		t.Fatalf("expected at most %d entries, got %d", patternRetainCount, len(entries))
	}
	previous := 2.0
	for _, entry := range entries {
		record := entry.(map[string]any)
		confidence := record["confidence"].(float64)
		if confidence <= patternConfidenceFloor {
			t.Fatalf("low-confidence entry survived: %v", confidence)
		}
		if confidence > previous {
			t.Fatalf("entries not sorted by confidence descending: %v after %v", confidence, previous)
		}
		previous = confidence
		if _, kept := record["examples"]; kept {
			t.Fatal("non-identifying field should have been stripped")
		}
	}
}

func TestCompressChangeRecords(t *testing.T) {
	changes := []any{
		map[string]any{
			"path":      "internal/parser/parse.go",
			"status":    "modified",
			"additions": 12.0,
			"deletions": 3.0,
			"language":  "go",
			"patch":     strings.Repeat("@@ hunk @@\n", 200),
			"content":   "package parser\n\n// parse comment\nfunc TestParse(t *testing.T) {}\n",
		},
	}

	reduced, err := compressChangeRecords(changes)
	if err != nil {
		t.Fatalf("compressChangeRecords returned error: %v", err)
	}
	record := reduced.([]any)[0].(map[string]any)
	if record["path"] != "internal/parser/parse.go" || record["status"] != "modified" {
		t.Fatalf("structured metadata should survive: %v", record)
	}
	patch := record["patch"].(string)
	if len(patch) > patchPrefixLen+len("…") {
		t.Fatalf("patch not truncated: %d bytes", len(patch))
	}
	if !strings.HasSuffix(patch, "…") {
		t.Fatal("truncated patch should carry an ellipsis marker")
	}
	summary := record["contentSummary"].(map[string]any)
	if summary["hasTests"] != true {
		t.Fatalf("content sniffing missed the test function: %v", summary)
	}
	if summary["hasComments"] != true {
		t.Fatalf("content sniffing missed the comment: %v", summary)
	}
	if _, kept := record["content"]; kept {
		t.Fatal("raw content must be replaced by its summary")
	}
}

func TestCompressRankedSymbols(t *testing.T) {
	symbols := make([]any, 0, 25)
	for i := 0; i < 25; i++ {
		symbols = append(symbols, map[string]any{
			"name":      "sym",
			"kind":      "function",
			"file":      "main.go",
			"line":      float64(i + 1),
			"relevance": float64(i),
			"body":      "func sym() { /* large */ }",
		})
	}

	reduced, err := compressRankedSymbols(symbols)
	if err != nil {
		t.Fatalf("compressRankedSymbols returned error: %v", err)
	}
	descriptors := reduced.([]any)
	if len(descriptors) != symbolRetainCount {
		t.Fatalf("expected top %d symbols, got %d", symbolRetainCount, len(descriptors))
	}
	first := descriptors[0].(string)
	if first != "function sym (main.go:25)" {
		t.Fatalf("unexpected descriptor for the most relevant symbol: %q", first)
	}
}

func TestCompressFileAggregates(t *testing.T) {
	files := []any{
		map[string]any{"path": "a.go", "status": "modified", "additions": 5.0, "deletions": 1.0, "content": "x"},
		map[string]any{"path": "b.go", "status": "added", "additions": 40.0},
		map[string]any{"path": "c.go", "status": "modified", "deletions": 7.0},
	}

	reduced, err := compressFileAggregates(files)
	if err != nil {
		t.Fatalf("compressFileAggregates returned error: %v", err)
	}
	aggregate := reduced.(map[string]any)
	summary := aggregate["summary"].(map[string]any)
	if summary["files"] != 3 {
		t.Fatalf("expected 3 files, got %v", summary["files"])
	}
	statuses := summary["statuses"].(map[string]int)
	if statuses["modified"] != 2 || statuses["added"] != 1 {
		t.Fatalf("unexpected status counts: %v", statuses)
	}
	if summary["totalAdditions"] != 45.0 || summary["totalDeletions"] != 8.0 {
		t.Fatalf("unexpected totals: %v", summary)
	}
	listing := aggregate["files"].([]any)
	entry := listing[0].(map[string]any)
	if _, kept := entry["content"]; kept {
		t.Fatal("per-file listing must be stripped of content")
	}
}

func TestCompressHistory(t *testing.T) {
	items := make([]any, 30)
	for i := range items {
		items[i] = i
	}
	reduced, err := compressHistory(items)
	if err != nil {
		t.Fatalf("compressHistory returned error: %v", err)
	}
	tail := reduced.([]any)
	if len(tail) != historyRetainCount || tail[0] != 20 {
		t.Fatalf("expected the most recent %d items, got %v", historyRetainCount, tail)
	}

	byDate := map[string]any{}
	for i := 0; i < 15; i++ {
		byDate[string(rune('a'+i))] = strings.Repeat("v", 500)
	}
	reduced, err = compressHistory(byDate)
	if err != nil {
		t.Fatalf("compressHistory returned error: %v", err)
	}
	capped := reduced.(map[string]any)
	if len(capped) != historyKeyCap {
		t.Fatalf("expected %d keys, got %d", historyKeyCap, len(capped))
	}
	for _, value := range capped {
		if len(value.(string)) > historyValueCap+len("…") {
			t.Fatalf("history value not truncated: %d bytes", len(value.(string)))
		}
	}
}

func TestGenericCompressTierCaps(t *testing.T) {
	long := strings.Repeat("s", 5000)
	for tier, caps := range genericTierCaps {
		reduced := genericCompress(long, tier).(string)
		if len(reduced) != caps.maxStringLen+len("…") {
			t.Errorf("tier %s: expected %d chars, got %d", tier, caps.maxStringLen, len(reduced))
		}
	}

	items := make([]any, 50)
	reduced := genericCompress(items, TierImportant).([]any)
	if len(reduced) != genericTierCaps[TierImportant].maxArrayItems {
		t.Fatalf("array not capped: %d", len(reduced))
	}

	mapping := map[string]any{}
	for i := 0; i < 30; i++ {
		mapping[string(rune('a'+i))] = strings.Repeat("v", 3000)
	}
	reducedMap := genericCompress(mapping, TierOptional).(map[string]any)
	if len(reducedMap) != genericTierCaps[TierOptional].maxMapKeys {
		t.Fatalf("map not capped: %d", len(reducedMap))
	}
	for _, value := range reducedMap {
		if len(value.(string)) > genericTierCaps[TierOptional].maxStringLen+len("…") {
			t.Fatal("map values should be recursively compressed under the same tier")
		}
	}
}

func TestDispatcherRecoversFromReducerFailures(t *testing.T) {
	logger := &recordingLogger{}
	dispatcher := newDispatcher(logger)

	// A shape the reducer rejects: patterns must be an array of objects.
	result := dispatcher.Compress(context.Background(), strings.Repeat("p", 3000), "patterns", TierImportant)
	if len(result.(string)) > genericTierCaps[TierImportant].maxStringLen+len("…") {
		t.Fatal("expected generic fallback after reducer error")
	}
	if logger.warnCount() != 1 {
		t.Fatalf("expected one warning, got %d", logger.warnCount())
	}

	// A reducer that panics outright must also degrade to the fallback.
	dispatcher.reducers["explosive"] = func(any) (any, error) { panic("kaboom") }
	result = dispatcher.Compress(context.Background(), strings.Repeat("p", 3000), "explosive", TierOptional)
	if len(result.(string)) > genericTierCaps[TierOptional].maxStringLen+len("…") {
		t.Fatal("expected generic fallback after reducer panic")
	}
	if logger.warnCount() != 2 {
		t.Fatalf("expected two warnings, got %d", logger.warnCount())
	}
}
