package budget

import (
	"bytes"
	"strings"
	"testing"
)

func TestEstimateTokens(t *testing.T) {
	cases := []struct {
		text string
		want int
	}{
		{"", 0},
		{"a", 1},
		{"abcd", 1},
		{"abcde", 2},
		{"abcdefgh", 2},
		{strings.Repeat("x", 4000), 1000},
	}
	for _, tc := range cases {
		if got := EstimateTokens(tc.text); got != tc.want {
			t.Errorf("EstimateTokens(%d chars) = %d, want %d", len(tc.text), got, tc.want)
		}
	}
}

func TestEstimateValueUsesSerializedForm(t *testing.T) {
	if got := EstimateValue(nil); got != 0 {
		t.Fatalf("nil should cost nothing, got %d", got)
	}
	// "abcd" serializes to `"abcd"` (six bytes) so it costs two tokens.
	if got := EstimateValue("abcd"); got != 2 {
		t.Fatalf("expected 2 tokens for a quoted 4-char string, got %d", got)
	}
}

func TestCanonicalJSONIsReproducible(t *testing.T) {
	value := map[string]any{"zeta": 1.0, "alpha": []any{"x", "y"}, "mid": map[string]any{"b": 2.0, "a": 1.0}}
	first := canonicalJSON(value)
	second := canonicalJSON(value)
	if !bytes.Equal(first, second) {
		t.Fatalf("canonical serialization is not stable: %s vs %s", first, second)
	}
	if !bytes.Contains(first, []byte(`"alpha"`)) {
		t.Fatalf("unexpected serialization: %s", first)
	}
}
