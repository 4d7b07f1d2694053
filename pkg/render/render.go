// Package render assembles a packed context into prompt-ready text. It is
// the consumer of the allocator's output: tiers become labeled markdown
// blocks, mappings are pretty-printed, scalars are emitted verbatim.
package render

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/promptops/ctxpack/internal/core/budget"
)

var sectionTitles = map[budget.Tier]string{
	budget.TierCritical:  "Critical Context",
	budget.TierImportant: "Important Context",
	budget.TierOptional:  "Supplemental Context",
}

// Markdown renders the three tier sections of a packed context. Empty
// tiers are omitted so the prompt carries no dead headings.
func Markdown(packed *budget.PackedContext) string {
	var builder strings.Builder
	writeSection(&builder, budget.TierCritical, packed.Critical)
	writeSection(&builder, budget.TierImportant, packed.Important)
	writeSection(&builder, budget.TierOptional, packed.Optional)
	return strings.TrimRight(builder.String(), "\n") + "\n"
}

func writeSection(builder *strings.Builder, tier budget.Tier, fields *budget.Fields) {
	if fields == nil || fields.Len() == 0 {
		return
	}
	fmt.Fprintf(builder, "## %s\n\n", sectionTitles[tier])
	for _, key := range fields.Keys() {
		value, _ := fields.Get(key)
		fmt.Fprintf(builder, "### %s\n\n%s\n", key, valueBlock(value))
	}
}

// valueBlock emits strings verbatim and everything else as pretty-printed
// JSON in a fenced block.
func valueBlock(value any) string {
	if text, ok := value.(string); ok {
		return text + "\n"
	}
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v\n", value)
	}
	return "```json\n" + string(data) + "\n```\n"
}

// AuditTable renders the compression log as a markdown table, one row per
// input field.
func AuditTable(entries []budget.LogEntry) string {
	var builder strings.Builder
	builder.WriteString("| Field | Tier | Action | Tokens Before | Tokens After | Reason |\n")
	builder.WriteString("|---|---|---|---|---|---|\n")
	for _, entry := range entries {
		after := ""
		if entry.Action == budget.ActionCompressed {
			after = fmt.Sprintf("%d", entry.TokensAfter)
		}
		fmt.Fprintf(&builder, "| %s | %s | %s | %d | %s | %s |\n",
			entry.Key, entry.Tier, entry.Action, entry.TokensBefore, after, entry.Reason)
	}
	return builder.String()
}

// Report renders a full human-readable account of one optimization run:
// budget summary, the packed sections, the audit trail, and validation
// findings.
func Report(result *budget.ValidatedContext) string {
	var builder strings.Builder

	builder.WriteString("# Context Optimization Report\n\n")
	fmt.Fprintf(&builder, "- Tokens used: %d of %d (%.1f%%)\n",
		result.Metadata.TotalTokens, result.Metadata.AvailableTokens, result.Metadata.UtilizationRatio*100)
	fmt.Fprintf(&builder, "- Validation: %s\n", validationLabel(result.Validation))
	if result.Metadata.IsMinimal {
		fmt.Fprintf(&builder, "- Minimal fallback result (%s), original size %d tokens\n",
			result.Metadata.FallbackReason, result.Metadata.OriginalTokens)
	}
	builder.WriteString("\n")

	builder.WriteString(Markdown(&result.PackedContext))

	if len(result.CompressionLog) > 0 {
		builder.WriteString("\n## Audit Trail\n\n")
		builder.WriteString(AuditTable(result.CompressionLog))
	}

	if len(result.Validation.Issues) > 0 {
		builder.WriteString("\n## Validation Findings\n\n")
		for _, issue := range result.Validation.Issues {
			fmt.Fprintf(&builder, "- **%s**: %s\n", issue.Type, issue.Message)
		}
	}

	return builder.String()
}

func validationLabel(report budget.ValidationReport) string {
	if report.IsValid {
		return fmt.Sprintf("ok (%d tokens re-estimated)", report.Tokens)
	}
	return fmt.Sprintf("invalid (%d tokens re-estimated)", report.Tokens)
}
