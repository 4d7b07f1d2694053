package budget

import "time"

// Tier is the priority class assigned to a context field.
type Tier string

const (
	TierCritical  Tier = "critical"
	TierImportant Tier = "important"
	TierOptional  Tier = "optional"
)

// Action is the terminal decision recorded for a field.
type Action string

const (
	ActionIncluded   Action = "included"
	ActionCompressed Action = "compressed"
	ActionSkipped    Action = "skipped"
)

// ReasonInsufficientSpace marks fields dropped because not even their
// compressed form fit the remaining budget.
const ReasonInsufficientSpace = "insufficient_space"

// LogEntry records the outcome for a single input field. The packer emits
// exactly one terminal entry per field, in tier-major order.
type LogEntry struct {
	Key          string `json:"key"`
	Tier         Tier   `json:"tier"`
	Action       Action `json:"action"`
	TokensBefore int    `json:"tokensBefore"`
	TokensAfter  int    `json:"tokensAfter,omitempty"`
	Reason       string `json:"reason,omitempty"`
}

// PartitionMetadata describes the pre-packing classification pass.
type PartitionMetadata struct {
	OriginalTokens int       `json:"originalTokens"`
	StrategyUsed   string    `json:"strategyUsed"`
	Timestamp      time.Time `json:"timestamp"`
}

// PartitionedContext is the transient result of classifying raw fields
// into tiers. It is consumed by the packer within the same invocation.
type PartitionedContext struct {
	Critical  *Fields           `json:"critical"`
	Important *Fields           `json:"important"`
	Optional  *Fields           `json:"optional"`
	Metadata  PartitionMetadata `json:"metadata"`
}

// PackedMetadata summarizes a packing run. The fallback fields are only
// set on the minimal result produced after an unexpected failure.
type PackedMetadata struct {
	TotalTokens      int     `json:"totalTokens"`
	AvailableTokens  int     `json:"availableTokens"`
	UtilizationRatio float64 `json:"utilizationRatio"`
	IsMinimal        bool    `json:"isMinimal,omitempty"`
	OriginalTokens   int     `json:"originalTokens,omitempty"`
	FallbackReason   string  `json:"fallbackReason,omitempty"`
}

// PackedContext is the immutable output of one packing run: the surviving
// (possibly compressed) fields per tier plus the full audit trail.
type PackedContext struct {
	Critical       *Fields        `json:"critical"`
	Important      *Fields        `json:"important"`
	Optional       *Fields        `json:"optional"`
	CompressionLog []LogEntry     `json:"compressionLog"`
	Metadata       PackedMetadata `json:"metadata"`
}

// Issue is a structured validation finding. Findings are advisory data for
// the caller, never errors.
type Issue struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Validation finding types.
const (
	IssueSizeExceeded    = "size_exceeded"
	IssueMissingCritical = "missing_critical"
)

// ValidationReport is the independent post-hoc consistency check attached
// to every result.
type ValidationReport struct {
	IsValid bool    `json:"isValid"`
	Issues  []Issue `json:"issues"`
	Tokens  int     `json:"tokens"`
}

// ValidatedContext is the final result returned to callers.
type ValidatedContext struct {
	PackedContext
	Validation ValidationReport `json:"validation"`
}
