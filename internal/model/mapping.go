package model

// ConfidenceTier ranks how certain the advisor is about a suggestion.
type ConfidenceTier string

const (
	ConfidenceHigh   ConfidenceTier = "high"
	ConfidenceMedium ConfidenceTier = "medium"
	ConfidenceLow    ConfidenceTier = "low"
)

// rank orders tiers for sorting and supersession; lower is stronger.
func (t ConfidenceTier) rank() int {
	switch t {
	case ConfidenceHigh:
		return 0
	case ConfidenceMedium:
		return 1
	default:
		return 2
	}
}

// StrongerThan reports whether t outranks other.
func (t ConfidenceTier) StrongerThan(other ConfidenceTier) bool {
	return t.rank() < other.rank()
}

// MappingSuggestion proposes one source-column-to-target-field
// correspondence. The advisor emits at most one suggestion per target
// field per sheet.
type MappingSuggestion struct {
	SourceColumn int            `json:"source_column"`
	SourceHeader string         `json:"source_header"`
	TargetField  string         `json:"target_field"`
	Confidence   ConfidenceTier `json:"confidence"`
	Reason       string         `json:"reason"`
}
