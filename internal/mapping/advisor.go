package mapping

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/sells-group/crm-migrate/internal/model"
)

// Advisor proposes field mappings for analyzed sheets.
type Advisor struct{}

// NewAdvisor returns a mapping advisor.
func NewAdvisor() *Advisor {
	return &Advisor{}
}

// Suggest proposes at most one mapping per target field for the given
// sheet and entity table. Columns are scanned in order; for each column
// the first matching keyword wins. A later high-confidence suggestion
// replaces an earlier non-high one for the same field; otherwise the
// earlier suggestion is retained. Output is sorted strongest tier first.
func (a *Advisor) Suggest(sheet *model.Sheet, fields []TargetField) []model.MappingSuggestion {
	byField := make(map[string]model.MappingSuggestion)
	order := make([]string, 0, len(fields))

	for _, profile := range sheet.ColumnProfiles {
		header := Normalize(profile.Header)
		if header == "" {
			continue
		}

		for _, field := range fields {
			tier, reason := matchField(header, field)
			if tier == "" {
				continue
			}

			candidate := model.MappingSuggestion{
				SourceColumn: profile.Index,
				SourceHeader: profile.Header,
				TargetField:  field.Field,
				Confidence:   tier,
				Reason:       reason,
			}

			existing, ok := byField[field.Field]
			if !ok {
				byField[field.Field] = candidate
				order = append(order, field.Field)
			} else if candidate.Confidence == model.ConfidenceHigh && existing.Confidence != model.ConfidenceHigh {
				byField[field.Field] = candidate
			}
			break
		}
	}

	suggestions := make([]model.MappingSuggestion, 0, len(byField))
	for _, f := range order {
		suggestions = append(suggestions, byField[f])
	}
	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].Confidence.StrongerThan(suggestions[j].Confidence)
	})
	return suggestions
}

// matchField applies the ordered matching rules against every keyword of
// the field; the first keyword that matches decides the tier.
func matchField(header string, field TargetField) (model.ConfidenceTier, string) {
	for _, kw := range field.Keywords {
		keyword := Normalize(kw)
		if keyword == "" {
			continue
		}

		if header == keyword {
			return model.ConfidenceHigh, fmt.Sprintf("header equals %q", kw)
		}

		if strings.Contains(header, keyword) || strings.Contains(keyword, header) {
			if field.Priority == 1 {
				return model.ConfidenceHigh, fmt.Sprintf("header contains %q", kw)
			}
			return model.ConfidenceMedium, fmt.Sprintf("header contains %q", kw)
		}

		if strings.HasPrefix(header, keyword) || strings.HasSuffix(header, keyword) {
			return model.ConfidenceMedium, fmt.Sprintf("header bounded by %q", kw)
		}
	}
	return "", ""
}

var foldTransformer = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize lowercases a label, folds diacritics, and strips everything
// that is not an ASCII letter or digit.
func Normalize(s string) string {
	folded, _, err := transform.String(foldTransformer, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	for _, r := range strings.ToLower(folded) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
