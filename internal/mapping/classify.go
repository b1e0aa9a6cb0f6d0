package mapping

import (
	"strings"

	"github.com/sells-group/crm-migrate/internal/model"
)

// nameHints maps normalized sheet-name fragments to entity types. Name
// hints win over header scoring because exports commonly label tabs by
// entity even when headers are ambiguous.
var nameHints = []struct {
	fragment string
	entity   model.EntityType
}{
	{"contact", model.EntityContact},
	{"people", model.EntityContact},
	{"person", model.EntityContact},
	{"opportunit", model.EntityOpportunity},
	{"deal", model.EntityOpportunity},
	{"pipeline", model.EntityOpportunity},
	{"interaction", model.EntityInteraction},
	{"activit", model.EntityInteraction},
	{"note", model.EntityInteraction},
	{"org", model.EntityOrganization},
	{"account", model.EntityOrganization},
	{"compan", model.EntityOrganization},
	{"customer", model.EntityOrganization},
}

// ClassifySheet decides which target entity a sheet feeds. The sheet name
// is checked against known fragments first; otherwise each entity's
// keyword table is scored against the profiled headers and the best
// score wins. Organizations are the default for unrecognizable sheets.
func ClassifySheet(sheet *model.Sheet) model.EntityType {
	name := Normalize(sheet.Name)
	for _, hint := range nameHints {
		if strings.Contains(name, hint.fragment) {
			return hint.entity
		}
	}

	all, err := Targets()
	if err != nil {
		return model.EntityOrganization
	}

	best := model.EntityOrganization
	bestScore := 0
	for _, entity := range model.EntityTypes {
		score := 0
		for _, profile := range sheet.ColumnProfiles {
			header := Normalize(profile.Header)
			for _, field := range all[entity] {
				if tier, _ := matchField(header, field); tier != "" {
					score++
					break
				}
			}
		}
		if score > bestScore {
			best = entity
			bestScore = score
		}
	}
	return best
}
