// Package mapping proposes source-column-to-target-field correspondences
// for analyzed sheets, using a static per-entity keyword table.
package mapping

import (
	_ "embed"
	"sync"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/crm-migrate/internal/model"
)

//go:embed targets.yaml
var targetsYAML []byte

// TargetField is one mappable field of a target entity. Priority 1 marks
// the entity's defining fields; priority influences the confidence tier
// of substring matches.
type TargetField struct {
	Field    string   `yaml:"field"`
	Priority int      `yaml:"priority"`
	Keywords []string `yaml:"keywords"`
}

var (
	targetsOnce sync.Once
	targets     map[model.EntityType][]TargetField
	targetsErr  error
)

// Targets returns the static target-field table keyed by entity type.
// The table is parsed from the embedded YAML once.
func Targets() (map[model.EntityType][]TargetField, error) {
	targetsOnce.Do(func() {
		var raw map[model.EntityType][]TargetField
		if err := yaml.Unmarshal(targetsYAML, &raw); err != nil {
			targetsErr = eris.Wrap(err, "mapping: parse targets table")
			return
		}
		targets = raw
	})
	return targets, targetsErr
}

// TargetsFor returns the field table for one entity type.
func TargetsFor(entity model.EntityType) ([]TargetField, error) {
	all, err := Targets()
	if err != nil {
		return nil, err
	}
	fields, ok := all[entity]
	if !ok {
		return nil, eris.Errorf("mapping: no target table for entity %q", entity)
	}
	return fields, nil
}
