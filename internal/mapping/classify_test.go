package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/crm-migrate/internal/model"
)

func TestClassifySheet_NameHints(t *testing.T) {
	cases := []struct {
		name string
		want model.EntityType
	}{
		{"Contacts", model.EntityContact},
		{"Key People", model.EntityContact},
		{"Open Opportunities", model.EntityOpportunity},
		{"Deal Pipeline", model.EntityOpportunity},
		{"Call Notes", model.EntityInteraction},
		{"Activity Log", model.EntityInteraction},
		{"Accounts", model.EntityOrganization},
		{"Companies", model.EntityOrganization},
	}
	for _, tc := range cases {
		sheet := &model.Sheet{Name: tc.name}
		assert.Equal(t, tc.want, ClassifySheet(sheet), "sheet %q", tc.name)
	}
}

func TestClassifySheet_HeaderScoring(t *testing.T) {
	sheet := profiledSheet("Sheet1", "First Name", "Last Name", "Title", "Email")
	assert.Equal(t, model.EntityContact, ClassifySheet(sheet))

	sheet = profiledSheet("Sheet2", "Stage", "Amount", "Close Date")
	assert.Equal(t, model.EntityOpportunity, ClassifySheet(sheet))
}

func TestClassifySheet_DefaultsToOrganization(t *testing.T) {
	sheet := profiledSheet("Data", "Aaa", "Bbb")
	assert.Equal(t, model.EntityOrganization, ClassifySheet(sheet))
}
