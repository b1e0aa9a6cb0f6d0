package migrate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/crm-migrate/internal/model"
)

// mappedSheet builds a one-row sheet whose columns map one-to-one onto
// the given target fields.
func mappedSheet(fields []string, cells []model.Cell) (*model.Sheet, []model.MappingSuggestion) {
	sheet := &model.Sheet{
		Cells:     [][]model.Cell{cells},
		TotalRows: 1,
	}
	suggestions := make([]model.MappingSuggestion, len(fields))
	for i, f := range fields {
		suggestions[i] = model.MappingSuggestion{
			SourceColumn: i,
			TargetField:  f,
			Confidence:   model.ConfidenceHigh,
		}
	}
	return sheet, suggestions
}

func textCell(s string) model.Cell {
	return model.Cell{Kind: model.CellText, Text: s}
}

func TestBuildRecord_Organization(t *testing.T) {
	sheet, suggestions := mappedSheet(
		[]string{"name", "email", "segment"},
		[]model.Cell{textCell("Acme Corp"), textCell("info@acme.com"), textCell("Enterprise")},
	)

	record, err := buildRecord(model.EntityOrganization, sheet, suggestions, 0)
	require.NoError(t, err)

	org, ok := record.(model.Organization)
	require.True(t, ok)
	assert.Equal(t, "Acme Corp", org.Name)
	assert.Equal(t, "info@acme.com", org.Email)
	assert.Equal(t, "Enterprise", org.Segment)
}

func TestBuildRecord_OrganizationNameRequired(t *testing.T) {
	sheet, suggestions := mappedSheet(
		[]string{"name", "email"},
		[]model.Cell{model.EmptyCell, textCell("info@acme.com")},
	)

	_, err := buildRecord(model.EntityOrganization, sheet, suggestions, 0)
	assert.Error(t, err)
}

func TestBuildRecord_EmptyRow(t *testing.T) {
	sheet, suggestions := mappedSheet(
		[]string{"name"},
		[]model.Cell{model.EmptyCell},
	)

	_, err := buildRecord(model.EntityOrganization, sheet, suggestions, 0)
	assert.Error(t, err)
}

func TestBuildRecord_ContactSplitsFullName(t *testing.T) {
	sheet, suggestions := mappedSheet(
		[]string{"name", "email"},
		[]model.Cell{textCell("Ada King Lovelace"), textCell("ada@example.com")},
	)

	record, err := buildRecord(model.EntityContact, sheet, suggestions, 0)
	require.NoError(t, err)

	contact, ok := record.(model.Contact)
	require.True(t, ok)
	assert.Equal(t, "Ada", contact.FirstName)
	assert.Equal(t, "King Lovelace", contact.LastName)
}

func TestBuildRecord_ContactSingleToken(t *testing.T) {
	sheet, suggestions := mappedSheet(
		[]string{"name"},
		[]model.Cell{textCell("Cher")},
	)

	record, err := buildRecord(model.EntityContact, sheet, suggestions, 0)
	require.NoError(t, err)

	contact := record.(model.Contact)
	assert.Empty(t, contact.FirstName)
	assert.Equal(t, "Cher", contact.LastName)
}

func TestBuildRecord_ContactExplicitNamesWin(t *testing.T) {
	sheet, suggestions := mappedSheet(
		[]string{"first_name", "last_name", "name"},
		[]model.Cell{textCell("Grace"), textCell("Hopper"), textCell("Someone Else")},
	)

	record, err := buildRecord(model.EntityContact, sheet, suggestions, 0)
	require.NoError(t, err)

	contact := record.(model.Contact)
	assert.Equal(t, "Grace", contact.FirstName)
	assert.Equal(t, "Hopper", contact.LastName)
}

func TestBuildRecord_OpportunityAmountParsing(t *testing.T) {
	sheet, suggestions := mappedSheet(
		[]string{"name", "amount", "close_date"},
		[]model.Cell{textCell("Renewal"), textCell("$1,200.50"), textCell("2026-03-15")},
	)

	record, err := buildRecord(model.EntityOpportunity, sheet, suggestions, 0)
	require.NoError(t, err)

	opp := record.(model.Opportunity)
	assert.Equal(t, "Renewal", opp.Name)
	assert.InDelta(t, 1200.50, opp.Amount, 0.001)
	require.NotNil(t, opp.CloseDate)
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), *opp.CloseDate)
}

func TestBuildRecord_OpportunityBadAmount(t *testing.T) {
	sheet, suggestions := mappedSheet(
		[]string{"name", "amount"},
		[]model.Cell{textCell("Renewal"), textCell("a lot")},
	)

	_, err := buildRecord(model.EntityOpportunity, sheet, suggestions, 0)
	assert.Error(t, err)
}

func TestBuildRecord_InteractionDateFromCell(t *testing.T) {
	occurred := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	sheet, suggestions := mappedSheet(
		[]string{"subject", "occurred_at", "contact"},
		[]model.Cell{
			textCell("Kickoff call"),
			{Kind: model.CellDate, Date: occurred},
			textCell("Ada Lovelace"),
		},
	)

	record, err := buildRecord(model.EntityInteraction, sheet, suggestions, 0)
	require.NoError(t, err)

	in := record.(model.Interaction)
	assert.Equal(t, "Kickoff call", in.Subject)
	require.NotNil(t, in.OccurredAt)
	assert.Equal(t, occurred, *in.OccurredAt)
	assert.Equal(t, "Ada Lovelace", in.Contact)
}

func TestBuildRecord_UnparseableDateDropped(t *testing.T) {
	sheet, suggestions := mappedSheet(
		[]string{"name", "close_date"},
		[]model.Cell{textCell("Renewal"), textCell("sometime soon")},
	)

	record, err := buildRecord(model.EntityOpportunity, sheet, suggestions, 0)
	require.NoError(t, err)
	assert.Nil(t, record.(model.Opportunity).CloseDate)
}
