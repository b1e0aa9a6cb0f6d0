package workbook

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/crm-migrate/internal/model"
)

func text(s string) model.Cell {
	return model.Cell{Kind: model.CellText, Text: s}
}

func number(n float64) model.Cell {
	return model.Cell{Kind: model.CellNumber, Number: n}
}

func textRow(values ...string) []model.Cell {
	row := make([]model.Cell, len(values))
	for i, v := range values {
		if v == "" {
			row[i] = model.EmptyCell
			continue
		}
		row[i] = text(v)
	}
	return row
}

func TestAnalyze_BannerRowAboveHeader(t *testing.T) {
	raw := RawSheet{
		Name: "Organizations",
		Cells: [][]model.Cell{
			textRow("ACME Corp Master Account List", "", ""),
			textRow("Organization Name", "Priority", "Segment", "Email"),
			textRow("Acme Corp", "High", "Enterprise", "info@acme.com"),
			textRow("Globex", "Low", "SMB", "hello@globex.com"),
		},
	}

	sheet, err := NewAnalyzer().Analyze(raw)
	require.NoError(t, err)

	assert.Equal(t, 1, sheet.HeaderRowIndex)
	assert.Equal(t, 2, sheet.DataStartRow)
	assert.Equal(t, 4, sheet.TotalRows)
	assert.Equal(t, []string{"Organization Name", "Priority", "Segment", "Email"}, sheet.Headers)
}

func TestAnalyze_Idempotent(t *testing.T) {
	raw := RawSheet{
		Name: "Contacts",
		Cells: [][]model.Cell{
			textRow("First Name", "Last Name", "Email", "Phone"),
			textRow("Ada", "Lovelace", "ada@example.com", "555-0100"),
		},
	}

	a := NewAnalyzer()
	first, err := a.Analyze(raw)
	require.NoError(t, err)
	second, err := a.Analyze(raw)
	require.NoError(t, err)

	assert.Equal(t, first.HeaderRowIndex, second.HeaderRowIndex)
	assert.Equal(t, first.Headers, second.Headers)
	assert.Equal(t, first.ColumnProfiles, second.ColumnProfiles)
}

func TestAnalyze_UnpopulatedColumnDropped(t *testing.T) {
	raw := RawSheet{
		Name: "Organizations",
		Cells: [][]model.Cell{
			textRow("Organization Name", "Email", "Fax", "Segment"),
			textRow("Acme Corp", "info@acme.com", "", "Enterprise"),
			textRow("Globex", "hello@globex.com", "", "SMB"),
		},
	}

	sheet, err := NewAnalyzer().Analyze(raw)
	require.NoError(t, err)

	// Fax appears in raw headers but sampled zero values.
	assert.Contains(t, sheet.Headers, "Fax")
	assert.Nil(t, sheet.ProfileByHeader("Fax"))
	for _, p := range sheet.ColumnProfiles {
		assert.Greater(t, p.NonEmptyCount, 0)
	}
}

func TestAnalyze_EmptySheet(t *testing.T) {
	_, err := NewAnalyzer().Analyze(RawSheet{Name: "Blank"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptySheet)
}

func TestAnalyze_BlankHeaderGetsPlaceholder(t *testing.T) {
	raw := RawSheet{
		Name: "Organizations",
		Cells: [][]model.Cell{
			{text("Organization Name"), model.EmptyCell, text("Email"), text("Segment")},
			textRow("Acme Corp", "West", "info@acme.com", "Enterprise"),
		},
	}

	sheet, err := NewAnalyzer().Analyze(raw)
	require.NoError(t, err)
	assert.Equal(t, "column_2", sheet.Headers[1])

	p := sheet.ProfileByHeader("column_2")
	require.NotNil(t, p)
	assert.Equal(t, 1, p.NonEmptyCount)
}

func TestAnalyze_NoQualifyingHeaderDefaultsToRowZero(t *testing.T) {
	raw := RawSheet{
		Name: "Sheet1",
		Cells: [][]model.Cell{
			{number(1), number(2)},
			{number(3), number(4)},
		},
	}

	sheet, err := NewAnalyzer().Analyze(raw)
	require.NoError(t, err)
	assert.Equal(t, 0, sheet.HeaderRowIndex)
	assert.Equal(t, 1, sheet.DataStartRow)
}

func TestAnalyze_SheetNameFallback(t *testing.T) {
	// Only two header cells, so the qualifying rules fail, but the sheet
	// name points at contacts and row 0 carries a contact keyword.
	raw := RawSheet{
		Name: "Contacts",
		Cells: [][]model.Cell{
			textRow("Email", "Phone"),
			textRow("ada@example.com", "555-0100"),
			textRow("grace@example.com", "555-0101"),
		},
	}

	sheet, err := NewAnalyzer().Analyze(raw)
	require.NoError(t, err)
	assert.Equal(t, 0, sheet.HeaderRowIndex)
	assert.Equal(t, []string{"Email", "Phone"}, sheet.Headers)
}

func TestAnalyze_TypeInference(t *testing.T) {
	raw := RawSheet{
		Name: "Contacts",
		Cells: [][]model.Cell{
			textRow("Name", "Email", "Phone", "Hired", "Salary", "Notes"),
			{
				text("Ada Lovelace"),
				text("ada@example.com"),
				text("(555) 010-0100"),
				text("2021-04-01"),
				number(120000),
				text("prefers email"),
			},
		},
	}

	sheet, err := NewAnalyzer().Analyze(raw)
	require.NoError(t, err)

	types := map[string]model.DataType{}
	for _, p := range sheet.ColumnProfiles {
		types[p.Header] = p.DataType
	}

	assert.Equal(t, model.DataTypeString, types["Name"])
	assert.Equal(t, model.DataTypeEmail, types["Email"])
	assert.Equal(t, model.DataTypePhone, types["Phone"])
	assert.Equal(t, model.DataTypeDate, types["Hired"])
	assert.Equal(t, model.DataTypeNumber, types["Salary"])
	assert.Equal(t, model.DataTypeString, types["Notes"])
}

func TestAnalyze_SampleCapAndCount(t *testing.T) {
	cells := [][]model.Cell{
		textRow("Organization Name", "Priority", "Segment", "Email"),
	}
	for i := 0; i < 10; i++ {
		cells = append(cells, textRow("Org", "High", "SMB", "a@b.co"))
	}

	sheet, err := NewAnalyzer().Analyze(RawSheet{Name: "Orgs", Cells: cells})
	require.NoError(t, err)

	p := sheet.ProfileByHeader("Organization Name")
	require.NotNil(t, p)
	assert.Equal(t, 10, p.NonEmptyCount)
	assert.Len(t, p.Samples, 3)
}

func TestNormalizeLabel(t *testing.T) {
	assert.Equal(t, "organizationname", normalizeLabel("Organization Name"))
	assert.Equal(t, "email", normalizeLabel("  E-Mail!  "))
	assert.Equal(t, "", normalizeLabel("---"))
}
