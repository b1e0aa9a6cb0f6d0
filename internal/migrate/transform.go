package migrate

import (
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/crm-migrate/internal/model"
)

// dateLayouts are tried in order when a date arrives as text.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"02.01.2006",
	"Jan 2, 2006",
	"2 Jan 2006",
}

// buildRecord transforms one data row into an entity value using the
// sheet's mapping suggestions. A missing required field or an empty row
// is a validation error: the row is counted and the run continues.
func buildRecord(entity model.EntityType, sheet *model.Sheet, suggestions []model.MappingSuggestion, row int) (any, error) {
	values := rowValues(sheet, suggestions, row)
	if len(values) == 0 {
		return nil, eris.New("row has no mapped values")
	}

	switch entity {
	case model.EntityOrganization:
		return buildOrganization(values)
	case model.EntityContact:
		return buildContact(values)
	case model.EntityOpportunity:
		return buildOpportunity(values)
	case model.EntityInteraction:
		return buildInteraction(values)
	default:
		return nil, eris.Errorf("unknown entity type %q", entity)
	}
}

// rowValues resolves each suggested mapping against one row, dropping
// empty cells.
func rowValues(sheet *model.Sheet, suggestions []model.MappingSuggestion, row int) map[string]model.Cell {
	values := make(map[string]model.Cell, len(suggestions))
	for _, s := range suggestions {
		if row >= len(sheet.Cells) || s.SourceColumn >= len(sheet.Cells[row]) {
			continue
		}
		cell := sheet.Cells[row][s.SourceColumn]
		if cell.IsEmpty() {
			continue
		}
		values[s.TargetField] = cell
	}
	return values
}

func buildOrganization(values map[string]model.Cell) (any, error) {
	name := textValue(values, "name")
	if name == "" {
		return nil, eris.New("organization: name is required")
	}
	return model.Organization{
		Name:     name,
		Email:    textValue(values, "email"),
		Phone:    textValue(values, "phone"),
		Website:  textValue(values, "website"),
		Segment:  textValue(values, "segment"),
		Priority: textValue(values, "priority"),
		Address:  textValue(values, "address"),
	}, nil
}

func buildContact(values map[string]model.Cell) (any, error) {
	first := textValue(values, "first_name")
	last := textValue(values, "last_name")

	// Fall back to splitting a single full-name column.
	if first == "" && last == "" {
		full := textValue(values, "name")
		if full == "" {
			return nil, eris.New("contact: name is required")
		}
		parts := strings.Fields(full)
		first = parts[0]
		if len(parts) > 1 {
			last = strings.Join(parts[1:], " ")
		}
	}
	if last == "" {
		last = first
		first = ""
	}

	return model.Contact{
		FirstName:    first,
		LastName:     last,
		Email:        textValue(values, "email"),
		Phone:        textValue(values, "phone"),
		Title:        textValue(values, "title"),
		Organization: textValue(values, "organization"),
	}, nil
}

func buildOpportunity(values map[string]model.Cell) (any, error) {
	name := textValue(values, "name")
	if name == "" {
		return nil, eris.New("opportunity: name is required")
	}

	amount, err := numberValue(values, "amount")
	if err != nil {
		return nil, eris.Wrap(err, "opportunity")
	}

	return model.Opportunity{
		Name:         name,
		Stage:        textValue(values, "stage"),
		Amount:       amount,
		CloseDate:    dateValue(values, "close_date"),
		Organization: textValue(values, "organization"),
	}, nil
}

func buildInteraction(values map[string]model.Cell) (any, error) {
	subject := textValue(values, "subject")
	if subject == "" {
		return nil, eris.New("interaction: subject is required")
	}
	return model.Interaction{
		Kind:       textValue(values, "kind"),
		Subject:    subject,
		Notes:      textValue(values, "notes"),
		OccurredAt: dateValue(values, "occurred_at"),
		Contact:    textValue(values, "contact"),
	}, nil
}

func textValue(values map[string]model.Cell, field string) string {
	cell, ok := values[field]
	if !ok {
		return ""
	}
	return cell.AsString()
}

func numberValue(values map[string]model.Cell, field string) (float64, error) {
	cell, ok := values[field]
	if !ok {
		return 0, nil
	}
	if cell.Kind == model.CellNumber {
		return cell.Number, nil
	}

	s := strings.TrimSpace(cell.AsString())
	s = strings.TrimLeft(s, "$€£")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, eris.Errorf("field %s: %q is not a number", field, cell.AsString())
	}
	return n, nil
}

func dateValue(values map[string]model.Cell, field string) *time.Time {
	cell, ok := values[field]
	if !ok {
		return nil
	}
	if cell.Kind == model.CellDate {
		d := cell.Date
		return &d
	}

	s := strings.TrimSpace(cell.AsString())
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
