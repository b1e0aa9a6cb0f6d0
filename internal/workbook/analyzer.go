package workbook

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/crm-migrate/internal/model"
)

// ErrEmptySheet signals that a sheet contains no rows and was skipped.
// Callers treat this as a structural condition, not a failure.
var ErrEmptySheet = eris.New("workbook: sheet is empty")

const (
	// headerScanDepth is how many leading rows are considered as header
	// candidates before falling back.
	headerScanDepth = 10

	// sampleDepth is how many rows below the header feed each column profile.
	sampleDepth = 100

	// maxSamples is how many example values a profile retains.
	maxSamples = 3
)

// headerKeywords is the fixed domain vocabulary used to score header
// candidates. Matching is substring on the normalized cell text.
var headerKeywords = []string{
	"name", "email", "phone", "organization", "company", "contact",
	"priority", "segment", "address", "city", "state", "zip", "title",
	"stage", "amount", "date", "notes", "type", "status", "website",
}

var (
	dateRe  = regexp.MustCompile(`^\d{1,4}[-/.]\d{1,2}[-/.]\d{1,4}$`)
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRe = regexp.MustCompile(`^[0-9()+.\-\s]{7,20}$`)
)

// Analyzer locates header rows and profiles columns of raw sheets.
type Analyzer struct {
	sampleDepth int
}

// NewAnalyzer returns an analyzer with the default sampling depth.
func NewAnalyzer() *Analyzer {
	return &Analyzer{sampleDepth: sampleDepth}
}

// Analyze locates the header row of raw and builds per-column profiles.
// Returns ErrEmptySheet when the sheet has no rows at all. Analysis is a
// pure function of the input: repeated runs over unchanged cells yield
// identical output.
func (a *Analyzer) Analyze(raw RawSheet) (*model.Sheet, error) {
	if len(raw.Cells) == 0 {
		return nil, eris.Wrapf(ErrEmptySheet, "sheet %q", raw.Name)
	}

	headerRow := a.findHeaderRow(raw)

	sheet := &model.Sheet{
		Name:           raw.Name,
		Cells:          raw.Cells,
		HeaderRowIndex: headerRow,
		DataStartRow:   headerRow + 1,
		TotalRows:      len(raw.Cells),
	}
	sheet.Headers = headerLabels(raw.Cells[headerRow])
	sheet.ColumnProfiles = a.profileColumns(sheet)

	zap.L().Debug("sheet analyzed",
		zap.String("sheet", raw.Name),
		zap.Int("header_row", headerRow),
		zap.Int("columns", len(sheet.ColumnProfiles)),
	)

	return sheet, nil
}

// findHeaderRow scans the first rows for a qualifying header. A row
// qualifies with at least 3 non-empty cells, at least one textual cell
// that is not purely numeric, and either 2 domain-keyword matches or 5
// non-empty textual cells. A sheet-name-driven fallback then scans the
// first 3 rows for any domain keyword. Row 0 is the last resort.
func (a *Analyzer) findHeaderRow(raw RawSheet) int {
	limit := min(headerScanDepth, len(raw.Cells))

	for i := 0; i < limit; i++ {
		if rowQualifiesAsHeader(raw.Cells[i]) {
			return i
		}
	}

	keywords := fallbackKeywords(raw.Name)
	fallbackLimit := min(3, len(raw.Cells))
	for i := 0; i < fallbackLimit; i++ {
		for _, cell := range raw.Cells[i] {
			if cell.IsEmpty() {
				continue
			}
			if containsAny(normalizeLabel(cell.AsString()), keywords) {
				zap.L().Debug("header located via sheet-name fallback",
					zap.String("sheet", raw.Name),
					zap.Int("row", i),
				)
				return i
			}
		}
	}

	return 0
}

// fallbackKeywords narrows the fallback vocabulary to the entity the
// sheet name hints at; an unrecognized name keeps the full set.
func fallbackKeywords(sheetName string) []string {
	name := normalizeLabel(sheetName)
	switch {
	case strings.Contains(name, "contact") || strings.Contains(name, "people") || strings.Contains(name, "person"):
		return []string{"name", "email", "phone", "title", "contact"}
	case strings.Contains(name, "opportunit") || strings.Contains(name, "deal") || strings.Contains(name, "pipeline"):
		return []string{"name", "stage", "amount", "date", "close"}
	case strings.Contains(name, "interaction") || strings.Contains(name, "activit") || strings.Contains(name, "note"):
		return []string{"date", "type", "notes", "subject", "contact"}
	case strings.Contains(name, "org") || strings.Contains(name, "account") || strings.Contains(name, "compan"):
		return []string{"name", "email", "phone", "segment", "priority", "website"}
	default:
		return headerKeywords
	}
}

func rowQualifiesAsHeader(row []model.Cell) bool {
	nonEmpty := 0
	textual := 0
	keywordHits := 0
	hasNonNumericText := false

	for _, cell := range row {
		if cell.IsEmpty() {
			continue
		}
		nonEmpty++

		s := cell.AsString()
		if cell.Kind == model.CellText || cell.Kind == model.CellFormula {
			textual++
			if !isNumericLiteral(s) {
				hasNonNumericText = true
			}
		}
		if matchesAnyKeyword(normalizeLabel(s)) {
			keywordHits++
		}
	}

	if nonEmpty < 3 || !hasNonNumericText {
		return false
	}
	return keywordHits >= 2 || (nonEmpty >= 5 && textual >= 5)
}

// profileColumns samples data rows below the header and builds one
// profile per populated column. Columns with zero sampled values are
// dropped.
func (a *Analyzer) profileColumns(sheet *model.Sheet) []model.ColumnProfile {
	headers := sheet.Headers
	profiles := make([]model.ColumnProfile, 0, len(headers))

	sampleEnd := min(sheet.DataStartRow+a.sampleDepth, sheet.TotalRows)

	for col, header := range headers {
		profile := model.ColumnProfile{
			Index:    col,
			Header:   header,
			DataType: model.DataTypeUnknown,
		}

		for row := sheet.DataStartRow; row < sampleEnd; row++ {
			cell := cellAt(sheet.Cells, row, col)
			if cell.IsEmpty() {
				continue
			}
			profile.NonEmptyCount++
			if len(profile.Samples) < maxSamples {
				profile.Samples = append(profile.Samples, cell.AsString())
			}
			if profile.DataType == model.DataTypeUnknown {
				profile.DataType = inferDataType(cell)
			}
		}

		if profile.NonEmptyCount == 0 {
			continue
		}
		profiles = append(profiles, profile)
	}

	return profiles
}

// inferDataType applies the ordered pattern rules to the first non-empty
// sample. Typed cells short-circuit the text patterns.
func inferDataType(cell model.Cell) model.DataType {
	switch cell.Kind {
	case model.CellDate:
		return model.DataTypeDate
	case model.CellNumber:
		return model.DataTypeNumber
	case model.CellBool:
		return model.DataTypeString
	}

	s := cell.AsString()
	switch {
	case dateRe.MatchString(s):
		return model.DataTypeDate
	case emailRe.MatchString(s):
		return model.DataTypeEmail
	case looksLikePhone(s):
		return model.DataTypePhone
	case isNumericLiteral(s):
		return model.DataTypeNumber
	default:
		return model.DataTypeString
	}
}

// headerLabels renders header cells as labels, substituting a positional
// placeholder for blank cells.
func headerLabels(row []model.Cell) []string {
	labels := make([]string, len(row))
	for i, cell := range row {
		label := cell.AsString()
		if label == "" {
			label = fmt.Sprintf("column_%d", i+1)
		}
		labels[i] = label
	}
	return labels
}

func cellAt(cells [][]model.Cell, row, col int) model.Cell {
	if row >= len(cells) || col >= len(cells[row]) {
		return model.EmptyCell
	}
	return cells[row][col]
}

func matchesAnyKeyword(normalized string) bool {
	return containsAny(normalized, headerKeywords)
}

func containsAny(normalized string, keywords []string) bool {
	if normalized == "" {
		return false
	}
	for _, kw := range keywords {
		if strings.Contains(normalized, kw) {
			return true
		}
	}
	return false
}

// normalizeLabel lowercases and strips non-alphanumeric runes.
func normalizeLabel(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isNumericLiteral(s string) bool {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return false
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

func looksLikePhone(s string) bool {
	if !phoneRe.MatchString(s) {
		return false
	}
	digits := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return digits >= 7
}
