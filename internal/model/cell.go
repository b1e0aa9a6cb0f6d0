package model

import (
	"strconv"
	"strings"
	"time"
)

// CellKind discriminates the closed set of value shapes a spreadsheet cell
// can carry. Raw cell values are resolved into exactly one kind at read time
// and never passed around untyped after that.
type CellKind int

const (
	CellEmpty CellKind = iota
	CellText
	CellNumber
	CellBool
	CellDate
	CellFormula
)

func (k CellKind) String() string {
	switch k {
	case CellEmpty:
		return "empty"
	case CellText:
		return "text"
	case CellNumber:
		return "number"
	case CellBool:
		return "bool"
	case CellDate:
		return "date"
	case CellFormula:
		return "formula"
	default:
		return "unknown"
	}
}

// Cell is one resolved spreadsheet cell. Exactly one of the value fields is
// meaningful, selected by Kind. Formula cells keep the computed result in
// Text alongside the formula source.
type Cell struct {
	Kind    CellKind
	Text    string
	Number  float64
	Bool    bool
	Date    time.Time
	Formula string
}

// EmptyCell is the zero value shared by all blank cells.
var EmptyCell = Cell{Kind: CellEmpty}

// IsEmpty reports whether the cell carries no value. Whitespace-only text
// counts as empty.
func (c Cell) IsEmpty() bool {
	if c.Kind == CellEmpty {
		return true
	}
	return c.Kind == CellText && strings.TrimSpace(c.Text) == ""
}

// AsString renders the cell's value for display and for type inference.
func (c Cell) AsString() string {
	switch c.Kind {
	case CellText, CellFormula:
		return strings.TrimSpace(c.Text)
	case CellNumber:
		return strconv.FormatFloat(c.Number, 'f', -1, 64)
	case CellBool:
		return strconv.FormatBool(c.Bool)
	case CellDate:
		return c.Date.Format("2006-01-02")
	default:
		return ""
	}
}
