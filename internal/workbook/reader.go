// Package workbook reads legacy spreadsheet exports and infers their
// structure: header-row location, column types, and data population.
package workbook

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/crm-migrate/internal/model"
)

// RawSheet is one workbook page as a typed cell matrix, before analysis.
type RawSheet struct {
	Name  string
	Cells [][]model.Cell
}

// ReadWorkbook opens an XLSX file and resolves every sheet into a typed
// cell matrix. Cell values are resolved into the closed Cell variant once
// here and never handled as raw strings downstream.
func ReadWorkbook(path string) ([]RawSheet, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "workbook: open file")
	}

	sheets := make([]RawSheet, 0, len(f.Sheets))
	for _, sheet := range f.Sheets {
		rows := make([][]model.Cell, len(sheet.Rows))
		for i, row := range sheet.Rows {
			cells := make([]model.Cell, len(row.Cells))
			for j, cell := range row.Cells {
				cells[j] = resolveCell(cell)
			}
			rows[i] = cells
		}
		sheets = append(sheets, RawSheet{Name: sheet.Name, Cells: rows})
	}

	return sheets, nil
}

// resolveCell maps a tealeg cell onto the closed Cell variant.
func resolveCell(cell *xlsx.Cell) model.Cell {
	switch cell.Type() {
	case xlsx.CellTypeBool:
		return model.Cell{Kind: model.CellBool, Bool: cell.Bool()}
	case xlsx.CellTypeNumeric:
		if cell.IsTime() {
			if t, err := cell.GetTime(false); err == nil {
				return model.Cell{Kind: model.CellDate, Date: t}
			}
		}
		if n, err := cell.Float(); err == nil {
			return model.Cell{Kind: model.CellNumber, Number: n}
		}
		return model.Cell{Kind: model.CellText, Text: cell.String()}
	case xlsx.CellTypeDate:
		if t, err := cell.GetTime(false); err == nil {
			return model.Cell{Kind: model.CellDate, Date: t}
		}
		return model.Cell{Kind: model.CellText, Text: cell.String()}
	case xlsx.CellTypeStringFormula:
		return model.Cell{Kind: model.CellFormula, Text: cell.String(), Formula: cell.Formula()}
	default:
		s := cell.String()
		if s == "" {
			return model.EmptyCell
		}
		return model.Cell{Kind: model.CellText, Text: s}
	}
}
