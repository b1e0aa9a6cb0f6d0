package model

// DataType is the inferred content type of a profiled column.
type DataType string

const (
	DataTypeString  DataType = "string"
	DataTypeNumber  DataType = "number"
	DataTypeDate    DataType = "date"
	DataTypeEmail   DataType = "email"
	DataTypePhone   DataType = "phone"
	DataTypeUnknown DataType = "unknown"
)

// ColumnProfile describes one column's inferred type and population,
// sampled over the first rows below the header. Columns that sampled
// zero non-empty cells are never retained in analyzer output.
type ColumnProfile struct {
	Index         int      `json:"index"`
	Header        string   `json:"header"`
	DataType      DataType `json:"data_type"`
	Samples       []string `json:"samples,omitempty"`
	NonEmptyCount int      `json:"non_empty_count"`
}

// Sheet is one analyzed workbook page: the raw cell matrix plus the
// derived header location and column profiles. Produced per analysis
// request and discarded after use.
type Sheet struct {
	Name           string          `json:"name"`
	Cells          [][]Cell        `json:"-"`
	HeaderRowIndex int             `json:"header_row_index"`
	DataStartRow   int             `json:"data_start_row"`
	TotalRows      int             `json:"total_rows"`
	Headers        []string        `json:"headers"`
	ColumnProfiles []ColumnProfile `json:"column_profiles"`
}

// DataRowCount returns the number of rows below the header row.
func (s *Sheet) DataRowCount() int {
	n := s.TotalRows - s.DataStartRow
	if n < 0 {
		return 0
	}
	return n
}

// ProfileByHeader returns the profile whose header matches exactly, or nil.
func (s *Sheet) ProfileByHeader(header string) *ColumnProfile {
	for i := range s.ColumnProfiles {
		if s.ColumnProfiles[i].Header == header {
			return &s.ColumnProfiles[i]
		}
	}
	return nil
}
