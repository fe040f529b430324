// Package render maps SWAPI records into two-column table rows and keeps
// the document view model (loading indicator, tables, page display, error
// state) that the HTML and terminal renderers draw from.
package render

// Record is anything that can be shown as a two-cell table row.
type Record interface {
	PrimaryField() string
	SecondaryField() string
}

// Row is one table row with exactly two ordered cells.
type Row struct {
	Cells [2]string `json:"cells"`
}

// BuildRows maps records into rows, one per record, preserving order.
// An empty or nil input yields an empty, non-nil slice.
func BuildRows[R Record](records []R) []Row {
	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		rows = append(rows, Row{Cells: [2]string{rec.PrimaryField(), rec.SecondaryField()}})
	}
	return rows
}
