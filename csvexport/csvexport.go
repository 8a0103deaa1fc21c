// Package csvexport renders a rectangular view of computed cell values as
// CSV, one record per row. The sheet must have been evaluated first.
package csvexport

import (
	"encoding/csv"
	"io"
	"strings"

	"tally/cell"
	"tally/sheet"
)

// Write renders the cells of rng, row by row. Empty and unset cells become
// empty fields; errors render in their "#ERR: ..." display form.
func Write(w io.Writer, s *sheet.Sheet, rng cell.Range) error {
	cw := csv.NewWriter(w)
	cols := rng.Cols()
	for _, row := range rng.Rows() {
		record := make([]string, 0, len(cols))
		for _, col := range cols {
			v, ok := s.Value(cell.Address{Col: col, Row: row})
			if !ok {
				record = append(record, "")
				continue
			}
			record = append(record, v.String())
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// String renders the range to a CSV string.
func String(s *sheet.Sheet, rng cell.Range) (string, error) {
	var b strings.Builder
	if err := Write(&b, s, rng); err != nil {
		return "", err
	}
	return b.String(), nil
}
