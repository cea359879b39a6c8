package admin

import (
	"io"

	"github.com/pkg/errors"
	"github.com/tealeg/xlsx"
)

// Export writes the rows matching the current search as a one-sheet
// workbook, one column per descriptor column.
func (s *Screen[T]) Export(w io.Writer) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet(capitalize(s.desc.Name))
	if err != nil {
		return errors.Wrap(err, "add sheet")
	}

	header := sheet.AddRow()
	for _, col := range s.desc.Columns {
		header.AddCell().SetValue(col.Header)
	}

	for _, row := range s.Rows() {
		r := sheet.AddRow()
		for _, col := range s.desc.Columns {
			r.AddCell().SetValue(col.Value(row))
		}
	}

	if err := file.Write(w); err != nil {
		return errors.Wrap(err, "write workbook")
	}
	return nil
}
