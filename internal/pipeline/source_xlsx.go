package pipeline

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"infobox/internal"
)

// ReadXLSX reads the first sheet of a workbook. excelize drops trailing empty
// cells, so short rows are padded back to the header width.
func ReadXLSX(r io.Reader, opts internal.SourceOptions) ([]internal.RawRow, error) {
	if err := checkOptions(opts); err != nil {
		return nil, err
	}
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx: workbook has no sheets")
	}
	sheetRows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}
	if len(sheetRows) == 0 {
		return nil, fmt.Errorf("xlsx: missing header row")
	}

	headers := sheetRows[0]
	rows := []internal.RawRow{}
	for i := 1 + opts.SkipRows; i < len(sheetRows); i++ {
		values := sheetRows[i]
		if len(values) < len(headers) {
			padded := make([]string, len(headers))
			copy(padded, values)
			values = padded
		}
		row, err := buildRow(headers, values, i+1)
		if err != nil {
			return nil, fmt.Errorf("xlsx %s: %w", sheets[0], err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}
