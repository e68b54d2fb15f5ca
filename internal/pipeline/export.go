package pipeline

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"infobox/internal"
	"infobox/internal/schema"
)

// WriteJSON writes records as a single JSON array followed by a newline.
func WriteJSON(w io.Writer, records []internal.Record, pretty bool) error {
	if records == nil {
		records = []internal.Record{}
	}
	var (
		blob []byte
		err  error
	)
	if pretty {
		blob, err = json.MarshalIndent(records, "", "  ")
	} else {
		blob, err = json.Marshal(records)
	}
	if err != nil {
		return err
	}
	if _, err := w.Write(append(blob, '\n')); err != nil {
		return err
	}
	return nil
}

func ExportJSON(records []internal.Record, outputPath string, pretty bool) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	if err := WriteJSON(f, records, pretty); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// ExportRecordsToXLSX writes one row per record. Classification fields get
// "classification.<name>" columns and lists are joined with "|".
func ExportRecordsToXLSX(records []internal.Record, sch schema.Schema, outputPath string) error {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	topLevel := sch.TopLevel()
	headers := make([]string, 0, len(topLevel)+len(sch.Classification))
	headers = append(headers, topLevel...)
	for _, c := range sch.Classification {
		headers = append(headers, schema.ClassificationKey+"."+c)
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, rec := range records {
		r := i + 2
		set := func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue(sheet, cell, cellValue(value))
		}
		for j, name := range topLevel {
			set(j+1, rec.Fields[name])
		}
		for j, name := range sch.Classification {
			set(len(topLevel)+j+1, rec.Classification[name])
		}
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}

func cellValue(v any) string {
	switch t := v.(type) {
	case *string:
		if t == nil {
			return ""
		}
		return *t
	case []string:
		return strings.Join(t, "|")
	default:
		return ""
	}
}
