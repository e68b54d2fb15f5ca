package pipeline

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"infobox/internal"
)

const (
	FormatCSV  = "csv"
	FormatHTML = "html"
	FormatXLSX = "xlsx"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported input format")
	ErrUnknownEncoding   = errors.New("unknown input encoding")
	ErrMalformedRow      = errors.New("malformed row")
	ErrNegativeSkip      = errors.New("skip rows must not be negative")
)

func DetectFormat(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".html", ".htm":
		return FormatHTML, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// ReadFile reads path and returns its rows together with the raw bytes.
func ReadFile(path string, opts internal.SourceOptions) ([]internal.RawRow, []byte, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, nil, err
	}
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	rows, err := ReadRows(format, blob, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, blob, nil
}

func ReadRows(format string, blob []byte, opts internal.SourceOptions) ([]internal.RawRow, error) {
	switch format {
	case FormatCSV:
		return ReadCSV(bytes.NewReader(blob), opts)
	case FormatHTML:
		return ReadHTMLTable(bytes.NewReader(blob), opts)
	case FormatXLSX:
		return ReadXLSX(bytes.NewReader(blob), opts)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// ReadCSV treats the first record as the header and drops opts.SkipRows
// records after it. Ragged records fail the whole read.
func ReadCSV(r io.Reader, opts internal.SourceOptions) ([]internal.RawRow, error) {
	if err := checkOptions(opts); err != nil {
		return nil, err
	}
	dec, err := decoderFor(opts.Encoding)
	if err != nil {
		return nil, err
	}
	reader := csv.NewReader(transform.NewReader(r, dec))

	headers, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("csv: missing header row")
	}
	if err != nil {
		return nil, fmt.Errorf("csv header: %w", err)
	}

	for i := 0; i < opts.SkipRows; i++ {
		if _, err := reader.Read(); err != nil {
			if errors.Is(err, io.EOF) {
				return []internal.RawRow{}, nil
			}
			return nil, fmt.Errorf("csv: %w: %v", ErrMalformedRow, err)
		}
	}

	rows := []internal.RawRow{}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv: %w: %v", ErrMalformedRow, err)
		}
		line, _ := reader.FieldPos(0)
		row, err := buildRow(headers, record, line)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func checkOptions(opts internal.SourceOptions) error {
	if opts.SkipRows < 0 {
		return fmt.Errorf("%w: %d", ErrNegativeSkip, opts.SkipRows)
	}
	return nil
}

func buildRow(headers, values []string, lineNo int) (internal.RawRow, error) {
	if len(values) != len(headers) {
		return internal.RawRow{}, fmt.Errorf("line %d: %w: %d values for %d columns", lineNo, ErrMalformedRow, len(values), len(headers))
	}
	cells := make([]internal.Cell, len(headers))
	for i, h := range headers {
		cells[i] = internal.Cell{Column: h, Value: values[i]}
	}
	return internal.RawRow{LineNo: lineNo, Cells: cells}, nil
}

func normalizeEncoding(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == "utf8" {
		return "utf-8"
	}
	return name
}

func decoderFor(name string) (*encoding.Decoder, error) {
	switch normalizeEncoding(name) {
	case "utf-8":
		return unicode.UTF8BOM.NewDecoder(), nil
	case "latin1", "iso-8859-1":
		return charmap.ISO8859_1.NewDecoder(), nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252.NewDecoder(), nil
	case "windows-1251", "cp1251":
		return charmap.Windows1251.NewDecoder(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownEncoding, name)
	}
}
