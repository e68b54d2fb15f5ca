package pipeline

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/transform"

	"infobox/internal"
)

// ReadHTMLTable reads the first <table> of an HTML export. Its first <tr> holds
// the headers.
func ReadHTMLTable(r io.Reader, opts internal.SourceOptions) ([]internal.RawRow, error) {
	if err := checkOptions(opts); err != nil {
		return nil, err
	}
	dec, err := decoderFor(opts.Encoding)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(transform.NewReader(r, dec))
	if err != nil {
		return nil, err
	}

	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("html: no <table> element")
	}
	trs := table.Find("tr")
	if trs.Length() == 0 {
		return nil, fmt.Errorf("html: missing header row")
	}

	headers := []string{}
	trs.First().Find("th,td").Each(func(_ int, cell *goquery.Selection) {
		headers = append(headers, strings.TrimSpace(cell.Text()))
	})

	rows := []internal.RawRow{}
	for i := 1 + opts.SkipRows; i < trs.Length(); i++ {
		values := []string{}
		trs.Eq(i).Find("th,td").Each(func(_ int, cell *goquery.Selection) {
			values = append(values, cell.Text())
		})
		row, err := buildRow(headers, values, i+1)
		if err != nil {
			return nil, fmt.Errorf("html: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}
