package importer

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// readHTML reads the first <table> whose header row names the award columns.
// Line numbers count table rows, header included.
func readHTML(r io.Reader) ([]rawRow, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("html: %w", err)
	}

	var (
		rows  []rawRow
		found bool
	)

	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		trs := table.Find("tr")
		if trs.Length() == 0 {
			return true
		}

		cols, err := newColumns(cellTexts(trs.First()))
		if err != nil {
			return true
		}

		found = true
		trs.Slice(1, trs.Length()).Each(func(i int, tr *goquery.Selection) {
			cells := cellTexts(tr)
			if len(cells) == 0 {
				return
			}
			rows = append(rows, cols.row(i+2, cells))
		})
		return false
	})

	if !found {
		return nil, fmt.Errorf("html: no table with year and title columns")
	}
	return rows, nil
}

func cellTexts(tr *goquery.Selection) []string {
	cells := tr.Find("th, td")
	out := make([]string, 0, cells.Length())
	cells.Each(func(_ int, cell *goquery.Selection) {
		// markup whitespace around a cell is not part of its value
		out = append(out, strings.TrimSpace(cell.Text()))
	})
	return out
}
