package famseed

import (
	"log"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/wrenfield/famengine/pkg/fam"
)

// ParseHTMLTable scrapes a single seed table out of an HTML fragment. The
// first row is the header: its first cell is ignored, and every remaining
// cell names a PeriodId. Every following row's first cell names an
// AccountId, and every remaining cell is that account's value for the
// column's period. Cells that don't parse as a number are skipped rather
// than failing the whole table, since seed tables are frequently copied
// out of a spreadsheet with stray footnote markers.
func ParseHTMLTable(html string) ([]fam.Value, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	var values []fam.Value
	var periods []fam.PeriodId

	doc.Find("table").First().Find("tr").Each(func(rowIdx int, row *goquery.Selection) {
		cells := row.Find("td, th")
		if rowIdx == 0 {
			cells.Each(func(colIdx int, cell *goquery.Selection) {
				if colIdx == 0 {
					return
				}
				periods = append(periods, fam.PeriodId(strings.TrimSpace(cell.Text())))
			})
			return
		}

		var account fam.AccountId
		cells.Each(func(colIdx int, cell *goquery.Selection) {
			text := strings.TrimSpace(cell.Text())
			if colIdx == 0 {
				account = fam.AccountId(text)
				return
			}
			col := colIdx - 1
			if col >= len(periods) {
				return
			}
			v, err := strconv.ParseFloat(strings.ReplaceAll(text, ",", ""), 64)
			if err != nil {
				log.Printf("[famseed] row %q: skipping non-numeric cell %q", account, text)
				return
			}
			values = append(values, fam.Value{
				Account: account,
				Period:  periods[col],
				Value:   v,
				IsInput: true,
			})
		})
	})

	return values, nil
}
