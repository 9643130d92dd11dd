// Package htmldoc wraps a parsed HTML tree with absence-tolerant traversal.
//
// Every lookup returns an explicit zero value or empty slice when the
// expected structure is missing. Nothing in this package panics on
// malformed or truncated HTML; the worst case is an empty document.
package htmldoc

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Document is a traversable HTML tree.
type Document struct {
	doc *goquery.Document
}

// Parse builds a Document from raw HTML text. Malformed input degrades to
// whatever tree the tokenizer recovers; a hard parse failure yields an
// empty document rather than an error.
func Parse(html string) *Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		doc, _ = goquery.NewDocumentFromReader(strings.NewReader(""))
	}
	return &Document{doc: doc}
}

// Tables returns every <table> in document order.
func (d *Document) Tables() []Table {
	if d == nil || d.doc == nil {
		return nil
	}
	var tables []Table
	d.doc.Find("table").Each(func(i int, sel *goquery.Selection) {
		tables = append(tables, Table{sel: sel})
	})
	return tables
}

// Headings returns the text of every h1-h4 heading in document order.
func (d *Document) Headings() []string {
	if d == nil || d.doc == nil {
		return nil
	}
	var out []string
	d.doc.Find("h1, h2, h3, h4").Each(func(i int, sel *goquery.Selection) {
		out = append(out, Normalize(sel.Text()))
	})
	return out
}

// ListsAfterHeading returns the items of the first <ul> or <ol> following a
// heading whose text contains marker (case-insensitive). Used for the
// loosely structured announcement pages that list names as prose bullets.
func (d *Document) ListsAfterHeading(marker string) []string {
	if d == nil || d.doc == nil {
		return nil
	}
	marker = strings.ToLower(marker)
	var items []string
	d.doc.Find("h1, h2, h3, h4").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		if !strings.Contains(strings.ToLower(sel.Text()), marker) {
			return true
		}
		list := sel.NextAllFiltered("ul, ol").First()
		if list.Length() == 0 {
			list = sel.Parent().Find("ul, ol").First()
		}
		list.Find("li").Each(func(j int, li *goquery.Selection) {
			if text := Normalize(li.Text()); text != "" {
				items = append(items, text)
			}
		})
		return false
	})
	return items
}

// Table is a single <table> element.
type Table struct {
	sel *goquery.Selection
}

// Rows returns the table's <tr> elements in order. USACO pages stuff every
// row into <tbody> without a <thead>, so the header row, when present, is
// simply the first row.
func (t Table) Rows() []Row {
	if t.sel == nil {
		return nil
	}
	var rows []Row
	t.sel.Find("tr").Each(func(i int, sel *goquery.Selection) {
		rows = append(rows, Row{sel: sel})
	})
	return rows
}

// HeaderTexts returns the normalized text of the table's <th> cells, or nil
// when the table has no header cells.
func (t Table) HeaderTexts() []string {
	if t.sel == nil {
		return nil
	}
	var out []string
	t.sel.Find("th").Each(func(i int, sel *goquery.Selection) {
		out = append(out, Normalize(sel.Text()))
	})
	return out
}

// PrecedingHeading returns the text of the nearest h1-h4 before the table,
// or "" when there is none. Walks preceding siblings first, then the
// parent's preceding siblings.
func (t Table) PrecedingHeading() string {
	if t.sel == nil {
		return ""
	}
	for sel := t.sel; sel.Length() > 0; sel = sel.Parent() {
		h := sel.PrevAllFiltered("h1, h2, h3, h4").First()
		if h.Length() > 0 {
			return Normalize(h.Text())
		}
	}
	return ""
}

// Row is a single <tr> element.
type Row struct {
	sel *goquery.Selection
}

// Cells returns the row's <td> cells in order.
func (r Row) Cells() []Cell {
	if r.sel == nil {
		return nil
	}
	var cells []Cell
	r.sel.Find("td").Each(func(i int, sel *goquery.Selection) {
		cells = append(cells, Cell{sel: sel})
	})
	return cells
}

// CellTexts returns the normalized text of every cell.
func (r Row) CellTexts() []string {
	cells := r.Cells()
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = c.Text()
	}
	return out
}

// Attr returns the row's attribute value, or "" when absent.
func (r Row) Attr(name string) string {
	if r.sel == nil {
		return ""
	}
	val, _ := r.sel.Attr(name)
	return val
}

// IsHeader reports whether the row contains <th> cells.
func (r Row) IsHeader() bool {
	return r.sel != nil && r.sel.Find("th").Length() > 0
}

// IsBlank reports whether the row has no cells or only empty ones. Some
// announcement pages carry stray "<td></td>" rows.
func (r Row) IsBlank() bool {
	cells := r.Cells()
	if len(cells) == 0 {
		return true
	}
	for _, c := range cells {
		if c.Text() != "" {
			return false
		}
	}
	return true
}

// Cell is a single <td> element.
type Cell struct {
	sel *goquery.Selection
}

// Text returns the cell's normalized text content.
func (c Cell) Text() string {
	if c.sel == nil {
		return ""
	}
	return Normalize(c.sel.Text())
}

// Attr returns the cell's attribute value, or "" when absent.
func (c Cell) Attr(name string) string {
	if c.sel == nil {
		return ""
	}
	val, _ := c.sel.Attr(name)
	return val
}

// Normalize collapses runs of whitespace, including non-breaking spaces,
// into single spaces and trims the ends.
func Normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
