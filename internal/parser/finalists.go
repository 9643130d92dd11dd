package parser

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/herdstats/herdstats/internal/htmldoc"
	"github.com/herdstats/herdstats/internal/resolve"
	"github.com/herdstats/herdstats/internal/types"
)

// FinalistsParser extracts camp invitees from a season's announcement page.
// These pages are less tabular than result pages; extraction runs a set of
// independent section matchers and each degrades to "section not found"
// without affecting the others.
type FinalistsParser struct {
	logger *slog.Logger
}

// NewFinalistsParser creates a finalists page parser.
func NewFinalistsParser(logger *slog.Logger) *FinalistsParser {
	return &FinalistsParser{
		logger: logger.With("component", "finalists_parser"),
	}
}

// Parse extracts the finalist entries for one season. The EGOI section is
// only recognized for seasons from 2021-22 onward; before that its absence
// is expected and produces no diagnostic.
func (p *FinalistsParser) Parse(html string, season types.Season) ([]types.FinalistEntry, []types.Diagnostic) {
	diags := types.NewCollector(fmt.Sprintf("%s finalists", season))

	shape, err := resolve.For(season, types.Gold, resolve.PageFinalists)
	if err != nil {
		diags.Pagef("unresolvable page shape: %v", err)
		return nil, diags.Diagnostics()
	}

	doc := htmldoc.Parse(html)

	entries := p.parseTables(doc, shape, diags)
	if entries == nil {
		// Some announcement years used prose lists instead of tables.
		entries = p.parseLists(doc, shape)
	}
	if len(entries) == 0 {
		diags.Pagef("no finalist section found")
	}

	p.logger.Debug("finalists page parsed",
		"page", diags.Page(),
		"entries", len(entries),
		"diagnostics", diags.Len(),
	)
	return entries, diags.Diagnostics()
}

// parseTables handles the tabular page layout: the first table lists the
// general camp invitees and a second table, when present, the EGOI invitees.
func (p *FinalistsParser) parseTables(doc *htmldoc.Document, shape resolve.Shape, diags *types.Collector) []types.FinalistEntry {
	tables := doc.Tables()
	if len(tables) == 0 {
		return nil
	}
	if len(tables) > 2 {
		diags.Pagef("finalists page has %d tables, expected at most two", len(tables))
	}

	var entries []types.FinalistEntry
	for tableIdx, table := range tables {
		if tableIdx >= 2 {
			break
		}
		category := p.tableCategory(tableIdx, table, shape, diags)

		for rowIdx, row := range table.Rows() {
			cells := row.Cells()
			if len(cells) == 0 {
				continue
			}
			// Stray "<td></td>" rows appear on the 2014 and 2024 pages.
			if row.IsBlank() {
				continue
			}
			// Some years render the header with <td> instead of <th>.
			if rowIdx == 0 && looksLikeHeader(row.CellTexts()) {
				continue
			}

			entry, ok := parseFinalistRow(row, rowIdx, category, diags)
			if ok {
				entries = append(entries, entry)
			}
		}
	}
	return entries
}

// tableCategory classifies a table as general or EGOI invitees. A heading
// mentioning EGOI wins; otherwise the second table is the EGOI list on
// pages where the resolver says the category exists.
func (p *FinalistsParser) tableCategory(tableIdx int, table htmldoc.Table, shape resolve.Shape, diags *types.Collector) types.FinalistCategory {
	egoiHeading := strings.Contains(strings.ToLower(table.PrecedingHeading()), "egoi")

	if egoiHeading && !shape.EGOICategory {
		diags.Pagef("EGOI section present before the 2021-22 season")
		return types.CategoryFinalist
	}
	if egoiHeading || (tableIdx == 1 && shape.EGOICategory) {
		return types.CategoryEGOI
	}
	return types.CategoryFinalist
}

// parseFinalistRow extracts one invitee. The usual layout is graduation
// year, name, school, state; rows with a different cell count keep whatever
// fields can be recovered.
func parseFinalistRow(row htmldoc.Row, rowIdx int, category types.FinalistCategory, diags *types.Collector) (types.FinalistEntry, bool) {
	texts := row.CellTexts()
	entry := types.FinalistEntry{Category: category}

	if len(texts) == 4 {
		if year, err := strconv.Atoi(texts[0]); err == nil {
			entry.GradYear = year
		} else {
			diags.Cellf(rowIdx, 0, "unreadable graduation year %q", texts[0])
		}
		entry.Name = texts[1]
		entry.School = texts[2]
		entry.State = texts[3]
	} else {
		// Best effort: the name is the first cell that isn't a number.
		for _, text := range texts {
			if text == "" {
				continue
			}
			if year, err := strconv.Atoi(text); err == nil {
				if entry.GradYear == 0 {
					entry.GradYear = year
				}
				continue
			}
			if entry.Name == "" {
				entry.Name = text
			}
		}
		diags.Rowf(rowIdx, "expected 4 cells, found %d", len(texts))
	}

	if entry.Name == "" {
		diags.Rowf(rowIdx, "row has no finalist name")
		return entry, false
	}
	return entry, true
}

// looksLikeHeader reports whether a row's cells read like column labels.
func looksLikeHeader(texts []string) bool {
	for _, t := range texts {
		switch strings.ToLower(t) {
		case "name", "year", "school", "state", "graduation year":
			return true
		}
	}
	return false
}

// parseLists handles prose-style announcement pages: names under a heading
// containing "finalist", and for recent seasons an EGOI heading.
func (p *FinalistsParser) parseLists(doc *htmldoc.Document, shape resolve.Shape) []types.FinalistEntry {
	var entries []types.FinalistEntry
	for _, name := range doc.ListsAfterHeading("finalist") {
		entries = append(entries, types.FinalistEntry{
			Name:     name,
			Category: types.CategoryFinalist,
		})
	}
	if shape.EGOICategory {
		for _, name := range doc.ListsAfterHeading("egoi") {
			entries = append(entries, types.FinalistEntry{
				Name:     name,
				Category: types.CategoryEGOI,
			})
		}
	}
	return entries
}
