// Package parser turns the hand-maintained USACO HTML pages into typed
// records. The pages drifted in structure over roughly thirteen years, so
// every parser here extracts the maximum correct structure it can and
// reports what it could not interpret as diagnostics. No parser returns an
// error for page content and none panics; a parse call always yields a
// (possibly empty) result plus its diagnostics.
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

// ResultsParser extracts per-student rows from contest result pages.
type ResultsParser struct {
	logger *slog.Logger
}

// NewResultsParser creates a results page parser.
func NewResultsParser(logger *slog.Logger) *ResultsParser {
	return &ResultsParser{
		logger: logger.With("component", "results_parser"),
	}
}

// column roles a results table cell can play.
type colRole int

const (
	roleScore colRole = iota // default for unrecognized columns
	roleName
	roleCountry
	roleYear
	roleTotal
	rolePromo
)

// resultsLayout maps cell positions to roles for one table.
type resultsLayout struct {
	roles     map[int]colRole
	nameIdx   int
	totalIdx  int // -1 when the header doesn't name one
	promoIdx  int // -1 when absent
	hasHeader bool
}

// Parse extracts all student rows from a contest result page. It consults
// the resolver for the expected shape, walks every table on the page, and
// never rejects the whole page because of a single bad row. The returned
// diagnostics are in emission order.
func (p *ResultsParser) Parse(html string, contest types.Contest, division types.Division) ([]types.StudentResult, []types.Diagnostic) {
	diags := types.NewCollector(fmt.Sprintf("%s %s results", contest, division))

	shape, err := resolve.For(contest.Season, division, resolve.PageResults)
	if err != nil {
		diags.Pagef("unresolvable page shape: %v", err)
		return nil, diags.Diagnostics()
	}

	doc := htmldoc.Parse(html)
	tables := doc.Tables()
	if len(tables) == 0 {
		diags.Pagef("no results table found")
		return nil, diags.Diagnostics()
	}

	var results []types.StudentResult
	markerSeen := false
	shapeDiagnosed := false

	for _, table := range tables {
		rows := table.Rows()
		if len(rows) == 0 {
			continue
		}

		layout := detectLayout(table)
		if layout.promoIdx >= 0 {
			markerSeen = true
		}

		for rowIdx, row := range rows {
			if layout.hasHeader && rowIdx == 0 && row.IsHeader() {
				continue
			}
			if len(row.Cells()) == 0 {
				continue
			}

			res, rowMarker, ok := p.parseRow(row, rowIdx, layout, diags)
			if !ok {
				continue
			}
			markerSeen = markerSeen || rowMarker

			if len(res.Scores) != shape.ProblemCount && !shapeDiagnosed {
				diags.Rowf(rowIdx, "expected %d problem scores, found %d", shape.ProblemCount, len(res.Scores))
				shapeDiagnosed = true
			}
			if sum := sumScores(res.Scores); len(res.Scores) > 0 && sum != res.Total {
				diags.Rowf(rowIdx, "printed total %d disagrees with score sum %d", res.Total, sum)
			}

			results = append(results, res)
		}
	}

	// The promotion list vanished from bronze and silver pages in 2020-21,
	// so its absence is only worth reporting where the resolver expects it.
	if shape.PromotionColumn && !markerSeen {
		diags.Pagef("no promotion markings found")
	}

	results = dedupeResults(results)

	p.logger.Debug("results page parsed",
		"page", diags.Page(),
		"rows", len(results),
		"diagnostics", diags.Len(),
	)
	return results, diags.Diagnostics()
}

// parseRow extracts one student row. It reports whether the row carried a
// promotion marker and whether enough of the row was recoverable to keep.
// Rows that cannot yield at least a name are skipped with a diagnostic.
func (p *ResultsParser) parseRow(row htmldoc.Row, rowIdx int, layout resultsLayout, diags *types.Collector) (types.StudentResult, bool, bool) {
	texts := row.CellTexts()

	var res types.StudentResult
	if layout.nameIdx < len(texts) {
		res.Name = texts[layout.nameIdx]
	}
	if res.Name == "" {
		diags.Rowf(rowIdx, "row has no student name")
		return res, false, false
	}

	// Promotion is whatever the page itself marks, verbatim. Pages have
	// used a row class and a dedicated marker column over the years; the
	// flag is never recomputed from scores.
	marker := strings.Contains(strings.ToLower(row.Attr("class")), "promot")
	if layout.promoIdx >= 0 && layout.promoIdx < len(texts) && texts[layout.promoIdx] != "" {
		marker = true
	}
	res.Promoted = marker

	var scores []int
	totalSeen := false

	for col, text := range texts {
		role := roleScore
		if layout.hasHeader {
			role = layout.roles[col]
		} else if col == layout.nameIdx {
			role = roleName
		}

		switch role {
		case roleName, rolePromo:
			continue
		case roleCountry:
			res.Country = text
		case roleYear:
			if text == "" {
				continue // observers have no graduation year
			}
			if year, err := strconv.Atoi(text); err == nil {
				res.GradYear = year
			}
		case roleTotal:
			if text == "" {
				continue
			}
			n, err := strconv.Atoi(text)
			if err != nil {
				diags.Cellf(rowIdx, col, "unreadable total %q", text)
				continue
			}
			res.Total = n
			totalSeen = true
		case roleScore:
			if text == "" {
				continue // no submission for this problem
			}
			n, err := strconv.Atoi(text)
			if err != nil {
				// Headerless tables mark promotion with a trailing
				// non-numeric cell; anything else is noise.
				if !layout.hasHeader && col == len(texts)-1 && isPromoMarker(text) {
					res.Promoted = true
					marker = true
					continue
				}
				diags.Cellf(rowIdx, col, "unreadable score %q", text)
				continue
			}
			scores = append(scores, n)
		}
	}

	// Without a header naming the total column, the last numeric cell is
	// the printed total and the cells before it are the problem scores.
	if !totalSeen && len(scores) > 0 {
		res.Total = scores[len(scores)-1]
		scores = scores[:len(scores)-1]
	}
	res.Scores = scores

	return res, marker, true
}

// detectLayout inspects a table's header row, when one exists, and assigns
// a role to each column. Tables with no <th> cells fall back to the
// positional convention name-first, total-last.
func detectLayout(table htmldoc.Table) resultsLayout {
	layout := resultsLayout{
		roles:    make(map[int]colRole),
		nameIdx:  0,
		totalIdx: -1,
		promoIdx: -1,
	}

	headers := table.HeaderTexts()
	if len(headers) == 0 {
		return layout
	}
	layout.hasHeader = true

	for i, h := range headers {
		switch h = strings.ToLower(h); {
		case strings.Contains(h, "name"):
			layout.roles[i] = roleName
			layout.nameIdx = i
		case strings.Contains(h, "country"):
			layout.roles[i] = roleCountry
		case strings.Contains(h, "year") || strings.Contains(h, "grad"):
			layout.roles[i] = roleYear
		case strings.Contains(h, "total") || h == "score":
			layout.roles[i] = roleTotal
			layout.totalIdx = i
		case strings.Contains(h, "promot"):
			layout.roles[i] = rolePromo
			layout.promoIdx = i
		default:
			layout.roles[i] = roleScore
		}
	}
	return layout
}

// isPromoMarker recognizes the textual markers pages have used to flag a
// promoted row in tables without a dedicated header.
func isPromoMarker(s string) bool {
	switch strings.ToLower(s) {
	case "*", "+", "promoted", "graduated":
		return true
	}
	return false
}

func sumScores(scores []int) int {
	total := 0
	for _, s := range scores {
		total += s
	}
	return total
}

// dedupeResults drops later duplicates of identical rows. The pre-college
// global and pre-college US sections of a page repeat the same entries.
func dedupeResults(results []types.StudentResult) []types.StudentResult {
	seen := make(map[string]bool, len(results))
	out := results[:0]
	for _, r := range results {
		key := resultKey(r)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, r)
	}
	return out
}

func resultKey(r types.StudentResult) string {
	var b strings.Builder
	b.WriteString(r.Name)
	fmt.Fprintf(&b, "|%s|%d|%d|%t", r.Country, r.GradYear, r.Total, r.Promoted)
	for _, s := range r.Scores {
		fmt.Fprintf(&b, "|%d", s)
	}
	return b.String()
}
