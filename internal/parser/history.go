package parser

import (
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"

	"github.com/herdstats/herdstats/internal/htmldoc"
	"github.com/herdstats/herdstats/internal/types"
)

// HistoryParser extracts IOI and EGOI team results from the combined
// history page. The page needs node-level traversal rather than table
// walking: each contestant is a bare text node whose preceding <img>
// sibling encodes the medal, so this parser works on the raw HTML tree via
// XPath instead of the table adapter.
type HistoryParser struct {
	logger *slog.Logger
}

// NewHistoryParser creates a history page parser.
func NewHistoryParser(logger *slog.Logger) *HistoryParser {
	return &HistoryParser{
		logger: logger.With("component", "history_parser"),
	}
}

// Parse extracts every IOI and EGOI entry on the page in one pass. IOI
// appears every covered year; EGOI only from 2021, and its absence before
// then is expected rather than diagnosed. Entries are stable-sorted by year
// so the page's within-year ordering survives.
func (p *HistoryParser) Parse(src string) ([]types.HistoryEntry, []types.Diagnostic) {
	diags := types.NewCollector("history")

	root, err := html.Parse(strings.NewReader(src))
	if err != nil {
		diags.Pagef("unreadable document: %v", err)
		return nil, diags.Diagnostics()
	}

	// The page splits into one outer div per competition.
	sections := htmlquery.Find(root, "//div[contains(@class,'content')]/div")
	if len(sections) == 0 {
		sections = htmlquery.Find(root, "//div[h2]")
	}
	if len(sections) == 0 {
		diags.Pagef("no history sections found")
		return nil, diags.Diagnostics()
	}

	var ioi, egoi []types.HistoryEntry
	for _, section := range sections {
		heading := htmlquery.FindOne(section, ".//h2")
		if heading == nil {
			continue
		}
		title := htmldoc.Normalize(htmlquery.InnerText(heading))

		isIOI := strings.Contains(title, "IOI")
		isEGOI := strings.Contains(title, "EGOI")
		switch {
		case isIOI && isEGOI:
			diags.Pagef("section heading %q names both IOI and EGOI", title)
			continue
		case isEGOI:
			entries := p.parseSection(section, types.EGOI, diags)
			if len(egoi) > 0 && len(entries) > 0 {
				diags.Pagef("EGOI section appears twice")
			}
			egoi = append(egoi, entries...)
		case isIOI:
			entries := p.parseSection(section, types.IOI, diags)
			if len(ioi) > 0 && len(entries) > 0 {
				diags.Pagef("IOI section appears twice")
			}
			ioi = append(ioi, entries...)
		}
	}

	sort.SliceStable(ioi, func(i, j int) bool { return ioi[i].Year < ioi[j].Year })
	sort.SliceStable(egoi, func(i, j int) bool { return egoi[i].Year < egoi[j].Year })
	entries := append(ioi, egoi...)

	p.logger.Debug("history page parsed",
		"ioi", len(ioi),
		"egoi", len(egoi),
		"diagnostics", diags.Len(),
	)
	return entries, diags.Diagnostics()
}

// parseSection walks one competition's outer div. Inside are per-year
// panels; within each panel the contestants are direct text-node children.
func (p *HistoryParser) parseSection(section *html.Node, kind types.CompetitionKind, diags *types.Collector) []types.HistoryEntry {
	panels := htmlquery.Find(section, ".//div[contains(@class,'historypanel')]")
	if len(panels) == 0 {
		panels = htmlquery.Find(section, "./div")
	}

	var entries []types.HistoryEntry
	for panelIdx, panel := range panels {
		text := htmldoc.Normalize(htmlquery.InnerText(panel))
		if len(text) < 4 {
			diags.Rowf(panelIdx, "%s panel has no year", kind)
			continue
		}
		year, err := strconv.Atoi(text[:4])
		if err != nil {
			diags.Rowf(panelIdx, "%s panel year unreadable in %q", kind, text[:4])
			continue
		}

		rowIdx := -1
		for child := panel.FirstChild; child != nil; child = child.NextSibling {
			if child.Type != html.TextNode {
				continue
			}
			name := strings.TrimSpace(child.Data)
			if name == "" {
				continue
			}
			rowIdx++

			// 2017: a contestant who couldn't attend over visa issues is
			// prefixed with "(*)" and has no medal image.
			if rest, ok := strings.CutPrefix(name, "(*)"); ok {
				entries = append(entries, types.HistoryEntry{
					Year:   year,
					Kind:   kind,
					Name:   strings.TrimSpace(rest),
					Result: "visa issue",
				})
				continue
			}

			medal, ok := medalBefore(child)
			if !ok {
				diags.Rowf(rowIdx, "%s %d: no medal image before contestant %q", kind, year, name)
				continue
			}

			// "Rain Jiang (5th place)" keeps the rank in the result.
			result := medal
			if strings.Contains(name, "place)") {
				if open := strings.LastIndex(name, "("); open >= 0 {
					result = medal + " " + name[open:]
					name = strings.TrimSpace(name[:open])
				}
			}

			entries = append(entries, types.HistoryEntry{
				Year:   year,
				Kind:   kind,
				Name:   name,
				Result: result,
			})
		}
	}
	return entries
}

// medalBefore reads the medal from the <img> element immediately preceding
// a contestant's text node, skipping whitespace-only siblings.
func medalBefore(node *html.Node) (string, bool) {
	prev := node.PrevSibling
	for prev != nil && prev.Type == html.TextNode && strings.TrimSpace(prev.Data) == "" {
		prev = prev.PrevSibling
	}
	if prev == nil || prev.Type != html.ElementNode || prev.Data != "img" {
		return "", false
	}

	var src string
	for _, attr := range prev.Attr {
		if attr.Key == "src" {
			src = attr.Val
			break
		}
	}
	switch {
	case strings.Contains(src, "medal_none"):
		return "none", true
	case strings.Contains(src, "medal_bronze"):
		return "bronze", true
	case strings.Contains(src, "medal_silver"):
		return "silver", true
	case strings.Contains(src, "medal_gold"):
		return "gold", true
	default:
		return "", false
	}
}
