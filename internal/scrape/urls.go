package scrape

import (
	"fmt"
	"strings"

	"github.com/herdstats/herdstats/internal/types"
)

// ResultsURL builds the address of a contest results page, e.g.
// {base}/current/data/open24_platinum_results.html.
func ResultsURL(base string, contest types.Contest, division types.Division) string {
	return fmt.Sprintf("%s/current/data/%s%02d_%s_results.html",
		strings.TrimRight(base, "/"),
		contest.Month.URLName(),
		contest.Year%100,
		division.URLName(),
	)
}

// FinalistsURL builds the address of a season's finalist announcement
// page, e.g. {base}/index.php?page=finalists24.
func FinalistsURL(base string, season types.Season) string {
	return fmt.Sprintf("%s/index.php?page=finalists%02d",
		strings.TrimRight(base, "/"), season.EndYear()%100)
}

// HistoryURL builds the address of the international history page.
func HistoryURL(base string) string {
	return strings.TrimRight(base, "/") + "/index.php?page=history"
}
