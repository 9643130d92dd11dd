package parser

import (
	"log/slog"
	"os"
	"reflect"
	"strings"
	"testing"

	"github.com/herdstats/herdstats/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

func mkContest(endYear int, month types.Month) types.Contest {
	season := types.NewSeason(endYear)
	year := season.EndYear()
	if month == types.November || month == types.December {
		year = season.StartYear()
	}
	return types.Contest{Season: season, Month: month, Year: year}
}

const resultsHTML = `<!DOCTYPE html>
<html><body>
<h2>Final Results: USACO 2013 December Contest, Bronze</h2>
<table>
<tr><th>Country</th><th>Year</th><th>Name</th><th>P1</th><th>P2</th><th>P3</th><th>Total</th><th>Promoted?</th></tr>
<tr class="promoted"><td>USA</td><td>2016</td><td>Alice Johnson</td><td>333</td><td>333</td><td>334</td><td>1000</td><td>*</td></tr>
<tr><td>CAN</td><td>2017</td><td>Bob Smith</td><td>333</td><td>0</td><td>100</td><td>433</td><td></td></tr>
</table>
</body></html>`

func TestResultsParserBasic(t *testing.T) {
	p := NewResultsParser(testLogger)
	results, diags := p.Parse(resultsHTML, mkContest(2014, types.December), types.Bronze)

	if len(diags) != 0 {
		t.Fatalf("expected no diagnostics, got %v", diags)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	alice := results[0]
	if alice.Name != "Alice Johnson" {
		t.Errorf("expected 'Alice Johnson', got %q", alice.Name)
	}
	if alice.Country != "USA" || alice.GradYear != 2016 {
		t.Errorf("country/year: got %q %d", alice.Country, alice.GradYear)
	}
	if !reflect.DeepEqual(alice.Scores, []int{333, 333, 334}) {
		t.Errorf("scores: got %v", alice.Scores)
	}
	if alice.Total != 1000 {
		t.Errorf("total: got %d", alice.Total)
	}
	if !alice.Promoted {
		t.Error("expected Alice promoted")
	}
	if results[1].Promoted {
		t.Error("expected Bob not promoted")
	}
}

func TestResultsParserHeaderless(t *testing.T) {
	html := `<table>
<tr><td>Alice</td><td>100</td><td>200</td><td>300</td><td>600</td><td>*</td></tr>
</table>`

	p := NewResultsParser(testLogger)
	results, diags := p.Parse(html, mkContest(2014, types.January), types.Bronze)

	if len(diags) != 0 {
		t.Fatalf("expected no diagnostics, got %v", diags)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	r := results[0]
	if r.Name != "Alice" || !reflect.DeepEqual(r.Scores, []int{100, 200, 300}) || r.Total != 600 {
		t.Errorf("unexpected row: %+v", r)
	}
	if !r.Promoted {
		t.Error("trailing marker should mean promoted")
	}
}

// The November 2011 Bronze contest had four problems instead of three. All
// four scores must be captured with one shape-deviation diagnostic, not a
// dropped row.
func TestResultsParserFourProblemAnomaly(t *testing.T) {
	html := `<table>
<tr><th>Name</th><th>P1</th><th>P2</th><th>P3</th><th>P4</th><th>Total</th><th>Promoted?</th></tr>
<tr><td>Alice</td><td>100</td><td>100</td><td>100</td><td>100</td><td>400</td><td>*</td></tr>
<tr><td>Bob</td><td>50</td><td>50</td><td>50</td><td>50</td><td>200</td><td></td></tr>
</table>`

	p := NewResultsParser(testLogger)
	results, diags := p.Parse(html, mkContest(2012, types.November), types.Bronze)

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if !reflect.DeepEqual(results[0].Scores, []int{100, 100, 100, 100}) {
		t.Errorf("expected all 4 scores captured, got %v", results[0].Scores)
	}
	if len(diags) != 1 {
		t.Fatalf("expected a single shape-deviation diagnostic, got %v", diags)
	}
	if !strings.Contains(diags[0].Reason, "expected 3 problem scores") {
		t.Errorf("unexpected diagnostic: %v", diags[0])
	}
}

// Open 2017 Gold had a problem thrown out after rescoring. The page's own
// promotion marking is authoritative: a row whose score sum sits below any
// plausible cutoff still counts as promoted when the page marks it so.
func TestResultsParserPromotionVerbatim(t *testing.T) {
	html := `<table>
<tr><th>Name</th><th>P1</th><th>P2</th><th>Total</th><th>Promoted?</th></tr>
<tr class="promoted"><td>Alice</td><td>150</td><td>50</td><td>200</td><td>*</td></tr>
</table>`

	p := NewResultsParser(testLogger)
	results, _ := p.Parse(html, mkContest(2017, types.Open), types.Gold)

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if !results[0].Promoted {
		t.Error("promotion flag must follow the page marking, not the scores")
	}
}

func TestResultsParserTotalMismatchDiagnosed(t *testing.T) {
	html := `<table>
<tr><th>Name</th><th>P1</th><th>P2</th><th>P3</th><th>Total</th><th>Promoted?</th></tr>
<tr><td>Alice</td><td>100</td><td>100</td><td>100</td><td>500</td><td></td></tr>
</table>`

	p := NewResultsParser(testLogger)
	results, diags := p.Parse(html, mkContest(2014, types.December), types.Bronze)

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	// The printed total is trusted as-is.
	if results[0].Total != 500 {
		t.Errorf("expected printed total 500, got %d", results[0].Total)
	}
	if len(diags) != 1 || !strings.Contains(diags[0].Reason, "disagrees") {
		t.Errorf("expected a total-mismatch diagnostic, got %v", diags)
	}
}

func TestResultsParserPromotionColumnAbsence(t *testing.T) {
	html := `<table>
<tr><th>Name</th><th>P1</th><th>P2</th><th>P3</th><th>Total</th></tr>
<tr><td>Alice</td><td>100</td><td>100</td><td>100</td><td>300</td></tr>
</table>`

	p := NewResultsParser(testLogger)

	t.Run("expected absent from 2020-21", func(t *testing.T) {
		_, diags := p.Parse(html, mkContest(2021, types.December), types.Bronze)
		if len(diags) != 0 {
			t.Errorf("expected no diagnostics, got %v", diags)
		}
	})

	t.Run("diagnosed before 2020-21", func(t *testing.T) {
		_, diags := p.Parse(html, mkContest(2020, types.December), types.Bronze)
		if len(diags) != 1 || !strings.Contains(diags[0].Reason, "promotion") {
			t.Errorf("expected a promotion-absence diagnostic, got %v", diags)
		}
	})

	t.Run("platinum never has promotions", func(t *testing.T) {
		_, diags := p.Parse(html, mkContest(2017, types.December), types.Platinum)
		if len(diags) != 0 {
			t.Errorf("expected no diagnostics, got %v", diags)
		}
	})
}

func TestResultsParserPlatinumBeforeIntroduction(t *testing.T) {
	p := NewResultsParser(testLogger)
	results, diags := p.Parse(resultsHTML, mkContest(2015, types.December), types.Platinum)

	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
	if len(diags) != 1 || !strings.Contains(diags[0].Reason, "unresolvable") {
		t.Errorf("expected an unresolvable-shape diagnostic, got %v", diags)
	}
}

func TestResultsParserNoTable(t *testing.T) {
	p := NewResultsParser(testLogger)
	results, diags := p.Parse("<html><body><p>nothing here</p></body></html>",
		mkContest(2014, types.December), types.Bronze)

	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
	if len(diags) != 1 || !strings.Contains(diags[0].Reason, "no results table") {
		t.Errorf("expected a table-not-found diagnostic, got %v", diags)
	}
}

func TestResultsParserBadRowsSkippedNotFatal(t *testing.T) {
	html := `<table>
<tr><th>Name</th><th>P1</th><th>P2</th><th>P3</th><th>Total</th><th>Promoted?</th></tr>
<tr><td></td><td>100</td><td>100</td><td>100</td><td>300</td><td></td></tr>
<tr><td>Alice</td><td>100</td><td>abc</td><td>100</td><td>200</td><td></td></tr>
<tr><td>Bob</td><td>100</td><td>100</td><td>100</td><td>300</td><td>*</td></tr>
</table>`

	p := NewResultsParser(testLogger)
	results, diags := p.Parse(html, mkContest(2014, types.December), types.Bronze)

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	// Alice keeps her parseable fields despite the bad cell.
	if results[0].Name != "Alice" || !reflect.DeepEqual(results[0].Scores, []int{100, 100}) {
		t.Errorf("unexpected best-effort row: %+v", results[0])
	}

	var nameless, unreadable bool
	for _, d := range diags {
		if strings.Contains(d.Reason, "no student name") {
			nameless = true
		}
		if strings.Contains(d.Reason, "unreadable score") {
			unreadable = true
		}
	}
	if !nameless || !unreadable {
		t.Errorf("expected name and score diagnostics, got %v", diags)
	}
}

func TestResultsParserDeduplicates(t *testing.T) {
	html := `<table>
<tr><th>Name</th><th>P1</th><th>P2</th><th>P3</th><th>Total</th><th>Promoted?</th></tr>
<tr><td>Alice</td><td>100</td><td>100</td><td>100</td><td>300</td><td>*</td></tr>
</table>
<table>
<tr><th>Name</th><th>P1</th><th>P2</th><th>P3</th><th>Total</th><th>Promoted?</th></tr>
<tr><td>Alice</td><td>100</td><td>100</td><td>100</td><td>300</td><td>*</td></tr>
</table>`

	p := NewResultsParser(testLogger)
	results, _ := p.Parse(html, mkContest(2014, types.December), types.Bronze)

	if len(results) != 1 {
		t.Errorf("expected duplicate entry dropped, got %d results", len(results))
	}
}

func TestResultsParserTruncatedHTML(t *testing.T) {
	html := `<table>
<tr><th>Name</th><th>P1</th><th>P2</th><th>P3</th><th>Total</th><th>Promoted?</th></tr>
<tr><td>Alice</td><td>100</td><td>100</td><td>100</td><td>300</td><td>*</td></tr>
<tr><td>Bob`

	p := NewResultsParser(testLogger)
	results, diags := p.Parse(html, mkContest(2014, types.December), types.Bronze)

	if len(results) == 0 {
		t.Fatal("expected at least the complete row to survive")
	}
	if results[0].Name != "Alice" {
		t.Errorf("expected Alice first, got %q", results[0].Name)
	}
	if len(diags) == 0 {
		t.Error("expected a diagnostic for the truncated row")
	}
}

func TestResultsParserIdempotent(t *testing.T) {
	p := NewResultsParser(testLogger)
	contest := mkContest(2014, types.December)

	r1, d1 := p.Parse(resultsHTML, contest, types.Bronze)
	r2, d2 := p.Parse(resultsHTML, contest, types.Bronze)

	if !reflect.DeepEqual(r1, r2) {
		t.Error("results differ between identical parses")
	}
	if !reflect.DeepEqual(d1, d2) {
		t.Error("diagnostics differ between identical parses")
	}
}

func BenchmarkResultsParse(b *testing.B) {
	p := NewResultsParser(testLogger)
	contest := mkContest(2014, types.December)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p.Parse(resultsHTML, contest, types.Bronze)
	}
}
