// Package resolve centralizes the dated format rules of the USACO website.
//
// The result pages drifted in structure across seasons: the contest count
// dropped from six to four in 2014-15, Platinum appeared in 2015-16, bronze
// and silver promotion lists disappeared in 2020-21, and an EGOI finalist
// category showed up in 2021-22. Parsers consult the shape descriptor
// returned here instead of comparing dates themselves, so every boundary
// lives in this one package.
package resolve

import (
	"fmt"

	"github.com/herdstats/herdstats/internal/types"
)

// Season boundaries, expressed as season ending years.
const (
	// FirstSeason is the earliest season with result pages in the current
	// site format (2011-12).
	FirstSeason = 2012

	// firstShortSeason is 2014-15, the first season with four contests
	// instead of six.
	firstShortSeason = 2015

	// firstPlatinumSeason is 2015-16, when the Platinum division was
	// introduced.
	firstPlatinumSeason = 2016

	// firstNoPromotionSeason is 2020-21, from which bronze and silver
	// pages stopped carrying promotion lists.
	firstNoPromotionSeason = 2021

	// firstEGOISeason is 2021-22, the first season with EGOI-specific
	// camp invitations.
	firstEGOISeason = 2022

	// FirstEGOIYear is the first calendar year with US EGOI participation
	// on the history page.
	FirstEGOIYear = 2021
)

// defaultProblemCount is the number of problems per contest on every page
// except the November 2011 Bronze anomaly, which had four.
const defaultProblemCount = 3

// PageKind identifies which kind of page a descriptor refers to.
type PageKind int

const (
	PageResults PageKind = iota
	PageFinalists
	PageHistory
)

func (k PageKind) String() string {
	switch k {
	case PageResults:
		return "results"
	case PageFinalists:
		return "finalists"
	default:
		return "history"
	}
}

// Shape describes the structure a parser should expect for a given
// (season, division, page kind) combination.
type Shape struct {
	// ContestCount is the number of contests scheduled that season.
	ContestCount int

	// ProblemCount is the expected number of per-problem score columns.
	// A hint only; parsers consume what is present and diagnose deviation.
	ProblemCount int

	// PromotionColumn reports whether the page is expected to mark
	// promoted rows. False means a missing marker is expected-absent, not
	// a parse failure.
	PromotionColumn bool

	// PlatinumValid reports whether Platinum exists this season.
	PlatinumValid bool

	// EGOICategory reports whether the finalists page may carry an
	// EGOI-specific invitation section.
	EGOICategory bool
}

// For resolves the expected page shape. It returns ErrInvalidDivision when
// the division was not held that season rather than a default shape.
func For(season types.Season, division types.Division, kind PageKind) (Shape, error) {
	shape := Shape{
		ContestCount:    ContestCount(season),
		ProblemCount:    defaultProblemCount,
		PlatinumValid:   season.EndYear() >= firstPlatinumSeason,
		EGOICategory:    season.EndYear() >= firstEGOISeason,
		PromotionColumn: promotionListed(season, division),
	}
	if kind == PageResults && division == types.Platinum && !shape.PlatinumValid {
		return Shape{}, fmt.Errorf("%w: platinum in %s", types.ErrInvalidDivision, season)
	}
	return shape, nil
}

// ContestCount returns how many contests the season scheduled: six before
// 2014-15, four after.
func ContestCount(season types.Season) int {
	if season.EndYear() < firstShortSeason {
		return 6
	}
	return 4
}

// promotionListed reports whether the division's result pages still carry a
// promotion list that season. Platinum has no higher division to promote
// into; bronze and silver lists were dropped from 2020-21.
func promotionListed(season types.Season, division types.Division) bool {
	switch division {
	case types.Platinum:
		return false
	case types.Bronze, types.Silver:
		return season.EndYear() < firstNoPromotionSeason
	default:
		return true
	}
}

// SeasonDivisions returns the divisions held in the given season, in
// ascending order.
func SeasonDivisions(season types.Season) []types.Division {
	if season.EndYear() < firstPlatinumSeason {
		return []types.Division{types.Bronze, types.Silver, types.Gold}
	}
	return []types.Division{types.Bronze, types.Silver, types.Gold, types.Platinum}
}

// SeasonContests builds the season's contest slots from its metadata.
// November and December contests fall in the season's starting calendar
// year, the rest in its ending year.
func SeasonContests(season types.Season) []types.Contest {
	var months []types.Month
	if season.EndYear() < firstShortSeason {
		months = []types.Month{
			types.November, types.December, types.January,
			types.February, types.March, types.Open,
		}
	} else {
		months = []types.Month{
			types.December, types.January, types.February, types.Open,
		}
	}

	contests := make([]types.Contest, len(months))
	for i, m := range months {
		year := season.EndYear()
		if m == types.November || m == types.December {
			year = season.StartYear()
		}
		contests[i] = types.Contest{
			Season: season,
			Month:  m,
			Year:   year,
			Slot:   i,
		}
	}
	return contests
}
