package types

import (
	"fmt"
	"strconv"
	"strings"
)

// Season identifies a USACO competitive year spanning two calendar years,
// e.g. "2013-14" starts in fall 2013 and ends in spring 2014. Seasons are
// immutable values ordered by their ending year.
type Season struct {
	end int
}

// NewSeason creates a Season from its ending calendar year. NewSeason(2014)
// is the 2013-14 season.
func NewSeason(endYear int) Season {
	return Season{end: endYear}
}

// ParseSeason parses a season identifier in "2013-14" form.
func ParseSeason(s string) (Season, error) {
	start, suffix, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok {
		return Season{}, fmt.Errorf("invalid season %q: missing '-'", s)
	}
	startYear, err := strconv.Atoi(start)
	if err != nil {
		return Season{}, fmt.Errorf("invalid season %q: %w", s, err)
	}
	endYY, err := strconv.Atoi(suffix)
	if err != nil {
		return Season{}, fmt.Errorf("invalid season %q: %w", s, err)
	}
	end := startYear + 1
	if end%100 != endYY {
		return Season{}, fmt.Errorf("invalid season %q: years are not consecutive", s)
	}
	return Season{end: end}, nil
}

// StartYear returns the calendar year the season starts in.
func (s Season) StartYear() int { return s.end - 1 }

// EndYear returns the calendar year the season ends in.
func (s Season) EndYear() int { return s.end }

// Compare returns -1, 0, or 1 comparing s against other chronologically.
func (s Season) Compare(other Season) int {
	switch {
	case s.end < other.end:
		return -1
	case s.end > other.end:
		return 1
	default:
		return 0
	}
}

// Before reports whether s is strictly earlier than other.
func (s Season) Before(other Season) bool { return s.end < other.end }

func (s Season) String() string {
	return fmt.Sprintf("%d-%02d", s.end-1, s.end%100)
}

// IsZero reports whether s is the zero Season.
func (s Season) IsZero() bool { return s.end == 0 }

// Division is a USACO competition tier. Order goes bronze < silver < gold <
// platinum. Platinum exists only from the 2015-16 season onward.
type Division int

const (
	Bronze Division = iota
	Silver
	Gold
	Platinum
)

// Divisions lists all tiers in ascending order.
var Divisions = []Division{Bronze, Silver, Gold, Platinum}

func (d Division) String() string {
	switch d {
	case Bronze:
		return "bronze"
	case Silver:
		return "silver"
	case Gold:
		return "gold"
	case Platinum:
		return "platinum"
	default:
		return fmt.Sprintf("division(%d)", int(d))
	}
}

// URLName returns the lowercase division name used in USACO result URLs.
// It is identical to String but exists so URL construction doesn't depend
// on display formatting.
func (d Division) URLName() string { return d.String() }

// ParseDivision parses a division name, case-insensitively.
func ParseDivision(s string) (Division, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bronze":
		return Bronze, nil
	case "silver":
		return Silver, nil
	case "gold":
		return Gold, nil
	case "platinum", "plat":
		return Platinum, nil
	default:
		return 0, fmt.Errorf("unknown division %q", s)
	}
}

// Month is the scheduled slot of a contest within a season. Six slots exist
// because USACO used to hold six contests a year; March is the old sixth
// contest, distinct from what is now the US Open.
type Month int

const (
	November Month = iota
	December
	January
	February
	March
	Open
)

func (m Month) String() string {
	switch m {
	case November:
		return "November"
	case December:
		return "December"
	case January:
		return "January"
	case February:
		return "February"
	case March:
		return "March"
	case Open:
		return "US Open"
	default:
		return fmt.Sprintf("month(%d)", int(m))
	}
}

// URLName returns the short lowercase month name used in USACO result URLs.
func (m Month) URLName() string {
	switch m {
	case November:
		return "nov"
	case December:
		return "dec"
	case January:
		return "jan"
	case February:
		return "feb"
	case March:
		return "mar"
	case Open:
		return "open"
	default:
		return ""
	}
}

// Contest is one scheduled contest slot of a season. It is derived from
// season metadata, never parsed from page content.
type Contest struct {
	// Season the contest belongs to.
	Season Season `json:"season"`

	// Month is the contest slot within the season.
	Month Month `json:"month"`

	// Year is the calendar year the contest was held in. November and
	// December contests fall in the season's starting year.
	Year int `json:"year"`

	// Slot is the zero-based ordinal of the contest within the season.
	Slot int `json:"slot"`
}

func (c Contest) String() string {
	return fmt.Sprintf("%d %s", c.Year, c.Month)
}
