package types

// StudentResult is one row of a contest results table. All fields are taken
// from the page as printed; nothing is recomputed or repaired.
type StudentResult struct {
	// Name as printed on the results page.
	Name string `json:"name"`

	// Country code, when the page carries a country column.
	Country string `json:"country,omitempty"`

	// GradYear is the student's graduation year. Zero for observers and
	// for pages that omit the year column.
	GradYear int `json:"grad_year,omitempty"`

	// Scores holds the per-problem scores in page order. Length is usually
	// fixed per contest but can deviate (November 2011 Bronze had four
	// problems).
	Scores []int `json:"scores"`

	// Total is the printed total score. It is trusted even when it
	// disagrees with the sum of Scores.
	Total int `json:"total"`

	// Promoted reflects the page's own promotion marking, verbatim. It is
	// never derived from scores; the Open 2017 Gold rescoring makes the
	// two disagree.
	Promoted bool `json:"promoted"`
}

// ContestResults is everything parsed from one contest-division page.
type ContestResults struct {
	Contest  Contest         `json:"contest"`
	Division Division        `json:"division"`
	Results  []StudentResult `json:"results"`
}

// FinalistCategory is how a student was invited to camp.
type FinalistCategory int

const (
	// CategoryUnspecified marks entries whose invitation kind the page
	// does not distinguish (legacy pages).
	CategoryUnspecified FinalistCategory = iota

	// CategoryFinalist is a general camp invitation.
	CategoryFinalist

	// CategoryEGOI is an EGOI-specific invitation, introduced in the
	// 2021-22 season.
	CategoryEGOI
)

func (c FinalistCategory) String() string {
	switch c {
	case CategoryFinalist:
		return "finalist"
	case CategoryEGOI:
		return "egoi"
	default:
		return "unspecified"
	}
}

// FinalistEntry is one student on a finalist-announcement page.
type FinalistEntry struct {
	Name     string           `json:"name"`
	Category FinalistCategory `json:"category"`

	// GradYear, School and State are present on most announcement pages
	// but parsed best-effort; zero values mean the page omitted them.
	GradYear int    `json:"grad_year,omitempty"`
	School   string `json:"school,omitempty"`
	State    string `json:"state,omitempty"`
}

// SeasonFinalists is everything parsed from one season's finalists page.
type SeasonFinalists struct {
	Season    Season          `json:"season"`
	Finalists []FinalistEntry `json:"finalists"`
}

// CompetitionKind distinguishes the international olympiads on the combined
// history page.
type CompetitionKind int

const (
	IOI CompetitionKind = iota
	EGOI
)

func (k CompetitionKind) String() string {
	if k == EGOI {
		return "EGOI"
	}
	return "IOI"
}

// HistoryEntry is one US team member at a specific year of IOI or EGOI.
type HistoryEntry struct {
	// Year of the olympiad. The history page lists calendar years rather
	// than seasons.
	Year int `json:"year"`

	Kind CompetitionKind `json:"competition"`
	Name string          `json:"name"`

	// Result is the medal or outcome as printed, e.g. "gold",
	// "gold (2nd place)", "none", or "visa issue" (2017).
	Result string `json:"result"`
}

// Dataset is the aggregated output of a full scrape.
type Dataset struct {
	Contests []ContestResults  `json:"contests"`
	Camps    []SeasonFinalists `json:"camps"`
	History  []HistoryEntry    `json:"history"`
}
