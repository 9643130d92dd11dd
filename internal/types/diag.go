package types

import "fmt"

// NoPos marks a Diagnostic row or column as not applicable.
const NoPos = -1

// Diagnostic is a structured warning describing something a parser could not
// interpret. Diagnostics are purely advisory; they never block dataset
// assembly.
type Diagnostic struct {
	// Page identifies the page the warning came from, e.g.
	// "2013 December bronze results".
	Page string `json:"page"`

	// Row is the zero-based table row the warning refers to, or NoPos when
	// the warning is page-scoped.
	Row int `json:"row"`

	// Col is the zero-based cell index, or NoPos.
	Col int `json:"col"`

	// Reason is a human-readable explanation.
	Reason string `json:"reason"`
}

func (d Diagnostic) String() string {
	switch {
	case d.Row == NoPos:
		return fmt.Sprintf("%s: %s", d.Page, d.Reason)
	case d.Col == NoPos:
		return fmt.Sprintf("%s: row %d: %s", d.Page, d.Row, d.Reason)
	default:
		return fmt.Sprintf("%s: row %d col %d: %s", d.Page, d.Row, d.Col, d.Reason)
	}
}

// Collector accumulates diagnostics for a single parse call. It is append
// only and preserves emission order. One Collector belongs to exactly one
// parse invocation; callers drain it afterwards via Diagnostics.
type Collector struct {
	page  string
	diags []Diagnostic
}

// NewCollector creates a Collector scoped to the given page identifier.
func NewCollector(page string) *Collector {
	return &Collector{page: page}
}

// Page returns the page identifier this collector is scoped to.
func (c *Collector) Page() string { return c.page }

// Pagef records a page-scoped diagnostic.
func (c *Collector) Pagef(format string, args ...any) {
	c.diags = append(c.diags, Diagnostic{
		Page:   c.page,
		Row:    NoPos,
		Col:    NoPos,
		Reason: fmt.Sprintf(format, args...),
	})
}

// Rowf records a diagnostic scoped to a table row.
func (c *Collector) Rowf(row int, format string, args ...any) {
	c.diags = append(c.diags, Diagnostic{
		Page:   c.page,
		Row:    row,
		Col:    NoPos,
		Reason: fmt.Sprintf(format, args...),
	})
}

// Cellf records a diagnostic scoped to a single cell.
func (c *Collector) Cellf(row, col int, format string, args ...any) {
	c.diags = append(c.diags, Diagnostic{
		Page:   c.page,
		Row:    row,
		Col:    col,
		Reason: fmt.Sprintf(format, args...),
	})
}

// Len returns the number of diagnostics recorded so far.
func (c *Collector) Len() int { return len(c.diags) }

// Diagnostics returns the recorded diagnostics in emission order.
func (c *Collector) Diagnostics() []Diagnostic { return c.diags }
