package types

import "testing"

func TestCollectorOrder(t *testing.T) {
	c := NewCollector("2013 December bronze results")
	c.Pagef("no results table found")
	c.Rowf(3, "row has no student name")
	c.Cellf(4, 2, "unreadable score %q", "abc")

	diags := c.Diagnostics()
	if len(diags) != 3 || c.Len() != 3 {
		t.Fatalf("expected 3 diagnostics, got %d", len(diags))
	}

	if diags[0].Row != NoPos || diags[0].Col != NoPos {
		t.Errorf("page diagnostic has positions: %+v", diags[0])
	}
	if diags[1].Row != 3 || diags[1].Col != NoPos {
		t.Errorf("row diagnostic wrong: %+v", diags[1])
	}
	if diags[2].Row != 4 || diags[2].Col != 2 {
		t.Errorf("cell diagnostic wrong: %+v", diags[2])
	}

	for _, d := range diags {
		if d.Page != "2013 December bronze results" {
			t.Errorf("wrong page: %+v", d)
		}
	}
}

func TestDiagnosticString(t *testing.T) {
	d := Diagnostic{Page: "history", Row: NoPos, Col: NoPos, Reason: "no sections"}
	if d.String() != "history: no sections" {
		t.Errorf("got %q", d.String())
	}
	d = Diagnostic{Page: "p", Row: 2, Col: NoPos, Reason: "r"}
	if d.String() != "p: row 2: r" {
		t.Errorf("got %q", d.String())
	}
	d = Diagnostic{Page: "p", Row: 2, Col: 5, Reason: "r"}
	if d.String() != "p: row 2 col 5: r" {
		t.Errorf("got %q", d.String())
	}
}
