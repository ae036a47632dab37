package ticketview

import (
	"testing"
	"time"

	"github.com/deskline/support-portal/internal/domain"
)

func TestSortByNumber(t *testing.T) {
	tickets := sampleTickets()
	asc := Sort(tickets, SortState{Field: SortNumber, Direction: Asc})
	if !equalIDs(asc, "a", "b", "c") {
		t.Errorf("asc = %v", ids(asc))
	}
	desc := Sort(tickets, SortState{Field: SortNumber, Direction: Desc})
	if !equalIDs(desc, "c", "b", "a") {
		t.Errorf("desc = %v", ids(desc))
	}
	if !equalIDs(tickets, "a", "b", "c") {
		t.Errorf("Sort mutated its input: %v", ids(tickets))
	}
}

func TestSortDefaultIsNewestFirst(t *testing.T) {
	got := Sort(sampleTickets(), DefaultSort())
	if !equalIDs(got, "c", "b", "a") {
		t.Errorf("default sort = %v, want [c b a]", ids(got))
	}
}

func TestSortMissingValuesLastInBothDirections(t *testing.T) {
	resolved := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	tickets := []domain.Ticket{
		{ID: "none1"},
		{ID: "early", ResolvedAt: ptrTime(resolved)},
		{ID: "none2"},
		{ID: "late", ResolvedAt: ptrTime(resolved.Add(time.Hour))},
	}

	tests := []struct {
		dir  Direction
		want []string
	}{
		{Asc, []string{"early", "late", "none1", "none2"}},
		{Desc, []string{"late", "early", "none1", "none2"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.dir), func(t *testing.T) {
			got := Sort(tickets, SortState{Field: SortResolvedAt, Direction: tt.dir})
			if !equalIDs(got, tt.want...) {
				t.Errorf("Sort(resolvedAt %s) = %v, want %v", tt.dir, ids(got), tt.want)
			}
		})
	}
}

func TestSortIsStable(t *testing.T) {
	tickets := []domain.Ticket{
		{ID: "1", Category: "Outro"},
		{ID: "2", Category: "Acessos"},
		{ID: "3", Category: "Outro"},
		{ID: "4", Category: "Acessos"},
	}
	got := Sort(tickets, SortState{Field: SortCategory, Direction: Asc})
	if !equalIDs(got, "2", "4", "1", "3") {
		t.Errorf("Sort(category asc) = %v, want [2 4 1 3]", ids(got))
	}
	got = Sort(tickets, SortState{Field: SortCategory, Direction: Desc})
	if !equalIDs(got, "1", "3", "2", "4") {
		t.Errorf("Sort(category desc) = %v, want [1 3 2 4]", ids(got))
	}
}

func TestToggle(t *testing.T) {
	s := DefaultSort()
	s = s.Toggle(SortCreatedAt)
	if s.Direction != Asc {
		t.Fatalf("toggling current field gave %s, want asc", s.Direction)
	}
	s = s.Toggle(SortCreatedAt)
	if s.Direction != Desc {
		t.Fatalf("second toggle gave %s, want desc", s.Direction)
	}
	s = s.Toggle(SortTitle)
	if s.Field != SortTitle || s.Direction != Desc {
		t.Errorf("new field toggle = %+v, want title desc", s)
	}
}

func TestParseSort(t *testing.T) {
	if f, err := ParseSortField("TICKETNUMBER"); err != nil || f != SortNumber {
		t.Errorf("ParseSortField = %q, %v", f, err)
	}
	if _, err := ParseSortField("assignee"); err == nil {
		t.Error("ParseSortField accepted an unknown field")
	}
	if d, err := ParseDirection(""); err != nil || d != Desc {
		t.Errorf("ParseDirection(\"\") = %q, %v", d, err)
	}
	if _, err := ParseDirection("up"); err == nil {
		t.Error("ParseDirection accepted an unknown direction")
	}
}

func TestListFiltersThenSorts(t *testing.T) {
	c := DefaultCriteria()
	c.Requester = "Ana"
	got := List(sampleTickets(), c, SortState{Field: SortNumber, Direction: Desc}, brt)
	if !equalIDs(got, "c", "a") {
		t.Errorf("List = %v, want [c a]", ids(got))
	}
}
