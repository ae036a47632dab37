package ticketview

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/deskline/support-portal/internal/domain"
)

// SortField names a sortable ticket attribute.
type SortField string

const (
	SortNumber      SortField = "ticketNumber"
	SortTitle       SortField = "title"
	SortDescription SortField = "description"
	SortRequester   SortField = "requester"
	SortCategory    SortField = "category"
	SortPriority    SortField = "priority"
	SortStatus      SortField = "status"
	SortCreatedAt   SortField = "createdAt"
	SortUpdatedAt   SortField = "updatedAt"
	SortResolvedAt  SortField = "resolvedAt"
)

var sortFields = []SortField{
	SortNumber, SortTitle, SortDescription, SortRequester, SortCategory,
	SortPriority, SortStatus, SortCreatedAt, SortUpdatedAt, SortResolvedAt,
}

// Direction is the sort order.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// SortState is the current sort selection.
type SortState struct {
	Field     SortField
	Direction Direction
}

// DefaultSort orders newest tickets first.
func DefaultSort() SortState {
	return SortState{Field: SortCreatedAt, Direction: Desc}
}

// Toggle selects field. Selecting the current field flips the direction;
// a different field starts descending.
func (s SortState) Toggle(field SortField) SortState {
	if s.Field == field {
		if s.Direction == Asc {
			return SortState{Field: field, Direction: Desc}
		}
		return SortState{Field: field, Direction: Asc}
	}
	return SortState{Field: field, Direction: Desc}
}

// ParseSortField accepts a field name, case-insensitively. Empty means createdAt.
func ParseSortField(raw string) (SortField, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return SortCreatedAt, nil
	}
	for _, field := range sortFields {
		if strings.EqualFold(string(field), raw) {
			return field, nil
		}
	}
	return "", fmt.Errorf("unknown sort field %q", raw)
}

// ParseDirection accepts asc or desc. Empty means desc.
func ParseDirection(raw string) (Direction, error) {
	switch Direction(strings.ToLower(strings.TrimSpace(raw))) {
	case "", Desc:
		return Desc, nil
	case Asc:
		return Asc, nil
	}
	return "", fmt.Errorf("unknown sort direction %q", raw)
}

// Sort returns a stably sorted copy of tickets. Tickets missing the sort
// key are placed after every ticket that has one, in both directions.
func Sort(tickets []domain.Ticket, s SortState) []domain.Ticket {
	sorted := slices.Clone(tickets)
	compare := comparator(s.Field)
	slices.SortStableFunc(sorted, func(a, b domain.Ticket) int {
		result, aMissing, bMissing := compare(&a, &b)
		switch {
		case aMissing && bMissing:
			return 0
		case aMissing:
			return 1
		case bMissing:
			return -1
		}
		if s.Direction == Asc {
			return result
		}
		return -result
	})
	return sorted
}

type compareFunc func(a, b *domain.Ticket) (result int, aMissing, bMissing bool)

func comparator(field SortField) compareFunc {
	switch field {
	case SortNumber:
		return func(a, b *domain.Ticket) (int, bool, bool) { return cmp.Compare(a.Number, b.Number), false, false }
	case SortTitle:
		return byString(func(t *domain.Ticket) string { return t.Title })
	case SortDescription:
		return byString(func(t *domain.Ticket) string { return t.Description })
	case SortRequester:
		return byString(func(t *domain.Ticket) string { return t.Requester })
	case SortCategory:
		return byString(func(t *domain.Ticket) string { return t.Category })
	case SortPriority:
		return byString(func(t *domain.Ticket) string { return string(t.Priority) })
	case SortStatus:
		return byString(func(t *domain.Ticket) string { return string(t.Status) })
	case SortUpdatedAt:
		return byTime(func(t *domain.Ticket) *time.Time { return presentTime(t.UpdatedAt) })
	case SortResolvedAt:
		return byTime(func(t *domain.Ticket) *time.Time { return t.ResolvedAt })
	default:
		return byTime(func(t *domain.Ticket) *time.Time { return presentTime(t.CreatedAt) })
	}
}

func byString(key func(*domain.Ticket) string) compareFunc {
	return func(a, b *domain.Ticket) (int, bool, bool) {
		return strings.Compare(key(a), key(b)), false, false
	}
}

func byTime(key func(*domain.Ticket) *time.Time) compareFunc {
	return func(a, b *domain.Ticket) (int, bool, bool) {
		ta, tb := key(a), key(b)
		if ta == nil || tb == nil {
			return 0, ta == nil, tb == nil
		}
		return ta.Compare(*tb), false, false
	}
}

func presentTime(ts time.Time) *time.Time {
	if ts.IsZero() {
		return nil
	}
	return &ts
}

// List runs the filter then the sort, which is the order the list and board
// views consume.
func List(tickets []domain.Ticket, c Criteria, s SortState, loc *time.Location) []domain.Ticket {
	return Sort(Filter(tickets, c, loc), s)
}
