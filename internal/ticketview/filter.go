package ticketview

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/deskline/support-portal/internal/domain"
)

// All is the sentinel that disables a dimension of the filter.
const All = "ALL"

// DateField selects which timestamp the date criterion compares against.
type DateField string

const (
	DateCreated  DateField = "created"
	DateResolved DateField = "resolved"
	DateUpdated  DateField = "updated"
)

// DateLayout is the calendar date format used by the date criterion.
const DateLayout = "2006-01-02"

// Criteria is the active filter set. Empty strings and All impose no constraint.
type Criteria struct {
	Query     string
	Status    string
	Category  string
	Requester string
	DateField DateField
	// Date is a local calendar date in DateLayout.
	Date string
}

// DefaultCriteria returns criteria that keep every ticket.
func DefaultCriteria() Criteria {
	return Criteria{Status: All, Category: All, Requester: All, DateField: DateCreated}
}

// ParseDateField maps a query value onto a DateField. Empty means created.
func ParseDateField(raw string) (DateField, error) {
	switch DateField(strings.ToLower(strings.TrimSpace(raw))) {
	case "", DateCreated:
		return DateCreated, nil
	case DateResolved:
		return DateResolved, nil
	case DateUpdated:
		return DateUpdated, nil
	}
	return "", fmt.Errorf("unknown date field %q", raw)
}

// ParseDate validates a calendar date value. Empty input is accepted and
// disables the date criterion.
func ParseDate(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	if _, err := time.Parse(DateLayout, raw); err != nil {
		return "", fmt.Errorf("invalid date %q: want YYYY-MM-DD", raw)
	}
	return raw, nil
}

// Filter returns the tickets matching every active criterion, preserving
// input order. Dates are compared as calendar days in loc.
func Filter(tickets []domain.Ticket, c Criteria, loc *time.Location) []domain.Ticket {
	if loc == nil {
		loc = time.Local
	}
	result := make([]domain.Ticket, 0, len(tickets))
	for i := range tickets {
		if c.Matches(&tickets[i], loc) {
			result = append(result, tickets[i])
		}
	}
	return result
}

// Matches reports whether a single ticket satisfies the criteria.
func (c Criteria) Matches(t *domain.Ticket, loc *time.Location) bool {
	return c.matchesText(t) &&
		matchesExact(c.Status, string(t.Status)) &&
		matchesExact(c.Category, t.Category) &&
		matchesExact(c.Requester, t.Requester) &&
		c.matchesDate(t, loc)
}

func (c Criteria) matchesText(t *domain.Ticket) bool {
	if c.Query == "" {
		return true
	}
	query := strings.ToLower(c.Query)
	if strings.Contains(strings.ToLower(t.Title), query) {
		return true
	}
	if strings.Contains(strconv.FormatInt(t.Number, 10), query) {
		return true
	}
	return strings.Contains(strings.ToLower(t.Description), query)
}

func (c Criteria) matchesDate(t *domain.Ticket, loc *time.Location) bool {
	if c.Date == "" {
		return true
	}
	var ts *time.Time
	switch c.DateField {
	case DateResolved:
		ts = t.ResolvedAt
	case DateUpdated:
		if !t.UpdatedAt.IsZero() {
			ts = &t.UpdatedAt
		}
	default:
		if !t.CreatedAt.IsZero() {
			ts = &t.CreatedAt
		}
	}
	if ts == nil {
		return false
	}
	return LocalDate(*ts, loc) == c.Date
}

func matchesExact(want, got string) bool {
	return want == "" || strings.EqualFold(want, All) || want == got
}

// LocalDate renders ts as a YYYY-MM-DD calendar date in loc.
func LocalDate(ts time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return ts.In(loc).Format(DateLayout)
}

// Categories returns the sorted distinct categories present in tickets.
func Categories(tickets []domain.Ticket) []string {
	return distinct(tickets, func(t *domain.Ticket) string { return t.Category })
}

// Requesters returns the sorted distinct requester names present in tickets.
func Requesters(tickets []domain.Ticket) []string {
	return distinct(tickets, func(t *domain.Ticket) string { return t.Requester })
}

func distinct(tickets []domain.Ticket, key func(*domain.Ticket) string) []string {
	seen := make(map[string]struct{}, len(tickets))
	values := make([]string, 0, len(tickets))
	for i := range tickets {
		value := key(&tickets[i])
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		values = append(values, value)
	}
	slices.Sort(values)
	return values
}
