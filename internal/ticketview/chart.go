package ticketview

import (
	"fmt"
	"strings"
	"time"

	"github.com/deskline/support-portal/internal/domain"
)

// Range selects the dashboard window.
type Range string

const (
	RangeWeek  Range = "WEEK"
	RangeMonth Range = "MONTH"
	RangeYear  Range = "YEAR"
)

// ParseRange accepts WEEK, MONTH or YEAR case-insensitively. Empty means WEEK.
func ParseRange(raw string) (Range, error) {
	switch Range(strings.ToUpper(strings.TrimSpace(raw))) {
	case "", RangeWeek:
		return RangeWeek, nil
	case RangeMonth:
		return RangeMonth, nil
	case RangeYear:
		return RangeYear, nil
	}
	return "", fmt.Errorf("unknown range %q", raw)
}

// Bucket is one calendar period of the trend chart.
type Bucket struct {
	Key      string `json:"key"`
	Name     string `json:"name"`
	Opened   int    `json:"Abertos"`
	Resolved int    `json:"Resolvidos"`
}

// Aggregate counts ticket creations and resolutions per calendar period in
// loc, over the window ending at now. WEEK and MONTH produce 7 and 30 daily
// buckets; YEAR produces 12 monthly buckets. Buckets run oldest to newest
// and every period is present even when empty.
//
// Only tickets currently RESOLVED contribute to the resolution count, keyed
// by ResolvedAt or, for legacy rows without one, by UpdatedAt.
func Aggregate(tickets []domain.Ticket, r Range, now time.Time, loc *time.Location) []Bucket {
	if loc == nil {
		loc = time.Local
	}
	var (
		buckets []Bucket
		keyOf   func(time.Time) string
	)
	if r == RangeYear {
		buckets = monthlyBuckets(now.In(loc), 12)
		keyOf = func(ts time.Time) string { return monthKey(ts.In(loc)) }
	} else {
		days := 7
		if r == RangeMonth {
			days = 30
		}
		buckets = dailyBuckets(now.In(loc), days)
		keyOf = func(ts time.Time) string { return LocalDate(ts, loc) }
	}

	index := make(map[string]int, len(buckets))
	for i, b := range buckets {
		index[b.Key] = i
	}

	for i := range tickets {
		t := &tickets[i]
		if !t.CreatedAt.IsZero() {
			if pos, ok := index[keyOf(t.CreatedAt)]; ok {
				buckets[pos].Opened++
			}
		}
		if t.Status != domain.TicketStatusResolved {
			continue
		}
		ref := t.UpdatedAt
		if t.ResolvedAt != nil {
			ref = *t.ResolvedAt
		}
		if ref.IsZero() {
			continue
		}
		if pos, ok := index[keyOf(ref)]; ok {
			buckets[pos].Resolved++
		}
	}
	return buckets
}

func dailyBuckets(today time.Time, days int) []Bucket {
	y, m, d := today.Date()
	buckets := make([]Bucket, 0, days)
	for i := days - 1; i >= 0; i-- {
		// Noon keeps the day stable across DST shifts when normalising.
		day := time.Date(y, m, d-i, 12, 0, 0, 0, today.Location())
		buckets = append(buckets, Bucket{
			Key:  day.Format(DateLayout),
			Name: day.Format("02/01"),
		})
	}
	return buckets
}

func monthlyBuckets(today time.Time, months int) []Bucket {
	y, m, _ := today.Date()
	buckets := make([]Bucket, 0, months)
	for i := months - 1; i >= 0; i-- {
		first := time.Date(y, m-time.Month(i), 1, 12, 0, 0, 0, today.Location())
		buckets = append(buckets, Bucket{
			Key:  monthKey(first),
			Name: monthAbbrev[first.Month()-1],
		})
	}
	return buckets
}

func monthKey(ts time.Time) string {
	return ts.Format("2006-01")
}
