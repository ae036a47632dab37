package portal

import (
	"time"

	"github.com/deskline/support-portal/internal/domain"
	"github.com/deskline/support-portal/internal/ticketview"
)

// Derived is everything a screen renders, computed from State.
type Derived struct {
	Visible    []domain.Ticket
	Board      ticketview.Board
	Chart      []ticketview.Bucket
	Summary    ticketview.Summary
	Unread     int
	Categories []string
	Requesters []string
}

// Derive recomputes the visible list, the board, the trend chart and the
// counters from scratch. The board shows the same filtered and sorted set as
// the list; the chart and counters cover the whole snapshot.
func Derive(s State, now time.Time, loc *time.Location) Derived {
	visible := ticketview.List(s.Tickets, s.Criteria, s.Sort, loc)
	return Derived{
		Visible:    visible,
		Board:      ticketview.Bucketize(visible),
		Chart:      ticketview.Aggregate(s.Tickets, s.Range, now, loc),
		Summary:    ticketview.Summarize(s.Tickets),
		Unread:     s.Unread(),
		Categories: ticketview.Categories(s.Tickets),
		Requesters: ticketview.Requesters(s.Tickets),
	}
}
