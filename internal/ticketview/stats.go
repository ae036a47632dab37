package ticketview

import (
	"math"

	"github.com/deskline/support-portal/internal/domain"
)

// Summary holds the dashboard counters.
type Summary struct {
	Total          int `json:"total"`
	Open           int `json:"open"`
	Resolved       int `json:"resolved"`
	CriticalActive int `json:"critical_active"`
	ResolutionRate int `json:"resolution_rate"`
}

// Summarize counts tickets by state. CriticalActive counts CRITICAL tickets
// not yet resolved; ResolutionRate is a rounded percentage.
func Summarize(tickets []domain.Ticket) Summary {
	s := Summary{Total: len(tickets)}
	for i := range tickets {
		switch tickets[i].Status {
		case domain.TicketStatusOpen:
			s.Open++
		case domain.TicketStatusResolved:
			s.Resolved++
		}
		if tickets[i].Priority == domain.TicketPriorityCritical && tickets[i].Status != domain.TicketStatusResolved {
			s.CriticalActive++
		}
	}
	if s.Total > 0 {
		s.ResolutionRate = int(math.Round(float64(s.Resolved) / float64(s.Total) * 100))
	}
	return s
}
