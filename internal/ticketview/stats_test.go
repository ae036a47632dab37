package ticketview

import (
	"testing"

	"github.com/deskline/support-portal/internal/domain"
)

func TestSummarize(t *testing.T) {
	tickets := append(sampleTickets(), domain.Ticket{
		ID: "d", Status: domain.TicketStatusResolved, Priority: domain.TicketPriorityCritical,
	})
	s := Summarize(tickets)
	want := Summary{Total: 4, Open: 1, Resolved: 2, CriticalActive: 1, ResolutionRate: 50}
	if s != want {
		t.Errorf("Summarize = %+v, want %+v", s, want)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	if s := Summarize(nil); s != (Summary{}) {
		t.Errorf("Summarize(nil) = %+v", s)
	}
}
