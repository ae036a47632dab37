package ticketview

import (
	"testing"

	"github.com/deskline/support-portal/internal/domain"
)

func TestBucketizePartitionsKnownStatuses(t *testing.T) {
	tickets := append(sampleTickets(),
		domain.Ticket{ID: "d", Status: domain.TicketStatusOpen},
		domain.Ticket{ID: "legacy", Status: "CLOSED"},
	)
	board := Bucketize(tickets)

	if len(board.Lanes) != 3 {
		t.Fatalf("len(Lanes) = %d, want 3", len(board.Lanes))
	}
	if board.Size() != len(tickets)-1 {
		t.Errorf("board size = %d, want %d", board.Size(), len(tickets)-1)
	}

	open, _ := board.Lane(domain.TicketStatusOpen)
	if open.Label != "Aberto" || !equalIDs(open.Tickets, "a", "d") {
		t.Errorf("open lane = %q %v", open.Label, ids(open.Tickets))
	}
	for _, lane := range board.Lanes {
		for _, ticket := range lane.Tickets {
			if ticket.Status != lane.Status {
				t.Errorf("ticket %s with status %s placed in lane %s", ticket.ID, ticket.Status, lane.Status)
			}
		}
	}
}

func TestBucketizeEmptyLanesAreNotNil(t *testing.T) {
	board := Bucketize(nil)
	for _, lane := range board.Lanes {
		if lane.Tickets == nil {
			t.Errorf("lane %s has nil tickets", lane.Status)
		}
	}
	if _, ok := board.Lane("CLOSED"); ok {
		t.Error("Lane(CLOSED) reported a lane")
	}
}

func TestDrop(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		from, to domain.TicketStatus
		ok       bool
	}{
		{"move forward", "t1", domain.TicketStatusOpen, domain.TicketStatusInProgress, true},
		{"reopen", "t1", domain.TicketStatusResolved, domain.TicketStatusOpen, true},
		{"same lane", "t1", domain.TicketStatusOpen, domain.TicketStatusOpen, false},
		{"unknown lane", "t1", domain.TicketStatusOpen, "ARCHIVED", false},
		{"no ticket", "", domain.TicketStatusOpen, domain.TicketStatusResolved, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			change, ok := Drop(tt.id, tt.from, tt.to)
			if ok != tt.ok {
				t.Fatalf("Drop ok = %v, want %v", ok, tt.ok)
			}
			if ok && (change.TicketID != tt.id || change.Status != tt.to) {
				t.Errorf("Drop = %+v", change)
			}
		})
	}
}
