package ticketview

import "github.com/deskline/support-portal/internal/domain"

// Lane is one Kanban column.
type Lane struct {
	Status  domain.TicketStatus
	Label   string
	Tickets []domain.Ticket
}

// Board holds the three status lanes in workflow order.
type Board struct {
	Lanes []Lane
}

// Bucketize partitions tickets into OPEN, IN_PROGRESS and RESOLVED lanes,
// keeping input order inside each lane. Tickets with any other status are
// left out of every lane.
func Bucketize(tickets []domain.Ticket) Board {
	board := Board{Lanes: make([]Lane, len(domain.Statuses))}
	index := make(map[domain.TicketStatus]int, len(domain.Statuses))
	for i, status := range domain.Statuses {
		board.Lanes[i] = Lane{Status: status, Label: StatusLabel(status), Tickets: []domain.Ticket{}}
		index[status] = i
	}
	for _, t := range tickets {
		if i, ok := index[t.Status]; ok {
			board.Lanes[i].Tickets = append(board.Lanes[i].Tickets, t)
		}
	}
	return board
}

// Lane returns the lane for status.
func (b Board) Lane(status domain.TicketStatus) (Lane, bool) {
	for _, lane := range b.Lanes {
		if lane.Status == status {
			return lane, true
		}
	}
	return Lane{}, false
}

// Size is the number of tickets across all lanes.
func (b Board) Size() int {
	total := 0
	for _, lane := range b.Lanes {
		total += len(lane.Tickets)
	}
	return total
}

// StatusChange is the request produced by dropping a card on a lane.
type StatusChange struct {
	TicketID string
	Status   domain.TicketStatus
}

// Drop interprets moving ticketID from one lane to another. It does not
// touch the board; the caller applies the change through the status
// update operation and rebuilds the board from a fresh snapshot. Dropping
// onto the same lane, onto an unknown lane, or without a ticket id
// produces no request.
func Drop(ticketID string, from, to domain.TicketStatus) (StatusChange, bool) {
	if ticketID == "" || !to.Valid() || from == to {
		return StatusChange{}, false
	}
	return StatusChange{TicketID: ticketID, Status: to}, true
}
