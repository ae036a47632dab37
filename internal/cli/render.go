package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/deskline/support-portal/internal/domain"
	"github.com/deskline/support-portal/internal/portal"
	"github.com/deskline/support-portal/internal/ticketview"
)

const laneWidth = 34

var (
	laneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1).
			Width(laneWidth)
	laneTitleStyle = lipgloss.NewStyle().Bold(true)
	mutedStyle     = lipgloss.NewStyle().Faint(true)
	priorityColors = map[domain.TicketPriority]lipgloss.Color{
		domain.TicketPriorityLow:      lipgloss.Color("2"),
		domain.TicketPriorityMedium:   lipgloss.Color("3"),
		domain.TicketPriorityHigh:     lipgloss.Color("208"),
		domain.TicketPriorityCritical: lipgloss.Color("1"),
	}
)

// renderBoard draws the lanes side by side with the counters underneath.
func renderBoard(d portal.Derived) string {
	lanes := make([]string, 0, len(d.Board.Lanes))
	for _, lane := range d.Board.Lanes {
		lanes = append(lanes, laneStyle.Render(renderLane(lane)))
	}
	footer := mutedStyle.Render(fmt.Sprintf(
		"total %d  abertos %d  resolvidos %d  críticos ativos %d  taxa %d%%  notificações %d",
		d.Summary.Total, d.Summary.Open, d.Summary.Resolved,
		d.Summary.CriticalActive, d.Summary.ResolutionRate, d.Unread))
	return lipgloss.JoinVertical(lipgloss.Left, lipgloss.JoinHorizontal(lipgloss.Top, lanes...), footer)
}

func renderLane(lane ticketview.Lane) string {
	var b strings.Builder
	b.WriteString(laneTitleStyle.Render(fmt.Sprintf("%s (%d)", lane.Label, len(lane.Tickets))))
	if len(lane.Tickets) == 0 {
		b.WriteString("\n" + mutedStyle.Render("vazio"))
	}
	for _, t := range lane.Tickets {
		b.WriteString("\n")
		b.WriteString(renderCard(t))
	}
	return b.String()
}

func renderCard(t domain.Ticket) string {
	badge := lipgloss.NewStyle().Foreground(priorityColors[t.Priority]).Render(ticketview.PriorityLabel(t.Priority))
	title := t.Title
	if lipgloss.Width(title) > laneWidth-8 {
		title = truncate(title, laneWidth-9) + "…"
	}
	return fmt.Sprintf("#%d %s\n  %s · %s", t.Number, title, badge, mutedStyle.Render(t.Requester))
}

func truncate(s string, width int) string {
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes)) > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes)
}

func stamp(now time.Time) string {
	return mutedStyle.Render("atualizado " + now.Format("02/01/2006 15:04:05"))
}
