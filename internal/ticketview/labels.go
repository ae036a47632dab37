package ticketview

import "github.com/deskline/support-portal/internal/domain"

// StatusLabel returns the Portuguese label for a status. Unknown values pass through.
func StatusLabel(s domain.TicketStatus) string {
	switch s {
	case domain.TicketStatusOpen:
		return "Aberto"
	case domain.TicketStatusInProgress:
		return "Em Progresso"
	case domain.TicketStatusResolved:
		return "Resolvido"
	}
	return string(s)
}

// PriorityLabel returns the Portuguese label for a priority. Unknown values pass through.
func PriorityLabel(p domain.TicketPriority) string {
	switch p {
	case domain.TicketPriorityLow:
		return "Baixa"
	case domain.TicketPriorityMedium:
		return "Média"
	case domain.TicketPriorityHigh:
		return "Alta"
	case domain.TicketPriorityCritical:
		return "Crítica"
	}
	return string(p)
}

// AuditActionLabel returns the history label for an audit action.
func AuditActionLabel(a domain.AuditAction) string {
	switch a {
	case domain.AuditActionCreated:
		return "Chamado Criado"
	case domain.AuditActionStatusChange:
		return "Status Alterado"
	case domain.AuditActionEdited:
		return "Chamado Editado"
	}
	return string(a)
}

var monthAbbrev = [12]string{"Jan", "Fev", "Mar", "Abr", "Mai", "Jun", "Jul", "Ago", "Set", "Out", "Nov", "Dez"}
