package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/deskline/support-portal/internal/domain"
)

// AuditLogRepository stores the append-only ticket history.
type AuditLogRepository interface {
	Create(ctx context.Context, entry *domain.AuditLogEntry) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.AuditLogEntry, error)
}

type auditLogRepository struct {
	pool *pgxpool.Pool
}

// NewAuditLogRepository creates repository.
func NewAuditLogRepository(pool *pgxpool.Pool) AuditLogRepository {
	return &auditLogRepository{pool: pool}
}

func (r *auditLogRepository) Create(ctx context.Context, entry *domain.AuditLogEntry) error {
	const query = `
        INSERT INTO audit_logs (ticket_id, ticket_number, actor_id, action, details)
        VALUES ($1,$2,NULLIF($3, ''),$4,$5)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		entry.TicketID,
		entry.TicketNumber,
		entry.ActorID,
		entry.Action,
		entry.Details,
	).Scan(&entry.ID, &entry.CreatedAt)
}

// ListByTicket returns entries newest first. Entries whose actor no longer
// resolves are attributed to the system actor.
func (r *auditLogRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.AuditLogEntry, error) {
	const query = `
        SELECT a.id, a.ticket_id, a.ticket_number, COALESCE(a.actor_id, ''), COALESCE(p.name, $2),
               a.action, a.details, a.created_at
        FROM audit_logs a
        LEFT JOIN profiles p ON p.id = a.actor_id
        WHERE a.ticket_id=$1 ORDER BY a.created_at DESC`
	rows, err := r.pool.Query(ctx, query, ticketID, domain.SystemActorName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.AuditLogEntry
	for rows.Next() {
		var entry domain.AuditLogEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.TicketID,
			&entry.TicketNumber,
			&entry.ActorID,
			&entry.ActorName,
			&entry.Action,
			&entry.Details,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
