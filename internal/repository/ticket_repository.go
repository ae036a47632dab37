package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/deskline/support-portal/internal/domain"
)

// TicketFilter scopes a ticket listing.
type TicketFilter struct {
	RequesterID *string
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

// The requester's current profile name wins over the snapshot taken at
// creation time; updated_at falls back to created_at for rows never edited.
const ticketSelect = `
        SELECT t.id, t.ticket_number, t.title, t.description,
               COALESCE(NULLIF(p.name, ''), t.requester_name), t.requester_id,
               t.priority, t.status, t.category, t.attachments,
               t.created_at, COALESCE(t.updated_at, t.created_at), t.resolved_at
        FROM tickets t
        LEFT JOIN profiles p ON p.id = t.requester_id`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (title, description, requester_id, requester_name, priority, status, category, attachments, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,NOW())
        RETURNING id, ticket_number, created_at, updated_at`
	attachments := ticket.Attachments
	if attachments == nil {
		attachments = []string{}
	}
	return r.pool.QueryRow(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.RequesterID,
		ticket.Requester,
		ticket.Priority,
		ticket.Status,
		ticket.Category,
		attachments,
	).Scan(&ticket.ID, &ticket.Number, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET title=$1, description=$2, priority=$3, status=$4, category=$5,
            attachments=$6, resolved_at=$7, updated_at=NOW()
        WHERE id=$8
        RETURNING updated_at`
	attachments := ticket.Attachments
	if attachments == nil {
		attachments = []string{}
	}
	var updatedAt time.Time
	if err := r.pool.QueryRow(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.Priority,
		ticket.Status,
		ticket.Category,
		attachments,
		ticket.ResolvedAt,
		ticket.ID,
	).Scan(&updatedAt); err != nil {
		return err
	}
	ticket.UpdatedAt = updatedAt
	return nil
}

func (r *ticketRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM tickets WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	rows, err := r.pool.Query(ctx, ticketSelect+` WHERE t.id=$1`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	tickets, err := scanTickets(rows)
	if err != nil {
		return nil, err
	}
	if len(tickets) == 0 {
		return nil, pgx.ErrNoRows
	}
	return &tickets[0], nil
}

func (r *ticketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	query := ticketSelect
	args := []any{}
	if filter.RequesterID != nil {
		args = append(args, *filter.RequesterID)
		query += ` WHERE t.requester_id=$1`
	}
	query += ` ORDER BY t.created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.Number,
			&ticket.Title,
			&ticket.Description,
			&ticket.Requester,
			&ticket.RequesterID,
			&ticket.Priority,
			&ticket.Status,
			&ticket.Category,
			&ticket.Attachments,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
			&ticket.ResolvedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
