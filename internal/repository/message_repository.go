package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-engine/internal/domain"
)

// MessageRepository manages ticket thread messages.
type MessageRepository interface {
	// ListByTicket returns all messages for a ticket ordered by date
	// ascending, ties broken by insertion order.
	ListByTicket(ctx context.Context, ticketID string) ([]domain.Message, error)
}

type messageRepository struct {
	pool *pgxpool.Pool
}

// NewMessageRepository builds repository.
func NewMessageRepository(pool *pgxpool.Pool) MessageRepository {
	return &messageRepository{pool: pool}
}

func (r *messageRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.Message, error) {
	const query = `
        SELECT id, ticket_id, type, body, html, from_email, message_id, in_reply_to, refs, date, attachments, created_at
        FROM messages WHERE ticket_id=$1 ORDER BY date ASC, created_at ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Message
	for rows.Next() {
		var msg domain.Message
		if err := rows.Scan(
			&msg.ID,
			&msg.TicketID,
			&msg.Type,
			&msg.Body,
			&msg.HTML,
			&msg.FromEmail,
			&msg.MessageID,
			&msg.InReplyTo,
			&msg.References,
			&msg.Date,
			&msg.Attachments,
			&msg.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, msg)
	}
	return result, rows.Err()
}
